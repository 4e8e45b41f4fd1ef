package decoder

import (
	"embed"
	"fmt"
)

//go:embed help/*.md
var helpFS embed.FS

// Help returns the markdown description of a decoder and its settings.
func Help(kind Kind) ([]byte, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	b, err := helpFS.ReadFile("help/" + string(kind) + ".md")
	if err != nil {
		return nil, fmt.Errorf("no help for decoder %q: %w", kind, err)
	}
	return b, nil
}
