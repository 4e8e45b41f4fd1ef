// Package input turns text typed by the user into the ordered lines sent
// for translation. Each line becomes one translation record, so line order
// must survive unchanged.
package input

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Lines splits text on line breaks (\n, \r\n or a lone \r), normalizes each
// line to NFC and drops trailing blank lines. Lines are otherwise kept as
// typed, blank lines in the middle included, so output rows stay aligned.
func Lines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	raw := strings.Split(text, "\n")
	end := len(raw)
	for end > 0 && strings.TrimSpace(raw[end-1]) == "" {
		end--
	}

	lines := make([]string, 0, end)
	for _, l := range raw[:end] {
		lines = append(lines, norm.NFC.String(l))
	}
	return lines
}

// Join is the inverse of Lines for redisplay in a text area.
func Join(lines []string) string {
	return strings.Join(lines, "\n")
}

// Collect normalizes lines given one per argument and drops blank ones.
func Collect(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		for _, l := range Lines(a) {
			if strings.TrimSpace(l) != "" {
				out = append(out, l)
			}
		}
	}
	return out
}
