// Package markdown renders the decoder help texts for the web front-end and
// the terminal.
package markdown

import (
	"bytes"
	"html"
	"html/template"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// ToHTML renders md for inclusion in a page. Raw HTML in the source is
// dropped, so the result is safe to embed as template.HTML.
func ToHTML(md []byte) template.HTML {
	opts := mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank | mdhtml.SkipHTML,
	}
	renderer := mdhtml.NewRenderer(opts)
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse(md)
	return template.HTML(markdown.Render(doc, renderer))
}

// ToPlainText renders md and strips the markup, one block per line.
func ToPlainText(md []byte) string {
	text := html.UnescapeString(StripHTMLTags(string(ToHTML(md))))

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func StripHTMLTags(htmlContent string) string {
	var result bytes.Buffer
	inTag := false

	for _, ch := range htmlContent {
		switch ch {
		case '<':
			inTag = true
		case '>':
			inTag = false
		default:
			if !inTag {
				result.WriteRune(ch)
			}
		}
	}

	return result.String()
}
