// Package markdown provides styled markdown rendering for program
// descriptions and confirmation notes.
package markdown

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// noMarginStyle strips document margins so rendered text lines up with
// the surrounding pane.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// Renderer wraps glamour with rollcall-specific configuration.
type Renderer struct {
	renderer *glamour.TermRenderer
	width    int
}

// New creates a markdown renderer with the given wrap width and style.
// style should be "dark" or "light"; empty defaults to "dark".
// WithAutoStyle is avoided on purpose: it queries the terminal for the
// background color and the escape sequence response leaks into the
// input stream.
func New(width int, style string) (*Renderer, error) {
	if style == "" {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &Renderer{renderer: r, width: width}, nil
}

// Width returns the configured word wrap width.
func (r *Renderer) Width() int {
	return r.width
}

// Render transforms markdown to styled terminal output.
func (r *Renderer) Render(text string) (string, error) {
	return r.renderer.Render(text)
}

// RenderOrPlain renders markdown, falling back to the raw text when
// rendering fails. Descriptions come from the server and a bad document
// should never blank the pane.
func (r *Renderer) RenderOrPlain(text string) string {
	out, err := r.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
