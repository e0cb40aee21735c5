package ui

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// Highlighter provides syntax highlighting for key file lines
type Highlighter struct {
	lexer chroma.Lexer
	style *chroma.Style
}

// NewHighlighter creates a highlighter for mimeapps.list and .desktop
// content, which share the INI syntax
func NewHighlighter() *Highlighter {
	lexer := lexers.Get("ini")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return &Highlighter{
		lexer: chroma.Coalesce(lexer),
		style: styles.Get("catppuccin-mocha"),
	}
}

// HighlightLine highlights a single line. On lexer failure the line is
// returned unchanged.
func (h *Highlighter) HighlightLine(line string) string {
	iterator, err := h.lexer.Tokenise(nil, line)
	if err != nil {
		return line
	}

	var result strings.Builder
	for token := iterator(); token != chroma.EOF; token = iterator() {
		style := h.style.Get(token.Type)
		// The lexer may hand back the newline it appends
		text := strings.TrimSuffix(token.Value, "\n")

		if style.Colour.IsSet() && text != "" {
			styled := lipgloss.NewStyle().Foreground(lipgloss.Color(style.Colour.String()))
			if style.Bold == chroma.Yes {
				styled = styled.Bold(true)
			}
			if style.Italic == chroma.Yes {
				styled = styled.Italic(true)
			}
			result.WriteString(styled.Render(text))
		} else {
			result.WriteString(text)
		}
	}

	return result.String()
}
