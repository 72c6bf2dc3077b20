package cli

import (
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/x/term"
	"github.com/muesli/termenv"
)

func compactStyle() ansi.StyleConfig {
	var style ansi.StyleConfig
	if termenv.HasDarkBackground() {
		style = glamourstyles.DarkStyleConfig
	} else {
		style = glamourstyles.LightStyleConfig
	}

	zero := uint(0)
	style.Document.Margin = &zero
	style.Document.BlockPrefix = ""
	style.Document.BlockSuffix = ""
	return style
}

// newMarkdownRenderer builds a glamour renderer sized to the terminal. A nil
// return means render nothing and print plain text instead.
func newMarkdownRenderer() *glamour.TermRenderer {
	width, _, err := term.GetSize(os.Stdout.Fd())
	if err != nil {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(compactStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}
