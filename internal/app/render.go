package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

type styles struct {
	prompt  lipgloss.Style
	heading lipgloss.Style
	dim     lipgloss.Style
	tool    lipgloss.Style
	errText lipgloss.Style
	banner  lipgloss.Style
}

func newStyles() styles {
	return styles{
		prompt:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		heading: lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
		dim:     lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		tool:    lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		errText: lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		banner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1),
	}
}

// printAssistant renders assistant markdown for the terminal, falling back
// to plain text when rendering fails.
func (a *App) printAssistant(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err == nil {
		if rendered, err := renderer.Render(text); err == nil {
			fmt.Fprint(a.out, rendered)
			return
		}
	}
	fmt.Fprintln(a.out, text)
}

func (a *App) printBanner() {
	body := fmt.Sprintf("pointer: chat with your codebase\nmodel: %s\nroot: %s\ntype /help for commands",
		a.client.Model(), a.cache.Root())
	fmt.Fprintln(a.out, a.styles.banner.Render(body))
}
