package report

import "github.com/charmbracelet/lipgloss"

type styles struct {
	heading lipgloss.Style
	header  lipgloss.Style
	rule    lipgloss.Style
	total   lipgloss.Style
	plain   bool
}

func newStyles() styles {
	return styles{
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		rule:    lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
		total:   lipgloss.NewStyle().Bold(true),
	}
}

func plainStyles() styles {
	return styles{plain: true}
}

func (s styles) render(style lipgloss.Style, text string) string {
	if s.plain || text == "" {
		return text
	}
	return style.Render(text)
}
