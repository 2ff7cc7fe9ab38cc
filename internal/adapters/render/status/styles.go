package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	domain     lipgloss.Style
	detail     lipgloss.Style
	warning    lipgloss.Style
	failure    lipgloss.Style
	ok         lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
	barBracket lipgloss.Style
	barFill    lipgloss.Style
	barEmpty   lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		domain:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		warning:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		failure:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		ok:         lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
		barBracket: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		barFill:    lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		barEmpty:   lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}
