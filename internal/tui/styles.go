package tui

import "github.com/charmbracelet/lipgloss"

var (
	brand = lipgloss.Color("#00c5cd")
	coral = lipgloss.Color("#ff7f6e")
)

type Styles struct {
	ActiveTab   lipgloss.Style
	Tab         lipgloss.Style
	Label       lipgloss.Style
	Focused     lipgloss.Style
	Success     lipgloss.Style
	Error       lipgloss.Style
	Help        lipgloss.Style
	SubmitReady lipgloss.Style
	SubmitBusy  lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		ActiveTab:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(brand).Padding(0, 1),
		Tab:         lipgloss.NewStyle().Foreground(brand).Padding(0, 1),
		Label:       lipgloss.NewStyle().Width(16),
		Focused:     lipgloss.NewStyle().Foreground(brand).Bold(true),
		Success:     lipgloss.NewStyle().Foreground(lipgloss.Color("#2e8b57")),
		Error:       lipgloss.NewStyle().Foreground(coral),
		Help:        lipgloss.NewStyle().Faint(true),
		SubmitReady: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ffffff")).Background(coral).Padding(0, 2),
		SubmitBusy:  lipgloss.NewStyle().Faint(true).Padding(0, 2),
	}
}
