package ui

import "github.com/charmbracelet/lipgloss"

// Palette shared by all CLI output.
var (
	Ok     = lipgloss.Color("#00D26A")
	Fail   = lipgloss.Color("#FF3838")
	Warn   = lipgloss.Color("#FFB800")
	Accent = lipgloss.Color("#4D96FF")
	Muted  = lipgloss.Color("#6B7280")
)

var (
	TitleStyle = lipgloss.NewStyle().Bold(true)

	LabelStyle = lipgloss.NewStyle().Foreground(Muted).Width(12)
	ValueStyle = lipgloss.NewStyle().Bold(true)

	OkStyle    = lipgloss.NewStyle().Foreground(Ok).Bold(true)
	FailStyle  = lipgloss.NewStyle().Foreground(Fail).Bold(true)
	WarnStyle  = lipgloss.NewStyle().Foreground(Warn).Bold(true)
	MutedStyle = lipgloss.NewStyle().Foreground(Muted)

	PathStyle = lipgloss.NewStyle().Foreground(Accent)
)

// StatusStyle picks the style matching an ok or failed flag.
func StatusStyle(ok bool) lipgloss.Style {
	if ok {
		return OkStyle
	}
	return FailStyle
}
