package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors - all colors meet WCAG AA contrast (4.5:1) on both black and dark surfaces
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	SurfaceColor   = lipgloss.Color("#1F2937") // Dark surface
	TextColor      = lipgloss.Color("#F9FAFB") // Light text
	BorderColor    = lipgloss.Color("#6B7280") // Gray
	BlueColor      = lipgloss.Color("#60A5FA") // Blue

	// Convenience styles for colors
	Primary   = lipgloss.NewStyle().Foreground(PrimaryColor)
	Secondary = lipgloss.NewStyle().Foreground(SecondaryColor)
	Warning   = lipgloss.NewStyle().Foreground(WarningColor)
	Error     = lipgloss.NewStyle().Foreground(ErrorColor)
	Muted     = lipgloss.NewStyle().Foreground(MutedColor)
	Text      = lipgloss.NewStyle().Foreground(TextColor)

	// Trigger status colors
	StatusIdle       = lipgloss.Color("#9CA3AF") // Gray
	StatusOptimizing = lipgloss.Color("#60A5FA") // Blue
	StatusApplied    = lipgloss.Color("#10B981") // Green
	StatusRejected   = lipgloss.Color("#F59E0B") // Amber
	StatusAbandoned  = lipgloss.Color("#FB923C") // Orange
	StatusDisabled   = lipgloss.Color("#F87171") // Red
	StatusPaused     = lipgloss.Color("#FBBF24") // Yellow

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(PrimaryColor).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true)

	// Header row of the trigger table
	TableHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor).
			BorderStyle(lipgloss.NormalBorder()).
			BorderBottom(true).
			BorderForeground(BorderColor)

	RowSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(TextColor).
			Background(SurfaceColor)

	ContentBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(0, 1)

	HelpBar = lipgloss.NewStyle().
		Foreground(MutedColor).
		MarginTop(1)

	HelpKey = lipgloss.NewStyle().
		Bold(true).
		Foreground(SecondaryColor)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)
)

// StatusColor returns the color for a trigger status
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "idle":
		return StatusIdle
	case "optimizing":
		return StatusOptimizing
	case "applied":
		return StatusApplied
	case "rejected":
		return StatusRejected
	case "abandoned":
		return StatusAbandoned
	case "disabled":
		return StatusDisabled
	case "paused":
		return StatusPaused
	default:
		return MutedColor
	}
}

// StatusIcon returns an icon for a trigger status
func StatusIcon(status string) string {
	switch status {
	case "idle":
		return "○"
	case "optimizing":
		return "◐"
	case "applied":
		return "✓"
	case "rejected":
		return "≈"
	case "abandoned":
		return "⏱"
	case "disabled":
		return "✗"
	case "paused":
		return "‖"
	default:
		return "●"
	}
}
