package report

import "github.com/charmbracelet/lipgloss"

// Styles by role. Lipgloss degrades them to what the terminal supports.
var (
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	warningStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("3"))
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	moduleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// palette paints report text. The zero palette leaves text plain.
type palette struct {
	enabled bool
}

func (p palette) paint(style lipgloss.Style, text string) string {
	if !p.enabled || text == "" {
		return text
	}
	return style.Render(text)
}

// severity paints text in the color of an issue severity.
func (p palette) severity(severity, text string) string {
	if severity == SeverityError {
		return p.paint(errorStyle, text)
	}
	return p.paint(warningStyle, text)
}
