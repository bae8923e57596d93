package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds all lipgloss styles for terminal output
var Styles = struct {
	// Section styles
	SuccessHeader lipgloss.Style
	ErrorHeader   lipgloss.Style
	Subheader     lipgloss.Style
	Placeholder   lipgloss.Style
	Count         lipgloss.Style

	// Chunk separators and labels
	Separator lipgloss.Style
	Label     lipgloss.Style
	Value     lipgloss.Style

	// TUI styles
	Title     lipgloss.Style
	StatusBar lipgloss.Style
	Help      lipgloss.Style
	Match     lipgloss.Style
}{
	SuccessHeader: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),  // Green
	ErrorHeader:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true), // Red
	Subheader:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true), // Orange
	Placeholder:   lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true),
	Count:         lipgloss.NewStyle().Foreground(lipgloss.Color("39")),

	Separator: lipgloss.NewStyle().Foreground(lipgloss.Color("239")),
	Label:     lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	Value:     lipgloss.NewStyle().Bold(true),

	Title:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Padding(0, 1),
	StatusBar: lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("252")).Padding(0, 1),
	Help:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	Match:     lipgloss.NewStyle().Background(lipgloss.Color("57")).Foreground(lipgloss.Color("230")).Bold(true),
}

// StyleLine applies the section styles to one rendered report line
func StyleLine(line string) string {
	switch {
	case strings.HasPrefix(line, "✅"):
		return Styles.SuccessHeader.Render(line)
	case strings.HasPrefix(line, "❌"):
		return Styles.ErrorHeader.Render(line)
	case line == AgentSection || line == WidespreadSection || line == RawSection:
		return Styles.Subheader.Render(line)
	case line == NoSuccessText || line == NoErrorText:
		return Styles.Placeholder.Render(line)
	}
	if i := strings.LastIndex(line, " (共 "); i >= 0 {
		return line[:i+1] + Styles.Count.Render(line[i+1:])
	}
	return line
}

// StyleText styles every line of a rendered section
func StyleText(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = StyleLine(line)
	}
	return strings.Join(lines, "\n")
}
