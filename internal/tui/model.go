package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/FUNGYICHEN/AGG/internal/output"
)

// Section identifies which part of the report is shown
type Section int

const (
	SectionErrors Section = iota
	SectionSuccess
)

func (s Section) String() string {
	if s == SectionSuccess {
		return "success"
	}
	return "errors"
}

// Stats summarizes the report shown in the header
type Stats struct {
	Env        string
	Source     string
	ErrorLines int
	Success    int
	Widespread int
}

// Model represents the TUI state
type Model struct {
	sections    [2][]string
	section     Section
	content     string
	matches     int
	viewport    viewport.Model
	textinput   textinput.Model
	width       int
	height      int
	ready       bool
	searching   bool
	searchQuery string
	stats       Stats
}

// New creates a viewer for a rendered report, starting on the error section
func New(report output.Report, stats Stats) Model {
	ti := textinput.New()
	ti.Placeholder = "Filter lines..."
	ti.CharLimit = 100
	ti.Width = 40

	return Model{
		sections: [2][]string{
			SectionErrors:  strings.Split(report.Errors, "\n"),
			SectionSuccess: strings.Split(report.Success, "\n"),
		},
		textinput: ti,
		stats:     stats,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Section returns the section currently displayed
func (m Model) Section() Section {
	return m.section
}

// Content returns the unstyled lines currently displayed
func (m Model) Content() []string {
	return m.visibleLines()
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searching {
			switch msg.String() {
			case "esc":
				m.searching = false
				m.textinput.Blur()
				m.searchQuery = ""
				m.refresh()
			case "enter":
				m.searching = false
				m.textinput.Blur()
				m.searchQuery = m.textinput.Value()
				m.refresh()
			default:
				m.textinput, cmd = m.textinput.Update(msg)
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)
		}

		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "/":
			m.searching = true
			m.textinput.Focus()
			return m, textinput.Blink
		case "esc":
			if m.searchQuery != "" {
				m.searchQuery = ""
				m.textinput.SetValue("")
				m.refresh()
			}
		case "tab", "shift+tab":
			m.section = 1 - m.section
			m.refresh()
			if m.ready {
				m.viewport.GotoTop()
			}
		case "g", "home":
			m.viewport.GotoTop()
		case "G", "end":
			m.viewport.GotoBottom()
		case "j", "down":
			m.viewport.LineDown(1)
		case "k", "up":
			m.viewport.LineUp(1)
		case "ctrl+d", "pgdown":
			m.viewport.HalfViewDown()
		case "ctrl+u", "pgup":
			m.viewport.HalfViewUp()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3
		footerHeight := 2
		viewportHeight := m.height - headerHeight - footerHeight

		if !m.ready {
			m.viewport = viewport.New(m.width, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = viewportHeight
		}
		m.refresh()
	}

	if m.ready {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return fmt.Sprintf("%s\n%s\n%s", m.renderHeader(), m.viewport.View(), m.renderFooter())
}

func (m *Model) renderHeader() string {
	title := fmt.Sprintf("aggreport: %s (%s)", m.stats.Source, m.stats.Env)
	header := output.Styles.Title.Width(m.width).Render(title)

	tabs := make([]string, 0, 2)
	for _, s := range []Section{SectionErrors, SectionSuccess} {
		label := s.String()
		if s == m.section {
			label = "[" + label + "]"
		}
		tabs = append(tabs, label)
	}

	info := fmt.Sprintf("%s | Error lines: %d | Widespread: %d | Success: %d",
		strings.Join(tabs, " "), m.stats.ErrorLines, m.stats.Widespread, m.stats.Success)
	if m.searchQuery != "" {
		info += fmt.Sprintf(" | Filter: %q (%d)", m.searchQuery, m.matches)
	}

	infoStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Width(m.width)
	return header + "\n" + infoStyle.Render(info)
}

func (m *Model) renderFooter() string {
	if m.searching {
		return m.textinput.View()
	}
	help := "q:quit tab:section /:filter esc:clear g/G:top/bottom j/k:scroll pgup/pgdown:page"
	return output.Styles.Help.Width(m.width).Render(help)
}

// visibleLines returns the section lines passing the filter. Section and
// group headers are kept so matches stay in context.
func (m *Model) visibleLines() []string {
	lines := m.sections[m.section]
	query := strings.ToLower(m.searchQuery)
	if query == "" {
		return lines
	}
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		if i == 0 || isSubheader(line) || strings.Contains(strings.ToLower(line), query) {
			out = append(out, line)
		}
	}
	return out
}

func isSubheader(line string) bool {
	return line == output.AgentSection || line == output.WidespreadSection || line == output.RawSection
}

func (m *Model) refresh() {
	lines := m.visibleLines()
	m.matches = 0
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if m.searchQuery != "" && i > 0 && !isSubheader(line) {
			m.matches++
			b.WriteString(highlight(line, m.searchQuery))
			continue
		}
		b.WriteString(output.StyleLine(line))
	}
	m.content = b.String()
	if m.ready {
		m.viewport.SetContent(m.content)
	}
}

func highlight(s, query string) string {
	if query == "" || s == "" {
		return s
	}
	qs := strings.ToLower(query)
	ls := strings.ToLower(s)
	var b strings.Builder
	for {
		idx := strings.Index(ls, qs)
		if idx < 0 || idx+len(qs) > len(s) {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:idx])
		b.WriteString(output.Styles.Match.Render(s[idx : idx+len(qs)]))
		s = s[idx+len(qs):]
		ls = ls[idx+len(qs):]
	}
	return b.String()
}
