package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color scheme for terminal panels.
type Theme struct {
	Primary lipgloss.Color // Main accent color
	Dim     lipgloss.Color // Dimmed/help text color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Key    lipgloss.Style
	Border lipgloss.Style
	Dim    lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Padding(0, 1),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Key:    lipgloss.NewStyle().Foreground(t.Dim),
		Border: lipgloss.NewStyle().Foreground(t.Primary),
		Dim:    lipgloss.NewStyle().Foreground(t.Dim),
	}
}

// DefaultStyles returns NewStyles(DefaultTheme).
func DefaultStyles() Styles { return NewStyles(DefaultTheme) }

// Row is a key/value line in a panel section.
type Row struct {
	Key   string
	Value string
}

// Section is a labeled group of rows.
type Section struct {
	Label string
	Rows  []Row
}

// Panel is a bordered box with a title, a status tag and sections.
type Panel struct {
	Title    string
	Status   string
	Sections []Section
}

// Render draws the panel sized to its widest line.
func (p Panel) Render(s Styles) string {
	bc := s.Border

	keyWidth := 0
	for _, sec := range p.Sections {
		for _, r := range sec.Rows {
			keyWidth = max(keyWidth, lipgloss.Width(r.Key))
		}
	}

	title := s.Title.Render(p.Title)
	if p.Status != "" {
		title += " " + s.Dim.Render("["+p.Status+"]")
	}

	// Content lines are rendered first so the box can fit the widest one.
	type line struct {
		text  string
		label bool
	}
	var body []line
	for _, sec := range p.Sections {
		body = append(body, line{text: s.Label.Render(sec.Label), label: true})
		for _, r := range sec.Rows {
			key := s.Key.Render(r.Key + strings.Repeat(" ", keyWidth-lipgloss.Width(r.Key)))
			body = append(body, line{text: key + "  " + r.Value})
		}
	}

	inner := lipgloss.Width(title)
	for _, l := range body {
		w := lipgloss.Width(l.text)
		if l.label {
			w++ // leading rule
		}
		inner = max(inner, w)
	}

	// Width: │(1) + space(1) + content + space(1) + │(1)
	width := inner + 4
	var lines []string
	lines = append(lines, bc.Render("╭"+strings.Repeat("─", width-2)+"╮"))
	lines = append(lines, bc.Render("│")+" "+pad(title, inner)+" "+bc.Render("│"))
	for _, l := range body {
		if l.label {
			// ├─Label──────┤
			rule := max(0, width-3-lipgloss.Width(l.text))
			lines = append(lines, bc.Render("├─")+l.text+bc.Render(strings.Repeat("─", rule)+"┤"))
			continue
		}
		lines = append(lines, bc.Render("│")+" "+pad(l.text, inner)+" "+bc.Render("│"))
	}
	lines = append(lines, bc.Render("╰"+strings.Repeat("─", width-2)+"╯"))
	return strings.Join(lines, "\n")
}

func pad(s string, width int) string {
	return s + strings.Repeat(" ", max(0, width-lipgloss.Width(s)))
}
