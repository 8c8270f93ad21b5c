package tui

import (
	"github.com/charmbracelet/lipgloss"

	"mythoughts/internal/app"
)

type palette struct {
	text, muted, accent, danger, success, highlight, epiphany lipgloss.Color
}

var (
	lightPalette = palette{
		text:      lipgloss.Color("235"),
		muted:     lipgloss.Color("244"),
		accent:    lipgloss.Color("62"),
		danger:    lipgloss.Color("160"),
		success:   lipgloss.Color("28"),
		highlight: lipgloss.Color("254"),
		epiphany:  lipgloss.Color("172"),
	}
	darkPalette = palette{
		text:      lipgloss.Color("252"),
		muted:     lipgloss.Color("242"),
		accent:    lipgloss.Color("111"),
		danger:    lipgloss.Color("203"),
		success:   lipgloss.Color("114"),
		highlight: lipgloss.Color("237"),
		epiphany:  lipgloss.Color("220"),
	}
)

type styles struct {
	title    lipgloss.Style
	text     lipgloss.Style
	muted    lipgloss.Style
	err      lipgloss.Style
	ok       lipgloss.Style
	selected lipgloss.Style
	card     lipgloss.Style
	epiphany lipgloss.Style
	tag      lipgloss.Style
	modal    lipgloss.Style
	tab      lipgloss.Style
	tabOn    lipgloss.Style
}

func newStyles(dark bool) styles {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(p.accent),
		text:     lipgloss.NewStyle().Foreground(p.text),
		muted:    lipgloss.NewStyle().Foreground(p.muted),
		err:      lipgloss.NewStyle().Foreground(p.danger),
		ok:       lipgloss.NewStyle().Foreground(p.success),
		selected: lipgloss.NewStyle().Background(p.highlight).Padding(0, 1),
		card:     lipgloss.NewStyle().Padding(0, 1),
		epiphany: lipgloss.NewStyle().Bold(true).Foreground(p.epiphany),
		tag:      lipgloss.NewStyle().Foreground(p.accent),
		modal: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.accent).
			Padding(1, 2),
		tab:   lipgloss.NewStyle().Foreground(p.muted).Padding(0, 1),
		tabOn: lipgloss.NewStyle().Bold(true).Foreground(p.accent).Underline(true).Padding(0, 1),
	}
}

func (s styles) avatar(p app.Profile) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ffffff")).
		Background(lipgloss.Color(app.AvatarColor(p.Email))).
		Padding(0, 1).
		Render(p.Avatar())
}
