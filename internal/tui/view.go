package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"mythoughts/internal/app"
)

func (m Model) View() string {
	switch m.screen {
	case screenLoading:
		return m.styles.muted.Render("Loading…")
	case screenAuth:
		return m.viewAuth()
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString("\n\n")

	switch m.mode {
	case modeCompose:
		b.WriteString(m.viewCompose())
	case modeConfirmDelete:
		b.WriteString(m.styles.modal.Render(
			"Are you sure you want to delete this thought?\n\n" +
				m.styles.muted.Render("y delete · n cancel")))
	case modeEditProfile:
		b.WriteString(m.viewProfileForm())
	default:
		b.WriteString(m.viewBody())
	}

	b.WriteString("\n")
	if m.status != "" {
		st := m.styles.err
		if m.statusOK {
			st = m.styles.ok
		}
		b.WriteString(st.Render(m.status) + "\n")
	}
	b.WriteString(m.styles.muted.Render(m.help()))
	return b.String()
}

func (m Model) viewHeader() string {
	tabs := []struct {
		view  app.View
		label string
	}{
		{app.ViewFeed, "1 Feed"},
		{app.ViewProfile, "2 Profile"},
		{app.ViewSettings, "3 Settings"},
		{app.ViewAbout, "4 About"},
	}
	cur := m.client.Nav.Current()
	parts := []string{m.styles.title.Render("MyThoughts")}
	for _, t := range tabs {
		st := m.styles.tab
		if t.view == cur {
			st = m.styles.tabOn
		}
		parts = append(parts, st.Render(t.label))
	}
	who := m.styles.avatar(m.profile) + " " + m.styles.muted.Render(m.profile.Name())
	left := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(who))
	return left + strings.Repeat(" ", gap) + who
}

func (m Model) viewBody() string {
	switch m.client.Nav.Current() {
	case app.ViewProfile:
		return m.viewProfile()
	case app.ViewSettings:
		return m.viewSettings()
	case app.ViewAbout:
		return m.viewAbout()
	}

	var b strings.Builder
	switch m.mode {
	case modeSearch:
		b.WriteString(m.search.View() + "\n\n")
	case modeFilter:
		b.WriteString(m.filterInput.View() + "\n\n")
	default:
		if res, ok := m.client.Search.Result(); ok {
			b.WriteString(m.styles.title.Render("Thoughts by "+res.User.Name()) +
				m.styles.muted.Render(" ("+res.User.Email+")") + "\n\n")
		} else if m.filter != "" {
			b.WriteString(m.styles.muted.Render("filter: "+m.filter) + "\n\n")
		}
	}
	if m.feedErr != "" {
		b.WriteString(m.styles.err.Render(m.feedErr) + "\n")
	}
	if len(m.displayed()) == 0 {
		b.WriteString(m.styles.muted.Render("No thoughts yet. Press n to share one."))
		return b.String()
	}
	b.WriteString(m.list.View())
	return b.String()
}

// renderList draws every displayed thought and reports the first line
// of the selected one.
func (m Model) renderList() (string, int) {
	var (
		b      strings.Builder
		lines  int
		offset int
	)
	for i, t := range m.displayed() {
		if i == m.cursor {
			offset = lines
		}
		card := m.renderThought(t)
		if i == m.cursor {
			card = m.styles.selected.Render(card)
		} else {
			card = m.styles.card.Render(card)
		}
		b.WriteString(card)
		b.WriteString("\n\n")
		lines += lipgloss.Height(card) + 1
	}
	return b.String(), offset
}

func (m Model) renderThought(t app.Thought) string {
	var b strings.Builder
	head := m.styles.muted.Render(app.DisplayName(t.CreatedBy.Email, "Unknown"))
	if t.Epiphany {
		head += " " + m.styles.epiphany.Render("✦ epiphany")
	}
	if m.own(t) {
		head += m.styles.muted.Render(" · yours")
	}
	b.WriteString(head + "\n")
	if t.Title != "" {
		b.WriteString(m.styles.title.Render(t.Title) + "\n")
	}
	b.WriteString(m.styles.text.Render(t.Description) + "\n")

	meta := formatTime(t)
	if t.Tag != "" {
		meta += "  " + m.styles.tag.Render("#"+strings.TrimPrefix(t.Tag, "#"))
	}
	b.WriteString(m.styles.muted.Render(meta))
	return b.String()
}

func formatTime(t app.Thought) string {
	if t.Pending() {
		return "just now"
	}
	return t.CreatedAt.Local().Format(time.DateTime)
}

func (m Model) viewCompose() string {
	d := m.client.Composer.Draft()
	title := "New thought"
	if d.Editing() {
		title = "Edit thought"
	}
	epiphany := "[ ] epiphany"
	if d.Epiphany {
		epiphany = m.styles.epiphany.Render("[x] epiphany")
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render(title) + "\n\n")
	b.WriteString(m.compose.description.View() + "\n")
	b.WriteString(m.compose.title.View() + "\n")
	b.WriteString(m.compose.tag.View() + "\n")
	b.WriteString(epiphany + "\n")
	if m.compose.message != "" {
		b.WriteString("\n" + m.styles.err.Render(m.compose.message) + "\n")
	}
	if m.compose.busy {
		b.WriteString("\n" + m.styles.muted.Render("Saving…"))
	}
	return m.styles.modal.Render(b.String())
}

func (m Model) viewProfile() string {
	p := m.client.Profiles.Current()
	mine, epiphanies := app.Stats(m.client.Feed.Thoughts(), m.identity.UID)

	var b strings.Builder
	b.WriteString(m.styles.avatar(p) + "  " + m.styles.title.Render(p.Name()) + "\n")
	b.WriteString(m.styles.muted.Render(m.identity.Email) + "\n\n")
	if p.Bio != "" {
		b.WriteString(m.styles.text.Render(p.Bio) + "\n\n")
	}
	b.WriteString(fmt.Sprintf("%d thoughts · %d epiphanies", mine, epiphanies))
	return b.String()
}

func (m Model) viewProfileForm() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Edit profile") + "\n\n")
	for _, in := range m.profileForm.inputs {
		b.WriteString(in.View() + "\n")
	}
	if m.profileForm.message != "" {
		b.WriteString("\n" + m.styles.err.Render(m.profileForm.message))
	}
	return m.styles.modal.Render(b.String())
}

func (m Model) viewSettings() string {
	theme := "light"
	if m.profile.DarkMode {
		theme = "dark"
	}
	return m.styles.title.Render("Settings") + "\n\n" +
		"Theme: " + theme + m.styles.muted.Render("  (t to toggle)") + "\n" +
		"Signed in as " + m.identity.Email + m.styles.muted.Render("  (L to sign out)")
}

func (m Model) viewAbout() string {
	return m.styles.title.Render("About MyThoughts") + "\n\n" +
		m.styles.text.Render("A shared stream of short notes. Write a thought, mark the\n"+
			"ones that felt like an epiphany, and look up what others wrote\n"+
			"by searching for their email.")
}

func (m Model) viewAuth() string {
	title := "Sign in"
	if m.login.register {
		title = "Create account"
	}
	var b strings.Builder
	b.WriteString(m.styles.title.Render("MyThoughts · "+title) + "\n\n")
	b.WriteString(m.login.email.View() + "\n")
	b.WriteString(m.login.password.View() + "\n")
	if m.login.busy {
		b.WriteString("\n" + m.styles.muted.Render("Please wait…"))
	}
	if m.login.message != "" {
		b.WriteString("\n" + m.styles.err.Render(m.login.message))
	}
	b.WriteString("\n\n" + m.styles.muted.Render("enter submit · tab next field · ctrl+r sign in/create account · ctrl+c quit"))
	return m.styles.modal.Render(b.String())
}

func (m Model) help() string {
	switch m.mode {
	case modeCompose:
		return "ctrl+s save · ctrl+e epiphany · tab next field · esc discard"
	case modeConfirmDelete:
		return ""
	case modeSearch:
		return "enter search · esc cancel"
	case modeFilter:
		return "enter keep · esc clear"
	case modeEditProfile:
		return "enter save · tab next field · esc cancel"
	}
	switch m.client.Nav.Current() {
	case app.ViewProfile:
		return "e edit profile · esc back · L sign out · q quit"
	case app.ViewSettings:
		return "t toggle theme · esc back · L sign out · q quit"
	case app.ViewAbout:
		return "esc back · q quit"
	}
	return "n new · e edit · x epiphany · d delete · / author · f filter · ↑↓ move · L sign out · q quit"
}
