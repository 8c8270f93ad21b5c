package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"mythoughts/internal/app"
)

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.login.busy {
		return m, nil
	}
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		cmd := m.login.cycle()
		return m, cmd
	case "ctrl+r":
		m.login.register = !m.login.register
		m.login.message = ""
		return m, nil
	case "enter":
		email, pw := m.login.credentials()
		m.login.busy = true
		m.login.message = ""
		if m.login.register {
			return m, signUpCmd(m.ctx, m.client, email, pw)
		}
		return m, signInCmd(m.ctx, m.client, email, pw)
	}
	cmd := m.login.update(msg)
	return m, cmd
}

func (m Model) updateMain(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case modeCompose:
		return m.updateCompose(msg)
	case modeConfirmDelete:
		return m.updateConfirm(msg)
	case modeSearch:
		return m.updateSearch(msg)
	case modeFilter:
		return m.updateFilter(msg)
	case modeEditProfile:
		return m.updateProfileForm(msg)
	}

	key := msg.String()
	switch key {
	case "L":
		return m, signOutCmd(m.ctx, m.client)
	case "1":
		m.client.Nav.Go(app.ViewFeed)
		return m.refresh(), nil
	case "2":
		m.client.Nav.Go(app.ViewProfile)
		return m.refresh(), nil
	case "3":
		m.client.Nav.Go(app.ViewSettings)
		return m.refresh(), nil
	case "4":
		m.client.Nav.Go(app.ViewAbout)
		return m.refresh(), nil
	case "esc":
		if m.client.Search.Active() || m.filter != "" {
			m.client.Search.Clear()
			m.filter = ""
			m.filterInput.SetValue("")
			m.setStatus("", true)
			return m.refresh(), nil
		}
		m.client.Nav.Back()
		return m, nil
	}

	switch m.client.Nav.Current() {
	case app.ViewFeed:
		return m.updateFeed(key)
	case app.ViewProfile:
		if key == "e" {
			m.profileForm = newProfileForm(m.client.Profiles.Current())
			m.mode = modeEditProfile
		}
	case app.ViewSettings:
		if key == "t" {
			return m, themeCmd(m.ctx, m.client, m.epoch)
		}
	}
	if key == "q" {
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateFeed(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return m, tea.Quit
	case "up", "k":
		m.cursor--
		return m.refresh(), nil
	case "down", "j":
		m.cursor++
		return m.refresh(), nil
	case "n":
		m.client.Composer.BeginCreate()
		m.compose = newComposeForm(m.client.Composer.Draft(), m.width)
		m.mode = modeCompose
		return m, nil
	case "/":
		m.search.SetValue("")
		m.mode = modeSearch
		cmd := m.search.Focus()
		return m, cmd
	case "f":
		m.filterInput.SetValue(m.filter)
		m.mode = modeFilter
		cmd := m.filterInput.Focus()
		return m, cmd
	}

	t, ok := m.selected()
	if !ok || !m.own(t) {
		return m, nil
	}
	switch key {
	case "e":
		m.client.Composer.BeginEdit(t)
		m.compose = newComposeForm(m.client.Composer.Draft(), m.width)
		m.mode = modeCompose
	case " ", "x":
		return m, toggleCmd(m.ctx, m.client, m.epoch, t)
	case "d":
		m.deleting = m.client.Dispatcher.RequestDelete(t.ID)
		m.mode = modeConfirmDelete
	}
	return m, nil
}

func (m Model) updateCompose(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.compose.busy {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.client.Composer.Discard()
		m.mode = modeBrowse
		return m, nil
	case "tab":
		cmd := m.compose.cycle()
		return m, cmd
	case "ctrl+e":
		m.client.Composer.ToggleEpiphany()
		return m, nil
	case "ctrl+s":
		m.compose.busy = true
		m.compose.message = ""
		return m, submitCmd(m.ctx, m.client, m.epoch)
	}
	cmd := m.compose.update(msg, m.client.Composer)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	req := m.deleting
	switch msg.String() {
	case "y", "enter":
		m.deleting = nil
		m.mode = modeBrowse
		if req != nil {
			return m, deleteCmd(m.ctx, req, m.epoch)
		}
	case "n", "esc":
		if req != nil {
			req.Cancel()
		}
		m.deleting = nil
		m.mode = modeBrowse
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.Blur()
		m.mode = modeBrowse
		return m, nil
	case "enter":
		q := strings.TrimSpace(m.search.Value())
		m.search.Blur()
		m.mode = modeBrowse
		return m, searchCmd(m.ctx, m.client, m.epoch, q)
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filter = ""
		m.filterInput.Blur()
		m.mode = modeBrowse
		return m.refresh(), nil
	case "enter":
		m.filterInput.Blur()
		m.mode = modeBrowse
		return m, nil
	}
	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.filter = m.filterInput.Value()
	m.cursor = 0
	return m.refresh(), cmd
}

func (m Model) updateProfileForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.profileForm.busy {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		return m, nil
	case "tab":
		cmd := m.profileForm.cycle()
		return m, cmd
	case "enter", "ctrl+s":
		m.profileForm.busy = true
		m.profileForm.message = ""
		return m, saveProfileCmd(m.ctx, m.client, m.epoch, m.profileForm.edit())
	}
	cmd := m.profileForm.update(msg)
	return m, cmd
}
