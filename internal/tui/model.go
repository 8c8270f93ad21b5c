// Package tui is the terminal front end of the client core.
package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"mythoughts/internal/app"
	"mythoughts/internal/backend"
)

type screen int

const (
	screenLoading screen = iota
	screenAuth
	screenMain
)

type mode int

const (
	modeBrowse mode = iota
	modeCompose
	modeConfirmDelete
	modeSearch
	modeFilter
	modeEditProfile
)

type Model struct {
	ctx    context.Context
	client *app.Client
	log    *zap.Logger

	width, height int
	screen        screen
	mode          mode

	epoch    uint64
	identity backend.Identity
	profile  app.Profile
	feedErr  string
	status   string
	statusOK bool

	cursor   int
	filter   string
	deleting *app.DeleteRequest

	login       loginForm
	compose     composeForm
	search      textinput.Model
	filterInput textinput.Model
	profileForm profileForm
	list        viewport.Model
	styles      styles
}

func New(ctx context.Context, client *app.Client, log *zap.Logger) Model {
	search := textinput.New()
	search.Prompt = "author email: "
	search.Placeholder = "prefix"

	filter := textinput.New()
	filter.Prompt = "filter: "
	filter.Placeholder = "title, text or tag"

	return Model{
		ctx:         ctx,
		client:      client,
		log:         log,
		login:       newLoginForm(),
		search:      search,
		filterInput: filter,
		list:        viewport.New(80, 20),
		styles:      newStyles(false),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, startCmd(m.ctx, m.client))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.list.Width = msg.Width
		m.list.Height = max(3, msg.Height-8)
		return m, nil

	case eventMsg:
		return m.onEvent(msg.ev), nil

	case startedMsg:
		if m.screen == screenLoading {
			m.screen = screenAuth
		}
		return m, nil

	case signedInMsg:
		m.login.busy = false
		if msg.err != nil {
			m.login.message = app.UserMessage(msg.err)
		}
		return m, nil

	case signedUpMsg:
		m.login.busy = false
		if msg.err != nil {
			m.login.message = app.UserMessage(msg.err)
			return m, nil
		}
		m.login.register = false
		m.login.password.SetValue("")
		m.login.message = "Account created. Please sign in."
		return m, nil

	case signedOutMsg:
		if msg.err != nil {
			m.setStatus(app.UserMessage(msg.err), false)
		}
		return m, nil

	case submittedMsg:
		if msg.epoch != m.epoch {
			return m, nil
		}
		if lostSession(msg.err) {
			return m.signedOut(), nil
		}
		m.compose.busy = false
		if m.client.Composer.Visible() {
			m.compose.message = m.client.Composer.Message()
			if m.compose.message == "" && msg.err != nil {
				m.compose.message = app.UserMessage(msg.err)
			}
			return m, nil
		}
		m.mode = modeBrowse
		if msg.err != nil {
			m.setStatus(app.UserMessage(msg.err), false)
		} else {
			m.setStatus(m.client.Composer.Message(), true)
		}
		return m.refresh(), nil

	case toggledMsg:
		if msg.epoch != m.epoch || msg.err == nil {
			return m, nil
		}
		if lostSession(msg.err) {
			return m.signedOut(), nil
		}
		m.setStatus(app.UserMessage(msg.err), false)
		return m, nil

	case deletedMsg:
		if msg.epoch != m.epoch {
			return m, nil
		}
		if lostSession(msg.err) {
			return m.signedOut(), nil
		}
		if msg.err != nil {
			m.setStatus(app.UserMessage(msg.err), false)
		} else {
			m.setStatus("Thought deleted.", true)
		}
		return m, nil

	case searchedMsg:
		if msg.epoch != m.epoch {
			return m, nil
		}
		m.cursor = 0
		switch {
		case errors.Is(msg.err, app.ErrNotFound):
			m.setStatus("No user found with that email.", false)
		case msg.err != nil:
			m.setStatus(app.UserMessage(msg.err), false)
		case msg.res.Query != "":
			m.setStatus("Showing thoughts by "+msg.res.User.Name()+". Esc to clear.", true)
		}
		return m.refresh(), nil

	case profileSavedMsg:
		if msg.epoch != m.epoch {
			return m, nil
		}
		if lostSession(msg.err) {
			return m.signedOut(), nil
		}
		m.profileForm.busy = false
		if msg.err != nil {
			m.profileForm.message = app.UserMessage(msg.err)
			return m, nil
		}
		m.profile = msg.profile
		m.mode = modeBrowse
		m.setStatus("Profile updated successfully!", true)
		return m, nil

	case themeMsg:
		if msg.epoch != m.epoch {
			return m, nil
		}
		if lostSession(msg.err) {
			return m.signedOut(), nil
		}
		if msg.err != nil {
			m.setStatus(app.UserMessage(msg.err), false)
			return m, nil
		}
		m.profile.DarkMode = msg.dark
		m.styles = newStyles(msg.dark)
		return m.refresh(), nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.screen {
		case screenAuth:
			return m.updateAuth(msg)
		case screenMain:
			return m.updateMain(msg)
		}
		return m, nil
	}

	return m.forward(msg)
}

// forward passes non-key messages such as cursor blinks to the focused
// widget.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch {
	case m.screen == screenAuth:
		cmd = m.login.update(msg)
	case m.mode == modeCompose:
		cmd = m.compose.update(msg, m.client.Composer)
	case m.mode == modeEditProfile:
		cmd = m.profileForm.update(msg)
	case m.mode == modeSearch:
		m.search, cmd = m.search.Update(msg)
	case m.mode == modeFilter:
		m.filterInput, cmd = m.filterInput.Update(msg)
	}
	return m, cmd
}

func (m Model) onEvent(ev app.Event) Model {
	switch ev := ev.(type) {
	case app.SessionStarted:
		m.epoch = ev.Epoch
		m.identity = ev.Identity
		m.screen = screenMain
		m.mode = modeBrowse
		m.cursor, m.filter = 0, ""
		m.feedErr, m.status = "", ""
		m.login = newLoginForm()
	case app.SessionEnded:
		m.epoch = ev.Epoch
		m = m.signedOut()
	case app.ProfileLoaded:
		if ev.Epoch != m.epoch {
			return m
		}
		m.profile = ev.Profile
		m.styles = newStyles(ev.Profile.DarkMode)
	case app.FeedUpdated:
		m.feedErr = ""
	case app.FeedFailed:
		m.feedErr = app.UserMessage(ev.Err)
	}
	return m.refresh()
}

// signedOut shows the sign-in screen with no session state left behind.
func (m Model) signedOut() Model {
	m.identity = backend.Identity{}
	m.profile = app.Profile{}
	m.styles = newStyles(false)
	m.screen = screenAuth
	m.mode = modeBrowse
	m.deleting = nil
	m.compose.busy, m.profileForm.busy = false, false
	m.feedErr, m.status = "", ""
	return m
}

// lostSession is true for completions that found no signed-in user.
func lostSession(err error) bool {
	return errors.Is(err, app.ErrUnauthenticated)
}

func (m *Model) setStatus(s string, ok bool) {
	m.status, m.statusOK = s, ok
}

// displayed is the list the feed area renders.
func (m Model) displayed() []app.Thought {
	return app.FilterThoughts(m.client.Displayed(), m.filter)
}

func (m Model) selected() (app.Thought, bool) {
	list := m.displayed()
	if m.cursor < 0 || m.cursor >= len(list) {
		return app.Thought{}, false
	}
	return list[m.cursor], true
}

func (m Model) own(t app.Thought) bool {
	return t.CreatedBy.UID != "" && t.CreatedBy.UID == m.identity.UID
}

// refresh clamps the cursor and rebuilds the list viewport.
func (m Model) refresh() Model {
	n := len(m.displayed())
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	content, offset := m.renderList()
	m.list.SetContent(content)
	if offset < m.list.YOffset || offset >= m.list.YOffset+m.list.Height {
		m.list.SetYOffset(offset)
	}
	return m
}
