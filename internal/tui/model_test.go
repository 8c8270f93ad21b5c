package tui

import (
	"errors"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mythoughts/internal/app"
	"mythoughts/internal/backend"
	"mythoughts/internal/backend/memory"
)

type harness struct {
	t      *testing.T
	auth   *memory.Auth
	store  *memory.Store
	client *app.Client
	m      Model

	mu      sync.Mutex
	pending []app.Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t, auth: memory.NewAuth(), store: memory.NewStore()}
	h.client = app.NewClient(h.auth, h.store, zap.NewNop(), h.emit)
	t.Cleanup(h.client.Close)
	h.m = New(t.Context(), h.client, zap.NewNop())
	h.send(tea.WindowSizeMsg{Width: 100, Height: 40})
	h.run(startCmd(h.m.ctx, h.client))
	return h
}

func (h *harness) emit(ev app.Event) {
	h.mu.Lock()
	h.pending = append(h.pending, ev)
	h.mu.Unlock()
}

func (h *harness) flush() {
	for {
		h.mu.Lock()
		evs := h.pending
		h.pending = nil
		h.mu.Unlock()
		if len(evs) == 0 {
			return
		}
		for _, ev := range evs {
			model, _ := h.m.Update(eventMsg{ev: ev})
			h.m = model.(Model)
		}
	}
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	model, cmd := h.m.Update(msg)
	h.m = model.(Model)
	h.flush()
	return cmd
}

// run executes cmd the way the program would: events it emits are
// delivered before its completion message.
func (h *harness) run(cmd tea.Cmd) {
	h.t.Helper()
	require.NotNil(h.t, cmd)
	msg := cmd()
	h.flush()
	h.send(msg)
}

func (h *harness) key(s string) tea.Cmd {
	switch s {
	case "enter":
		return h.send(tea.KeyMsg{Type: tea.KeyEnter})
	case "esc":
		return h.send(tea.KeyMsg{Type: tea.KeyEsc})
	case "tab":
		return h.send(tea.KeyMsg{Type: tea.KeyTab})
	case "ctrl+s":
		return h.send(tea.KeyMsg{Type: tea.KeyCtrlS})
	}
	return h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) signIn(email string) backend.Identity {
	h.t.Helper()
	h.auth.Register(email, "secret1")
	h.run(signInCmd(h.m.ctx, h.client, email, "secret1"))
	id, ok := h.client.Session.Identity()
	require.True(h.t, ok)
	return id
}

func (h *harness) seed(uid, email, description string) {
	h.t.Helper()
	_, err := h.store.Add(h.t.Context(), backend.Thoughts, backend.Fields{
		"description": description,
		"createdBy":   backend.Fields{"uid": uid, "email": email},
		"createdAt":   backend.ServerTimestamp,
	})
	require.NoError(h.t, err)
	h.flush()
}

func TestStartShowsAuthScreen(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, screenAuth, h.m.screen)
	assert.Contains(t, h.m.View(), "Sign in")
}

func TestLoginForm(t *testing.T) {
	h := newHarness(t)
	h.auth.Register("ana@example.com", "secret1")

	h.key("ana@example.com")
	h.key("tab")
	h.key("wrong")
	cmd := h.key("enter")
	assert.True(t, h.m.login.busy)
	h.run(cmd)

	assert.Equal(t, screenAuth, h.m.screen)
	assert.Equal(t, memory.ErrInvalidCredentials.Error(), h.m.login.message)

	for range len("wrong") {
		h.send(tea.KeyMsg{Type: tea.KeyBackspace})
	}
	h.key("secret1")
	h.run(h.key("enter"))

	assert.Equal(t, screenMain, h.m.screen)
	assert.Equal(t, "ana@example.com", h.m.identity.Email)
}

func TestRegisterReturnsToSignIn(t *testing.T) {
	h := newHarness(t)
	h.send(tea.KeyMsg{Type: tea.KeyCtrlR})
	assert.True(t, h.m.login.register)

	h.key("new@example.com")
	h.key("tab")
	h.key("secret1")
	h.run(h.key("enter"))

	assert.Equal(t, screenAuth, h.m.screen)
	assert.False(t, h.m.login.register)
	assert.Equal(t, "Account created. Please sign in.", h.m.login.message)
}

func TestComposeAndSubmit(t *testing.T) {
	h := newHarness(t)
	h.signIn("ana@example.com")

	h.key("n")
	require.Equal(t, modeCompose, h.m.mode)
	h.key("hello world")
	assert.Equal(t, "hello world", h.client.Composer.Draft().Description)

	h.run(h.key("ctrl+s"))

	assert.Equal(t, modeBrowse, h.m.mode)
	assert.Equal(t, "Thought submitted successfully!", h.m.status)
	require.Len(t, h.m.displayed(), 1)
	assert.Contains(t, h.m.View(), "hello world")
}

func TestSubmitValidationKeepsComposer(t *testing.T) {
	h := newHarness(t)
	h.signIn("ana@example.com")

	h.key("n")
	h.run(h.key("ctrl+s"))

	assert.Equal(t, modeCompose, h.m.mode)
	assert.Equal(t, "Please write your thought.", h.m.compose.message)
	assert.Empty(t, h.store.Writes())
}

func TestStaleCompletionsAreDropped(t *testing.T) {
	h := newHarness(t)
	h.signIn("ana@example.com")
	epoch := h.m.epoch

	h.run(h.key("L"))
	require.Equal(t, screenAuth, h.m.screen)

	h.send(deletedMsg{epoch: epoch, err: errors.New("late failure")})
	h.send(themeMsg{epoch: epoch, dark: true})

	assert.Empty(t, h.m.status)
	assert.False(t, h.m.profile.DarkMode)
}

func TestDeleteConfirmation(t *testing.T) {
	h := newHarness(t)
	id := h.signIn("ana@example.com")
	h.seed(id.UID, id.Email, "mine")
	writes := len(h.store.Writes())

	h.key("d")
	require.Equal(t, modeConfirmDelete, h.m.mode)
	h.key("n")
	assert.Equal(t, modeBrowse, h.m.mode)
	assert.Len(t, h.store.Writes(), writes)

	h.key("d")
	h.run(h.key("y"))

	assert.Equal(t, "Thought deleted.", h.m.status)
	assert.Empty(t, h.m.displayed())
}

func TestOthersThoughtsAreReadOnly(t *testing.T) {
	h := newHarness(t)
	h.signIn("ana@example.com")
	h.seed("someone-else", "bob@example.com", "not mine")

	assert.Nil(t, h.key("d"))
	assert.Nil(t, h.key("x"))
	h.key("e")

	assert.Equal(t, modeBrowse, h.m.mode)
}

func TestEpiphanyToggle(t *testing.T) {
	h := newHarness(t)
	id := h.signIn("ana@example.com")
	h.seed(id.UID, id.Email, "mine")

	h.run(h.key("x"))

	require.Len(t, h.m.displayed(), 1)
	assert.True(t, h.m.displayed()[0].Epiphany)
}

func TestFilterNarrowsFeed(t *testing.T) {
	h := newHarness(t)
	id := h.signIn("ana@example.com")
	h.seed(id.UID, id.Email, "buy milk")
	h.seed(id.UID, id.Email, "read a book")

	h.key("f")
	h.key("milk")
	require.Len(t, h.m.displayed(), 1)

	h.key("esc")
	assert.Len(t, h.m.displayed(), 2)
}

func TestMenuAndTheme(t *testing.T) {
	h := newHarness(t)
	h.signIn("ana@example.com")

	h.key("4")
	assert.Contains(t, h.m.View(), "About MyThoughts")

	h.key("3")
	h.run(h.key("t"))
	assert.True(t, h.m.profile.DarkMode)
	assert.Contains(t, h.m.View(), "Theme: dark")

	h.key("esc")
	assert.Equal(t, app.ViewFeed, h.client.Nav.Current())
}

func TestProfileEdit(t *testing.T) {
	h := newHarness(t)
	h.signIn("ana@example.com")

	h.key("2")
	h.key("e")
	require.Equal(t, modeEditProfile, h.m.mode)
	h.key("Ana")
	h.run(h.key("enter"))

	assert.Equal(t, modeBrowse, h.m.mode)
	assert.Equal(t, "Ana", h.m.profile.Name())
	assert.Contains(t, h.m.View(), "Ana")
}

func TestUnauthenticatedCompletionReturnsToSignIn(t *testing.T) {
	tests := []struct {
		name string
		msg  func(epoch uint64) tea.Msg
	}{
		{name: "submit", msg: func(e uint64) tea.Msg { return submittedMsg{epoch: e, err: app.ErrUnauthenticated} }},
		{name: "toggle", msg: func(e uint64) tea.Msg { return toggledMsg{epoch: e, err: app.ErrUnauthenticated} }},
		{name: "delete", msg: func(e uint64) tea.Msg { return deletedMsg{epoch: e, err: app.ErrUnauthenticated} }},
		{name: "profile", msg: func(e uint64) tea.Msg { return profileSavedMsg{epoch: e, err: app.ErrUnauthenticated} }},
		{name: "theme", msg: func(e uint64) tea.Msg { return themeMsg{epoch: e, err: app.ErrUnauthenticated} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.signIn("ana@example.com")
			h.key("n")
			require.Equal(t, modeCompose, h.m.mode)

			h.send(tt.msg(h.m.epoch))

			assert.Equal(t, screenAuth, h.m.screen)
			assert.Equal(t, modeBrowse, h.m.mode)
			assert.Empty(t, h.m.identity.UID)
			assert.Contains(t, h.m.View(), "Sign in")
		})
	}
}
