package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"mythoughts/internal/app"
)

// eventMsg carries a core event into the update loop.
type eventMsg struct{ ev app.Event }

type startedMsg struct{}

type signedInMsg struct{ err error }

type signedUpMsg struct{ err error }

type signedOutMsg struct{ err error }

// The messages below complete work started inside a session and are
// dropped when the session changed meanwhile.

type submittedMsg struct {
	epoch uint64
	err   error
}

type toggledMsg struct {
	epoch uint64
	err   error
}

type deletedMsg struct {
	epoch uint64
	err   error
}

type searchedMsg struct {
	epoch uint64
	res   app.SearchResult
	err   error
}

type profileSavedMsg struct {
	epoch   uint64
	profile app.Profile
	err     error
}

type themeMsg struct {
	epoch uint64
	dark  bool
	err   error
}

func startCmd(ctx context.Context, c *app.Client) tea.Cmd {
	return func() tea.Msg {
		c.Start(ctx)
		return startedMsg{}
	}
}

func signInCmd(ctx context.Context, c *app.Client, email, password string) tea.Cmd {
	return func() tea.Msg {
		_, err := c.Credentials.SignIn(ctx, email, password)
		return signedInMsg{err: err}
	}
}

func signUpCmd(ctx context.Context, c *app.Client, email, password string) tea.Cmd {
	return func() tea.Msg {
		return signedUpMsg{err: c.Credentials.SignUp(ctx, email, password)}
	}
}

func signOutCmd(ctx context.Context, c *app.Client) tea.Cmd {
	return func() tea.Msg {
		return signedOutMsg{err: c.Credentials.SignOut(ctx)}
	}
}

func submitCmd(ctx context.Context, c *app.Client, epoch uint64) tea.Cmd {
	return func() tea.Msg {
		return submittedMsg{epoch: epoch, err: c.Dispatcher.Submit(ctx, c.Composer)}
	}
}

func toggleCmd(ctx context.Context, c *app.Client, epoch uint64, t app.Thought) tea.Cmd {
	return func() tea.Msg {
		return toggledMsg{epoch: epoch, err: c.Dispatcher.ToggleEpiphany(ctx, t)}
	}
}

func deleteCmd(ctx context.Context, req *app.DeleteRequest, epoch uint64) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{epoch: epoch, err: req.Confirm(ctx)}
	}
}

func searchCmd(ctx context.Context, c *app.Client, epoch uint64, q string) tea.Cmd {
	return func() tea.Msg {
		res, err := c.Search.Lookup(ctx, q)
		return searchedMsg{epoch: epoch, res: res, err: err}
	}
}

func saveProfileCmd(ctx context.Context, c *app.Client, epoch uint64, edit app.ProfileEdit) tea.Cmd {
	return func() tea.Msg {
		p, err := c.Profiles.Save(ctx, edit)
		return profileSavedMsg{epoch: epoch, profile: p, err: err}
	}
}

func themeCmd(ctx context.Context, c *app.Client, epoch uint64) tea.Cmd {
	return func() tea.Msg {
		dark, err := c.Profiles.ToggleTheme(ctx)
		return themeMsg{epoch: epoch, dark: dark, err: err}
	}
}
