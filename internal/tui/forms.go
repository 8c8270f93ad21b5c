package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mythoughts/internal/app"
)

// loginForm is the sign-in and registration screen.
type loginForm struct {
	email    textinput.Model
	password textinput.Model
	focus    int
	register bool
	message  string
	busy     bool
}

func newLoginForm() loginForm {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Prompt = "Email    "
	email.CharLimit = 254
	email.Focus()

	pw := textinput.New()
	pw.Placeholder = "password"
	pw.Prompt = "Password "
	pw.EchoMode = textinput.EchoPassword
	pw.EchoCharacter = '•'

	return loginForm{email: email, password: pw}
}

func (f *loginForm) cycle() tea.Cmd {
	f.focus = (f.focus + 1) % 2
	if f.focus == 0 {
		f.password.Blur()
		return f.email.Focus()
	}
	f.email.Blur()
	return f.password.Focus()
}

func (f *loginForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	if f.focus == 0 {
		f.email, cmd = f.email.Update(msg)
	} else {
		f.password, cmd = f.password.Update(msg)
	}
	return cmd
}

func (f *loginForm) credentials() (string, string) {
	return f.email.Value(), f.password.Value()
}

// composeForm edits the composer's draft. Every change is written
// through to the composer so it stays the single source of the draft.
type composeForm struct {
	description textarea.Model
	title       textinput.Model
	tag         textinput.Model
	focus       int
	busy        bool
	message     string
}

func newComposeForm(d app.Draft, width int) composeForm {
	desc := textarea.New()
	desc.Placeholder = "What's on your mind?"
	desc.ShowLineNumbers = false
	desc.CharLimit = 2000
	desc.SetWidth(max(20, width-10))
	desc.SetHeight(5)
	desc.SetValue(d.Description)
	desc.Focus()

	title := textinput.New()
	title.Prompt = "Title "
	title.Placeholder = "optional"
	title.CharLimit = 120
	title.SetValue(d.Title)

	tag := textinput.New()
	tag.Prompt = "Tag   "
	tag.Placeholder = "#optional"
	tag.CharLimit = 33
	tag.SetValue(d.Tag)

	return composeForm{description: desc, title: title, tag: tag}
}

func (f *composeForm) cycle() tea.Cmd {
	f.focus = (f.focus + 1) % 3
	f.description.Blur()
	f.title.Blur()
	f.tag.Blur()
	switch f.focus {
	case 1:
		return f.title.Focus()
	case 2:
		return f.tag.Focus()
	default:
		return f.description.Focus()
	}
}

func (f *composeForm) update(msg tea.Msg, c *app.Composer) tea.Cmd {
	var cmd tea.Cmd
	switch f.focus {
	case 1:
		f.title, cmd = f.title.Update(msg)
		c.SetTitle(f.title.Value())
	case 2:
		f.tag, cmd = f.tag.Update(msg)
		c.SetTag(f.tag.Value())
	default:
		f.description, cmd = f.description.Update(msg)
		c.SetDescription(f.description.Value())
	}
	return cmd
}

// profileForm edits display name, bio and avatar glyph.
type profileForm struct {
	inputs  []textinput.Model
	focus   int
	message string
	busy    bool
}

func newProfileForm(p app.Profile) profileForm {
	mk := func(prompt, value, placeholder string, limit int) textinput.Model {
		in := textinput.New()
		in.Prompt = prompt
		in.Placeholder = placeholder
		in.CharLimit = limit
		in.SetValue(value)
		return in
	}
	f := profileForm{inputs: []textinput.Model{
		mk("Name   ", p.DisplayName, "display name", 60),
		mk("Bio    ", p.Bio, "a line about you", 280),
		mk("Avatar ", p.ProfileImage, "an emoji", 8),
	}}
	f.inputs[0].Focus()
	return f
}

func (f *profileForm) cycle() tea.Cmd {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + 1) % len(f.inputs)
	return f.inputs[f.focus].Focus()
}

func (f *profileForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *profileForm) edit() app.ProfileEdit {
	return app.ProfileEdit{
		DisplayName:  strings.TrimSpace(f.inputs[0].Value()),
		Bio:          strings.TrimSpace(f.inputs[1].Value()),
		ProfileImage: strings.TrimSpace(f.inputs[2].Value()),
	}
}
