package app

import "sync"

// Draft is the in-progress content of the compose form. An empty
// EditingID means a new thought.
type Draft struct {
	Description string
	Epiphany    bool
	Title       string
	Tag         string
	EditingID   string
}

// Editing reports whether submitting updates an existing thought.
func (d Draft) Editing() bool { return d.EditingID != "" }

// Composer owns the Draft and the visibility of the compose form.
type Composer struct {
	mu      sync.Mutex
	draft   Draft
	visible bool
	message string
}

func NewComposer() *Composer { return &Composer{} }

// BeginCreate opens an empty form.
func (c *Composer) BeginCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = Draft{}
	c.visible = true
	c.message = ""
}

// BeginEdit opens the form pre-filled with the mutable fields of t.
func (c *Composer) BeginEdit(t Thought) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = Draft{
		Description: t.Description,
		Epiphany:    t.Epiphany,
		Title:       t.Title,
		Tag:         t.Tag,
		EditingID:   t.ID,
	}
	c.visible = true
	c.message = ""
}

// Discard clears the draft and hides the form.
func (c *Composer) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = Draft{}
	c.visible = false
}

func (c *Composer) SetDescription(s string) {
	c.mu.Lock()
	c.draft.Description = s
	c.mu.Unlock()
}

func (c *Composer) SetTitle(s string) {
	c.mu.Lock()
	c.draft.Title = s
	c.mu.Unlock()
}

func (c *Composer) SetTag(s string) {
	c.mu.Lock()
	c.draft.Tag = s
	c.mu.Unlock()
}

func (c *Composer) ToggleEpiphany() {
	c.mu.Lock()
	c.draft.Epiphany = !c.draft.Epiphany
	c.mu.Unlock()
}

func (c *Composer) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

func (c *Composer) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// Message is the inline status line of the form.
func (c *Composer) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

func (c *Composer) setMessage(s string) {
	c.mu.Lock()
	c.message = s
	c.mu.Unlock()
}

// committed clears the form after a successful submit, unless the user
// already started a different draft.
func (c *Composer) committed(submitted Draft, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.message = message
	if c.draft != submitted {
		return
	}
	c.draft = Draft{}
	c.visible = false
}
