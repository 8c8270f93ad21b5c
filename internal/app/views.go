package app

import "sync"

// View is one of the main screens.
type View int

const (
	ViewFeed View = iota
	ViewProfile
	ViewSettings
	ViewAbout
)

var viewNames = map[View]string{
	ViewFeed:     "feed",
	ViewProfile:  "profile",
	ViewSettings: "settings",
	ViewAbout:    "about",
}

func (v View) String() string {
	if s, ok := viewNames[v]; ok {
		return s
	}
	return "unknown"
}

// Navigator holds the current view. Every menu navigation clears an
// active author search; the secondary views only lead back to the feed.
type Navigator struct {
	search *AuthorSearch

	mu      sync.Mutex
	current View
}

func NewNavigator(search *AuthorSearch) *Navigator {
	return &Navigator{search: search}
}

func (n *Navigator) Current() View {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Go switches to v from the menu.
func (n *Navigator) Go(v View) {
	if _, ok := viewNames[v]; !ok {
		return
	}
	if n.search != nil {
		n.search.Clear()
	}
	n.mu.Lock()
	n.current = v
	n.mu.Unlock()
}

// Back returns to the feed without touching the search.
func (n *Navigator) Back() {
	n.mu.Lock()
	n.current = ViewFeed
	n.mu.Unlock()
}

// Reset is used on session change.
func (n *Navigator) Reset() { n.Back() }
