package app

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"mythoughts/internal/backend"
)

// Profile is the denormalized display data of a user.
type Profile struct {
	ID           string `json:"-"`
	Email        string `json:"email,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	Bio          string `json:"bio,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
	DarkMode     bool   `json:"darkMode,omitempty"`
}

// Name is the display name, falling back to the local part of the email.
func (p Profile) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return DisplayName(p.Email, "User")
}

// Avatar is the chosen glyph or the email initial.
func (p Profile) Avatar() string {
	if p.ProfileImage != "" {
		return p.ProfileImage
	}
	return Initials(p.Email)
}

// ProfileEdit holds the editable profile fields.
type ProfileEdit struct {
	DisplayName  string
	Bio          string
	ProfileImage string
}

func decodeProfile(d backend.Document) (Profile, error) {
	var p Profile
	if err := d.DataTo(&p); err != nil {
		return Profile{}, err
	}
	p.ID = d.ID
	return p, nil
}

// Profiles keeps the signed-in user's profile.
type Profiles struct {
	auth  backend.AuthService
	store backend.DocumentStore
	log   *zap.Logger

	mu      sync.Mutex
	current Profile
}

func NewProfiles(auth backend.AuthService, store backend.DocumentStore, log *zap.Logger) *Profiles {
	return &Profiles{auth: auth, store: store, log: log}
}

// Hydrate reads the profile of id once. A missing document yields the
// defaults for id; it is not an error.
func (p *Profiles) Hydrate(ctx context.Context, id backend.Identity) (Profile, error) {
	prof := Profile{ID: id.UID, Email: id.Email}
	doc, err := p.store.Get(ctx, backend.Users, id.UID)
	switch {
	case errors.Is(err, backend.ErrNotFound):
	case err != nil:
		p.log.Error("profile read failed", zap.String("uid", id.UID), zap.Error(err))
		p.set(prof)
		return prof, backendErr("read profile", err)
	default:
		stored, derr := decodeProfile(doc)
		if derr != nil {
			p.log.Warn("undecodable profile", zap.String("uid", id.UID), zap.Error(derr))
			break
		}
		prof = stored
		prof.ID = id.UID
		if prof.Email == "" {
			prof.Email = id.Email
		}
	}
	p.set(prof)
	return prof, nil
}

// Current returns the cached profile.
func (p *Profiles) Current() Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Reset forgets the cached profile.
func (p *Profiles) Reset() { p.set(Profile{}) }

func (p *Profiles) set(prof Profile) {
	p.mu.Lock()
	p.current = prof
	p.mu.Unlock()
}

// Save merges the edit into the user's profile document, creating it on
// first save.
func (p *Profiles) Save(ctx context.Context, edit ProfileEdit) (Profile, error) {
	id, ok := p.auth.CurrentIdentity()
	if !ok {
		return Profile{}, ErrUnauthenticated
	}
	err := p.store.UpsertMerge(ctx, backend.Users, id.UID, backend.Fields{
		"displayName":  edit.DisplayName,
		"bio":          edit.Bio,
		"profileImage": edit.ProfileImage,
		"email":        id.Email,
		"updatedAt":    backend.ServerTimestamp,
	})
	if err != nil {
		p.log.Error("profile save failed", zap.String("uid", id.UID), zap.Error(err))
		return Profile{}, backendErr("save profile", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.current.ID = id.UID
	p.current.Email = id.Email
	p.current.DisplayName = edit.DisplayName
	p.current.Bio = edit.Bio
	p.current.ProfileImage = edit.ProfileImage
	return p.current, nil
}

// ToggleTheme flips the theme locally, then persists it. A failed write is
// logged and the local choice is kept.
func (p *Profiles) ToggleTheme(ctx context.Context) (bool, error) {
	id, ok := p.auth.CurrentIdentity()
	if !ok {
		return false, ErrUnauthenticated
	}
	p.mu.Lock()
	p.current.DarkMode = !p.current.DarkMode
	dark := p.current.DarkMode
	p.mu.Unlock()

	if err := p.store.UpsertMerge(ctx, backend.Users, id.UID, backend.Fields{"darkMode": dark}); err != nil {
		p.log.Error("failed to save dark mode preference", zap.Error(err))
	}
	return dark, nil
}

// Stats counts the thoughts of uid in feed and how many are epiphanies.
func Stats(feed []Thought, uid string) (mine, epiphanies int) {
	for _, t := range feed {
		if t.CreatedBy.UID != uid {
			continue
		}
		mine++
		if t.Epiphany {
			epiphanies++
		}
	}
	return mine, epiphanies
}

// Initials is the upper-cased first letter of email, or "?".
func Initials(email string) string {
	if email == "" {
		return "?"
	}
	r := []rune(email)
	return strings.ToUpper(string(r[0]))
}

var avatarColors = []string{"#C4A57B", "#B89968", "#A68A64", "#D4B896", "#8B7355"}

// AvatarColor picks a stable color from the first byte of email.
func AvatarColor(email string) string {
	if email == "" {
		return "#999"
	}
	return avatarColors[int(email[0])%len(avatarColors)]
}

// DisplayName is the local part of email, or fallback when email is empty.
func DisplayName(email, fallback string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return fallback
	}
	return local
}
