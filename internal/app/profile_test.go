package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mythoughts/internal/backend"
)

func TestProfiles_SaveUpsertsMerge(t *testing.T) {
	fx := newFixture(t)
	fx.client.Start(t.Context())
	defer fx.client.Close()
	id := fx.signIn(t, "ana@example.com")
	fx.store.Seed(backend.Users, id.UID, backend.Fields{"darkMode": true})

	prof, err := fx.client.Profiles.Save(t.Context(), ProfileEdit{DisplayName: "Ana", Bio: "hi", ProfileImage: "😊"})
	require.NoError(t, err)
	assert.Equal(t, "Ana", prof.Name())

	doc, err := fx.store.Get(t.Context(), backend.Users, id.UID)
	require.NoError(t, err)
	stored, err := decodeProfile(doc)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", stored.Email)
	assert.Equal(t, "hi", stored.Bio)
	assert.True(t, stored.DarkMode, "merge keeps fields it does not name")

	writes := fx.store.Writes()
	require.Len(t, writes, 1)
	assert.Equal(t, "upsert", writes[0].Op)
	assert.Equal(t, any(backend.ServerTimestamp), writes[0].Fields["updatedAt"])
}

func TestProfiles_SaveRequiresIdentity(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.client.Profiles.Save(t.Context(), ProfileEdit{DisplayName: "x"})

	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, fx.store.Writes())
}

func TestProfiles_SaveFailure(t *testing.T) {
	fx := newFixture(t)
	fx.signIn(t, "ana@example.com")
	fx.store.FailNext("upsert", errors.New("denied"))

	_, err := fx.client.Profiles.Save(t.Context(), ProfileEdit{DisplayName: "x"})

	var be *BackendError
	assert.ErrorAs(t, err, &be)
}

func TestProfiles_HydrateReadFailureFallsBackToDefaults(t *testing.T) {
	fx := newFixture(t)
	fx.store.FailNext("get", errors.New("timeout"))

	prof, err := fx.client.Profiles.Hydrate(t.Context(), backend.Identity{UID: "u1", Email: "zoe@example.com"})

	assert.Error(t, err)
	assert.Equal(t, Profile{ID: "u1", Email: "zoe@example.com"}, prof)
}

func TestProfiles_ToggleThemePersists(t *testing.T) {
	fx := newFixture(t)
	id := fx.signIn(t, "ana@example.com")

	dark, err := fx.client.Profiles.ToggleTheme(t.Context())
	require.NoError(t, err)
	assert.True(t, dark)

	fx.store.FailNext("upsert", errors.New("offline"))
	dark, err = fx.client.Profiles.ToggleTheme(t.Context())
	require.NoError(t, err, "a failed save only logs")
	assert.False(t, dark)
	assert.False(t, fx.client.Profiles.Current().DarkMode)

	doc, err := fx.store.Get(t.Context(), backend.Users, id.UID)
	require.NoError(t, err)
	stored, err := decodeProfile(doc)
	require.NoError(t, err)
	assert.True(t, stored.DarkMode)
}

func TestStats(t *testing.T) {
	feed := []Thought{
		{CreatedBy: Author{UID: "me"}, Epiphany: true},
		{CreatedBy: Author{UID: "me"}},
		{CreatedBy: Author{UID: "other"}, Epiphany: true},
	}

	mine, epiphanies := Stats(feed, "me")

	assert.Equal(t, 2, mine)
	assert.Equal(t, 1, epiphanies)
}

func TestAvatarHelpers(t *testing.T) {
	assert.Equal(t, "?", Initials(""))
	assert.Equal(t, "Z", Initials("zoe@example.com"))
	assert.Equal(t, "#999", AvatarColor(""))
	assert.Equal(t, AvatarColor("zoe@a.com"), AvatarColor("zed@b.com"))
	assert.Equal(t, "zoe", DisplayName("zoe@example.com", "Unknown"))
	assert.Equal(t, "Unknown", DisplayName("", "Unknown"))
}

func TestNavigator_MenuClearsSearch(t *testing.T) {
	fx := newFixture(t)
	seedAuthors(t, fx.store)
	_, err := fx.client.Search.Lookup(t.Context(), "a")
	require.NoError(t, err)

	fx.client.Nav.Go(ViewAbout)
	assert.Equal(t, ViewAbout, fx.client.Nav.Current())
	assert.False(t, fx.client.Search.Active())

	fx.client.Nav.Back()
	assert.Equal(t, ViewFeed, fx.client.Nav.Current())
	assert.Equal(t, "feed", fx.client.Nav.Current().String())
}
