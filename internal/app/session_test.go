package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mythoughts/internal/backend"
)

func isSessionEnded(ev Event) bool   { _, ok := ev.(SessionEnded); return ok }
func isSessionStarted(ev Event) bool { _, ok := ev.(SessionStarted); return ok }

func TestSession_InitialLoadWithoutIdentity(t *testing.T) {
	fx := newFixture(t)

	fx.client.Start(t.Context())
	defer fx.client.Close()

	assert.Equal(t, 1, fx.events.count(isSessionEnded), "UI is sent to the sign-in view")
	assert.Equal(t, 0, fx.store.SubscribeCalls())
	_, ok := fx.client.Session.Identity()
	assert.False(t, ok)
}

func TestSession_SignInAttachesFeedAndHydratesDefaults(t *testing.T) {
	fx := newFixture(t)
	fx.client.Start(t.Context())
	defer fx.client.Close()

	id := fx.signIn(t, "ana@example.com")

	assert.Equal(t, 1, fx.store.SubscribeCalls())
	assert.Equal(t, 1, fx.store.ActiveSubscriptions())
	assert.True(t, fx.client.Feed.Attached())

	prof := fx.client.Profiles.Current()
	assert.Equal(t, Profile{ID: id.UID, Email: "ana@example.com"}, prof, "missing profile document yields defaults")
	assert.Equal(t, "ana", prof.Name())
	assert.Equal(t, "A", prof.Avatar())

	var loaded []ProfileLoaded
	for _, ev := range fx.events.all() {
		if pl, ok := ev.(ProfileLoaded); ok {
			loaded = append(loaded, pl)
		}
	}
	require.Len(t, loaded, 1)
	assert.Equal(t, fx.client.Session.Epoch(), loaded[0].Epoch)
}

func TestSession_HydratesStoredProfile(t *testing.T) {
	fx := newFixture(t)
	uid := fx.auth.Register("ana@example.com", "secret1")
	fx.store.Seed(backend.Users, uid, backend.Fields{
		"email":        "ana@example.com",
		"displayName":  "Ana B.",
		"bio":          "writes things",
		"profileImage": "🚀",
		"darkMode":     true,
	})
	fx.client.Start(t.Context())
	defer fx.client.Close()

	_, err := fx.auth.SignIn(t.Context(), "ana@example.com", "secret1")
	require.NoError(t, err)

	prof := fx.client.Profiles.Current()
	assert.Equal(t, "Ana B.", prof.Name())
	assert.Equal(t, "🚀", prof.Avatar())
	assert.True(t, prof.DarkMode)
}

func TestSession_SignOutDetachesExactlyOnce(t *testing.T) {
	fx := newFixture(t)
	fx.client.Start(t.Context())
	defer fx.client.Close()
	fx.signIn(t, "ana@example.com")
	fx.client.Composer.BeginCreate()
	fx.client.Composer.SetDescription("half written")
	fx.client.Nav.Go(ViewSettings)

	require.NoError(t, fx.auth.SignOut(t.Context()))
	require.NoError(t, fx.auth.SignOut(t.Context()))

	assert.Equal(t, 1, fx.store.UnsubscribeCalls())
	assert.Equal(t, 0, fx.store.ActiveSubscriptions())
	assert.False(t, fx.client.Feed.Attached())
	assert.False(t, fx.client.Composer.Visible())
	assert.Equal(t, ViewFeed, fx.client.Nav.Current())
	assert.Equal(t, Profile{}, fx.client.Profiles.Current())
	assert.Equal(t, 2, fx.events.count(isSessionEnded), "initial load plus one sign-out")
}

func TestSession_ReentryAttachesFreshSubscription(t *testing.T) {
	fx := newFixture(t)
	fx.client.Start(t.Context())
	defer fx.client.Close()

	fx.signIn(t, "ana@example.com")
	require.NoError(t, fx.auth.SignOut(t.Context()))
	fx.signIn(t, "bo@example.com")

	assert.Equal(t, 2, fx.store.SubscribeCalls())
	assert.Equal(t, 1, fx.store.UnsubscribeCalls())
	assert.Equal(t, 1, fx.store.ActiveSubscriptions())
	assert.Equal(t, 2, fx.events.count(isSessionStarted))
}

func TestSession_FeedFollowsStoreAfterSignIn(t *testing.T) {
	fx := newFixture(t)
	fx.client.Start(t.Context())
	defer fx.client.Close()
	fx.signIn(t, "ana@example.com")

	c := fx.client.Composer
	c.BeginCreate()
	c.SetDescription("first")
	require.NoError(t, fx.client.Dispatcher.Submit(t.Context(), c))
	c.BeginCreate()
	c.SetDescription("second")
	require.NoError(t, fx.client.Dispatcher.Submit(t.Context(), c))

	got := fx.client.Displayed()
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Description)
	assert.Equal(t, "first", got[1].Description)
	assert.False(t, got[0].Pending())

	require.NoError(t, fx.client.Dispatcher.RequestDelete(got[0].ID).Confirm(t.Context()))
	assert.Len(t, fx.client.Feed.Thoughts(), 1)
}

func TestSession_MutationAfterSignOutIsHarmless(t *testing.T) {
	fx := newFixture(t)
	fx.client.Start(t.Context())
	defer fx.client.Close()
	fx.signIn(t, "ana@example.com")
	epoch := fx.client.Session.Epoch()

	require.NoError(t, fx.auth.SignOut(t.Context()))

	assert.NotEqual(t, epoch, fx.client.Session.Epoch(), "late completions can detect the torn-down session")
	err := fx.client.Dispatcher.ToggleEpiphany(t.Context(), Thought{ID: "t1"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, fx.store.Writes())
}

func TestSession_SubscribeFailureIsReported(t *testing.T) {
	fx := newFixture(t)
	fx.store.FailNext("subscribe", errors.New("offline"))
	fx.client.Start(t.Context())
	defer fx.client.Close()

	fx.signIn(t, "ana@example.com")

	assert.Equal(t, 1, fx.events.count(func(ev Event) bool { _, ok := ev.(FeedFailed); return ok }))
	assert.False(t, fx.client.Feed.Attached())
}

func TestSession_CloseReleasesSubscription(t *testing.T) {
	fx := newFixture(t)
	fx.client.Start(t.Context())
	fx.signIn(t, "ana@example.com")

	fx.client.Close()
	fx.client.Close()

	assert.Equal(t, 0, fx.store.ActiveSubscriptions())
	assert.Equal(t, 1, fx.store.UnsubscribeCalls())
}
