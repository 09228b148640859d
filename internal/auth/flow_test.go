package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/bjarke-xyz/apptrack/internal/domain"
	"github.com/bjarke-xyz/apptrack/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLauncher struct {
	finalURL   string
	err        error
	launchedAt string
}

func (f *fakeLauncher) Launch(_ context.Context, authURL string) (string, error) {
	f.launchedAt = authURL
	return f.finalURL, f.err
}

type fakeClient struct {
	session *domain.Session
	cleared bool
}

func (f *fakeClient) AuthorizationURL(provider string, redirectTo string) string {
	return "https://provider.example/authorize?provider=" + provider + "&redirect_to=" + redirectTo
}

func (f *fakeClient) SetSession(session domain.Session) {
	f.session = &session
}

func (f *fakeClient) ClearSession() {
	f.session = nil
	f.cleared = true
}

func newTestFlow(t *testing.T, launcher Launcher) (*Flow, *fakeClient, domain.SessionStore) {
	t.Helper()
	store, err := storage.NewFileSessionStore(t.TempDir())
	require.NoError(t, err)
	client := &fakeClient{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewFlow(logger, client, store, launcher, "google", "https://ext.example/callback"), client, store
}

func TestSignIn(t *testing.T) {
	launcher := &fakeLauncher{finalURL: "https://ext.example/callback#access_token=a1&refresh_token=r1"}
	flow, client, store := newTestFlow(t, launcher)

	require.NoError(t, flow.SignIn(context.Background()))

	assert.Equal(t, StateEstablished, flow.State())
	assert.Contains(t, launcher.launchedAt, "provider=google")

	// Tokens are installed in-memory and persisted.
	require.NotNil(t, client.session)
	assert.Equal(t, domain.Session{AccessToken: "a1", RefreshToken: "r1"}, *client.session)
	stored, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, *client.session, *stored)
}

func TestSignInDismissed(t *testing.T) {
	flow, client, store := newTestFlow(t, &fakeLauncher{finalURL: ""})

	err := flow.SignIn(context.Background())
	require.ErrorIs(t, err, domain.ErrAuthCancelled)

	assert.Equal(t, StateIdle, flow.State())
	assert.Nil(t, client.session)
	stored, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestSignInMissingTokens(t *testing.T) {
	cases := []struct {
		name     string
		finalURL string
	}{
		{"no refresh token", "https://ext.example/callback#access_token=a1"},
		{"no access token", "https://ext.example/callback#refresh_token=r1"},
		{"empty fragment", "https://ext.example/callback"},
		{"tokens in query instead of fragment", "https://ext.example/callback?access_token=a1&refresh_token=r1"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			flow, client, _ := newTestFlow(t, &fakeLauncher{finalURL: tt.finalURL})

			err := flow.SignIn(context.Background())
			require.ErrorIs(t, err, domain.ErrMissingTokens)
			assert.Equal(t, StateIdle, flow.State())
			assert.Nil(t, client.session)
		})
	}
}

func TestSignOut(t *testing.T) {
	launcher := &fakeLauncher{finalURL: "https://ext.example/callback#access_token=a1&refresh_token=r1"}
	flow, client, store := newTestFlow(t, launcher)
	require.NoError(t, flow.SignIn(context.Background()))

	require.NoError(t, flow.SignOut())

	assert.Equal(t, StateIdle, flow.State())
	assert.Nil(t, client.session)
	assert.True(t, client.cleared)
	stored, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestRestore(t *testing.T) {
	flow, client, store := newTestFlow(t, &fakeLauncher{})
	require.NoError(t, store.Save(domain.Session{AccessToken: "a1", RefreshToken: "r1"}))

	require.NoError(t, flow.Restore())

	assert.Equal(t, StateEstablished, flow.State())
	require.NotNil(t, client.session)
	assert.Equal(t, "a1", client.session.AccessToken)
}

func TestRestoreNothingStored(t *testing.T) {
	flow, client, _ := newTestFlow(t, &fakeLauncher{})

	require.NoError(t, flow.Restore())

	assert.Equal(t, StateIdle, flow.State())
	assert.Nil(t, client.session)
}
