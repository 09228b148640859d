package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bjarke-xyz/apptrack/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizationURL(t *testing.T) {
	client := NewAuthRestClient("https://project.example.co/", "anon-key")

	got := client.AuthorizationURL("google", "https://ext.example/callback")

	assert.Equal(t, "https://project.example.co/auth/v1/authorize?provider=google&redirect_to=https%3A%2F%2Fext.example%2Fcallback", got)
}

func TestSessionLifecycle(t *testing.T) {
	client := NewAuthRestClient("https://project.example.co", "anon-key")

	assert.Nil(t, client.Session())

	client.SetSession(domain.Session{AccessToken: "a", RefreshToken: "r"})
	session := client.Session()
	require.NotNil(t, session)
	assert.Equal(t, "a", session.AccessToken)

	// Session returns a copy, not the live value.
	session.AccessToken = "mutated"
	assert.Equal(t, "a", client.Session().AccessToken)

	client.ClearSession()
	assert.Nil(t, client.Session())
}

func TestCurrentUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/user", r.URL.Path)
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"user-1","email":"jane@example.com"}`))
	}))
	defer srv.Close()

	client := NewAuthRestClient(srv.URL, "anon-key")
	client.SetSession(domain.Session{AccessToken: "access-1", RefreshToken: "refresh-1"})

	identity, err := client.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{ID: "user-1", Email: "jane@example.com"}, identity)
}

func TestCurrentUserNoSession(t *testing.T) {
	client := NewAuthRestClient("https://project.example.co", "anon-key")

	_, err := client.CurrentUser(context.Background())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCurrentUserRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":401,"msg":"invalid token"}`))
	}))
	defer srv.Close()

	client := NewAuthRestClient(srv.URL, "anon-key")
	client.SetSession(domain.Session{AccessToken: "stale", RefreshToken: "stale"})

	_, err := client.CurrentUser(context.Background())
	require.ErrorIs(t, err, domain.ErrRemote)
	assert.Contains(t, err.Error(), "invalid token")
}
