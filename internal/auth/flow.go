package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/bjarke-xyz/apptrack/internal/domain"
)

// State identifies where the interactive sign-in currently is.
type State int

const (
	StateIdle State = iota
	StateAwaitingRedirect
	StateExtractingTokens
	StateEstablished
)

func (s State) String() string {
	switch s {
	case StateAwaitingRedirect:
		return "awaiting_provider_redirect"
	case StateExtractingTokens:
		return "token_extraction"
	case StateEstablished:
		return "session_established"
	}
	return "idle"
}

// Launcher opens the interactive external authentication surface at authURL
// and blocks until the provider redirects back, returning the final redirect
// URL. An empty URL means the user dismissed the flow.
type Launcher interface {
	Launch(ctx context.Context, authURL string) (string, error)
}

// SessionClient is the part of the backend client the flow drives.
type SessionClient interface {
	AuthorizationURL(provider string, redirectTo string) string
	SetSession(session domain.Session)
	ClearSession()
}

// Flow drives the OAuth redirect exchange against the identity provider and
// hands the resulting token pair to both durable storage and the backend
// client's in-memory session.
type Flow struct {
	logger   *slog.Logger
	client   SessionClient
	store    domain.SessionStore
	launcher Launcher

	provider    string
	callbackURL string

	state State
}

func NewFlow(logger *slog.Logger, client SessionClient, store domain.SessionStore, launcher Launcher, provider string, callbackURL string) *Flow {
	return &Flow{
		logger:      logger,
		client:      client,
		store:       store,
		launcher:    launcher,
		provider:    provider,
		callbackURL: callbackURL,
	}
}

func (f *Flow) State() State {
	return f.state
}

// SignIn runs the full exchange: open the external authentication surface,
// await the provider redirect, extract the tokens and establish the session.
func (f *Flow) SignIn(ctx context.Context) error {
	f.state = StateAwaitingRedirect
	authURL := f.client.AuthorizationURL(f.provider, f.callbackURL)

	finalURL, err := f.launcher.Launch(ctx, authURL)
	if err != nil {
		f.state = StateIdle
		return fmt.Errorf("error launching auth flow: %w", err)
	}
	if finalURL == "" {
		// The external surface returned no result: dismissed.
		f.state = StateIdle
		return domain.ErrAuthCancelled
	}

	return f.complete(finalURL)
}

func (f *Flow) complete(redirectURL string) error {
	f.state = StateExtractingTokens
	session, err := sessionFromRedirect(redirectURL)
	if err != nil {
		f.state = StateIdle
		return err
	}

	if err := f.store.Save(session); err != nil {
		f.state = StateIdle
		return fmt.Errorf("error persisting session: %w", err)
	}
	f.client.SetSession(session)
	f.state = StateEstablished
	f.logger.Info("session established", "provider", f.provider)
	return nil
}

// SignOut clears the stored session and drops the backend client's in-memory
// session. The issued tokens are not invalidated server-side.
func (f *Flow) SignOut() error {
	if err := f.store.Clear(); err != nil {
		return fmt.Errorf("error clearing stored session: %w", err)
	}
	f.client.ClearSession()
	f.state = StateIdle
	return nil
}

// Restore installs a previously persisted session into the backend client.
// It is a no-op when nothing usable is stored.
func (f *Flow) Restore() error {
	session, err := f.store.Load()
	if err != nil {
		return fmt.Errorf("error loading stored session: %w", err)
	}
	if session == nil {
		return nil
	}
	f.client.SetSession(*session)
	f.state = StateEstablished
	return nil
}

// sessionFromRedirect extracts the token pair from the redirect URL's
// fragment, which the provider encodes as query parameters.
func sessionFromRedirect(redirectURL string) (domain.Session, error) {
	u, err := url.Parse(redirectURL)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", domain.ErrMissingTokens, err)
	}
	params, err := url.ParseQuery(u.Fragment)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", domain.ErrMissingTokens, err)
	}

	session := domain.Session{
		AccessToken:  params.Get("access_token"),
		RefreshToken: params.Get("refresh_token"),
	}
	if !session.Valid() {
		return domain.Session{}, domain.ErrMissingTokens
	}
	return session, nil
}
