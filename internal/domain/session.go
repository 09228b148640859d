package domain

import "context"

// Session is the opaque bearer credential pair issued by the identity
// provider. No expiry is tracked locally; validity is the provider's concern.
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Valid reports whether both token fields are present. A session missing
// either field is treated as no session at all.
func (s Session) Valid() bool {
	return s.AccessToken != "" && s.RefreshToken != ""
}

// SessionStore persists the session token pair in durable storage under a
// fixed key. It is a pure persistence boundary: token contents are never
// inspected.
type SessionStore interface {
	Save(session Session) error
	// Load returns nil when nothing is stored or the stored value is malformed.
	Load() (*Session, error)
	Clear() error
}

type Identity struct {
	ID    string
	Email string
}

// IdentityResolver resolves the user behind the currently active session.
// It returns ErrNotFound when no session is active.
type IdentityResolver interface {
	CurrentUser(ctx context.Context) (Identity, error)
}
