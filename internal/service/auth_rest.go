package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/bjarke-xyz/apptrack/internal/domain"
)

// AuthRestClient talks to the identity provider fronting the datastore over
// plain REST. It also owns the transient in-memory session: tokens installed
// with SetSession authenticate subsequent calls without a reload.
type AuthRestClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	mu      sync.Mutex
	session *domain.Session
}

func NewAuthRestClient(baseURL string, apiKey string) *AuthRestClient {
	return &AuthRestClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		// No client-side timeout; in-flight calls are only cancelled
		// through the caller's context.
		httpClient: &http.Client{},
	}
}

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("identity provider returned error: %v %v", e.Message, e.Code)
}

// AuthorizationURL builds the sign-in URL for the given provider, redirecting
// back to the callback URL registered with the extension host.
func (c *AuthRestClient) AuthorizationURL(provider string, redirectTo string) string {
	q := url.Values{}
	q.Set("provider", provider)
	q.Set("redirect_to", redirectTo)
	return c.baseURL + "/auth/v1/authorize?" + q.Encode()
}

// SetSession installs the token pair as the active in-memory session.
func (c *AuthRestClient) SetSession(session domain.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = &session
}

// ClearSession drops the in-memory session. It does not invalidate the
// issued tokens server-side.
func (c *AuthRestClient) ClearSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = nil
}

// Session returns a copy of the active session, or nil when signed out.
func (c *AuthRestClient) Session() *domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	session := *c.session
	return &session
}

type userResponse struct {
	ID    string         `json:"id"`
	Email string         `json:"email"`
	Error *ErrorResponse `json:"error"`
}

// CurrentUser resolves the user behind the active session from the identity
// provider. The identity is never cached beyond the call.
func (c *AuthRestClient) CurrentUser(ctx context.Context) (domain.Identity, error) {
	session := c.Session()
	if session == nil {
		return domain.Identity{}, fmt.Errorf("%w: no active session", domain.ErrNotFound)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+session.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()
	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Identity{}, fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		errResp := ErrorResponse{}
		if err := json.Unmarshal(respBytes, &errResp); err == nil && errResp.Message != "" {
			return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrRemote, errResp.Error())
		}
		return domain.Identity{}, fmt.Errorf("%w: identity provider returned status %v", domain.ErrRemote, resp.StatusCode)
	}

	response := userResponse{}
	if err := json.Unmarshal(respBytes, &response); err != nil {
		return domain.Identity{}, fmt.Errorf("error parsing response: %w", err)
	}
	if response.Error != nil {
		return domain.Identity{}, fmt.Errorf("%w: %v", domain.ErrRemote, response.Error.Error())
	}
	if response.ID == "" {
		return domain.Identity{}, fmt.Errorf("%w: no user in response", domain.ErrRemote)
	}

	return domain.Identity{ID: response.ID, Email: response.Email}, nil
}
