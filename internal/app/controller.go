package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/bjarke-xyz/apptrack/internal/domain"
	"github.com/samber/lo"
)

// AuthFlow is the part of the sign-in flow the controller drives.
type AuthFlow interface {
	SignIn(ctx context.Context) error
	SignOut() error
	Restore() error
}

// State is the UI-observable snapshot the presentation layer renders.
type State struct {
	Identity     *domain.Identity
	StatusFilter domain.Status
	Records      []domain.Application
	Loading      bool
	Saving       bool
	Error        string
}

// Controller coordinates the session flow and the application repository and
// owns all UI-observable state. One logical operation runs at a time; the
// busy flags exist for the presentation layer to disable duplicate
// submission, not as enforcement.
type Controller struct {
	logger   *slog.Logger
	flow     AuthFlow
	identity domain.IdentityResolver
	apps     domain.ApplicationRepository

	// actionMu serializes logical operations, stateMu guards snapshots so
	// rendering never blocks behind an in-flight action.
	actionMu sync.Mutex
	stateMu  sync.Mutex
	state    State
}

func New(logger *slog.Logger, flow AuthFlow, identity domain.IdentityResolver, apps domain.ApplicationRepository) *Controller {
	return &Controller{
		logger:   logger,
		flow:     flow,
		identity: identity,
		apps:     apps,
		state: State{
			StatusFilter: domain.StatusPending,
			Records:      make([]domain.Application, 0),
		},
	}
}

// State returns a copy of the current UI state.
func (c *Controller) State() State {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	state := c.state
	state.Records = make([]domain.Application, len(c.state.Records))
	copy(state.Records, c.state.Records)
	return state
}

func (c *Controller) update(fn func(s *State)) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	fn(&c.state)
}

// Startup restores any persisted session and, when signed in, loads the
// default filter's records.
func (c *Controller) Startup(ctx context.Context) {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	c.update(func(s *State) { s.Loading = true; s.Error = "" })
	defer c.update(func(s *State) { s.Loading = false })

	if err := c.flow.Restore(); err != nil {
		c.fail("failed to restore session", err)
		return
	}
	if err := c.resolveIdentity(ctx); err != nil {
		c.fail("failed to resolve identity", err)
		return
	}
	if c.State().Identity == nil {
		return
	}
	if err := c.refetch(ctx); err != nil {
		c.fail("failed to load applications", err)
	}
}

// SignIn runs the interactive sign-in and refreshes the visible list.
func (c *Controller) SignIn(ctx context.Context) {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	c.update(func(s *State) { s.Loading = true; s.Error = "" })
	defer c.update(func(s *State) { s.Loading = false })

	if err := c.flow.SignIn(ctx); err != nil {
		c.fail("sign-in failed", err)
		return
	}
	if err := c.resolveIdentity(ctx); err != nil {
		c.fail("failed to resolve identity", err)
		return
	}
	if err := c.refetch(ctx); err != nil {
		c.fail("failed to load applications", err)
	}
}

// SignOut clears identity and records unconditionally, even when clearing
// local state fails.
func (c *Controller) SignOut() {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	c.update(func(s *State) { s.Error = "" })

	err := c.flow.SignOut()
	c.update(func(s *State) {
		s.Identity = nil
		s.Records = make([]domain.Application, 0)
	})
	if err != nil {
		c.fail("sign-out failed", err)
	}
}

// Add creates an application and re-fetches the current filter's list.
func (c *Controller) Add(ctx context.Context, company string, role string, url string) {
	c.mutate(ctx, "create", func() error {
		_, err := c.apps.Create(ctx, domain.NewApplication{Company: company, Role: role, URL: url})
		return err
	})
}

// Edit rewrites an application's fields and re-fetches the list.
func (c *Controller) Edit(ctx context.Context, id string, company string, role string, url string) {
	c.mutate(ctx, "update", func() error {
		return c.apps.UpdateFields(ctx, id, domain.ApplicationUpdate{Company: company, Role: role, URL: url})
	})
}

// SetStatus moves an application to another status partition.
func (c *Controller) SetStatus(ctx context.Context, id string, status domain.Status) {
	c.mutate(ctx, "re-status", func() error {
		return c.apps.UpdateStatus(ctx, id, status)
	})
}

// Delete removes an application permanently.
func (c *Controller) Delete(ctx context.Context, id string) {
	c.mutate(ctx, "delete", func() error {
		return c.apps.Delete(ctx, id)
	})
}

// mutate is the uniform mutation pattern: busy flag on, perform, re-fetch on
// success, capture the failure otherwise, busy flag always cleared.
func (c *Controller) mutate(ctx context.Context, op string, fn func() error) {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	c.update(func(s *State) { s.Saving = true; s.Error = "" })
	defer c.update(func(s *State) { s.Saving = false })

	if err := fn(); err != nil {
		c.fail("failed to "+op+" application", err)
		return
	}
	if err := c.refetch(ctx); err != nil {
		c.fail("failed to refresh applications", err)
	}
}

// SetFilter switches the status partition and re-fetches immediately.
func (c *Controller) SetFilter(ctx context.Context, status domain.Status) {
	c.actionMu.Lock()
	defer c.actionMu.Unlock()
	c.update(func(s *State) {
		s.StatusFilter = status
		s.Loading = true
		s.Error = ""
	})
	defer c.update(func(s *State) { s.Loading = false })

	if err := c.refetch(ctx); err != nil {
		c.fail("failed to load applications", err)
	}
}

// Visible applies the free-text filter over the fetched page. It is a pure
// view transform: no network call, and Records itself is untouched.
func (c *Controller) Visible(query string) []domain.Application {
	records := c.State().Records
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return records
	}
	return lo.Filter(records, func(app domain.Application, _ int) bool {
		if strings.Contains(strings.ToLower(app.Company), query) {
			return true
		}
		if strings.Contains(strings.ToLower(app.Role), query) {
			return true
		}
		return app.URL != nil && strings.Contains(strings.ToLower(*app.URL), query)
	})
}

func (c *Controller) resolveIdentity(ctx context.Context) error {
	identity, err := c.identity.CurrentUser(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		// No active session: signed out, not an error.
		c.update(func(s *State) { s.Identity = nil })
		return nil
	}
	if err != nil {
		return err
	}
	c.update(func(s *State) { s.Identity = &identity })
	return nil
}

func (c *Controller) refetch(ctx context.Context) error {
	filter := c.State().StatusFilter
	records, err := c.apps.ListByStatus(ctx, filter)
	if err != nil {
		return err
	}
	c.update(func(s *State) { s.Records = records })
	return nil
}

func (c *Controller) fail(msg string, err error) {
	c.logger.Error(msg, "error", err)
	c.update(func(s *State) { s.Error = userMessage(err) })
}

// userMessage maps the closed error taxonomy to what the popup shows.
func userMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "Company and role are required."
	case errors.Is(err, domain.ErrMissingID):
		return "No application selected."
	case errors.Is(err, domain.ErrAuthCancelled):
		return "Sign-in was cancelled."
	case errors.Is(err, domain.ErrMissingTokens):
		return "Sign-in failed: the provider response was incomplete."
	case errors.Is(err, domain.ErrRemote):
		return "The request was rejected. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}
