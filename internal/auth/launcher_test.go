package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLauncher(t *testing.T, callbackURL string) *LoopbackLauncher {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	launcher, err := NewLoopbackLauncher(logger, callbackURL)
	require.NoError(t, err)
	return launcher
}

func TestLoopbackLaunch(t *testing.T) {
	callbackURL := "http://127.0.0.1:19273/callback"
	launcher := newTestLauncher(t, callbackURL)
	launcher.openBrowser = func(u string) error {
		assert.Contains(t, u, "provider=google")
		return nil
	}

	result := make(chan string, 1)
	errs := make(chan error, 1)
	go func() {
		finalURL, err := launcher.Launch(context.Background(), "https://provider.example/authorize?provider=google")
		result <- finalURL
		errs <- err
	}()

	// The callback page is served while the provider redirect is pending.
	var resp *http.Response
	var err error
	require.Eventually(t, func() bool {
		resp, err = http.Get(callbackURL)
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "redirect_url")

	// The page re-posts the full redirect URL, fragment included.
	finalURL := callbackURL + "#access_token=a1&refresh_token=r1"
	form := url.Values{"redirect_url": {finalURL}}
	resp, err = http.Post(callbackURL, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, finalURL, <-result)
	require.NoError(t, <-errs)
}

func TestLoopbackLaunchCancelled(t *testing.T) {
	launcher := newTestLauncher(t, "http://127.0.0.1:19274/callback")
	launcher.openBrowser = func(u string) error { return nil }

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	finalURL, err := launcher.Launch(ctx, "https://provider.example/authorize")
	require.NoError(t, err)
	assert.Empty(t, finalURL)
}

func TestLoopbackLaunchBrowserError(t *testing.T) {
	launcher := newTestLauncher(t, "http://127.0.0.1:19275/callback")
	launcher.openBrowser = func(u string) error { return assert.AnError }

	_, err := launcher.Launch(context.Background(), "https://provider.example/authorize")
	require.Error(t, err)
}
