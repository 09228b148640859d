package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
)

// callbackPage re-posts the final redirect URL to the launcher, since the
// fragment carrying the tokens never reaches the server in the request line.
const callbackPage = `<!DOCTYPE html>
<html>
<body>
<p>Completing sign-in&hellip;</p>
<script>
fetch(window.location.pathname, {
	method: "POST",
	headers: {"Content-Type": "application/x-www-form-urlencoded"},
	body: "redirect_url=" + encodeURIComponent(window.location.href)
}).then(function () {
	document.body.textContent = "Signed in. You can close this tab.";
});
</script>
</body>
</html>`

// LoopbackLauncher is the interactive authentication surface for hosts that
// can open a browser: it serves the registered callback URL on loopback,
// opens the system browser at the authorization URL, and waits for the
// provider to redirect back.
type LoopbackLauncher struct {
	logger       *slog.Logger
	addr         string
	callbackPath string
	openBrowser  func(u string) error
}

func NewLoopbackLauncher(logger *slog.Logger, callbackURL string) (*LoopbackLauncher, error) {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing callback url: %w", err)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return &LoopbackLauncher{
		logger:       logger,
		addr:         u.Host,
		callbackPath: path,
		openBrowser:  openBrowser,
	}, nil
}

// Launch implements Launcher. It returns an empty URL when the context is
// cancelled before the provider redirects back.
func (l *LoopbackLauncher) Launch(ctx context.Context, authURL string) (string, error) {
	done := make(chan string, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+l.callbackPath, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, callbackPage)
	})
	mux.HandleFunc("POST "+l.callbackPath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
		select {
		case done <- r.FormValue("redirect_url"):
		default:
		}
	})

	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return "", fmt.Errorf("error listening on callback address: %w", err)
	}
	srv := &http.Server{Handler: mux}
	defer srv.Close()
	go func() {
		_ = srv.Serve(ln)
	}()

	l.logger.Info("opening browser for sign-in", "addr", l.addr)
	if err := l.openBrowser(authURL); err != nil {
		return "", fmt.Errorf("error opening browser: %w", err)
	}

	select {
	case finalURL := <-done:
		return finalURL, nil
	case <-ctx.Done():
		return "", nil
	}
}

func openBrowser(u string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", u).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", u).Start()
	default:
		return exec.Command("xdg-open", u).Start()
	}
}
