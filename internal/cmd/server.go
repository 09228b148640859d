package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/bjarke-xyz/apptrack/internal/app"
	"github.com/bjarke-xyz/apptrack/internal/auth"
	"github.com/bjarke-xyz/apptrack/internal/repository"
	serverPkg "github.com/bjarke-xyz/apptrack/internal/server"
	"github.com/bjarke-xyz/apptrack/internal/service"
	"github.com/bjarke-xyz/apptrack/internal/storage"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func ServerCmd(ctx context.Context) error {
	godotenv.Load()
	port := 9090
	_port := os.Getenv("PORT")
	if _port != "" {
		port, _ = strconv.Atoi(_port)
	}
	logger := newLogger("popup")

	authClient := service.NewAuthRestClient(os.Getenv("SUPABASE_URL"), os.Getenv("SUPABASE_ANON_KEY"))

	sessionStore, err := storage.NewFileSessionStore(os.Getenv("STORAGE_DIR"))
	if err != nil {
		return fmt.Errorf("error creating session store: %w", err)
	}

	provider := envOrDefault("AUTH_PROVIDER", "google")
	// The callback URL is registered with the identity provider; the
	// launcher listens on it during sign-in.
	callbackURL := envOrDefault("AUTH_CALLBACK_URL", "http://localhost:9092/callback")
	launcher, err := auth.NewLoopbackLauncher(logger, callbackURL)
	if err != nil {
		return fmt.Errorf("error creating launcher: %w", err)
	}
	flow := auth.NewFlow(logger, authClient, sessionStore, launcher, provider, callbackURL)

	pool, err := newDatabasePool(ctx, 4)
	if err != nil {
		return fmt.Errorf("error creating db pool: %w", err)
	}
	appRepo := repository.NewPostgresApplication(pool, authClient)

	ctrl := app.New(logger, flow, authClient, appRepo)

	server := serverPkg.NewServer(logger, ctrl)
	srv := server.Server(port)

	// metrics
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		http.ListenAndServe(":9091", mux)
	}()

	go func() {
		_ = srv.ListenAndServe()
	}()

	ctrl.Startup(ctx)
	logger.Info("started server", slog.Int("port", port))
	<-ctx.Done()
	_ = srv.Shutdown(ctx)
	pool.Close()
	return nil
}
