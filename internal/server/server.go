package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/bjarke-xyz/apptrack/internal/app"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// server renders the popup and translates its form posts into controller
// actions. It carries no state of its own.
type server struct {
	logger *slog.Logger
	ctrl   *app.Controller
}

func NewServer(logger *slog.Logger, ctrl *app.Controller) *server {
	return &server{
		logger: logger,
		ctrl:   ctrl,
	}
}

func (s *server) Server(port int) *http.Server {
	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.routes(),
	}
}

func (s *server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Get("/up", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "up!")
	})

	r.Get("/", s.handleGetPopup)
	r.Post("/signin", s.handleSignIn)
	r.Post("/signout", s.handleSignOut)
	r.Post("/filter", s.handleSetFilter)
	r.Post("/applications", s.handleCreateApplication)
	r.Post("/applications/{application-id}", s.handlePostApplication)
	return r
}
