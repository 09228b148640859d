package server

import (
	"net/http"

	"github.com/bjarke-xyz/apptrack/internal/domain"
	"github.com/bjarke-xyz/apptrack/internal/server/html"
	"github.com/go-chi/chi/v5"
)

func (s *server) handleGetPopup(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	params := html.PopupParams{
		Title:    "Application Tracker",
		State:    s.ctrl.State(),
		Records:  s.ctrl.Visible(query),
		Query:    query,
		Statuses: domain.Statuses,
	}
	html.PopupPage(w, params)
}

func (s *server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	// Blocks until the external auth surface completes or the request is
	// abandoned.
	s.ctrl.SignIn(r.Context())
	redirectToPopup(w, r)
}

func (s *server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	s.ctrl.SignOut()
	redirectToPopup(w, r)
}

func (s *server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	status, err := domain.ParseStatus(r.FormValue("status"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.ctrl.SetFilter(r.Context(), status)
	redirectToPopup(w, r)
}

func (s *server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Add(r.Context(), r.FormValue("company"), r.FormValue("role"), r.FormValue("url"))
	redirectToPopup(w, r)
}

func (s *server) handlePostApplication(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "application-id")
	if r.FormValue("delete") == "true" {
		s.ctrl.Delete(r.Context(), id)
		redirectToPopup(w, r)
		return
	}
	if statusValue := r.FormValue("status"); statusValue != "" {
		status, err := domain.ParseStatus(statusValue)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.ctrl.SetStatus(r.Context(), id, status)
		redirectToPopup(w, r)
		return
	}
	s.ctrl.Edit(r.Context(), id, r.FormValue("company"), r.FormValue("role"), r.FormValue("url"))
	redirectToPopup(w, r)
}

func redirectToPopup(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
