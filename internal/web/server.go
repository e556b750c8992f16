package web

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"focusplan/internal/app"
	"focusplan/internal/config"
	appLog "focusplan/internal/log"
)

const shutdownTimeout = 5 * time.Second

// Server exposes the planner state as a JSON API.
type Server struct {
	cfg    *config.Config
	app    *app.App
	router *mux.Router
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, a *app.App) *Server {
	s := &Server{
		cfg:    cfg,
		app:    a,
		router: mux.NewRouter(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the root handler, wrapped in Basic Auth when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.router)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	ba := s.cfg.BasicAuth
	return ba.Username != "" && (ba.Password != "" || ba.PasswordHash != "")
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	check := passwordChecker(s.cfg.BasicAuth)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !check(p) {
			w.Header().Set("WWW-Authenticate", `Basic realm="focusplan", charset="UTF-8"`)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// passwordChecker prefers the bcrypt hash over the plain password.
func passwordChecker(ba *config.BasicAuthConfig) func(string) bool {
	if ba.PasswordHash != "" {
		hash := []byte(ba.PasswordHash)
		return func(p string) bool {
			return bcrypt.CompareHashAndPassword(hash, []byte(p)) == nil
		}
	}
	return func(p string) bool { return secureCompare(p, ba.Password) }
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Run serves on cfg.Listen until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	appLog.Info("HTTP server stopped")
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	r := s.router
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/calendar", s.handleCalendar).Methods(http.MethodGet)
	api.HandleFunc("/calendar.ics", s.handleCalendarICS).Methods(http.MethodGet)
	api.HandleFunc("/calendar/next", s.handleNavigate(navNext)).Methods(http.MethodPost)
	api.HandleFunc("/calendar/prev", s.handleNavigate(navPrev)).Methods(http.MethodPost)
	api.HandleFunc("/calendar/today", s.handleNavigate(navToday)).Methods(http.MethodPost)
	api.HandleFunc("/calendar/select", s.handleSelectDay).Methods(http.MethodPost)
	api.HandleFunc("/days/{day}", s.handleDay).Methods(http.MethodGet)
	api.HandleFunc("/events", s.handleAddEvent).Methods(http.MethodPost)
	api.HandleFunc("/events/{id}", s.handleDeleteEvent).Methods(http.MethodDelete)

	api.HandleFunc("/confirm/{ticket}", s.handleConfirm).Methods(http.MethodPost)
	api.HandleFunc("/confirm/{ticket}", s.handleCancel).Methods(http.MethodDelete)

	api.HandleFunc("/tasks", s.handleListTasks).Methods(http.MethodGet)
	api.HandleFunc("/tasks", s.handleAddTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{id}", s.handleEditTask).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{id}", s.handleDeleteTask).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{id}/start", s.handleStartTask).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/finish", s.handleFinishSession).Methods(http.MethodPost)

	api.HandleFunc("/topmind", s.handleListTopMind).Methods(http.MethodGet)
	api.HandleFunc("/topmind", s.handleAddTopMind).Methods(http.MethodPost)
	api.HandleFunc("/topmind/{id}", s.handleTopMindDetail).Methods(http.MethodGet)
	api.HandleFunc("/topmind/{id}", s.handleDeleteTopMind).Methods(http.MethodDelete)

	api.HandleFunc("/stats/distribution", s.handleDistribution).Methods(http.MethodGet)
	api.HandleFunc("/stats/trend", s.handleTrend).Methods(http.MethodGet)

	api.HandleFunc("/profile", s.handleProfile).Methods(http.MethodGet)
	api.HandleFunc("/profile", s.handleUpdateProfile).Methods(http.MethodPut)
	api.HandleFunc("/profile/reset", s.handleResetProfile).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}
