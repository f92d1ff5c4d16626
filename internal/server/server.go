// Package server implements the dev-environment CRIMSON server: it serves
// the form description document and the submission API the client
// integrates against. Storage is in memory; durable record keeping lives
// elsewhere.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/sean-lockwood/crimson-ins-submit/schema"
	"github.com/sean-lockwood/crimson-ins-submit/submission"
)

// Config holds everything a server instance needs.
type Config struct {
	Observatory submission.Observatory
	JWTSecret   string
	StagingDir  string
	// Users maps username to plain-text key; keys are bcrypt-hashed at
	// startup and never kept in the clear.
	Users map[string]string
}

// Server is the HTTP server. It implements http.Handler.
type Server struct {
	cfg    Config
	log    *zap.Logger
	router *chi.Mux
	users  map[string][]byte
	form   *schema.Schema
	doc    []byte
	locks  *lockTable
	store  *submissionStore
}

// New builds a server. The form description is fixed per observatory for
// the lifetime of the process.
func New(cfg Config, log *zap.Logger) (*Server, error) {
	if cfg.Observatory != submission.HST && cfg.Observatory != submission.JWST {
		return nil, fmt.Errorf("server: unknown observatory %q", cfg.Observatory)
	}
	if log == nil {
		log = zap.NewNop()
	}

	users := make(map[string][]byte, len(cfg.Users))
	for name, key := range cfg.Users {
		hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("server: hash key for %q: %w", name, err)
		}
		users[name] = hash
	}

	doc, err := descriptionYAML(cfg.Observatory)
	if err != nil {
		return nil, fmt.Errorf("server: render form description: %w", err)
	}
	form, err := descriptionSchema(cfg.Observatory)
	if err != nil {
		return nil, fmt.Errorf("server: parse own form description: %w", err)
	}

	s := &Server{
		cfg:   cfg,
		log:   log,
		users: users,
		form:  form,
		doc:   doc,
		locks: newLockTable(),
		store: newSubmissionStore(),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/"+schema.DescriptionPath, s.handleDescription)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(s.cfg.JWTSecret))

			r.Post("/auth/logout", s.handleLogout)
			r.Put("/locks/{instrument}", s.handleLock)
			r.Delete("/locks/{instrument}", s.handleUnlock)
			r.Post("/certify", s.handleCertify)
			r.Post("/files", s.handleUpload)
			r.Post("/submissions", s.handleSubmit)
			r.Get("/submissions", s.handleList)
			r.Get("/submissions/{id}", s.handleGet)
		})
	})
	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", sw.status),
			zap.Duration("took", time.Since(start).Round(time.Millisecond)),
		)
	})
}
