// Package api provides the HTTP handlers for the CodeXR API.
//
//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ashureev/codexr/internal/domain"
	"github.com/ashureev/codexr/internal/history"
	"github.com/ashureev/codexr/internal/identity"
	"github.com/ashureev/codexr/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 64 << 10

// Accounts is the part of the auth service used by the handlers.
type Accounts interface {
	Signup(ctx context.Context, email, name, password string) error
	Login(ctx context.Context, email, password string) (*domain.User, error)
	CreateSession(ctx context.Context, email string) (*domain.Session, error)
	DeleteSession(ctx context.Context, token string) error
}

// Answerer produces answers for questions.
type Answerer interface {
	Answer(ctx context.Context, req pipeline.Request) domain.Answer
	ProviderName() string
}

// Pinger checks that a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of Handler.
type Deps struct {
	Accounts            Accounts
	Answerer            Answerer
	History             history.Store
	DB                  Pinger
	FrontendURL         string
	IsDev               bool
	LiveSearchAvailable bool
	GoogleLoginEnabled  bool
}

// Handler serves the JSON API and the ask WebSocket.
type Handler struct {
	accounts            Accounts
	answerer            Answerer
	history             history.Store
	db                  Pinger
	frontendURL         string
	isDev               bool
	liveSearchAvailable bool
	googleLoginEnabled  bool
	conns               *connRegistry
}

// NewHandler creates a Handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		accounts:            d.Accounts,
		answerer:            d.Answerer,
		history:             d.History,
		db:                  d.DB,
		frontendURL:         d.FrontendURL,
		isDev:               d.IsDev,
		liveSearchAvailable: d.LiveSearchAvailable,
		googleLoginEnabled:  d.GoogleLoginEnabled,
		conns:               newConnRegistry(),
	}
}

// RegisterRoutes registers the API and WebSocket routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/config", h.GetConfig)

		r.Post("/auth/signup", h.Signup)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/logout", h.Logout)
		r.Get("/me", h.GetMe)

		r.Post("/ask", h.Ask)

		r.Group(func(r chi.Router) {
			r.Use(identity.RequireUser)
			r.Get("/history", h.ListHistory)
			r.Delete("/history", h.ClearHistory)
		})
	})
	r.Get("/ws/ask", h.AskWebSocket)
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}
