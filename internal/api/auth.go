package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashureev/codexr/internal/auth"
	"github.com/ashureev/codexr/internal/identity"
)

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a password account.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.accounts.Signup(r.Context(), req.Email, req.Name, req.Password)
	switch {
	case err == nil:
		slog.Info("user signed up", "user", auth.NormalizeEmail(req.Email))
		JSON(w, http.StatusCreated, map[string]string{"message": "Signup successful. Please log in."})
	case errors.Is(err, auth.ErrMissingFields):
		Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrUserExists):
		Error(w, http.StatusConflict, err.Error())
	default:
		slog.Error("signup failed", "error", err)
		Error(w, http.StatusInternalServerError, "Signup failed")
	}
}

// Login checks credentials and starts a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrUserNotFound) || errors.Is(err, auth.ErrIncorrectPassword) {
		Error(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		slog.Error("login failed", "error", err)
		Error(w, http.StatusInternalServerError, "Login failed")
		return
	}

	session, err := h.accounts.CreateSession(r.Context(), user.Email)
	if err != nil {
		slog.Error("failed to create session", "error", err, "user", user.Email)
		Error(w, http.StatusInternalServerError, "Login failed")
		return
	}

	identity.SetSessionCookie(w, session, h.isDev)
	slog.Info("user logged in", "user", user.Email)
	JSON(w, http.StatusOK, map[string]any{"user": user})
}

// Logout ends the current session and closes the user's open sockets.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := identity.SessionTokenFromContext(r.Context()); token != "" {
		if err := h.accounts.DeleteSession(r.Context(), token); err != nil {
			slog.Warn("failed to delete session", "error", err)
		}
	}
	if user := identity.UserFromContext(r.Context()); user != nil {
		h.conns.CloseUser(user.Email)
		slog.Info("user logged out", "user", user.Email)
	}

	identity.ClearSessionCookie(w, h.isDev)
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// GetMe returns the signed-in user.
func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := identity.UserFromContext(r.Context())
	if user == nil {
		Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	JSON(w, http.StatusOK, map[string]any{"user": user})
}
