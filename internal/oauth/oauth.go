// Package oauth implements Google sign-in with the OpenID Connect
// authorization code flow.
package oauth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/ashureev/codexr/internal/config"
	"github.com/ashureev/codexr/internal/domain"
	"github.com/ashureev/codexr/internal/identity"
	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// GoogleIssuer is the OpenID Connect issuer for Google accounts.
const GoogleIssuer = "https://accounts.google.com"

// nonceCookieName holds the login nonce in the browser that started the
// flow. The callback only accepts a state whose nonce matches it.
const nonceCookieName = "codexr_oauth_nonce"

// Authenticator creates users and sessions for verified identities.
type Authenticator interface {
	LoginOAuth(ctx context.Context, email, name string) (*domain.User, error)
	CreateSession(ctx context.Context, email string) (*domain.Session, error)
}

// Handler serves the Google login and callback routes.
type Handler struct {
	cfg         config.OAuthConfig
	issuer      string
	secret      []byte
	auth        Authenticator
	frontendURL string
	isDev       bool
	now         func() time.Time

	mu       sync.Mutex
	provider *oidc.Provider
}

// NewHandler creates the OAuth handler. Provider discovery happens on first
// use so that start-up does not depend on Google being reachable.
func NewHandler(cfg config.OAuthConfig, secretKey string, auth Authenticator, frontendURL string, isDev bool) *Handler {
	if frontendURL == "" {
		frontendURL = "/"
	}
	return &Handler{
		cfg:         cfg,
		issuer:      GoogleIssuer,
		secret:      []byte(secretKey),
		auth:        auth,
		frontendURL: frontendURL,
		isDev:       isDev,
		now:         time.Now,
	}
}

// Enabled reports whether Google credentials are configured.
func (h *Handler) Enabled() bool {
	return h.cfg.Enabled()
}

func (h *Handler) discover(ctx context.Context) (*oidc.Provider, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.provider != nil {
		return h.provider, nil
	}
	p, err := oidc.NewProvider(ctx, h.issuer)
	if err != nil {
		return nil, fmt.Errorf("discover oidc provider: %w", err)
	}
	h.provider = p
	return p, nil
}

func (h *Handler) oauth2Config(p *oidc.Provider) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.cfg.GoogleClientID,
		ClientSecret: h.cfg.GoogleClientSecret,
		RedirectURL:  h.cfg.RedirectURL,
		Endpoint:     p.Endpoint(),
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
	}
}

// Login handles GET /auth/google/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "Google login is not configured")
		return
	}

	p, err := h.discover(r.Context())
	if err != nil {
		slog.Error("Google login unavailable", "error", err)
		writeError(w, http.StatusBadGateway, "Google login is unavailable")
		return
	}

	nonce, err := newNonce()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to start login")
		return
	}
	state, err := signState(h.secret, nonce, h.now())
	if err != nil {
		slog.Error("failed to sign oauth state", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to start login")
		return
	}

	h.setNonceCookie(w, nonce, int(stateTTL.Seconds()))
	http.Redirect(w, r, h.oauth2Config(p).AuthCodeURL(state, oidc.Nonce(nonce)), http.StatusFound)
}

// setNonceCookie is scoped to the OAuth routes. SameSite=Lax so the cookie
// survives the top-level redirect back from Google.
func (h *Handler) setNonceCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     nonceCookieName,
		Value:    value,
		Path:     "/auth/google",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   !h.isDev,
		SameSite: http.SameSiteLaxMode,
	})
}

// sameBrowser reports whether the request carries the nonce cookie set by Login.
func sameBrowser(r *http.Request, nonce string) bool {
	c, err := r.Cookie(nonceCookieName)
	if err != nil || c.Value == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.Value), []byte(nonce)) == 1
}

type googleClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// Callback handles GET /auth/google/callback.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	if !h.Enabled() {
		writeError(w, http.StatusServiceUnavailable, "Google login is not configured")
		return
	}

	// The nonce is single use whatever the outcome.
	h.setNonceCookie(w, "", -1)

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		slog.Warn("Google login denied", "error", e)
		writeError(w, http.StatusUnauthorized, "Google login was cancelled")
		return
	}

	nonce, err := parseState(h.secret, q.Get("state"), h.now())
	if err != nil {
		slog.Warn("rejected oauth callback", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid login state")
		return
	}
	if !sameBrowser(r, nonce) {
		slog.Warn("rejected oauth callback", "error", "state not issued to this browser")
		writeError(w, http.StatusBadRequest, "Invalid login state")
		return
	}
	code := q.Get("code")
	if code == "" {
		writeError(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	claims, err := h.exchange(r.Context(), code, nonce)
	if err != nil {
		slog.Warn("Google login failed", "error", err)
		writeError(w, http.StatusUnauthorized, "Google login failed")
		return
	}

	user, err := h.auth.LoginOAuth(r.Context(), claims.Email, claims.Name)
	if err != nil {
		slog.Error("failed to record Google user", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to complete login")
		return
	}
	session, err := h.auth.CreateSession(r.Context(), user.Email)
	if err != nil {
		slog.Error("failed to create session", "error", err, "user", user.Email)
		writeError(w, http.StatusInternalServerError, "Failed to complete login")
		return
	}

	identity.SetSessionCookie(w, session, h.isDev)
	slog.Info("Google login", "user", user.Email)
	http.Redirect(w, r, h.frontendURL, http.StatusFound)
}

func (h *Handler) exchange(ctx context.Context, code, nonce string) (*googleClaims, error) {
	p, err := h.discover(ctx)
	if err != nil {
		return nil, err
	}

	token, err := h.oauth2Config(p).Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	rawID, ok := token.Extra("id_token").(string)
	if !ok || rawID == "" {
		return nil, errors.New("token response has no id_token")
	}

	idToken, err := p.Verifier(&oidc.Config{ClientID: h.cfg.GoogleClientID}).Verify(ctx, rawID)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	if idToken.Nonce != nonce {
		return nil, errors.New("id token nonce mismatch")
	}

	var claims googleClaims
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("decode id token claims: %w", err)
	}
	if claims.Email == "" || !claims.EmailVerified {
		return nil, errors.New("google account email is not verified")
	}
	return &claims, nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
