package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/codexr/internal/pipeline"
)

// Health reports database reachability and the configured model provider.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status, code, dbStatus := "ok", http.StatusOK, "ok"
	if err := h.db.Ping(ctx); err != nil {
		slog.Warn("health check: database unreachable", "error", err)
		status, code, dbStatus = "degraded", http.StatusServiceUnavailable, "unreachable"
	}

	JSON(w, code, map[string]string{
		"status":   status,
		"database": dbStatus,
		"provider": h.answerer.ProviderName(),
	})
}

// GetConfig returns the settings the web page needs.
func (h *Handler) GetConfig(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, map[string]any{
		"verbosity_options":     pipeline.Verbosities(),
		"default_verbosity":     pipeline.VerbosityNormal,
		"live_search_available": h.liveSearchAvailable,
		"google_login_enabled":  h.googleLoginEnabled,
		"provider":              h.answerer.ProviderName(),
	})
}
