package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/ashureev/codexr/internal/domain"
	"github.com/ashureev/codexr/internal/history"
	"github.com/ashureev/codexr/internal/identity"
)

const defaultHistoryLimit = 8

// ListHistory returns the user's most recent records, newest first.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	user := identity.UserFromContext(r.Context())

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			Error(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	records, err := h.history.Load(r.Context(), user.Email)
	if err != nil {
		slog.Warn("failed to load history", "error", err, "user", user.Email)
		records = []domain.HistoryRecord{}
	}
	JSON(w, http.StatusOK, map[string]any{"history": history.Recent(records, limit)})
}

// ClearHistory deletes all of the user's records.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	user := identity.UserFromContext(r.Context())

	if err := h.history.Clear(r.Context(), user.Email); err != nil {
		slog.Error("failed to clear history", "error", err, "user", user.Email)
		Error(w, http.StatusInternalServerError, "Failed to clear history")
		return
	}
	slog.Info("history cleared", "user", user.Email)
	JSON(w, http.StatusOK, map[string]bool{"success": true})
}
