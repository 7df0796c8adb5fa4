package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ashureev/codexr/internal/domain"
	"github.com/ashureev/codexr/internal/identity"
	"github.com/ashureev/codexr/internal/metrics"
	"github.com/ashureev/codexr/internal/pipeline"
	"github.com/ashureev/codexr/internal/render"
)

const emptyQueryMessage = "Enter a question first."

type askRequest struct {
	Query     string `json:"query"`
	Verbosity string `json:"verbosity"`
	LiveMode  bool   `json:"live_mode"`
}

type askResponse struct {
	Query  string        `json:"query"`
	Answer domain.Answer `json:"answer"`
}

func (req askRequest) pipelineRequest() pipeline.Request {
	return pipeline.Request{
		Query:     strings.TrimSpace(req.Query),
		Verbosity: pipeline.ParseVerbosity(req.Verbosity),
		LiveMode:  req.LiveMode,
	}
}

// Ask answers one question. Signed-in users get it saved to their history.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(w, r, &req); err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	preq := req.pipelineRequest()
	if preq.Query == "" {
		Error(w, http.StatusBadRequest, emptyQueryMessage)
		return
	}

	answer := h.answerer.Answer(r.Context(), preq)
	h.saveHistory(identity.UserFromContext(r.Context()), preq.Query, answer)

	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(render.Markdown(preq.Query, answer)))
		return
	}
	JSON(w, http.StatusOK, askResponse{Query: preq.Query, Answer: answer})
}

// saveHistory records the answer for a signed-in user. Failures are logged
// and skipped.
func (h *Handler) saveHistory(user *domain.User, query string, answer domain.Answer) {
	if user == nil || h.history == nil {
		return
	}
	// Detached from the request so a client disconnect does not drop the write.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.history.Save(ctx, user.Email, domain.HistoryEntry{Query: query, Answer: answer}); err != nil {
		metrics.HistoryWriteFailures.Inc()
		slog.Warn("failed to save history", "error", err, "user", user.Email)
	}
}
