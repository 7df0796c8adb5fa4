package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ashureev/codexr/internal/identity"
	"github.com/coder/websocket"
)

// wsMessage is both the client request and the server reply on /ws/ask.
type wsMessage struct {
	Type      string `json:"type,omitempty"`
	Content   string `json:"content,omitempty"`
	Query     string `json:"query,omitempty"`
	Verbosity string `json:"verbosity,omitempty"`
	LiveMode  bool   `json:"live_mode,omitempty"`
	Answer    any    `json:"answer,omitempty"`
}

// AskWebSocket serves questions over a WebSocket. Each request message gets
// a "status" reply followed by an "answer" reply.
func (h *Handler) AskWebSocket(w http.ResponseWriter, r *http.Request) {
	user := identity.UserFromContext(r.Context())
	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("failed to accept WebSocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "bye"); closeErr != nil {
			slog.Debug("failed to close websocket", "error", closeErr)
		}
	}()

	if user != nil {
		h.conns.Register(user.Email, ws)
		defer h.conns.Unregister(user.Email, ws)
	}

	ctx := r.Context()
	for {
		_, data, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client")
			} else if ctx.Err() == nil {
				slog.Debug("WebSocket read error", "error", err)
			}
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if err := writeWS(ctx, ws, wsMessage{Type: "error", Content: "invalid message"}); err != nil {
				return
			}
			continue
		}

		if msg.Type == "ping" {
			if err := writeWS(ctx, ws, wsMessage{Type: "pong"}); err != nil {
				return
			}
			continue
		}

		if err := h.answerWS(ctx, ws, msg); err != nil {
			slog.Debug("WebSocket write failed", "error", err)
			return
		}
	}
}

func (h *Handler) answerWS(ctx context.Context, ws *websocket.Conn, msg wsMessage) error {
	req := askRequest{Query: msg.Query, Verbosity: msg.Verbosity, LiveMode: msg.LiveMode}.pipelineRequest()
	if req.Query == "" {
		return writeWS(ctx, ws, wsMessage{Type: "error", Content: emptyQueryMessage})
	}

	if err := writeWS(ctx, ws, wsMessage{Type: "status", Content: "generating"}); err != nil {
		return err
	}

	answer := h.answerer.Answer(ctx, req)
	h.saveHistory(identity.UserFromContext(ctx), req.Query, answer)

	return writeWS(ctx, ws, wsMessage{Type: "answer", Query: req.Query, Answer: answer})
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.frontendURL == "" || h.frontendURL == "*" {
		return true
	}
	if strings.TrimRight(origin, "/") == strings.TrimRight(h.frontendURL, "/") {
		return true
	}
	if u, err := url.Parse(origin); err == nil && u.Host == r.Host {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.frontendURL)
	return false
}

func writeWS(ctx context.Context, ws *websocket.Conn, v wsMessage) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return ws.Write(ctx, websocket.MessageText, data)
}
