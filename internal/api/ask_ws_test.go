//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
)

func dialAsk(t *testing.T, srv *httptest.Server, cookie *http.Cookie) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	header := http.Header{}
	if cookie != nil {
		header.Set("Cookie", cookie.String())
	}
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/ask"
	conn, _, err := websocket.Dial(ctx, url, &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) wsMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("bad message %q: %v", data, err)
	}
	return msg
}

func sendMessage(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestAskWebSocket(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.login(t, "ada@example.com")
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	conn := dialAsk(t, srv, cookie)

	sendMessage(t, conn, map[string]any{"query": "unity teleport", "verbosity": "concise"})
	if msg := readMessage(t, conn); msg.Type != "status" || msg.Content != "generating" {
		t.Fatalf("first message = %+v, want status", msg)
	}
	msg := readMessage(t, conn)
	if msg.Type != "answer" || msg.Query != "unity teleport" || msg.Answer == nil {
		t.Fatalf("second message = %+v, want answer", msg)
	}
	if env.history.count("ada@example.com") != 1 {
		t.Error("websocket answer not saved to history")
	}

	sendMessage(t, conn, map[string]any{"query": ""})
	if msg := readMessage(t, conn); msg.Type != "error" || msg.Content != emptyQueryMessage {
		t.Fatalf("empty query reply = %+v", msg)
	}

	sendMessage(t, conn, map[string]any{"type": "ping"})
	if msg := readMessage(t, conn); msg.Type != "pong" {
		t.Fatalf("ping reply = %+v", msg)
	}
}

func TestLogoutClosesSockets(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.login(t, "ada@example.com")
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	conn := dialAsk(t, srv, cookie)
	sendMessage(t, conn, map[string]any{"type": "ping"})
	readMessage(t, conn)

	if n := env.handler.conns.Count("ada@example.com"); n != 1 {
		t.Fatalf("registered sockets = %d, want 1", n)
	}

	if rec := env.do(t, http.MethodPost, "/api/auth/logout", "", cookie); rec.Code != http.StatusOK {
		t.Fatalf("logout = %d", rec.Code)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, _, err := conn.Read(ctx); websocket.CloseStatus(err) != websocket.StatusNormalClosure {
		t.Fatalf("expected normal closure after logout, got %v", err)
	}
}
