//nolint:revive // "api" package name is intentionally concise for this layer.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/codexr/internal/auth"
	"github.com/ashureev/codexr/internal/domain"
	"github.com/ashureev/codexr/internal/identity"
	"github.com/ashureev/codexr/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

type fakeAccounts struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	passwd   map[string]string
	sessions map[string]string
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{
		users:    make(map[string]*domain.User),
		passwd:   make(map[string]string),
		sessions: make(map[string]string),
	}
}

func (f *fakeAccounts) Signup(_ context.Context, email, name, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = auth.NormalizeEmail(email)
	if email == "" || name == "" || password == "" {
		return auth.ErrMissingFields
	}
	if _, ok := f.users[email]; ok {
		return auth.ErrUserExists
	}
	f.users[email] = &domain.User{Email: email, Name: name, Provider: domain.ProviderPassword}
	f.passwd[email] = password
	return nil
}

func (f *fakeAccounts) Login(_ context.Context, email, password string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = auth.NormalizeEmail(email)
	u, ok := f.users[email]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	if f.passwd[email] != password {
		return nil, auth.ErrIncorrectPassword
	}
	return u, nil
}

func (f *fakeAccounts) CreateSession(_ context.Context, email string) (*domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := "tok-" + email
	f.sessions[token] = email
	return &domain.Session{Token: token, Email: email, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (f *fakeAccounts) DeleteSession(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

func (f *fakeAccounts) ResolveSession(_ context.Context, token string) (*domain.User, *domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email, ok := f.sessions[token]
	if !ok {
		return nil, nil, auth.ErrSessionNotFound
	}
	return f.users[email], &domain.Session{Token: token, Email: email}, nil
}

type fakeAnswerer struct {
	mu   sync.Mutex
	reqs []pipeline.Request
}

func (f *fakeAnswerer) Answer(_ context.Context, req pipeline.Request) domain.Answer {
	f.mu.Lock()
	f.reqs = append(f.reqs, req)
	f.mu.Unlock()
	return domain.NewMessageAnswer("Unity", "Unity Developer", "Answer", "for "+req.Query)
}

func (f *fakeAnswerer) ProviderName() string { return "Demo" }

func (f *fakeAnswerer) last() pipeline.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reqs[len(f.reqs)-1]
}

type fakeHistory struct {
	mu      sync.Mutex
	records map[string][]domain.HistoryRecord
	failing bool
}

func newFakeHistory() *fakeHistory {
	return &fakeHistory{records: make(map[string][]domain.HistoryRecord)}
}

func (f *fakeHistory) Save(_ context.Context, userID string, e domain.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("disk full")
	}
	rec := domain.HistoryRecord{Query: e.Query, Answer: e.Answer, Timestamp: time.Now().Unix()}
	f.records[userID] = append([]domain.HistoryRecord{rec}, f.records[userID]...)
	return nil
}

func (f *fakeHistory) Load(_ context.Context, userID string) ([]domain.HistoryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errors.New("disk gone")
	}
	return append([]domain.HistoryRecord{}, f.records[userID]...), nil
}

func (f *fakeHistory) Clear(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.records, userID)
	return nil
}

func (f *fakeHistory) count(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records[userID])
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type testEnv struct {
	router   http.Handler
	handler  *Handler
	accounts *fakeAccounts
	answerer *fakeAnswerer
	history  *fakeHistory
}

func newTestEnv(t *testing.T, db Pinger) *testEnv {
	t.Helper()
	env := &testEnv{
		accounts: newFakeAccounts(),
		answerer: &fakeAnswerer{},
		history:  newFakeHistory(),
	}
	if db == nil {
		db = fakePinger{}
	}
	env.handler = NewHandler(Deps{
		Accounts: env.accounts,
		Answerer: env.answerer,
		History:  env.history,
		DB:       db,
		IsDev:    true,
	})

	r := chi.NewRouter()
	r.Use(identity.Middleware(env.accounts))
	env.handler.RegisterRoutes(r)
	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// login signs up and logs in a user and returns the session cookie.
func (e *testEnv) login(t *testing.T, email string) *http.Cookie {
	t.Helper()
	if rec := e.do(t, http.MethodPost, "/api/auth/signup", `{"email":"`+email+`","name":"Ada","password":"pw"}`, nil); rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d: %s", rec.Code, rec.Body.String())
	}
	rec := e.do(t, http.MethodPost, "/api/auth/login", `{"email":"`+email+`","password":"pw"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == identity.SessionCookieName {
			return c
		}
	}
	t.Fatal("login did not set a session cookie")
	return nil
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"foo": "bar"}

	JSON(w, http.StatusOK, data)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var got map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got["foo"] != "bar" {
		t.Errorf("Expected foo=bar, got %v", got["foo"])
	}
}

func TestSignupAndLogin(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name    string
		path    string
		body    string
		status  int
		message string
	}{
		{"signup", "/api/auth/signup", `{"email":"ada@example.com","name":"Ada","password":"pw"}`, http.StatusCreated, "Signup successful. Please log in."},
		{"duplicate signup", "/api/auth/signup", `{"email":"ada@example.com","name":"Ada","password":"other"}`, http.StatusConflict, "User already exists"},
		{"missing fields", "/api/auth/signup", `{"email":"b@example.com"}`, http.StatusBadRequest, auth.ErrMissingFields.Error()},
		{"bad json", "/api/auth/signup", `{`, http.StatusBadRequest, ""},
		{"unknown user", "/api/auth/login", `{"email":"nobody@example.com","password":"pw"}`, http.StatusUnauthorized, "User not found"},
		{"wrong password", "/api/auth/login", `{"email":"ada@example.com","password":"nope"}`, http.StatusUnauthorized, "Incorrect password"},
	}

	for _, tt := range tests {
		rec := env.do(t, http.MethodPost, tt.path, tt.body, nil)
		if rec.Code != tt.status {
			t.Fatalf("%s: status = %d, want %d: %s", tt.name, rec.Code, tt.status, rec.Body.String())
		}
		if tt.message == "" {
			continue
		}
		var body map[string]string
		decodeBody(t, rec, &body)
		if body["message"] != tt.message && body["error"] != tt.message {
			t.Errorf("%s: body = %v, want %q", tt.name, body, tt.message)
		}
	}

	rec := env.do(t, http.MethodPost, "/api/auth/login", `{"email":"ADA@example.com","password":"pw"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}
	var body struct {
		User domain.User `json:"user"`
	}
	decodeBody(t, rec, &body)
	if body.User.Email != "ada@example.com" {
		t.Errorf("user = %+v", body.User)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("login response leaks password fields")
	}
}

func TestMeAndLogout(t *testing.T) {
	env := newTestEnv(t, nil)

	if rec := env.do(t, http.MethodGet, "/api/me", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous /api/me = %d, want 401", rec.Code)
	}

	cookie := env.login(t, "ada@example.com")
	if rec := env.do(t, http.MethodGet, "/api/me", "", cookie); rec.Code != http.StatusOK {
		t.Fatalf("/api/me = %d, want 200", rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/api/auth/logout", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout = %d", rec.Code)
	}
	if rec := env.do(t, http.MethodGet, "/api/me", "", cookie); rec.Code != http.StatusUnauthorized {
		t.Fatalf("/api/me after logout = %d, want 401", rec.Code)
	}
}

func TestAsk(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/ask", `{"query":"   "}`, nil)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "Enter a question first.") {
		t.Fatalf("empty query: %d %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodPost, "/api/ask", `{"query":" unity teleport ","verbosity":"Detailed","live_mode":true}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ask status = %d: %s", rec.Code, rec.Body.String())
	}
	var body askResponse
	decodeBody(t, rec, &body)
	if body.Query != "unity teleport" || body.Answer.Subtasks[0].Details != "for unity teleport" {
		t.Errorf("unexpected response: %+v", body)
	}
	got := env.answerer.last()
	if got.Verbosity != pipeline.VerbosityDetailed || !got.LiveMode {
		t.Errorf("unexpected pipeline request: %+v", got)
	}
	if env.history.count("ada@example.com") != 0 {
		t.Error("anonymous ask should not save history")
	}
}

func TestAskSavesHistoryAndMarkdown(t *testing.T) {
	env := newTestEnv(t, nil)
	cookie := env.login(t, "ada@example.com")

	rec := env.do(t, http.MethodPost, "/api/ask?format=markdown", `{"query":"unity teleport"}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("ask status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/markdown") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "# unity teleport") {
		t.Errorf("unexpected markdown:\n%s", rec.Body.String())
	}
	if env.history.count("ada@example.com") != 1 {
		t.Fatal("history not saved")
	}

	env.history.failing = true
	rec = env.do(t, http.MethodPost, "/api/ask", `{"query":"unity again"}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("history failure should not fail the ask: %d", rec.Code)
	}
}

func TestHistoryRoutes(t *testing.T) {
	env := newTestEnv(t, nil)

	if rec := env.do(t, http.MethodGet, "/api/history", "", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous history = %d, want 401", rec.Code)
	}

	cookie := env.login(t, "ada@example.com")
	for i := 0; i < 10; i++ {
		env.do(t, http.MethodPost, "/api/ask", `{"query":"unity q"}`, cookie)
	}

	var body struct {
		History []domain.HistoryRecord `json:"history"`
	}
	rec := env.do(t, http.MethodGet, "/api/history", "", cookie)
	decodeBody(t, rec, &body)
	if len(body.History) != defaultHistoryLimit {
		t.Errorf("default limit returned %d records", len(body.History))
	}

	rec = env.do(t, http.MethodGet, "/api/history?limit=3", "", cookie)
	decodeBody(t, rec, &body)
	if len(body.History) != 3 {
		t.Errorf("limit=3 returned %d records", len(body.History))
	}

	if rec := env.do(t, http.MethodGet, "/api/history?limit=abc", "", cookie); rec.Code != http.StatusBadRequest {
		t.Errorf("bad limit = %d, want 400", rec.Code)
	}

	if rec := env.do(t, http.MethodDelete, "/api/history", "", cookie); rec.Code != http.StatusOK {
		t.Fatalf("clear = %d", rec.Code)
	}
	if env.history.count("ada@example.com") != 0 {
		t.Error("history not cleared")
	}

	env.history.failing = true
	rec = env.do(t, http.MethodGet, "/api/history", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("load failure should return empty history, got %d", rec.Code)
	}
	decodeBody(t, rec, &body)
	if body.History == nil || len(body.History) != 0 {
		t.Errorf("expected empty list, got %#v", body.History)
	}
}

func TestHealthAndConfig(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/api/health", "", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"provider":"Demo"`) {
		t.Fatalf("health = %d %s", rec.Code, rec.Body.String())
	}

	down := newTestEnv(t, fakePinger{err: errors.New("closed")})
	if rec := down.do(t, http.MethodGet, "/api/health", "", nil); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("degraded health = %d, want 503", rec.Code)
	}

	var cfg struct {
		VerbosityOptions []string `json:"verbosity_options"`
		DefaultVerbosity string   `json:"default_verbosity"`
	}
	decodeBody(t, env.do(t, http.MethodGet, "/api/config", "", nil), &cfg)
	if len(cfg.VerbosityOptions) != 3 || cfg.DefaultVerbosity != "normal" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}
