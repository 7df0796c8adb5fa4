package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ashureev/codexr/internal/domain"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func setupEnv(t *testing.T) {
	t.Helper()
	t.Setenv("MODEL_PROVIDER", "demo")
	t.Setenv("HISTORY_DIR", t.TempDir())
	t.Setenv("SERPER_API_KEY", "")
	t.Chdir(t.TempDir())
}

func TestAskJSON(t *testing.T) {
	setupEnv(t)

	out, err := runCLI(t, "ask", "unity", "teleport", "--json")
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}

	var body struct {
		Query  string        `json:"query"`
		Answer domain.Answer `json:"answer"`
	}
	if err := json.Unmarshal([]byte(out), &body); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if body.Query != "unity teleport" || body.Answer.Context != "Unity" {
		t.Fatalf("unexpected answer: %+v", body)
	}
}

func TestAskRawMarkdownAndHistory(t *testing.T) {
	setupEnv(t)

	out, err := runCLI(t, "ask", "hello", "--raw", "--user", "ada@example.com")
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if !strings.Contains(out, "### 1. Greeting") {
		t.Fatalf("unexpected markdown:\n%s", out)
	}

	out, err = runCLI(t, "history", "list", "--user", "ADA@example.com")
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	if !strings.Contains(out, "hello (General)") {
		t.Fatalf("history missing the saved answer:\n%s", out)
	}

	if _, err := runCLI(t, "history", "clear", "--user", "ada@example.com"); err != nil {
		t.Fatalf("history clear failed: %v", err)
	}
	out, err = runCLI(t, "history", "list", "--user", "ada@example.com")
	if err != nil {
		t.Fatalf("history list failed: %v", err)
	}
	if !strings.Contains(out, "No history") {
		t.Fatalf("history not cleared:\n%s", out)
	}
}

func TestAskProviderOverride(t *testing.T) {
	setupEnv(t)
	t.Setenv("MODEL_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "")

	out, err := runCLI(t, "ask", "unreal", "multiplayer", "--provider", "demo", "--json")
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if !strings.Contains(out, `"context": "Unreal"`) {
		t.Fatalf("override not applied:\n%s", out)
	}

	if _, err := runCLI(t, "ask", "x", "--provider", "nope"); err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
}

func TestHistoryRequiresUser(t *testing.T) {
	setupEnv(t)
	if _, err := runCLI(t, "history", "list"); err == nil {
		t.Fatal("expected missing --user error")
	}
}
