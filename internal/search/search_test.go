package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ashureev/codexr/internal/config"
	"github.com/google/go-cmp/cmp"
)

func TestSearchWithoutKeyReturnsEmpty(t *testing.T) {
	t.Parallel()

	c := NewClient(config.SearchConfig{Endpoint: "http://127.0.0.1:1/unreachable"})
	got, err := c.Search(context.Background(), "unity teleport", 5)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestSearchMapsOrganicResults(t *testing.T) {
	t.Parallel()

	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-KEY") != "secret" {
			t.Errorf("missing api key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"organic":[
			{"title":"OpenXR spec","link":"https://khronos.org/openxr"},
			{"link":"https://example.com/no-title"},
			{"title":"No link"},
			{"title":"Over the limit","link":"https://example.com/extra"}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(config.SearchConfig{APIKey: "secret", Endpoint: srv.URL, Timeout: time.Second})
	got, err := c.Search(context.Background(), "openxr", 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	want := []Result{
		{Title: "OpenXR spec", URL: "https://khronos.org/openxr"},
		{Title: NoTitle, URL: "https://example.com/no-title"},
		{Title: "No link", URL: NoURL},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
	if gotBody["q"] != "openxr" || gotBody["num"] != float64(3) {
		t.Fatalf("unexpected request body %v", gotBody)
	}
}

func TestSearchFailuresReturnEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed json", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"organic": [`))
		}},
		{"organic not a list", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"organic": "nope"}`))
		}},
		{"timeout", func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(300 * time.Millisecond)
			_, _ = w.Write([]byte(`{"organic": []}`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(config.SearchConfig{APIKey: "k", Endpoint: srv.URL, Timeout: 100 * time.Millisecond})
			got, err := c.Search(context.Background(), "hololens", 5)
			if err == nil {
				t.Fatal("expected error")
			}
			if got == nil || len(got) != 0 {
				t.Fatalf("expected empty results, got %#v", got)
			}
		})
	}
}

func TestSearchMissingOrganicIsEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"searchParameters":{"q":"x"}}`))
	}))
	defer srv.Close()

	c := NewClient(config.SearchConfig{APIKey: "k", Endpoint: srv.URL})
	got, err := c.Search(context.Background(), "x", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no results, got %v", got)
	}
}
