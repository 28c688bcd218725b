package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/almlcv/sharanga-backend-sub001/internal/config"
)

func TestPostSummary(t *testing.T) {
	var gotAuth, gotPath, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		var body summaryPayload
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotText = body.Text
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := NewClient(config.WebhookConfig{URL: srv.URL + "/hooks/reports", Token: "tok"})
	if err := client.PostSummary(context.Background(), "Production 2026-01-20: 90 OK"); err != nil {
		t.Fatalf("PostSummary: %v", err)
	}
	if gotAuth != "Bearer tok" || gotPath != "/hooks/reports" || gotText != "Production 2026-01-20: 90 OK" {
		t.Fatalf("unexpected request: auth=%q path=%q text=%q", gotAuth, gotPath, gotText)
	}
}

func TestPostSummaryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"bad token"}`))
	}))
	defer srv.Close()

	client := NewClient(config.WebhookConfig{URL: srv.URL})
	err := client.PostSummary(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "code=401") || !strings.Contains(err.Error(), "bad token") {
		t.Fatalf("expected webhook error, got %v", err)
	}
}

func TestPostSummaryKeepsQuery(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(config.WebhookConfig{URL: srv.URL + "/v1/spaces/ops/messages?key=abc"})
	if err := client.PostSummary(context.Background(), "x"); err != nil {
		t.Fatalf("PostSummary: %v", err)
	}
	if gotPath != "/v1/spaces/ops/messages" || gotKey != "abc" {
		t.Fatalf("unexpected target: path=%q key=%q", gotPath, gotKey)
	}
}
