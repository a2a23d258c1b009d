package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fitpulse-dev/fitpulse/pkg/provider"
)

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{Model: "llama3"}); err == nil {
		t.Error("New without BaseURL = nil error, want error")
	}
	if _, err := New(Config{BaseURL: "http://localhost:11434"}); err == nil {
		t.Error("New without Model = nil error, want error")
	}
}

func TestGenerate(t *testing.T) {
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("path = %q, want /api/chat", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(chatResponse{
			Message: chatMessage{Role: "assistant", Content: "**Assessment**: keep it up."},
		})
	}))
	defer srv.Close()

	g, err := New(Config{BaseURL: srv.URL, Model: "llama3"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer g.Close()

	report, err := g.Generate(context.Background(), &provider.Request{
		Age:         34,
		Gender:      "Female",
		DataSummary: "Weight 150lbs, trend stable.",
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if report != "**Assessment**: keep it up." {
		t.Errorf("report = %q", report)
	}

	if gotBody.Model != "llama3" {
		t.Errorf("model = %q, want llama3", gotBody.Model)
	}
	if gotBody.Stream {
		t.Error("stream = true, want false")
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" {
		t.Fatalf("messages = %+v, want system+user", gotBody.Messages)
	}
	if !strings.Contains(gotBody.Messages[1].Content, "34 years old, Female") {
		t.Errorf("user prompt missing profile: %q", gotBody.Messages[1].Content)
	}
	if !strings.Contains(gotBody.Messages[1].Content, "Weight 150lbs") {
		t.Errorf("user prompt missing summary: %q", gotBody.Messages[1].Content)
	}
}

func TestGenerate_BackendErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not loaded", http.StatusInternalServerError)
		}},
		{"empty content", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(chatResponse{})
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			g, err := New(Config{BaseURL: srv.URL, Model: "llama3"})
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			if _, err := g.Generate(context.Background(), &provider.Request{Age: 30, Gender: "Male"}); err == nil {
				t.Error("Generate = nil error, want error")
			}
		})
	}
}

func TestReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %q, want /api/tags", r.URL.Path)
		}
		w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	g, err := New(Config{BaseURL: srv.URL, Model: "llama3"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := g.Ready(context.Background()); err != nil {
		t.Errorf("Ready = %v, want nil", err)
	}

	srv.Close()
	if err := g.Ready(context.Background()); err == nil {
		t.Error("Ready after server close = nil, want error")
	}
}
