// Command mock-llm runs a deterministic Ollama-compatible chat server for
// local development and end-to-end testing of the report pipeline without
// a real model. It answers /api/chat with a canned Markdown report and
// /api/tags with a single model entry.
//
// Configuration:
//
//	MOCK_LLM_PORT - Listen port (default: 11434)
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const cannedReport = `**Assessment**

- Your recent metrics show steady progress toward your stated goal.
- Body weight trend is within a healthy weekly range.

**Training Recommendations**

- Keep 3-4 resistance sessions per week.
- Add 20-30 minutes of zone 2 cardio on two non-lifting days.

**Dietary Recommendations**

- Hold protein at roughly 0.8g per lb of body weight.
- Adjust daily intake by 200-300 kcal based on the weight trend.`

func main() {
	port := os.Getenv("MOCK_LLM_PORT")
	if port == "" {
		port = "11434"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", handleChat)
	mux.HandleFunc("GET /api/tags", handleTags)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock LLM starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock LLM failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock LLM shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Model   string      `json:"model"`
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

func handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request"}`, http.StatusBadRequest)
		return
	}

	if len(req.Messages) == 0 {
		http.Error(w, `{"error":"messages are required"}`, http.StatusBadRequest)
		return
	}

	slog.Info("chat request", "model", req.Model, "messages", len(req.Messages))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(chatResponse{
		Model:   req.Model,
		Message: chatMessage{Role: "assistant", Content: cannedReport},
		Done:    true,
	})
}

func handleTags(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"models":[{"name":"llama3","model":"llama3"}]}`))
}
