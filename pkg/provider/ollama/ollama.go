// Package ollama provides a provider.Generator backed by a local Ollama
// server's chat API.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fitpulse-dev/fitpulse/pkg/provider"
)

// systemPrompt pins the model's persona, tone, and output format.
const systemPrompt = "You are a highly professional, rigorous, yet encouraging personal fitness coach and nutritionist based in the US. " +
	"Your task is to provide scientific, safe, and highly actionable assessments and recommendations based on the user's recent body metric changes. " +
	"Rules you MUST follow: " +
	"1. Be direct and concise. Avoid fluff. " +
	"2. Use bullet points and bold text for readability. " +
	"3. Format your entire response strictly in Markdown. " +
	"4. Only provide the report, do not add introductory conversational phrases like 'Sure, here is your report'. " +
	"5. ALWAYS use Imperial units (lbs, inches) in your response."

// Config holds the Ollama generator configuration.
type Config struct {
	// BaseURL is the Ollama server address (e.g., "http://localhost:11434").
	BaseURL string

	// Model is the model name passed to the chat endpoint (e.g., "llama3").
	Model string

	// Timeout bounds a single generation call. Default: 120s.
	Timeout time.Duration

	// HTTPClient allows injecting a custom HTTP client (useful for testing).
	// If nil, a client with the configured timeout is used.
	HTTPClient *http.Client
}

// Generator calls the Ollama chat API.
type Generator struct {
	cfg    Config
	client *http.Client
}

// Ensure Generator implements provider.Generator at compile time.
var _ provider.Generator = (*Generator)(nil)

// New creates an Ollama generator with the given configuration.
// Returns an error if the configuration is invalid.
func New(cfg Config) (*Generator, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("ollama: BaseURL is required")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("ollama: Model is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	return &Generator{cfg: cfg, client: client}, nil
}

// Name returns the configured model name.
func (g *Generator) Name() string {
	return g.cfg.Model
}

// chatRequest is the Ollama /api/chat request body.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the non-streaming /api/chat response body.
type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Generate sends the profile and data summary to the chat endpoint and
// returns the model's report text.
func (g *Generator) Generate(ctx context.Context, req *provider.Request) (string, error) {
	userPrompt := fmt.Sprintf(
		"Client Profile: %d years old, %s.\nRecent Data Summary: %s\n\n"+
			"Please generate a professional periodic assessment and provide the next phase of training and dietary recommendations.",
		req.Age, req.Gender, req.DataSummary,
	)

	body, err := json.Marshal(chatRequest{
		Model: g.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.cfg.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling chat endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("chat endpoint returned status %d: %s", resp.StatusCode, snippet)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}

	if chat.Message.Content == "" {
		return "", fmt.Errorf("chat response contains no content")
	}
	return chat.Message.Content, nil
}

// Ready checks that the Ollama server answers its tags endpoint.
func (g *Generator) Ready(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.BaseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("creating readiness request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("reaching ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}
	return nil
}

// Close releases the HTTP client's idle connections.
func (g *Generator) Close() error {
	g.client.CloseIdleConnections()
	return nil
}
