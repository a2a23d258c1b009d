// Package integration provides integration tests for the fitpulse API.
//
// Tests run against a real fitpulse HTTP server backed by a mock Ollama
// chat server, both started in-process using net/http/httptest. Unlike
// the package-level tests, reports here flow through the real Ollama
// generator client.
package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	"github.com/fitpulse-dev/fitpulse/pkg/api"
	"github.com/fitpulse-dev/fitpulse/pkg/auth/password"
	"github.com/fitpulse-dev/fitpulse/pkg/auth/token"
	"github.com/fitpulse-dev/fitpulse/pkg/provider/ollama"
	"github.com/fitpulse-dev/fitpulse/pkg/report"
	"github.com/fitpulse-dev/fitpulse/pkg/server"
	"github.com/fitpulse-dev/fitpulse/pkg/storage/memory"
)

// generatedReport is what the mock chat backend answers with.
const generatedReport = "**Assessment**\n\n- Solid progress, keep the current plan."

// testEnv holds the shared servers for all integration tests.
var testEnv *TestEnvironment

// TestEnvironment holds the fitpulse server and mock LLM backend.
type TestEnvironment struct {
	Server  *httptest.Server
	Backend *httptest.Server
}

// TestMain starts the mock backend and fitpulse server before running tests.
func TestMain(m *testing.M) {
	testEnv = setupTestEnvironment()
	code := m.Run()
	testEnv.Teardown()
	os.Exit(code)
}

// setupTestEnvironment creates a mock Ollama backend and a fitpulse server
// wired to it through the real generator client.
func setupTestEnvironment() *TestEnvironment {
	backend := startMockBackend()

	gen, err := ollama.New(ollama.Config{
		BaseURL: backend.URL,
		Model:   "llama3",
	})
	if err != nil {
		panic(fmt.Sprintf("creating generator: %v", err))
	}

	store := memory.New()
	tokens, err := token.NewService(token.Config{Secret: "integration-secret"})
	if err != nil {
		panic(fmt.Sprintf("creating token service: %v", err))
	}
	reports := report.NewService(store, gen)

	srv := server.New(server.DefaultConfig(), store, tokens, password.NewHasher(4), reports)

	return &TestEnvironment{
		Server:  httptest.NewServer(srv.Handler()),
		Backend: backend,
	}
}

// startMockBackend creates an Ollama-compatible chat server that returns
// the canned report for every request.
func startMockBackend() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"invalid request"}`, http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"model":%q,"message":{"role":"assistant","content":%q},"done":true}`,
			req.Model, generatedReport)
	})
	mux.HandleFunc("GET /api/tags", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{"name":"llama3"}]}`))
	})
	return httptest.NewServer(mux)
}

// Teardown stops both servers.
func (e *TestEnvironment) Teardown() {
	e.Server.Close()
	e.Backend.Close()
}

// postJSON sends a JSON POST to the fitpulse server.
func postJSON(t *testing.T, path, bearer string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshaling body: %v", err)
		}
		reader = strings.NewReader(string(data))
	}
	req, err := http.NewRequest(http.MethodPost, testEnv.Server.URL+path, reader)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("sending request: %v", err)
	}
	return resp
}

// getJSON sends a GET to the fitpulse server.
func getJSON(t *testing.T, path, bearer string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, testEnv.Server.URL+path, nil)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("sending request: %v", err)
	}
	return resp
}

// register creates a user, failing the test on any non-201 outcome.
func register(t *testing.T, username, email, pass string) {
	t.Helper()
	resp := postJSON(t, "/register", "", api.RegisterRequest{
		Username: username,
		Email:    email,
		Password: pass,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("register status = %d, body = %s", resp.StatusCode, body)
	}
}

// login returns a bearer token for the given credentials.
func login(t *testing.T, username, pass string) string {
	t.Helper()
	form := url.Values{"username": {username}, "password": {pass}}
	resp, err := http.PostForm(testEnv.Server.URL+"/login/access-token", form)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("login status = %d, body = %s", resp.StatusCode, body)
	}
	var tok api.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		t.Fatalf("decoding token: %v", err)
	}
	return tok.AccessToken
}
