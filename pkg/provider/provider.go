// Package provider abstracts the report-generation backend. Two
// interchangeable implementations exist: an external LLM service
// (pkg/provider/ollama) and an always-available mock
// (pkg/provider/mock). The implementation is selected once at startup
// from configuration and invoked identically by callers thereafter.
package provider

import "context"

// Request carries the client profile and metrics summary a report is
// generated from.
type Request struct {
	// Age and Gender describe the client profile.
	Age    int
	Gender string

	// DataSummary is the prose summary of recent body metrics, built by
	// pkg/report from the user's stored records.
	DataSummary string
}

// Generator produces a fitness report from a request.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Generator interface {
	// Name returns the generator identifier used in logs, metrics, and
	// the model_used field of persisted reports.
	Name() string

	// Generate produces the report text.
	Generate(ctx context.Context, req *Request) (string, error)

	// Ready reports whether the backend is reachable. Used by the
	// health endpoint.
	Ready(ctx context.Context) error

	// Close releases generator resources.
	Close() error
}
