// Package mock provides an always-available report generator that returns
// a fixed notice instead of calling an LLM. It keeps the backend fully
// functional for development and for deployments without an LLM service.
package mock

import (
	"context"

	"github.com/fitpulse-dev/fitpulse/pkg/provider"
)

// Report is the fixed text returned for every request.
const Report = `[System Notice] LLM generation is disabled or temporarily unavailable.
This is a mock fitness report to ensure the system remains functional.
Please enable the LLM in settings to receive real, personalized fitness reports.`

// Generator is the mock provider.Generator.
type Generator struct{}

// Ensure Generator implements provider.Generator at compile time.
var _ provider.Generator = (*Generator)(nil)

// New creates a mock generator.
func New() *Generator {
	return &Generator{}
}

// Name returns the generator identifier.
func (g *Generator) Name() string {
	return "mock"
}

// Generate returns the fixed mock report.
func (g *Generator) Generate(_ context.Context, _ *provider.Request) (string, error) {
	return Report, nil
}

// Ready always succeeds.
func (g *Generator) Ready(_ context.Context) error {
	return nil
}

// Close is a no-op.
func (g *Generator) Close() error {
	return nil
}
