// Package report builds fitness reports: it summarizes a user's recent
// body metrics, invokes the configured report generator, and persists the
// result. On generator failure it degrades gracefully to the mock report
// instead of failing the request.
package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fitpulse-dev/fitpulse/pkg/observability"
	"github.com/fitpulse-dev/fitpulse/pkg/provider"
	"github.com/fitpulse-dev/fitpulse/pkg/provider/mock"
	"github.com/fitpulse-dev/fitpulse/pkg/storage"
)

// ErrNoRecords is returned when a user requests a report before
// submitting any fitness data.
var ErrNoRecords = errors.New("no fitness records found")

// summaryWindow is how many recent records feed the data summary: the
// latest as the current state, the one before it for the trend.
const summaryWindow = 2

// Store is the slice of persistence the report service needs.
type Store interface {
	ListRecords(ctx context.Context, userID string, limit int) ([]*storage.FitnessRecord, error)
	CreateReport(ctx context.Context, rep *storage.FitnessReport) error
}

// Service generates and persists fitness reports.
type Service struct {
	store Store
	gen   provider.Generator
	now   func() time.Time
}

// NewService creates a report service using the given store and generator.
func NewService(store Store, gen provider.Generator) *Service {
	return &Service{store: store, gen: gen, now: time.Now}
}

// Generate produces a report for the user's most recent records, stores
// it, and returns the stored report.
//
// A generator failure is logged and replaced by the mock report so the
// endpoint keeps working when the LLM backend is down; only storage
// failures propagate as errors.
func (s *Service) Generate(ctx context.Context, userID string) (*storage.FitnessReport, error) {
	records, err := s.store.ListRecords(ctx, userID, summaryWindow)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	latest := records[0]
	summary := buildSummary(records)

	start := time.Now()
	content, err := s.gen.Generate(ctx, &provider.Request{
		Age:         latest.Age,
		Gender:      latest.Gender,
		DataSummary: summary,
	})
	observability.GeneratorLatency.WithLabelValues(s.gen.Name()).Observe(time.Since(start).Seconds())

	modelUsed := s.gen.Name()
	if err != nil {
		slog.Error("report generation failed, falling back to mock",
			"generator", modelUsed,
			"error", err,
		)
		observability.ReportGenerationsTotal.WithLabelValues(modelUsed, "fallback").Inc()
		content = mock.Report
		modelUsed = "mock"
	} else {
		observability.ReportGenerationsTotal.WithLabelValues(modelUsed, "ok").Inc()
	}

	rep := &storage.FitnessReport{
		ID:          uuid.NewString(),
		UserID:      userID,
		Content:     content,
		DataSummary: summary,
		ModelUsed:   modelUsed,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.CreateReport(ctx, rep); err != nil {
		return nil, fmt.Errorf("storing report: %w", err)
	}
	return rep, nil
}

// Ready reports whether the underlying generator is reachable.
func (s *Service) Ready(ctx context.Context) error {
	return s.gen.Ready(ctx)
}

// buildSummary turns the most recent records (newest first) into the prose
// summary fed to the generator and stored alongside the report.
func buildSummary(records []*storage.FitnessRecord) string {
	latest := records[0]

	if len(records) == 1 {
		return fmt.Sprintf(
			"Current baseline: Weight %.1flbs, Height %.1fin. Goal: %s. Activity Level: %s.",
			latest.WeightLbs, latest.HeightIn, latest.FitnessGoal, latest.ActivityLevel,
		)
	}

	previous := records[1]
	diff := latest.WeightLbs - previous.WeightLbs

	var trend string
	switch {
	case diff > 0:
		trend = fmt.Sprintf("the user has gained %.1flbs", diff)
	case diff < 0:
		trend = fmt.Sprintf("the user has lost %.1flbs", -diff)
	default:
		trend = "the user's weight is unchanged"
	}

	return fmt.Sprintf(
		"Current: Weight %.1flbs, Height %.1fin. Compared to previous record, %s. Goal: %s. Activity Level: %s.",
		latest.WeightLbs, latest.HeightIn, trend, latest.FitnessGoal, latest.ActivityLevel,
	)
}
