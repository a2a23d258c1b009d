package server

import (
	"context"

	"github.com/fitpulse-dev/fitpulse/pkg/storage"
)

// Store is the persistence interface consumed by the HTTP handlers and the
// report service. Implementations live in pkg/storage/memory and
// pkg/storage/postgres.
//
// Implementations must be safe for concurrent use. CreateUser must
// guarantee that of any set of racing creates sharing a username or email,
// exactly one succeeds and the rest return storage.ErrDuplicate.
type Store interface {
	// CreateUser persists a new user. Returns storage.ErrDuplicate if the
	// username or email is already taken.
	CreateUser(ctx context.Context, u *storage.User) error

	// GetUserByUsername returns the user with the given username, or
	// storage.ErrNotFound.
	GetUserByUsername(ctx context.Context, username string) (*storage.User, error)

	// GetUserByEmail returns the user with the given email, or
	// storage.ErrNotFound.
	GetUserByEmail(ctx context.Context, email string) (*storage.User, error)

	// CreateRecord persists a fitness record.
	CreateRecord(ctx context.Context, r *storage.FitnessRecord) error

	// ListRecords returns the user's most recent fitness records, newest
	// first, at most limit entries.
	ListRecords(ctx context.Context, userID string, limit int) ([]*storage.FitnessRecord, error)

	// CreateReport persists a generated fitness report.
	CreateReport(ctx context.Context, rep *storage.FitnessReport) error

	// HealthCheck verifies the backing store is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases storage resources.
	Close() error
}
