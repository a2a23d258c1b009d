// Package postgres provides a PostgreSQL implementation of server.Store.
// It uses pgx/v5 for connection pooling; the unique constraints on
// users.username and users.email are what enforce the exactly-one-winner
// guarantee for concurrent registrations.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fitpulse-dev/fitpulse/pkg/server"
	"github.com/fitpulse-dev/fitpulse/pkg/storage"
)

// Store is a PostgreSQL-backed server.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements server.Store at compile time.
var _ server.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Verify connectivity.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

// CreateUser persists a new user. A unique violation on username or email
// is reported as storage.ErrDuplicate.
func (s *Store) CreateUser(ctx context.Context, u *storage.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, username, email, password_hash, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.IsActive, u.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicate
		}
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

// GetUserByUsername returns the user with the given username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*storage.User, error) {
	return s.getUser(ctx, "username", username)
}

// GetUserByEmail returns the user with the given email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*storage.User, error) {
	return s.getUser(ctx, "email", email)
}

// getUser is the internal lookup implementation. column must be one of the
// fixed identifiers above, never user input.
func (s *Store) getUser(ctx context.Context, column, value string) (*storage.User, error) {
	query := fmt.Sprintf(`
		SELECT id, username, email, password_hash, is_active, created_at
		FROM users
		WHERE %s = $1
	`, column)

	var u storage.User
	err := s.pool.QueryRow(ctx, query, value).Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return &u, nil
}

// SetActive flips a user's active flag. Used by tests and administrative
// tooling; there is no HTTP endpoint for it.
func (s *Store) SetActive(ctx context.Context, userID string, active bool) error {
	tag, err := s.pool.Exec(ctx,
		"UPDATE users SET is_active = $2 WHERE id = $1", userID, active)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// CreateRecord persists a fitness record.
func (s *Store) CreateRecord(ctx context.Context, r *storage.FitnessRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO fitness_records (
			id, user_id, age, gender, height_in, weight_lbs,
			activity_level, fitness_goal, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.ID, r.UserID, r.Age, r.Gender, r.HeightIn, r.WeightLbs,
		r.ActivityLevel, r.FitnessGoal, r.CreatedAt)

	if err != nil {
		return fmt.Errorf("inserting fitness record: %w", err)
	}
	return nil
}

// ListRecords returns the user's most recent records, newest first.
func (s *Store) ListRecords(ctx context.Context, userID string, limit int) ([]*storage.FitnessRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, age, gender, height_in, weight_lbs,
		       activity_level, fitness_goal, created_at
		FROM fitness_records
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying fitness records: %w", err)
	}
	defer rows.Close()

	var out []*storage.FitnessRecord
	for rows.Next() {
		var r storage.FitnessRecord
		if err := rows.Scan(
			&r.ID, &r.UserID, &r.Age, &r.Gender, &r.HeightIn, &r.WeightLbs,
			&r.ActivityLevel, &r.FitnessGoal, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning fitness record: %w", err)
		}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating fitness records: %w", err)
	}
	return out, nil
}

// CreateReport persists a generated report.
func (s *Store) CreateReport(ctx context.Context, rep *storage.FitnessReport) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO fitness_reports (id, user_id, content, data_summary, model_used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rep.ID, rep.UserID, rep.Content, rep.DataSummary, rep.ModelUsed, rep.CreatedAt)

	if err != nil {
		return fmt.Errorf("inserting fitness report: %w", err)
	}
	return nil
}

// HealthCheck pings the database.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
