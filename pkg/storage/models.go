package storage

import "time"

// User is a registered principal. PasswordHash holds a bcrypt hash; the
// plaintext never reaches storage. Users are never deleted; deactivation
// flips IsActive.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
}

// FitnessRecord is a single body-metrics submission. Measurements are
// imperial (inches, pounds).
type FitnessRecord struct {
	ID            string
	UserID        string
	Age           int
	Gender        string
	HeightIn      float64
	WeightLbs     float64
	ActivityLevel string
	FitnessGoal   string
	CreatedAt     time.Time
}

// FitnessReport is a generated advice report. DataSummary preserves the
// metrics summary that was fed to the model, for debugging and reference.
type FitnessReport struct {
	ID          string
	UserID      string
	Content     string
	DataSummary string
	ModelUsed   string
	CreatedAt   time.Time
}
