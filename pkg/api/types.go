package api

import "time"

// RegisterRequest is the JSON body for POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of a user. The password hash is never
// part of any response type.
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenResponse is the body returned by POST /login/access-token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Activity levels accepted in fitness records.
const (
	ActivitySedentary     = "sedentary"
	ActivityLightlyActive = "lightly_active"
	ActivityHighlyActive  = "highly_active"
)

// Fitness goals accepted in fitness records.
const (
	GoalLoseWeight  = "lose_weight"
	GoalMaintain    = "maintain"
	GoalBuildMuscle = "build_muscle"
)

// RecordRequest is the JSON body for POST /api/v1/records.
// Measurements use imperial units throughout.
type RecordRequest struct {
	Age           int     `json:"age"`
	Gender        string  `json:"gender"`
	HeightIn      float64 `json:"height_in"`
	WeightLbs     float64 `json:"weight_lbs"`
	ActivityLevel string  `json:"activity_level"`
	FitnessGoal   string  `json:"fitness_goal"`
}

// RecordResponse is the public view of a stored fitness record.
type RecordResponse struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Age           int       `json:"age"`
	Gender        string    `json:"gender"`
	HeightIn      float64   `json:"height_in"`
	WeightLbs     float64   `json:"weight_lbs"`
	ActivityLevel string    `json:"activity_level"`
	FitnessGoal   string    `json:"fitness_goal"`
	CreatedAt     time.Time `json:"created_at"`
}

// ReportResponse is the body returned by POST /api/v1/reports/generate.
type ReportResponse struct {
	ReportID  string    `json:"report_id"`
	ModelUsed string    `json:"model_used"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// HealthResponse is the body returned by GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	LLM    string `json:"llm"`
}
