package api

import (
	"fmt"
	"strings"
)

// Validation limits for registration input.
const (
	MinPasswordLength = 6
	MaxUsernameLength = 64
	MaxEmailLength    = 254
)

// ValidateRegister checks a RegisterRequest for validity. It returns an
// *APIError describing the first validation failure, or nil if the request
// is valid.
func ValidateRegister(req *RegisterRequest) *APIError {
	if req.Username == "" {
		return NewInvalidRequestError("username", "username is required")
	}
	if len(req.Username) > MaxUsernameLength {
		return NewInvalidRequestError("username",
			fmt.Sprintf("username exceeds maximum of %d characters", MaxUsernameLength))
	}
	if strings.ContainsAny(req.Username, " \t\n") {
		return NewInvalidRequestError("username", "username must not contain whitespace")
	}

	if req.Email == "" {
		return NewInvalidRequestError("email", "email is required")
	}
	if len(req.Email) > MaxEmailLength {
		return NewInvalidRequestError("email",
			fmt.Sprintf("email exceeds maximum of %d characters", MaxEmailLength))
	}
	// Minimal structural check only; deliverability is not our concern.
	at := strings.Index(req.Email, "@")
	if at <= 0 || at == len(req.Email)-1 {
		return NewInvalidRequestError("email", "email must be a valid address")
	}

	if len(req.Password) < MinPasswordLength {
		return NewInvalidRequestError("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	return nil
}

// ValidateRecord checks a RecordRequest for validity. It returns an
// *APIError describing the first validation failure, or nil if the request
// is valid.
func ValidateRecord(req *RecordRequest) *APIError {
	if req.Age <= 0 || req.Age > 120 {
		return NewInvalidRequestError("age", "age must be between 1 and 120")
	}
	if req.Gender == "" {
		return NewInvalidRequestError("gender", "gender is required")
	}
	if req.HeightIn <= 0 {
		return NewInvalidRequestError("height_in", "height_in must be positive")
	}
	if req.WeightLbs <= 0 {
		return NewInvalidRequestError("weight_lbs", "weight_lbs must be positive")
	}

	switch req.ActivityLevel {
	case ActivitySedentary, ActivityLightlyActive, ActivityHighlyActive:
	default:
		return NewInvalidRequestError("activity_level",
			"activity_level must be 'sedentary', 'lightly_active', or 'highly_active'")
	}

	switch req.FitnessGoal {
	case GoalLoseWeight, GoalMaintain, GoalBuildMuscle:
	default:
		return NewInvalidRequestError("fitness_goal",
			"fitness_goal must be 'lose_weight', 'maintain', or 'build_muscle'")
	}

	return nil
}
