package api

import (
	"github.com/google/uuid"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ReviewRequest defines the payload for recording a card review outcome.
type ReviewRequest struct {
	// KnewIt reports whether the learner answered the card correctly.
	KnewIt bool `json:"knew_it"`

	// SectionID optionally names the section the review happened in, so
	// the queue-cleared bonus can be checked.
	SectionID string `json:"section_id,omitempty"`
}

// SessionRequest defines the payload for completing a practice session.
type SessionRequest struct {
	Kind            string  `json:"kind"             validate:"required,oneof=practice flashcard listening spelling matching hangman test"`
	WordsStudied    int     `json:"words_studied"    validate:"min=0"`
	Accuracy        float64 `json:"accuracy"         validate:"min=0,max=1"`
	DurationSeconds int     `json:"duration_seconds" validate:"min=0"`
}

// BrowseRequest defines the payload for the section-browsed endpoint.
type BrowseRequest struct {
	SectionID string `json:"section_id" validate:"required"`
}
