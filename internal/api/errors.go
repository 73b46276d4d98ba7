package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lexora-app/mastery-api/internal/api/shared"
	"github.com/lexora-app/mastery-api/internal/domain"
	"github.com/lexora-app/mastery-api/internal/service/achievement"
	"github.com/lexora-app/mastery-api/internal/service/auth"
	"github.com/lexora-app/mastery-api/internal/service/reward"
	"github.com/lexora-app/mastery-api/internal/service/unlock"
	"github.com/lexora-app/mastery-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrSectionNotFound),
		errors.Is(err, store.ErrEntityNotFound),
		errors.Is(err, store.ErrAchievementNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, reward.ErrInsufficientGems),
		errors.Is(err, achievement.ErrNotReadyToClaim),
		errors.Is(err, achievement.ErrAlreadyClaimed),
		errors.Is(err, unlock.ErrNotGemGated):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidAccuracy),
		errors.Is(err, domain.ErrInvalidSessionKind),
		errors.Is(err, domain.ErrInvalidAchievementCategory):
		return http.StatusBadRequest

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrSectionNotFound):
		return "Section not found"

	case errors.Is(err, store.ErrEntityNotFound):
		return "Entity not found"

	case errors.Is(err, store.ErrAchievementNotFound):
		return "Achievement not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, reward.ErrInsufficientGems):
		return "Not enough gems"

	case errors.Is(err, achievement.ErrNotReadyToClaim):
		return "Achievement is not ready to claim"

	case errors.Is(err, achievement.ErrAlreadyClaimed):
		return "Achievement already claimed"

	case errors.Is(err, unlock.ErrNotGemGated):
		return "Entity cannot be unlocked with gems"

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidAccuracy),
		errors.Is(err, domain.ErrInvalidSessionKind),
		errors.Is(err, domain.ErrInvalidAchievementCategory):
		return "Invalid request data"

	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps an internal error to an HTTP status and safe
// message, logs the redacted details and writes the response. A non-empty
// fallbackMessage overrides the generic message for unexpected errors.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, fallbackMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)
	if fallbackMessage != "" && status == http.StatusInternalServerError {
		message = fallbackMessage
	}
	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	if strings.Contains(errMsg, "Field validation") {
		// Example format: "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
