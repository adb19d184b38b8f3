package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrorInfo is a parsed, client-safe error
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps a storage error to a code and a message that never leaks
// driver details
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}

	if IsDuplicateKey(err) {
		if strings.Contains(strings.ToLower(err.Error()), "favorites") {
			return ErrorInfo{Code: ResourceAlreadyExists, Message: "Product is already in favorites"}
		}
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Already exists"}
	}

	errLower := strings.ToLower(err.Error())

	if strings.Contains(errLower, "foreign key constraint") {
		if strings.Contains(errLower, "product") {
			return ErrorInfo{Code: ProductNotFound, Message: "Product not found"}
		}
		return ErrorInfo{Code: ResourceNotFound, Message: "Referenced record not found"}
	}

	if strings.Contains(errLower, "not-null constraint") || strings.Contains(errLower, "not null constraint") {
		return ErrorInfo{Code: ValidationRequired, Message: "A required field is missing"}
	}

	if strings.Contains(errLower, "check constraint") {
		return ErrorInfo{Code: ValidationInvalidInput, Message: "Invalid input"}
	}

	if IsRetryable(err) {
		return ErrorInfo{Code: ResourceConflict, Message: "Concurrent update, please retry"}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return ErrorInfo{Code: InternalTransient, Message: "Temporarily unavailable, please try again"}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
}

// IsDuplicateKey reports a unique constraint violation from postgres or sqlite.
// Requires gorm.Config.TranslateError or falls back to message matching.
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	errLower := strings.ToLower(err.Error())
	return strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint")
}

// IsRetryable reports storage contention that is worth exactly one retry:
// postgres deadlock (40P01), serialization failure (40001), sqlite busy.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	errLower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errLower, "deadlock detected"),
		strings.Contains(errLower, "40p01"),
		strings.Contains(errLower, "could not serialize"),
		strings.Contains(errLower, "40001"),
		strings.Contains(errLower, "database is locked"),
		strings.Contains(errLower, "database table is locked"):
		return true
	}
	return false
}

func notFoundMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "favorite") {
		return "Favorite not found"
	}
	if strings.Contains(contextLower, "product") {
		return "Product not found"
	}
	return "Requested data not found"
}

func defaultMessage(context string) string {
	contextLower := strings.ToLower(context)

	if strings.Contains(contextLower, "create") {
		return "Failed to create, please try again later"
	}
	if strings.Contains(contextLower, "update") {
		return "Failed to update, please try again later"
	}
	if strings.Contains(contextLower, "delete") {
		return "Failed to delete, please try again later"
	}
	return "Something went wrong, please try again later"
}
