package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ikkim/storefront-backend/internal/app/repository"
	appErrors "github.com/ikkim/storefront-backend/internal/errors"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrProductNotFound = errors.New("product not found")
	ErrConflict        = errors.New("concurrent modification")
	ErrTransient       = errors.New("temporary storage failure")

	ErrFavoriteNotFound = repository.ErrFavoriteNotFound
	ErrFavoriteExists   = repository.ErrFavoriteExists
)

// ValidationError lists invalid fields; it matches ErrValidation via errors.Is
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// translateStorageError maps errors that crossed the storage boundary.
// Known sentinels pass through.
func translateStorageError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrFavoriteNotFound),
		errors.Is(err, ErrFavoriteExists),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrTransient):
		return err
	case appErrors.IsRetryable(err):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return fmt.Errorf("%w: %v", ErrTransient, err)
	}
}
