package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/leadgen/internal/pipeline"
	"github.com/jonathan/leadgen/internal/store"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validationErr *ErrValidation
	var emptyErr *store.EmptyResultError

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &emptyErr):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrRunInProgress):
		return http.StatusConflict
	case store.IsStoreError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
