package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/leadgen/internal/pipeline"
	"github.com/jonathan/leadgen/internal/store"
)

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "city", Message: "is required"}
	assert.Equal(t, "validation error: city - is required", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"validation", &ErrValidation{Field: "limit", Message: "must be positive"}, http.StatusBadRequest},
		{"empty export", &store.EmptyResultError{}, http.StatusNotFound},
		{"run in progress", fmt.Errorf("generate: %w", pipeline.ErrRunInProgress), http.StatusConflict},
		{"store failure", &store.StoreError{Op: "query", Message: "down"}, http.StatusServiceUnavailable},
		{"wrapped store failure", fmt.Errorf("stats: %w", &store.StoreError{Op: "stats"}), http.StatusServiceUnavailable},
		{"joined store failure", errors.Join(errors.New("insert"), &store.StoreError{Op: "insert"}), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}
