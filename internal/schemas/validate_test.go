package schemas

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigSchema_IsValidJSON(t *testing.T) {
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(ConfigSchema), &v))
	assert.Equal(t, "object", v["type"])
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		field   string
	}{
		{
			name: "full config",
			content: `{
				"database_url": "postgres://localhost:5432/leadgen",
				"log_level": "debug",
				"log_format": "json",
				"concurrency": 4,
				"default_limit": 50,
				"sources": ["google_maps", "Yelp"],
				"enable_linkedin": true,
				"server": {"port": 8080, "cors_origin": "*"},
				"source_overrides": {"yelp": {"delay": "500ms", "max_attempts": 2}}
			}`,
		},
		{name: "empty object", content: `{}`},
		{name: "unknown field", content: `{"api_key": "x"}`, wantErr: true, field: "(root)"},
		{name: "bad log level", content: `{"log_level": "verbose"}`, wantErr: true, field: "log_level"},
		{name: "zero concurrency", content: `{"concurrency": 0}`, wantErr: true, field: "concurrency"},
		{name: "port out of range", content: `{"server": {"port": 70000}}`, wantErr: true, field: "server.port"},
		{name: "duplicate sources", content: `{"sources": ["yelp", "yelp"]}`, wantErr: true, field: "sources"},
		{name: "bad delay", content: `{"source_overrides": {"yelp": {"delay": "soon"}}}`, wantErr: true, field: "source_overrides.yelp.delay"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig([]byte(tt.content))
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var validationErr *ValidationError
			require.True(t, errors.As(err, &validationErr), "expected ValidationError, got %v", err)
			fields := make([]string, 0, len(validationErr.Errors))
			for _, fe := range validationErr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidateConfig_Malformed(t *testing.T) {
	err := ValidateConfig([]byte(`{ invalid json }`))
	require.Error(t, err)

	var loadErr *SchemaLoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestValidateConfig_ReturnsFieldErrors(t *testing.T) {
	err := ValidateConfig([]byte(`{"concurrency": "two"}`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.NotEmpty(t, validationErr.Errors)
	assert.Equal(t, "concurrency", validationErr.Errors[0].Field)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "1. name: is required")
	assert.Contains(t, errorMsg, "2. age: must be a number")
}
