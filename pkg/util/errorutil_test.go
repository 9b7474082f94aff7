package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"no rows", fmt.Errorf("get call: %w", pgx.ErrNoRows), "NOT_FOUND", http.StatusNotFound},
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, "CONFLICT", http.StatusConflict},
		{"foreign key", &pgconn.PgError{Code: "23503"}, "INTERNAL_ERROR", http.StatusInternalServerError},
		{"passthrough", NewForbidden("supervisors only"), "FORBIDDEN", http.StatusForbidden},
		{"wrapped domain", fmt.Errorf("ctx: %w", NewNotFound("ticket", nil)), "NOT_FOUND", http.StatusNotFound},
		{"unknown", errors.New("boom"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			de := ToDomainError(tt.err)
			require.NotNil(t, de)
			assert.Equal(t, tt.code, de.Code)
			assert.Equal(t, tt.status, de.HTTPStatus)
		})
	}

	assert.Nil(t, ToDomainError(nil))
	assert.NoError(t, MapError(nil))
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "tickets_ticket_number_key"})

	assert.True(t, IsUniqueViolation(err, ""))
	assert.True(t, IsUniqueViolation(err, "tickets_ticket_number_key"))
	assert.False(t, IsUniqueViolation(err, "users_email_key"))
	assert.False(t, IsUniqueViolation(errors.New("plain"), ""))
}

func TestValidationErrorDetails(t *testing.T) {
	err := NewValidationError("invalid call", map[string]string{"duration": "must be at least 0"})

	var de *DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, http.StatusUnprocessableEntity, de.HTTPStatus)
	assert.Equal(t, map[string]string{"duration": "must be at least 0"}, de.Details["fields"])
	assert.True(t, IsCode(err, "VALIDATION_FAILED"))

	de = ToDomainError(NewValidationError("empty", nil))
	assert.Nil(t, de.Details)
}

func TestInternalErrorUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := NewInternalError(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal server error: disk full", err.Error())
}
