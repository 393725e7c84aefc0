package serviceerr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openkcm/comment-gateway/internal/serviceerr"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name        string
		err         *serviceerr.Error
		expectedMsg string
	}{
		{
			name:        "Error with description",
			err:         &serviceerr.Error{Err: serviceerr.CodeNotFound, Description: "resource not found"},
			expectedMsg: "not_found: resource not found",
		},
		{
			name:        "Error without description",
			err:         &serviceerr.Error{Err: serviceerr.CodeInvalidRequest, Description: ""},
			expectedMsg: "invalid_request",
		},
		{
			name:        "Predefined error - ErrUnknown",
			err:         serviceerr.ErrUnknown,
			expectedMsg: "unknown: unknown error",
		},
		{
			name:        "Predefined error - ErrInvalidRequest",
			err:         serviceerr.ErrInvalidRequest,
			expectedMsg: "invalid_request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedMsg, tt.err.Error())
		})
	}
}

func TestError_HTTPStatus(t *testing.T) {
	tests := []struct {
		name               string
		code               serviceerr.Code
		expectedHTTPStatus int
	}{
		{name: "CodeInvalidRequest returns BadRequest", code: serviceerr.CodeInvalidRequest, expectedHTTPStatus: http.StatusBadRequest},
		{name: "CodeUnauthorized returns Unauthorized", code: serviceerr.CodeUnauthorized, expectedHTTPStatus: http.StatusUnauthorized},
		{name: "CodeSessionExpired returns Unauthorized", code: serviceerr.CodeSessionExpired, expectedHTTPStatus: http.StatusUnauthorized},
		{name: "CodeStateMismatch returns Forbidden", code: serviceerr.CodeStateMismatch, expectedHTTPStatus: http.StatusForbidden},
		{name: "CodeNotFound returns NotFound", code: serviceerr.CodeNotFound, expectedHTTPStatus: http.StatusNotFound},
		{name: "CodeMethodNotAllowed returns MethodNotAllowed", code: serviceerr.CodeMethodNotAllowed, expectedHTTPStatus: http.StatusMethodNotAllowed},
		{name: "CodeUpstreamFailure returns InternalServerError", code: serviceerr.CodeUpstreamFailure, expectedHTTPStatus: http.StatusInternalServerError},
		{name: "CodeConfigurationError returns InternalServerError", code: serviceerr.CodeConfigurationError, expectedHTTPStatus: http.StatusInternalServerError},
		{name: "Unknown code returns InternalServerError", code: serviceerr.Code("unknown_code"), expectedHTTPStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := serviceerr.Error{Err: tt.code}
			assert.Equal(t, tt.expectedHTTPStatus, err.HTTPStatus())
		})
	}
}

func TestError_Is(t *testing.T) {
	wrapped := fmt.Errorf("exchanging code: %w", serviceerr.ErrInvalidRequest.WithDescription("bad_verification_code"))

	assert.ErrorIs(t, wrapped, serviceerr.ErrInvalidRequest)
	assert.NotErrorIs(t, wrapped, serviceerr.ErrUpstreamFailure)
}

func TestFrom(t *testing.T) {
	t.Run("unwraps service errors", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", serviceerr.ErrStateMismatch)
		assert.Same(t, serviceerr.ErrStateMismatch, serviceerr.From(err))
	})

	t.Run("falls back to unknown", func(t *testing.T) {
		assert.Same(t, serviceerr.ErrUnknown, serviceerr.From(errors.New("boom")))
	})
}
