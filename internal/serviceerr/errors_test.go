package serviceerr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/styleai/styleai/internal/serviceerr"
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
			err:         &serviceerr.Error{Err: serviceerr.CodeNetwork, Description: ""},
			expectedMsg: "network",
		},
		{
			name:        "Predefined error - ErrUnknown",
			err:         serviceerr.ErrUnknown,
			expectedMsg: "unknown: unknown error",
		},
		{
			name:        "Predefined error - ErrInvalidCredentials",
			err:         serviceerr.ErrInvalidCredentials,
			expectedMsg: "invalid_credentials: invalid credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Helper()
			assert.Equal(t, tt.expectedMsg, tt.err.Error())
		})
	}
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		expectedErr error
	}{
		{name: "OK maps to nil", status: http.StatusOK, expectedErr: nil},
		{name: "Created maps to nil", status: http.StatusCreated, expectedErr: nil},
		{name: "Unauthorized maps to invalid credentials", status: http.StatusUnauthorized, expectedErr: serviceerr.ErrInvalidCredentials},
		{name: "Forbidden maps to premium required", status: http.StatusForbidden, expectedErr: serviceerr.ErrPremiumRequired},
		{name: "TooManyRequests maps to no credits", status: http.StatusTooManyRequests, expectedErr: serviceerr.ErrNoCredits},
		{name: "NotFound maps to not found", status: http.StatusNotFound, expectedErr: serviceerr.ErrNotFound},
		{name: "Conflict maps to conflict", status: http.StatusConflict, expectedErr: serviceerr.ErrConflict},
		{name: "InternalServerError maps to network", status: http.StatusInternalServerError, expectedErr: serviceerr.ErrNetwork},
		{name: "BadGateway maps to network", status: http.StatusBadGateway, expectedErr: serviceerr.ErrNetwork},
		{name: "BadRequest maps to malformed response", status: http.StatusBadRequest, expectedErr: serviceerr.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Helper()
			assert.Equal(t, tt.expectedErr, serviceerr.FromStatus(tt.status))
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "network error",
			err:      serviceerr.ErrNetwork,
			expected: "Could not reach the server. Please check your connection.",
		},
		{
			name:     "invalid credentials",
			err:      serviceerr.ErrInvalidCredentials,
			expected: "Invalid username or password.",
		},
		{
			name:     "premium required",
			err:      serviceerr.ErrPremiumRequired,
			expected: "This feature requires a premium subscription. Upgrade to continue.",
		},
		{
			name:     "no credits",
			err:      serviceerr.ErrNoCredits,
			expected: "No image credits remaining. Purchase credits to continue processing images.",
		},
		{
			name:     "decode error",
			err:      serviceerr.ErrDecode,
			expected: "Failed to process image.",
		},
		{
			name:     "surface error",
			err:      serviceerr.ErrSurface,
			expected: "Failed to process image.",
		},
		{
			name:     "wrapped taxonomy error",
			err:      fmt.Errorf("uploading image: %w", serviceerr.ErrNoCredits),
			expected: "No image credits remaining. Purchase credits to continue processing images.",
		},
		{
			name:     "foreign error",
			err:      errors.New("boom"),
			expected: "Something went wrong. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Helper()
			assert.Equal(t, tt.expected, serviceerr.UserMessage(tt.err))
		})
	}
}
