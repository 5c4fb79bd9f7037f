// Package serviceerr defines the error taxonomy shared by the API client,
// the session manager and the command layer. Every remote failure is folded
// into one of these codes so that callers can pick the right user-facing
// message without inspecting transport details.
package serviceerr

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeNetwork            Code = "network"
	CodeInvalidCredentials Code = "invalid_credentials"
	CodePremiumRequired    Code = "premium_required"
	CodeNoCredits          Code = "no_credits"
	CodeDecode             Code = "decode"
	CodeSurface            Code = "surface"
	CodeMalformedResponse  Code = "malformed_response"
	CodeNotFound           Code = "not_found"
	CodeConflict           Code = "conflict"
	CodeUnknown            Code = "unknown"
)

type Error struct {
	Err         Code
	Description string
}

func (e *Error) Error() string {
	if e.Description == "" {
		return string(e.Err)
	}
	return string(e.Err) + ": " + e.Description
}

var (
	ErrNetwork            = &Error{Err: CodeNetwork, Description: "network failure"}
	ErrInvalidCredentials = &Error{Err: CodeInvalidCredentials, Description: "invalid credentials"}
	ErrPremiumRequired    = &Error{Err: CodePremiumRequired, Description: "premium subscription required"}
	ErrNoCredits          = &Error{Err: CodeNoCredits, Description: "no image credits remaining"}
	ErrDecode             = &Error{Err: CodeDecode, Description: "image decode failed"}
	ErrSurface            = &Error{Err: CodeSurface, Description: "rendering surface unavailable"}
	ErrMalformedResponse  = &Error{Err: CodeMalformedResponse, Description: "malformed server response"}
	ErrNotFound           = &Error{Err: CodeNotFound, Description: "not found"}
	ErrConflict           = &Error{Err: CodeConflict, Description: "already exists"}
	ErrUnknown            = &Error{Err: CodeUnknown, Description: "unknown error"}
)

// FromStatus maps an HTTP response status to a taxonomy error. 2xx statuses
// map to nil.
func FromStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized:
		return ErrInvalidCredentials
	case status == http.StatusForbidden:
		return ErrPremiumRequired
	case status == http.StatusTooManyRequests:
		return ErrNoCredits
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusConflict:
		return ErrConflict
	case status >= 500:
		return ErrNetwork
	default:
		return ErrMalformedResponse
	}
}

// UserMessage renders the message shown to the end user for a taxonomy
// error. Authentication failures deliberately do not distinguish between a
// wrong username and a wrong password.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return "Something went wrong. Please try again."
	}

	switch e.Err {
	case CodeNetwork:
		return "Could not reach the server. Please check your connection."
	case CodeInvalidCredentials:
		return "Invalid username or password."
	case CodePremiumRequired:
		return "This feature requires a premium subscription. Upgrade to continue."
	case CodeNoCredits:
		return "No image credits remaining. Purchase credits to continue processing images."
	case CodeDecode, CodeSurface:
		return "Failed to process image."
	default:
		return "Something went wrong. Please try again."
	}
}
