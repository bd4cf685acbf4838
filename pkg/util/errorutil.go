package util

import (
	"errors"
	"fmt"
)

// Error codes for the client-side taxonomy.
const (
	CodeAuthFailed       = "AUTH_FAILED"
	CodeSessionExpired   = "SESSION_EXPIRED"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeRequestFailed    = "REQUEST_FAILED"
	CodeNetworkError     = "NETWORK_ERROR"
)

// ClientError standardizes errors surfaced by the deal room client. Views
// render the Message as a notice; Code decides the propagation path.
type ClientError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Err
}

// NewAuthError reports a failed login exchange or a malformed token payload.
func NewAuthError(message string) error {
	if message == "" {
		message = "login failed"
	}
	return &ClientError{Code: CodeAuthFailed, Message: message}
}

// NewSessionExpired reports an authenticated call rejected by the backend.
func NewSessionExpired(message string) error {
	if message == "" {
		message = "session expired"
	}
	return &ClientError{Code: CodeSessionExpired, Message: message}
}

// NewValidationError reports a client-side precondition failure.
func NewValidationError(message string, details map[string]any) error {
	return &ClientError{Code: CodeValidationFailed, Message: message, Details: details}
}

// NewRequestError reports a non-auth rejection from a collaborator.
func NewRequestError(message string, err error) error {
	if message == "" {
		message = "request failed"
	}
	return &ClientError{Code: CodeRequestFailed, Message: message, Err: err}
}

// NewNetworkError reports an unreachable collaborator.
func NewNetworkError(err error) error {
	return &ClientError{Code: CodeNetworkError, Message: "backend unreachable", Err: err}
}

// ToClientError normalizes any error into a ClientError.
func ToClientError(err error) *ClientError {
	if err == nil {
		return nil
	}
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr
	}
	return &ClientError{Code: CodeRequestFailed, Message: "request failed", Err: err}
}

// IsCode reports whether err carries the given taxonomy code.
func IsCode(err error, code string) bool {
	var clientErr *ClientError
	return errors.As(err, &clientErr) && clientErr.Code == code
}
