package core

import "errors"

// Error codes for protocol-visible errors.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeInvalidMessage = "invalid_message"
	ErrCodeRateLimited    = "rate_limited"
)

var (
	// ErrReservedPrefix is returned when a requested name starts with GuestPrefix.
	ErrReservedPrefix = errors.New("name uses reserved prefix")
	// ErrNameTaken is returned when a requested name is held by a connection.
	ErrNameTaken = errors.New("name already in use")
	// ErrUnknownConnection means a lookup hit a connection that is not tracked.
	ErrUnknownConnection = errors.New("unknown connection")
)

// Rejection texts delivered in nameResult events.
const (
	msgReservedPrefix = `Names cannot begin with "Guest".`
	msgNameTaken      = "That name is already in use."
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

// NewCoreError builds a CoreError.
func NewCoreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
