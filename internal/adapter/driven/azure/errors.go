package azure

import (
	"errors"
	"fmt"
)

// TransportError wraps a failure to complete the HTTP exchange at all:
// DNS, connection refused, transport-level timeouts and cancellation.
type TransportError struct {
	err error
}

func (e *TransportError) Error() string {
	return "chat completion transport: " + e.err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.err
}

// APIError is a non-2xx response from the provider. Message is the
// envelope's error.message, empty when the body had no envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("chat completion returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("chat completion returned status %d: %s", e.StatusCode, e.Message)
}

// UserMessage returns the provider's message verbatim.
func (e *APIError) UserMessage() string {
	return e.Message
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
