package model

import (
	"errors"
	"fmt"
)

// FallbackErrorMessage is shown when a failure carries no provider message.
const FallbackErrorMessage = "Something went wrong. Please try again."

// ErrMalformedResponse is the parent of every "unexpected response shape"
// failure. Use errors.Is to test for any of them.
var ErrMalformedResponse = errors.New("malformed chat completion response")

// UserFacing is implemented by errors that carry text safe to show verbatim
// in the error banner.
type UserFacing interface {
	error
	UserMessage() string
}

// UserMessage returns the banner text for err: the provider's own message
// when the error carries one, the generic fallback otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var uf UserFacing
	if errors.As(err, &uf) {
		if msg := uf.UserMessage(); msg != "" {
			return msg
		}
	}
	return FallbackErrorMessage
}

var (
	// ErrMissingChoices is returned when a 2xx body has no choices.
	ErrMissingChoices = fmt.Errorf("%w: missing choices", ErrMalformedResponse)

	// ErrMissingMessage is returned when the first choice has no message.
	ErrMissingMessage = fmt.Errorf("%w: missing message", ErrMalformedResponse)
)
