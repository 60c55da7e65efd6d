package analysis

import "errors"

var (
	// ErrInvalidInput is wrapped by every InputError.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingConfiguration means the service was started without the
	// credentials its generator needs.
	ErrMissingConfiguration = errors.New("missing configuration")
)

// InputError rejects a request before any generation happens. Message is
// safe to show to the caller.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

func invalidInput(msg string) error {
	return &InputError{Message: msg}
}
