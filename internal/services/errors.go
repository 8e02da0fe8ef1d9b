package services

import "errors"

var (
	// ErrInvalidInput is returned when required fields are missing or unknown
	// fields are supplied.
	ErrInvalidInput = errors.New("invalid input")
	// ErrEmptyValue is returned when a supplied field is blank.
	ErrEmptyValue         = errors.New("empty value")
	ErrConflict           = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoToken            = errors.New("no token provided")
	ErrInvalidToken       = errors.New("invalid token")
	ErrExpiredToken       = errors.New("expired token")
	ErrNotFound           = errors.New("not found")
)

// InputError carries a client facing message for a validation failure.
// It unwraps to ErrInvalidInput or ErrEmptyValue.
type InputError struct {
	Err     error
	Message string
}

func (e *InputError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func invalidInput(message string) error {
	return &InputError{Err: ErrInvalidInput, Message: message}
}

func emptyValue() error {
	return &InputError{Err: ErrEmptyValue, Message: "Empty values provided."}
}
