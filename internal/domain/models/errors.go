package models

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is; the concrete DomainError carries the client message.
var (
	ErrValidation           = errors.New("validation error")
	ErrConflict             = errors.New("conflict")
	ErrAuth                 = errors.New("authentication failed")
	ErrPayloadTooLarge      = errors.New("payload too large")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
)

// DomainError is a client-facing failure: Kind selects the status code, Message is shown as is.
type DomainError struct {
	Kind    error
	Message string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Kind
}

func NewValidationError(msg string) error {
	return &DomainError{Kind: ErrValidation, Message: msg}
}

func NewConflictError(msg string) error {
	return &DomainError{Kind: ErrConflict, Message: msg}
}

func NewAuthError(msg string) error {
	return &DomainError{Kind: ErrAuth, Message: msg}
}

func NewPayloadTooLargeError(msg string) error {
	return &DomainError{Kind: ErrPayloadTooLarge, Message: msg}
}

func NewUnsupportedMediaTypeError(msg string) error {
	return &DomainError{Kind: ErrUnsupportedMediaType, Message: msg}
}

// MessageOf extracts the client message from a wrapped DomainError.
func MessageOf(err error) (string, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message, true
	}

	return "", false
}
