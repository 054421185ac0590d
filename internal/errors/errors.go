package errors

import (
	stderrors "errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

type ErrorType string

const (
	ErrTypeAuthentication      ErrorType = "AUTHENTICATION"
	ErrTypeProviderUnavailable ErrorType = "PROVIDER_UNAVAILABLE"
	ErrTypeSurfaceInteraction  ErrorType = "SURFACE_INTERACTION"
	ErrTypePersistence         ErrorType = "PERSISTENCE"
	ErrTypeInvalidConfig       ErrorType = "INVALID_CONFIG"
)

type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Stack   []byte
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func (e *DomainError) StackTrace() []byte {
	return e.Stack
}

func New(errType ErrorType, message string, err error) *DomainError {
	var stack []byte
	if err != nil {
		if stackErr, ok := err.(*goerrors.Error); ok {
			stack = stackErr.Stack()
		} else {
			stack = goerrors.Wrap(err, 2).Stack()
		}
	} else {
		stack = goerrors.New(message).Stack()
	}

	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
		Stack:   stack,
	}
}

// Authentication is fatal to a run: nothing can be processed without a session.
func Authentication(message string, err error) *DomainError {
	return New(ErrTypeAuthentication, message, err)
}

func ProviderUnavailable(message string, err error) *DomainError {
	return New(ErrTypeProviderUnavailable, message, err)
}

func SurfaceInteraction(message string, err error) *DomainError {
	return New(ErrTypeSurfaceInteraction, message, err)
}

func Persistence(message string, err error) *DomainError {
	return New(ErrTypePersistence, message, err)
}

func InvalidConfig(message string, err error) *DomainError {
	return New(ErrTypeInvalidConfig, message, err)
}

// IsType reports whether any error in err's chain is a DomainError of the given type.
func IsType(err error, errType ErrorType) bool {
	var de *DomainError
	if stderrors.As(err, &de) {
		return de.Type == errType
	}
	return false
}

func IsAuthentication(err error) bool {
	return IsType(err, ErrTypeAuthentication)
}

func IsProviderUnavailable(err error) bool {
	return IsType(err, ErrTypeProviderUnavailable)
}

func IsSurfaceInteraction(err error) bool {
	return IsType(err, ErrTypeSurfaceInteraction)
}

func IsPersistence(err error) bool {
	return IsType(err, ErrTypePersistence)
}
