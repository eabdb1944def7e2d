package owner

import (
	"errors"
	"fmt"
)

var (
	// ErrNotOwner is returned when the caller is not the current owner.
	ErrNotOwner = errors.New("caller is not owner")
	// ErrUninitialized is returned when the owner record has never been written.
	ErrUninitialized = errors.New("owner record is not initialized")
	// ErrInvalidAccount is wrapped by every ValidationError.
	ErrInvalidAccount = errors.New("invalid account")
	// ErrUnsupportedUpdate is returned for a nil or unknown Update value.
	ErrUnsupportedUpdate = errors.New("unsupported owner update")
)

// Kind classifies errors returned by the Machine.
type Kind int

// Error kinds.
const (
	KindUnknown Kind = iota
	KindNotOwner
	KindValidation
	KindUninitialized
	KindStorage
)

// String returns a short name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNotOwner:
		return "not_owner"
	case KindValidation:
		return "validation"
	case KindUninitialized:
		return "uninitialized"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// KindOf reports the kind of err.
func KindOf(err error) Kind {
	var (
		validationErr *ValidationError
		storageErr    *StorageError
	)

	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrNotOwner):
		return KindNotOwner
	case errors.As(err, &validationErr), errors.Is(err, ErrUnsupportedUpdate):
		return KindValidation
	case errors.Is(err, ErrUninitialized):
		return KindUninitialized
	case errors.As(err, &storageErr):
		return KindStorage
	default:
		return KindUnknown
	}
}

// ValidationError reports an account string rejected by the Validator.
type ValidationError struct {
	// Input is the rejected string.
	Input string
	// Reason describes why it was rejected.
	Reason string
}

// Error implements error.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid account %q: %s", e.Input, e.Reason)
}

// Unwrap returns ErrInvalidAccount.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidAccount
}

// StorageError wraps a failure of the store or of the record codec.
type StorageError struct {
	// Op is the failed step: load, save, encode or decode.
	Op string
	// Err is the underlying failure.
	Err error
}

// Error implements error.
func (e *StorageError) Error() string {
	return fmt.Sprintf("owner storage %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying failure.
func (e *StorageError) Unwrap() error {
	return e.Err
}

// storageError converts a store or codec failure into a StorageError.
func storageError(op string, err error) error {
	return &StorageError{
		Op:  op,
		Err: err,
	}
}

// validationError converts whatever the Validator returned into a ValidationError.
func validationError(input string, err error) error {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr
	}

	return &ValidationError{
		Input:  input,
		Reason: err.Error(),
	}
}
