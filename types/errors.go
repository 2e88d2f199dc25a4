package types

import "errors"

var (
	ErrValidation      = errors.New("invalid parameters")
	ErrAccountLocked   = errors.New("account locked")
	ErrAccountNotFound = errors.New("account not found")
	ErrNotFound        = errors.New("not found")
	ErrTimeout         = errors.New("validator request timed out")
	ErrTransport       = errors.New("validator connection lost")
	ErrSigning         = errors.New("signing failed")
	ErrUnsupported     = errors.New("not supported")
)

// ErrFilterNotFound also matches ErrNotFound.
var ErrFilterNotFound error = &wrappedError{msg: "filter not found", base: ErrNotFound}

type wrappedError struct {
	msg  string
	base error
}

func (e *wrappedError) Error() string { return e.msg }

func (e *wrappedError) Unwrap() error { return e.base }
