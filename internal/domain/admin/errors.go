package admin

import (
	"errors"
	"fmt"
)

// Kind tags the cause of a failed admin operation.
type Kind int

const (
	KindUnknown Kind = iota
	KindUserNotFound
	KindPermissionDenied
	KindNetworkError
	KindInvalidCredential
	KindInvalidEmail
)

func (k Kind) String() string {
	switch k {
	case KindUserNotFound:
		return "user not found"
	case KindPermissionDenied:
		return "permission denied"
	case KindNetworkError:
		return "network error"
	case KindInvalidCredential:
		return "invalid credential"
	case KindInvalidEmail:
		return "invalid email"
	default:
		return "operation failed"
	}
}

var (
	ErrUserNotFound      = &Error{Kind: KindUserNotFound}
	ErrPermissionDenied  = &Error{Kind: KindPermissionDenied}
	ErrNetwork           = &Error{Kind: KindNetworkError}
	ErrInvalidCredential = &Error{Kind: KindInvalidCredential}
	ErrInvalidEmail      = &Error{Kind: KindInvalidEmail}
)

// Error is returned by every operation in this package. Op names the step
// that failed ("lookup", "set claims", ...); Err carries the provider detail.
type Error struct {
	Kind  Kind
	Op    string
	Email string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Email != "" {
		msg += fmt.Sprintf(" (%s)", e.Email)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Kind so that errors.Is(err, ErrUserNotFound) holds for any
// user-not-found failure regardless of Op or detail.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind Kind, op, email string, err error) *Error {
	return &Error{Kind: kind, Op: op, Email: email, Err: err}
}

func IsErrUserNotFound(err error) bool      { return errors.Is(err, ErrUserNotFound) }
func IsErrPermissionDenied(err error) bool  { return errors.Is(err, ErrPermissionDenied) }
func IsErrNetwork(err error) bool           { return errors.Is(err, ErrNetwork) }
func IsErrInvalidCredential(err error) bool { return errors.Is(err, ErrInvalidCredential) }
func IsErrInvalidEmail(err error) bool      { return errors.Is(err, ErrInvalidEmail) }
