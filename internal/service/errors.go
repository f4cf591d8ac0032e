package service

import (
	"errors"
	"fmt"

	"wallet_booking/internal/store"
)

// Error kinds. Handlers map these to HTTP status codes with errors.Is.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoSeats           = errors.New("no seats")
	ErrUpstream          = errors.New("upstream unavailable")
)

// Error is a failure safe to show to the caller
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func invalid(format string, args ...any) error { return newError(ErrInvalidInput, format, args...) }

func notFound(what string) error { return newError(ErrNotFound, "%s not found", what) }

func conflict(format string, args ...any) error { return newError(ErrConflict, format, args...) }

var (
	errInsufficient = &Error{Kind: ErrInsufficientFunds, Msg: "Insufficient balance"}
	errAdminOnly    = &Error{Kind: ErrForbidden, Msg: "Admin access required"}
	errNoSeats      = &Error{Kind: ErrNoSeats, Msg: "Not enough seats"}
	errQuotes       = &Error{Kind: ErrUpstream, Msg: "Price service unavailable"}
)

// fromStore converts store errors into caller-facing ones.
// what names the record for not-found and duplicate messages.
func fromStore(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return notFound(what)
	case errors.Is(err, store.ErrDuplicate):
		return conflict("%s already exists", what)
	case errors.Is(err, store.ErrInsufficientFunds):
		return errInsufficient
	case errors.Is(err, store.ErrNoSeats):
		return errNoSeats
	case errors.Is(err, store.ErrNotPending):
		return conflict("%s has already been settled", what)
	case errors.Is(err, store.ErrInUse):
		return conflict("%s is still referenced", what)
	}
	return err
}
