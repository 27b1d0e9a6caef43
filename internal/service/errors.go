package service

import (
	"errors"
	"fmt"
)

// ValidationError is a rejected request: nothing was mutated and the caller
// may correct the input and retry. Messages are shown to the shop user.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

var (
	// ErrCommitInFlight rejects a commit or a cart change while the session's
	// previous commit has not finished.
	ErrCommitInFlight = errors.New("une validation de vente est deja en cours")

	ErrSessionNotFound = errors.New("session introuvable")

	ErrInvalidPasscode = errors.New("code d'acces invalide")
)
