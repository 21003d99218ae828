package service

import (
	"errors"
	"fmt"
)

// Domain errors; the handler package maps them to HTTP statuses.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrExpenseNotFound = errors.New("expense not found")
	ErrOwnerNotFound   = errors.New("user or expense not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid token")
	ErrEmailTaken      = errors.New("email already registered")
	ErrConflict        = errors.New("concurrent modification")
)

// ValidationError carries a client-facing reason for rejecting input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func invalidf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
