package service

import (
	"context"
	"time"

	"expense_tracker/internal/cache"
	"expense_tracker/internal/events"
	"expense_tracker/internal/logger"
	"expense_tracker/internal/models"
	"expense_tracker/internal/repository"
)

type Authorization interface {
	SignUp(ctx context.Context, username, email, password string) (string, error)
	GenerateToken(ctx context.Context, email, password string) (userID, token string, err error)
	ParseToken(ctx context.Context, accessToken string) (*Claims, error)
	Logout(ctx context.Context, claims *Claims) error
}

// Expenses exposes the per-user collection: record, filter, edit, remove.
type Expenses interface {
	Record(ctx context.Context, userID string, in ExpenseInput) (models.Expense, error)
	List(ctx context.Context, userID string, f ExpenseFilter) ([]models.Expense, error)
	Update(ctx context.Context, callerID, expenseID string, in ExpenseInput) (models.Expense, error)
	Delete(ctx context.Context, callerID, expenseID string) error
}

type Profiles interface {
	Profile(ctx context.Context, userID string) (models.UserProfile, error)
}

// Summary exposes dashboard totals.
type Summary interface {
	Summarize(ctx context.Context, userID string, f ExpenseFilter) (models.Summary, error)
}

// ActivityLog exposes the append-only mutation history with filtering access.
type ActivityLog interface {
	List(ctx context.Context, userID string, f ActivityFilter) ([]models.ActivityEvent, error)
}

// Service aggregates all sub-services.
// Expenses and ActivityLog both have List, so they are named fields rather than embedded.
type Service struct {
	Authorization
	Profiles
	Summary
	Expenses    Expenses
	ActivityLog ActivityLog
}

// Options carries the optional collaborators; nil values fall back to no-ops.
type Options struct {
	Secret      string
	TokenTTL    time.Duration
	Cache       cache.Expenses
	Revocations cache.Revocations
	Publisher   events.Publisher
	Log         *logger.Logger
}

// NewService wires repository layer into concrete services.
func NewService(repos *repository.Repository, opts Options) *Service {
	expenses := NewExpenseService(repos.Accounts, repos.Activity, opts.Cache, opts.Publisher, opts.Log)
	return &Service{
		Authorization: NewAuthService(repos.Accounts, opts.Revocations, opts.Secret, opts.TokenTTL),
		Profiles:      NewProfileService(repos.Accounts),
		Summary:       NewSummaryService(expenses),
		Expenses:      expenses,
		ActivityLog:   NewActivityService(repos.Activity),
	}
}
