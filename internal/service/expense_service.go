package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"expense_tracker/internal/cache"
	"expense_tracker/internal/events"
	"expense_tracker/internal/logger"
	"expense_tracker/internal/models"
	"expense_tracker/internal/repository"

	"github.com/shopspring/decimal"
)

// maxWriteAttempts bounds the reload-and-reapply loop on version conflicts.
const maxWriteAttempts = 3

// ExpenseInput is the client-controlled part of an expense.
type ExpenseInput struct {
	Type        models.ExpenseType
	Date        models.Date
	Description string
	Amount      decimal.Decimal
}

func (in ExpenseInput) validate() error {
	e := models.Expense{Type: in.Type, Date: in.Date}
	if err := e.Validate(); err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	return nil
}

type ExpenseService struct {
	accounts  repository.Accounts
	activity  repository.ActivityRepo
	cache     cache.Expenses
	publisher events.Publisher
	log       *logger.Logger
}

func NewExpenseService(accounts repository.Accounts, activity repository.ActivityRepo, c cache.Expenses, p events.Publisher, log *logger.Logger) *ExpenseService {
	if c == nil {
		c = cache.Noop{}
	}
	if p == nil {
		p = events.Noop{}
	}
	return &ExpenseService{accounts: accounts, activity: activity, cache: c, publisher: p, log: log}
}

// Record appends a new entry to the user's collection.
func (s *ExpenseService) Record(ctx context.Context, userID string, in ExpenseInput) (models.Expense, error) {
	if err := in.validate(); err != nil {
		return models.Expense{}, err
	}

	var pos int
	u, err := s.mutate(ctx,
		func(ctx context.Context) (*models.User, error) {
			u, err := s.accounts.GetByID(ctx, userID)
			if err != nil {
				return nil, err
			}
			if u == nil {
				return nil, ErrUserNotFound
			}
			return u, nil
		},
		func(u *models.User) error {
			u.AppendExpense(models.Expense{
				Type:        in.Type,
				Date:        in.Date,
				Description: in.Description,
				Amount:      in.Amount,
			})
			pos = len(u.Expenses) - 1
			return nil
		})
	if err != nil {
		return models.Expense{}, err
	}

	created := u.Expenses[pos]
	s.afterWrite(ctx, u, created, models.ActivityCreated, "expense recorded")
	return created, nil
}

// List returns the user's entries matching f.
func (s *ExpenseService) List(ctx context.Context, userID string, f ExpenseFilter) ([]models.Expense, error) {
	expenses, err := s.collection(ctx, userID)
	if err != nil {
		return nil, err
	}
	return f.Apply(expenses), nil
}

// Update overwrites all four client fields of an entry owned by callerID.
func (s *ExpenseService) Update(ctx context.Context, callerID, expenseID string, in ExpenseInput) (models.Expense, error) {
	if err := in.validate(); err != nil {
		return models.Expense{}, err
	}

	var pos int
	u, err := s.mutate(ctx,
		s.ownerOf(expenseID, callerID, ErrExpenseNotFound),
		func(u *models.User) error {
			i, ok := u.Locate(expenseID)
			if !ok {
				return ErrExpenseNotFound
			}
			e := &u.Expenses[i]
			e.Amount = in.Amount
			e.Description = in.Description
			e.Type = in.Type
			e.Date = in.Date
			pos = i
			return nil
		})
	if err != nil {
		return models.Expense{}, err
	}

	updated := u.Expenses[pos]
	s.afterWrite(ctx, u, updated, models.ActivityUpdated, "expense updated")
	return updated, nil
}

// Delete removes an entry owned by callerID.
func (s *ExpenseService) Delete(ctx context.Context, callerID, expenseID string) error {
	var removed models.Expense
	u, err := s.mutate(ctx,
		s.ownerOf(expenseID, callerID, ErrOwnerNotFound),
		func(u *models.User) error {
			i, ok := u.Locate(expenseID)
			if !ok {
				return ErrExpenseNotFound
			}
			removed = u.Expenses[i]
			u.RemoveExpenseAt(i)
			return nil
		})
	if err != nil {
		return err
	}

	s.afterWrite(ctx, u, removed, models.ActivityDeleted, "expense deleted")
	return nil
}

// ownerOf loads the user holding expenseID. A foreign owner is reported as notFound
// so that callers cannot probe other users' ids.
func (s *ExpenseService) ownerOf(expenseID, callerID string, notFound error) func(context.Context) (*models.User, error) {
	return func(ctx context.Context) (*models.User, error) {
		u, err := s.accounts.FindByExpenseID(ctx, expenseID)
		if err != nil {
			return nil, err
		}
		if u == nil || u.ID != callerID {
			return nil, notFound
		}
		return u, nil
	}
}

// mutate runs load → apply → Save, starting over from a fresh load when another writer
// got there first.
func (s *ExpenseService) mutate(ctx context.Context, load func(context.Context) (*models.User, error), apply func(*models.User) error) (*models.User, error) {
	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		u, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := apply(u); err != nil {
			return nil, err
		}
		err = s.accounts.Save(ctx, u)
		if err == nil {
			return u, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, fmt.Errorf("save user %s: %w", u.ID, err)
		}
		if s.log != nil {
			s.log.Debugw("version conflict", "user_id", u.ID, "attempt", attempt)
		}
	}
	return nil, ErrConflict
}

func (s *ExpenseService) collection(ctx context.Context, userID string) ([]models.Expense, error) {
	if cached, ok, err := s.cache.Get(ctx, userID); err != nil {
		s.warn("expense_cache_get_failed", err, "user_id", userID)
	} else if ok {
		return cached, nil
	}

	u, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	if err := s.cache.Set(ctx, userID, u.Expenses); err != nil {
		s.warn("expense_cache_set_failed", err, "user_id", userID)
	}
	return u.Expenses, nil
}

// afterWrite runs the side effects of a committed mutation. None of them can fail the request.
func (s *ExpenseService) afterWrite(ctx context.Context, u *models.User, e models.Expense, kind, msg string) {
	if err := s.cache.Invalidate(ctx, u.ID); err != nil {
		s.warn("expense_cache_invalidate_failed", err, "user_id", u.ID)
	}

	now := time.Now().UTC()
	if s.activity != nil {
		err := s.activity.Append(ctx, models.ActivityEvent{
			OccurredAt:  now,
			UserID:      u.ID,
			ExpenseID:   e.ID,
			Kind:        kind,
			Description: msg,
			Metadata: map[string]any{
				"type":    e.Type,
				"date":    e.Date.String(),
				"amount":  e.Amount.String(),
				"version": u.Version,
			},
		})
		if err != nil {
			s.warn("activity_append_failed", err, "user_id", u.ID, "expense_id", e.ID)
		}
	}

	err := s.publisher.Publish(ctx, events.ExpenseEvent{
		Kind:       kind,
		UserID:     u.ID,
		Expense:    e,
		Version:    u.Version,
		OccurredAt: now,
	})
	if err != nil {
		s.warn("expense_event_publish_failed", err, "user_id", u.ID, "expense_id", e.ID)
	}
}

func (s *ExpenseService) warn(event string, err error, kv ...any) {
	if s.log == nil {
		return
	}
	s.log.Warnw(event, append(kv, "err", err)...)
}
