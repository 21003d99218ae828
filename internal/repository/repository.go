package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"expense_tracker/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrVersionConflict = errors.New("user document was modified concurrently")
)

// Accounts stores user documents together with their embedded expenses.
// Lookups return (nil, nil) when nothing matches.
type Accounts interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	FindByExpenseID(ctx context.Context, expenseID string) (*models.User, error)
	// Save writes the whole document if its stored version still equals u.Version,
	// assigning ids to new expenses and bumping u.Version. Otherwise ErrVersionConflict.
	Save(ctx context.Context, u *models.User) error
}

type ActivityRepo interface {
	Append(ctx context.Context, e models.ActivityEvent) error
	List(ctx context.Context, userID string, from, to time.Time, kind string) ([]models.ActivityEvent, error)
}

type Repository struct {
	Accounts Accounts
	Activity ActivityRepo
}

// NewSQLiteRepository wires the SQLite stores and warms the expense index.
func NewSQLiteRepository(ctx context.Context, db *sql.DB) (*Repository, error) {
	accounts := NewUserSQLite(db)
	if err := accounts.RebuildIndex(ctx); err != nil {
		return nil, fmt.Errorf("rebuild expense index: %w", err)
	}
	return &Repository{
		Accounts: accounts,
		Activity: NewActivitySQLite(db),
	}, nil
}

// NewID returns a fresh store identifier.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// assignExpenseIDs gives every expense without an id a fresh one.
func assignExpenseIDs(u *models.User) {
	changed := false
	for i := range u.Expenses {
		if u.Expenses[i].ID == "" {
			u.Expenses[i].ID = NewID()
			changed = true
		}
	}
	if changed {
		u.Reindex()
	}
}

func expenseIDs(u *models.User) []string {
	ids := make([]string, 0, len(u.Expenses))
	for _, e := range u.Expenses {
		ids = append(ids, e.ID)
	}
	return ids
}
