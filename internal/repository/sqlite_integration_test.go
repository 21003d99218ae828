package repository

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"expense_tracker/internal/models"
	"expense_tracker/internal/repository/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// SQLiteSuite runs the stores against a migrated database file.
type SQLiteSuite struct {
	suite.Suite
	db   *sql.DB
	repo *Repository
	ctx  context.Context
}

func TestSQLiteSuite(t *testing.T) {
	suite.Run(t, new(SQLiteSuite))
}

func (s *SQLiteSuite) SetupTest() {
	s.ctx = context.Background()
	conn, err := db.InitDB(filepath.Join(s.T().TempDir(), "tracker.db"))
	require.NoError(s.T(), err, "failed to create test database")
	s.db = conn

	s.repo, err = NewSQLiteRepository(s.ctx, conn)
	require.NoError(s.T(), err)
}

func (s *SQLiteSuite) TearDownTest() {
	if s.db != nil {
		s.db.Close()
	}
}

func (s *SQLiteSuite) newUser(email string) *models.User {
	u := &models.User{Username: "user", Email: email, PasswordHash: "hash"}
	require.NoError(s.T(), s.repo.Accounts.Create(s.ctx, u))
	return u
}

func (s *SQLiteSuite) TestCreateAndGetByEmail() {
	u := s.newUser("a@example.com")

	got, err := s.repo.Accounts.GetByEmail(s.ctx, "a@example.com")
	require.NoError(s.T(), err)
	require.NotNil(s.T(), got)
	assert.Equal(s.T(), u.ID, got.ID)
	assert.Equal(s.T(), int64(1), got.Version)
	assert.Empty(s.T(), got.Expenses)
}

func (s *SQLiteSuite) TestDuplicateEmailRejected() {
	s.newUser("dup@example.com")

	err := s.repo.Accounts.Create(s.ctx, &models.User{Username: "other", Email: "dup@example.com", PasswordHash: "x"})
	assert.ErrorIs(s.T(), err, ErrDuplicateEmail)
}

func (s *SQLiteSuite) TestMissingUserIsNil() {
	got, err := s.repo.Accounts.GetByID(s.ctx, NewID())
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), got)
}

func (s *SQLiteSuite) TestSaveRoundTripsExpenses() {
	u := s.newUser("b@example.com")
	u.AppendExpense(models.Expense{
		Type:        models.TypeIncome,
		Date:        models.NewDate(2025, time.March, 1),
		Description: "salary",
		Amount:      decimal.RequireFromString("1500.25"),
	})
	require.NoError(s.T(), s.repo.Accounts.Save(s.ctx, u))

	got, err := s.repo.Accounts.GetByID(s.ctx, u.ID)
	require.NoError(s.T(), err)
	require.Len(s.T(), got.Expenses, 1)
	assert.Equal(s.T(), u.Expenses[0].ID, got.Expenses[0].ID)
	assert.True(s.T(), got.Expenses[0].Amount.Equal(decimal.RequireFromString("1500.25")))
	assert.Equal(s.T(), "2025-03-01", got.Expenses[0].Date.String())
	assert.Equal(s.T(), int64(2), got.Version)
}

func (s *SQLiteSuite) TestStaleSaveConflicts() {
	u := s.newUser("c@example.com")

	first, err := s.repo.Accounts.GetByID(s.ctx, u.ID)
	require.NoError(s.T(), err)
	second, err := s.repo.Accounts.GetByID(s.ctx, u.ID)
	require.NoError(s.T(), err)

	first.AppendExpense(models.Expense{Type: models.TypeExpense, Date: models.NewDate(2025, 1, 1), Amount: decimal.NewFromInt(1)})
	require.NoError(s.T(), s.repo.Accounts.Save(s.ctx, first))

	second.AppendExpense(models.Expense{Type: models.TypeExpense, Date: models.NewDate(2025, 1, 2), Amount: decimal.NewFromInt(2)})
	err = s.repo.Accounts.Save(s.ctx, second)
	assert.True(s.T(), errors.Is(err, ErrVersionConflict), "got %v", err)
}

func (s *SQLiteSuite) TestFindByExpenseIDSurvivesRestart() {
	u := s.newUser("d@example.com")
	u.AppendExpense(models.Expense{Type: models.TypeExpense, Date: models.NewDate(2025, 2, 2), Amount: decimal.NewFromInt(9)})
	require.NoError(s.T(), s.repo.Accounts.Save(s.ctx, u))
	expenseID := u.Expenses[0].ID

	// a fresh repository warms its index from the table
	fresh, err := NewSQLiteRepository(s.ctx, s.db)
	require.NoError(s.T(), err)

	owner, err := fresh.Accounts.FindByExpenseID(s.ctx, expenseID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), owner)
	assert.Equal(s.T(), u.ID, owner.ID)

	none, err := fresh.Accounts.FindByExpenseID(s.ctx, NewID())
	assert.NoError(s.T(), err)
	assert.Nil(s.T(), none)
}

func (s *SQLiteSuite) TestActivityListFilters() {
	base := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	events := []models.ActivityEvent{
		{OccurredAt: base, UserID: "u1", ExpenseID: "e1", Kind: models.ActivityCreated, Description: "one"},
		{OccurredAt: base.Add(time.Hour), UserID: "u1", ExpenseID: "e1", Kind: models.ActivityUpdated, Description: "two"},
		{OccurredAt: base.Add(2 * time.Hour), UserID: "u1", ExpenseID: "e1", Kind: models.ActivityDeleted, Description: "three"},
		{OccurredAt: base, UserID: "u2", ExpenseID: "e9", Kind: models.ActivityCreated, Description: "other"},
	}
	for _, e := range events {
		require.NoError(s.T(), s.repo.Activity.Append(s.ctx, e))
	}

	all, err := s.repo.Activity.List(s.ctx, "u1", time.Time{}, time.Time{}, "")
	require.NoError(s.T(), err)
	require.Len(s.T(), all, 3)
	assert.Equal(s.T(), "one", all[0].Description)
	assert.Equal(s.T(), "three", all[2].Description)

	window, err := s.repo.Activity.List(s.ctx, "u1", base.Add(30*time.Minute), base.Add(2*time.Hour), "")
	require.NoError(s.T(), err)
	assert.Len(s.T(), window, 2)

	created, err := s.repo.Activity.List(s.ctx, "u1", time.Time{}, time.Time{}, "created")
	require.NoError(s.T(), err)
	require.Len(s.T(), created, 1)
	assert.Equal(s.T(), "e1", created[0].ExpenseID)
}
