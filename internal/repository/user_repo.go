package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"expense_tracker/internal/models"
)

// UserSQLite keeps one row per user; the embedded expenses live in a JSON array column.
type UserSQLite struct {
	db    *sql.DB
	index *ExpenseIndex
}

func NewUserSQLite(db *sql.DB) *UserSQLite {
	return &UserSQLite{db: db, index: NewExpenseIndex()}
}

// Ensure implementation of Accounts interface at compile time.
var _ Accounts = (*UserSQLite)(nil)

const (
	userColumns = `id, username, email, password_hash, expenses, version`

	insertUserSQL        = `INSERT INTO users (id, username, email, password_hash, expenses, version) VALUES (?, ?, ?, ?, ?, ?)`
	selectUserByIDSQL    = `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	selectUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

	selectUserByExpenseIDSQL = `SELECT ` + userColumns + ` FROM users
		WHERE EXISTS (SELECT 1 FROM json_each(users.expenses) WHERE json_extract(json_each.value, '$.id') = ?)`

	updateUserExpensesSQL = `UPDATE users SET expenses = ?, version = version + 1 WHERE id = ? AND version = ?`

	selectExpenseOwnersSQL = `SELECT users.id, json_extract(json_each.value, '$.id') FROM users, json_each(users.expenses)`
)

// Create inserts a new user document, assigning its id.
func (r *UserSQLite) Create(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	assignExpenseIDs(u)
	expensesJSON, err := marshalExpenses(u.Expenses)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, insertUserSQL, u.ID, u.Username, u.Email, u.PasswordHash, expensesJSON, 1); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user %q: %w", u.Email, err)
	}
	u.Version = 1
	r.index.SetUser(u.ID, expenseIDs(u))
	return nil
}

func (r *UserSQLite) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, err := r.selectOne(ctx, selectUserByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("select user %q: %w", id, err)
	}
	return u, nil
}

func (r *UserSQLite) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := r.selectOne(ctx, selectUserByEmailSQL, email)
	if err != nil {
		return nil, fmt.Errorf("select user by email %q: %w", email, err)
	}
	return u, nil
}

// FindByExpenseID resolves the owner through the index and falls back to a JSON scan on a miss
// or a stale hit.
func (r *UserSQLite) FindByExpenseID(ctx context.Context, expenseID string) (*models.User, error) {
	if owner, ok := r.index.Owner(expenseID); ok {
		u, err := r.GetByID(ctx, owner)
		if err != nil {
			return nil, err
		}
		if u != nil {
			if _, found := u.Locate(expenseID); found {
				return u, nil
			}
		}
	}

	u, err := r.selectOne(ctx, selectUserByExpenseIDSQL, expenseID)
	if err != nil {
		return nil, fmt.Errorf("select owner of expense %q: %w", expenseID, err)
	}
	if u != nil {
		r.index.SetUser(u.ID, expenseIDs(u))
	}
	return u, nil
}

// Save rewrites the embedded expense array guarded by the version counter.
func (r *UserSQLite) Save(ctx context.Context, u *models.User) error {
	assignExpenseIDs(u)
	expensesJSON, err := marshalExpenses(u.Expenses)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, updateUserExpensesSQL, expensesJSON, u.ID, u.Version)
	if err != nil {
		return fmt.Errorf("update user %q: %w", u.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for user %q: %w", u.ID, err)
	}
	if n == 0 {
		return ErrVersionConflict
	}
	u.Version++
	r.index.SetUser(u.ID, expenseIDs(u))
	return nil
}

// RebuildIndex reloads every expense id → owner pair from the table.
func (r *UserSQLite) RebuildIndex(ctx context.Context) error {
	rows, err := r.db.QueryContext(ctx, selectExpenseOwnersSQL)
	if err != nil {
		return err
	}
	defer rows.Close()

	owners := make(map[string]string)
	for rows.Next() {
		var userID string
		var expenseID sql.NullString
		if err := rows.Scan(&userID, &expenseID); err != nil {
			return err
		}
		if expenseID.Valid && expenseID.String != "" {
			owners[expenseID.String] = userID
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	r.index.Reset(owners)
	return nil
}

func (r *UserSQLite) selectOne(ctx context.Context, query string, arg any) (*models.User, error) {
	var u models.User
	var expensesJSON string
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &expensesJSON, &u.Version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	expenses, err := unmarshalExpenses(expensesJSON)
	if err != nil {
		return nil, err
	}
	u.Expenses = expenses
	return &u, nil
}

// marshalExpenses converts the collection to a JSON array; nil becomes "[]".
func marshalExpenses(expenses []models.Expense) (string, error) {
	if expenses == nil {
		expenses = []models.Expense{}
	}
	b, err := json.Marshal(expenses)
	if err != nil {
		return "", fmt.Errorf("marshal expenses: %w", err)
	}
	return string(b), nil
}

// unmarshalExpenses parses the JSON array column.
func unmarshalExpenses(s string) ([]models.Expense, error) {
	if s == "" {
		return []models.Expense{}, nil
	}
	expenses := []models.Expense{}
	if err := json.Unmarshal([]byte(s), &expenses); err != nil {
		return nil, fmt.Errorf("unmarshal expenses: %w", err)
	}
	return expenses, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
