package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TypeIncome  ExpenseType = "income"
	TypeExpense ExpenseType = "expense"
)

const dateLayout = "2006-01-02"

type (
	// ExpenseType is either income or expense.
	ExpenseType string

	// Date is a calendar date without time of day, always UTC.
	Date struct {
		time.Time
	}

	// Expense is a single income or expense entry embedded in a User.
	Expense struct {
		ID          string          `json:"id"`
		Type        ExpenseType     `json:"type"`
		Date        Date            `json:"date"`
		Description string          `json:"description"`
		Amount      decimal.Decimal `json:"amount"`
	}
)

var (
	ErrInvalidType = errors.New("invalid type: must be income or expense")
	ErrInvalidDate = errors.New("invalid date: use YYYY-MM-DD")
)

func (t ExpenseType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 and keeps only the calendar date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{dateLayout, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return NewDate(t.Year(), t.Month(), t.Day()), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("%w: %s", ErrInvalidDate, s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks the fields a client controls.
func (e Expense) Validate() error {
	if !e.Type.Valid() {
		return ErrInvalidType
	}
	if e.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}
