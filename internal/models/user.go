package models

// User is the account document. Expenses are embedded and owned exclusively by the user.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // don’t expose hash
	Expenses     []Expense `json:"expenses"`
	Version      int64     `json:"-"`

	positions map[string]int
}

// Locate returns the position of the expense with the given id inside the collection.
// The id → position map is built on first use and dropped whenever the collection changes.
func (u *User) Locate(expenseID string) (int, bool) {
	if u.positions == nil {
		u.positions = make(map[string]int, len(u.Expenses))
		for i, e := range u.Expenses {
			u.positions[e.ID] = i
		}
	}
	i, ok := u.positions[expenseID]
	return i, ok
}

// AppendExpense adds e at the end of the collection.
func (u *User) AppendExpense(e Expense) {
	u.Expenses = append(u.Expenses, e)
	if u.positions != nil {
		u.positions[e.ID] = len(u.Expenses) - 1
	}
}

// RemoveExpenseAt deletes the entry at position i, keeping the order of the rest.
func (u *User) RemoveExpenseAt(i int) {
	u.Expenses = append(u.Expenses[:i], u.Expenses[i+1:]...)
	u.positions = nil
}

// Reindex drops the cached positions; call it after editing Expenses directly.
func (u *User) Reindex() {
	u.positions = nil
}

// Profile is the client-facing view of a user.
func (u *User) Profile() UserProfile {
	expenses := u.Expenses
	if expenses == nil {
		expenses = []Expense{}
	}
	return UserProfile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Expenses: expenses,
	}
}

// UserProfile is a User without credentials.
type UserProfile struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Expenses []Expense `json:"expenses"`
}
