package repository

import "sync"

// ExpenseIndex maps expense ids to the id of the owning user.
// It is a lookup accelerator only: callers must verify hits against the stored document.
type ExpenseIndex struct {
	mu      sync.RWMutex
	owners  map[string]string
	byOwner map[string][]string
}

func NewExpenseIndex() *ExpenseIndex {
	return &ExpenseIndex{
		owners:  make(map[string]string),
		byOwner: make(map[string][]string),
	}
}

// Owner returns the user owning expenseID, if known.
func (x *ExpenseIndex) Owner(expenseID string) (string, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	owner, ok := x.owners[expenseID]
	return owner, ok
}

// SetUser replaces every entry of userID with expenseIDs.
func (x *ExpenseIndex) SetUser(userID string, expenseIDs []string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, id := range x.byOwner[userID] {
		if x.owners[id] == userID {
			delete(x.owners, id)
		}
	}
	ids := make([]string, len(expenseIDs))
	copy(ids, expenseIDs)
	for _, id := range ids {
		x.owners[id] = userID
	}
	x.byOwner[userID] = ids
}

// Reset replaces the whole index with pairs of expense id → owner id.
func (x *ExpenseIndex) Reset(owners map[string]string) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.owners = make(map[string]string, len(owners))
	x.byOwner = make(map[string][]string)
	for expenseID, userID := range owners {
		x.owners[expenseID] = userID
		x.byOwner[userID] = append(x.byOwner[userID], expenseID)
	}
}

func (x *ExpenseIndex) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.owners)
}
