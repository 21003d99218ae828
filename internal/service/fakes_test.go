package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"expense_tracker/internal/events"
	"expense_tracker/internal/models"
	"expense_tracker/internal/repository"
)

// memAccounts is an in-memory repository.Accounts with real version checks.
type memAccounts struct {
	mu     sync.Mutex
	users  map[string]models.User
	nextID int

	// forced failures
	conflicts int // Save returns ErrVersionConflict this many times
	saveErr   error
	getErr    error
	saves     int
}

func newMemAccounts() *memAccounts {
	return &memAccounts{users: make(map[string]models.User)}
}

var _ repository.Accounts = (*memAccounts)(nil)

func (m *memAccounts) newID() string {
	m.nextID++
	return fmt.Sprintf("%024x", m.nextID)
}

func clone(u models.User) *models.User {
	c := u
	c.Expenses = append([]models.Expense{}, u.Expenses...)
	c.Reindex()
	return &c
}

func (m *memAccounts) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	if u.ID == "" {
		u.ID = m.newID()
	}
	u.Version = 1
	m.users[u.ID] = *clone(*u)
	return nil
}

func (m *memAccounts) GetByID(_ context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return clone(u), nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, nil
}

func (m *memAccounts) FindByExpenseID(_ context.Context, expenseID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		for _, e := range u.Expenses {
			if e.ID == expenseID {
				return clone(u), nil
			}
		}
	}
	return nil, nil
}

func (m *memAccounts) Save(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.conflicts > 0 {
		m.conflicts--
		return repository.ErrVersionConflict
	}
	stored, ok := m.users[u.ID]
	if !ok || stored.Version != u.Version {
		return repository.ErrVersionConflict
	}
	for i := range u.Expenses {
		if u.Expenses[i].ID == "" {
			u.Expenses[i].ID = m.newID()
		}
	}
	u.Reindex()
	u.Version++
	m.users[u.ID] = *clone(*u)
	return nil
}

// stored returns the committed document.
func (m *memAccounts) stored(id string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *clone(m.users[id])
}

// seed stores a user with the given expenses and returns its id.
func (m *memAccounts) seed(email string, expenses ...models.Expense) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := models.User{ID: m.newID(), Username: "user", Email: email, Expenses: []models.Expense{}, Version: 1}
	for _, e := range expenses {
		if e.ID == "" {
			e.ID = m.newID()
		}
		u.Expenses = append(u.Expenses, e)
	}
	m.users[u.ID] = u
	return u.ID
}

// fakeCache records invalidations and serves whatever was Set.
type fakeCache struct {
	mu          sync.Mutex
	data        map[string][]models.Expense
	invalidated []string
	gets        int
}

func newFakeCache() *fakeCache { return &fakeCache{data: make(map[string][]models.Expense)} }

func (c *fakeCache) Get(_ context.Context, userID string) ([]models.Expense, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.data[userID]
	return v, ok, nil
}

func (c *fakeCache) Set(_ context.Context, userID string, expenses []models.Expense) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[userID] = append([]models.Expense{}, expenses...)
	return nil
}

func (c *fakeCache) Invalidate(_ context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, userID)
	c.invalidated = append(c.invalidated, userID)
	return nil
}

// fakeRevocations is an in-memory deny-list.
type fakeRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

func (r *fakeRevocations) Revoke(_ context.Context, id string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.revoked == nil {
		r.revoked = make(map[string]time.Time)
	}
	r.revoked[id] = until
	return nil
}

func (r *fakeRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[id]
	return ok, nil
}

// fakePublisher captures published events.
type fakePublisher struct {
	mu        sync.Mutex
	published []events.ExpenseEvent
}

func (p *fakePublisher) Publish(_ context.Context, e events.ExpenseEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, e)
	return nil
}

func (p *fakePublisher) Close() error { return nil }
