package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"expense_tracker/internal/models"

	"github.com/redis/go-redis/v9"
)

// Expenses caches a user's whole expense collection.
type Expenses interface {
	Get(ctx context.Context, userID string) ([]models.Expense, bool, error)
	Set(ctx context.Context, userID string, expenses []models.Expense) error
	Invalidate(ctx context.Context, userID string) error
}

// Revocations remembers logged-out token ids until they would have expired anyway.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

func expensesKey(userID string) string { return "expenses:" + userID }
func revokedKey(tokenID string) string { return "revoked:" + tokenID }

type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

var (
	_ Expenses    = (*Redis)(nil)
	_ Revocations = (*Redis)(nil)
)

func (r *Redis) Get(ctx context.Context, userID string) ([]models.Expense, bool, error) {
	val, err := r.rdb.Get(ctx, expensesKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	var out []models.Expense
	if err := json.Unmarshal(val, &out); err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (r *Redis) Set(ctx context.Context, userID string, expenses []models.Expense) error {
	if expenses == nil {
		expenses = []models.Expense{}
	}
	b, err := json.Marshal(expenses)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, expensesKey(userID), b, r.ttl).Err()
}

func (r *Redis) Invalidate(ctx context.Context, userID string) error {
	return r.rdb.Del(ctx, expensesKey(userID)).Err()
}

func (r *Redis) Revoke(ctx context.Context, tokenID string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return r.rdb.Set(ctx, revokedKey(tokenID), "1", ttl).Err()
}

func (r *Redis) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Noop is used when no Redis is configured: nothing is cached and nothing is revoked.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]models.Expense, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, string, []models.Expense) error         { return nil }
func (Noop) Invalidate(context.Context, string) error                    { return nil }
func (Noop) Revoke(context.Context, string, time.Time) error             { return nil }
func (Noop) IsRevoked(context.Context, string) (bool, error)             { return false, nil }
