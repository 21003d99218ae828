package service

import (
	"context"
	"strings"
	"time"

	"expense_tracker/internal/models"
	"expense_tracker/internal/repository"
)

// ActivityFilter narrows a user's mutation history.
type ActivityFilter struct {
	From time.Time // inclusive; zero means no lower bound
	To   time.Time // inclusive; zero means no upper bound
	Kind string    // "", "CREATED", "UPDATED", "DELETED"
}

type ActivityService struct {
	activityRepo repository.ActivityRepo
}

func NewActivityService(activityRepo repository.ActivityRepo) *ActivityService {
	return &ActivityService{activityRepo: activityRepo}
}

var errInvalidTimeRange = &ValidationError{Reason: "invalid time range: from must be <= to"}

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeKind trims spaces and uppercases the kind filter.
func normalizeKind(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f ActivityFilter) (time.Time, time.Time, string, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, "", errInvalidTimeRange
	}

	return from, to, normalizeKind(f.Kind), nil
}

func (s *ActivityService) List(ctx context.Context, userID string, f ActivityFilter) ([]models.ActivityEvent, error) {
	from, to, kind, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.activityRepo.List(ctx, userID, from, to, kind)
}
