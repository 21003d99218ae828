package service

import (
	"context"

	"expense_tracker/internal/models"
	"expense_tracker/internal/repository"
)

type ProfileService struct {
	accounts repository.Accounts
}

func NewProfileService(accounts repository.Accounts) *ProfileService {
	return &ProfileService{accounts: accounts}
}

// Profile returns the user without credentials.
func (s *ProfileService) Profile(ctx context.Context, userID string) (models.UserProfile, error) {
	u, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return models.UserProfile{}, err
	}
	if u == nil {
		return models.UserProfile{}, ErrUserNotFound
	}
	return u.Profile(), nil
}
