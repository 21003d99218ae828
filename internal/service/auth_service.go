package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"expense_tracker/internal/cache"
	"expense_tracker/internal/models"
	"expense_tracker/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const defaultTokenTTL = 24 * time.Hour

// AuthService handles user auth logic
type AuthService struct {
	accounts repository.Accounts
	revoked  cache.Revocations
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(accounts repository.Accounts, revoked cache.Revocations, secret string, tokenTTL time.Duration) *AuthService {
	if revoked == nil {
		revoked = cache.Noop{}
	}
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}
	return &AuthService{
		accounts: accounts,
		revoked:  revoked,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}
}

// SignUp hashes password and creates a new user with an empty collection
func (s *AuthService) SignUp(ctx context.Context, username, email, password string) (string, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || strings.TrimSpace(password) == "" {
		return "", invalidf("username, email and password are required")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return "", err
	}

	u := &models.User{Username: username, Email: email, PasswordHash: hash, Expenses: []models.Expense{}}
	if err := s.accounts.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return "", ErrEmailTaken
		}
		return "", err
	}
	return u.ID, nil
}

// Claims defines JWT claims
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// GenerateToken validates credentials and returns the user id and a signed JWT
func (s *AuthService) GenerateToken(ctx context.Context, email, password string) (string, string, error) {
	u, err := s.accounts.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return "", "", err
	}
	if u == nil {
		return "", "", ErrUserNotFound
	}

	if err := verifyPassword(u.PasswordHash, password); err != nil {
		return "", "", ErrInvalidPassword
	}

	token, err := s.issueToken(u.ID)
	if err != nil {
		return "", "", err
	}
	return u.ID, token, nil
}

// ParseToken verifies signature, expiry and revocation
func (s *AuthService) ParseToken(ctx context.Context, accessToken string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(accessToken, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Ensure HMAC signing is used
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}

	if claims.ID != "" {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, fmt.Errorf("%w: token revoked", ErrInvalidToken)
		}
	}
	return claims, nil
}

// Logout deny-lists the token id until the token expires.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// helper: hash password safely
func hashPassword(password string) (string, error) {
	if strings.TrimSpace(password) == "" {
		return "", invalidf("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// helper: verify password against hash
func verifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// helper: issue a signed JWT for a user
func (s *AuthService) issueToken(userID string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
	})
	return token.SignedString(s.secret)
}
