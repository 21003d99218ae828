package service

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func newTestAuth(accounts *memAccounts) (*AuthService, *fakeRevocations) {
	rev := &fakeRevocations{}
	return NewAuthService(accounts, rev, testSecret, time.Hour), rev
}

// --- SignUp tests ---

func TestAuthService_SignUp_SuccessHashesPassword(t *testing.T) {
	accounts := newMemAccounts()
	svc, _ := newTestAuth(accounts)

	id, err := svc.SignUp(context.Background(), "alice", "a@x.com", "s3cr3t")
	if err != nil {
		t.Fatalf("SignUp returned error: %v", err)
	}

	u := accounts.stored(id)
	if u.Username != "alice" || u.Email != "a@x.com" {
		t.Fatalf("unexpected stored user: %+v", u)
	}
	if u.PasswordHash == "s3cr3t" {
		t.Errorf("expected hashed password not equal to raw password")
	}
	if err := verifyPassword(u.PasswordHash, "s3cr3t"); err != nil {
		t.Errorf("stored hash does not verify with original password: %v", err)
	}
	if u.Expenses == nil || len(u.Expenses) != 0 {
		t.Errorf("expected an empty collection, got %#v", u.Expenses)
	}
}

func TestAuthService_SignUp_EmptyFields(t *testing.T) {
	svc, _ := newTestAuth(newMemAccounts())

	cases := [][3]string{
		{"", "a@x.com", "pw"},
		{"bob", " ", "pw"},
		{"bob", "b@x.com", "   "},
	}
	for _, c := range cases {
		_, err := svc.SignUp(context.Background(), c[0], c[1], c[2])
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("SignUp(%q,%q,%q): expected ValidationError, got %v", c[0], c[1], c[2], err)
		}
	}
}

func TestAuthService_SignUp_DuplicateEmail(t *testing.T) {
	svc, _ := newTestAuth(newMemAccounts())

	if _, err := svc.SignUp(context.Background(), "a", "a@x.com", "pw"); err != nil {
		t.Fatalf("first SignUp: %v", err)
	}
	_, err := svc.SignUp(context.Background(), "b", "a@x.com", "pw2")
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

// --- GenerateToken tests ---

func TestAuthService_GenerateToken_Success(t *testing.T) {
	svc, _ := newTestAuth(newMemAccounts())
	ctx := context.Background()

	id, err := svc.SignUp(ctx, "a", "a@x.com", "pw")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	uid, token, err := svc.GenerateToken(ctx, "a@x.com", "pw")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	if uid != id || token == "" {
		t.Fatalf("unexpected result: uid=%q token=%q", uid, token)
	}

	claims, err := svc.ParseToken(ctx, token)
	if err != nil {
		t.Fatalf("ParseToken failed: %v", err)
	}
	if claims.UserID != id {
		t.Fatalf("expected user id %q from token, got %q", id, claims.UserID)
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		t.Fatalf("expected jti and expiry, got %+v", claims.RegisteredClaims)
	}
}

func TestAuthService_GenerateToken_UserNotFound(t *testing.T) {
	svc, _ := newTestAuth(newMemAccounts())

	_, _, err := svc.GenerateToken(context.Background(), "ghost@x.com", "pw")
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
}

func TestAuthService_GenerateToken_InvalidPassword(t *testing.T) {
	svc, _ := newTestAuth(newMemAccounts())
	ctx := context.Background()
	if _, err := svc.SignUp(ctx, "eve", "e@x.com", "correct"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	_, _, err := svc.GenerateToken(ctx, "e@x.com", "wrong")
	if !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got: %v", err)
	}
}

func TestAuthService_GenerateToken_EmptyPassword(t *testing.T) {
	svc, _ := newTestAuth(newMemAccounts())
	ctx := context.Background()
	if _, err := svc.SignUp(ctx, "eve", "e@x.com", "correct"); err != nil {
		t.Fatalf("SignUp: %v", err)
	}

	_, _, err := svc.GenerateToken(ctx, "e@x.com", "")
	if !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got: %v", err)
	}
}

func TestAuthService_GenerateToken_RepoError(t *testing.T) {
	accounts := newMemAccounts()
	accounts.getErr = errors.New("query failed")
	svc, _ := newTestAuth(accounts)

	_, _, err := svc.GenerateToken(context.Background(), "john@x.com", "pw")
	if err == nil || errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected repo error, got %v", err)
	}
}

// --- ParseToken tests ---

func signed(t *testing.T, method jwt.SigningMethod, key any, claims *Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return s
}

func claimsFor(userID string, exp time.Time) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        "jti-" + userID,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(exp.Add(-time.Hour)),
		},
		UserID: userID,
	}
}

func TestAuthService_ParseToken_Rejects(t *testing.T) {
	svc, _ := newTestAuth(newMemAccounts())

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("rsa.GenerateKey failed: %v", err)
	}
	future := time.Now().Add(time.Hour)

	noExpiry := &Claims{UserID: "u1"}

	tests := []struct {
		name  string
		token string
	}{
		{name: "malformed", token: "not-a-jwt"},
		{name: "other key", token: signed(t, jwt.SigningMethodHS256, []byte("different-key"), claimsFor("u1", future))},
		{name: "expired", token: signed(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor("u1", time.Now().Add(-2*time.Hour)))},
		{name: "unexpected alg", token: signed(t, jwt.SigningMethodRS256, privateKey, claimsFor("u1", future))},
		{name: "no expiry", token: signed(t, jwt.SigningMethodHS256, []byte(testSecret), noExpiry)},
		{name: "no user", token: signed(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor("", future))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ParseToken(context.Background(), tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestAuthService_Logout_RevokesToken(t *testing.T) {
	svc, rev := newTestAuth(newMemAccounts())
	ctx := context.Background()

	token := signed(t, jwt.SigningMethodHS256, []byte(testSecret), claimsFor("u1", time.Now().Add(time.Hour)))
	claims, err := svc.ParseToken(ctx, token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}

	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok := rev.revoked["jti-u1"]; !ok {
		t.Fatalf("token id was not deny-listed")
	}

	if _, err := svc.ParseToken(ctx, token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected revoked token to be rejected, got %v", err)
	}
}

func TestAuthService_Logout_WithoutClaimsIsNoop(t *testing.T) {
	svc, rev := newTestAuth(newMemAccounts())
	if err := svc.Logout(context.Background(), nil); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(rev.revoked) != 0 {
		t.Fatalf("nothing should be revoked")
	}
}

// signup, login, then a wrong password
func TestAuthService_SignupLoginScenario(t *testing.T) {
	accounts := newMemAccounts()
	svc, _ := newTestAuth(accounts)
	ctx := context.Background()

	id, err := svc.SignUp(ctx, "a", "a@x.com", "pw")
	if err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if _, _, err := svc.GenerateToken(ctx, "a@x.com", "pw"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, _, err := svc.GenerateToken(ctx, "a@x.com", "nope"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("wrong password: %v", err)
	}
	u := accounts.stored(id)
	if got := u.Profile(); got.ID != id || len(got.Expenses) != 0 {
		t.Fatalf("unexpected profile %+v", got)
	}
}
