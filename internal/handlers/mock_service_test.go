package handlers

import (
	"context"
	"net/http"
	"sync"

	"expense_tracker/internal/models"
	"expense_tracker/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID    string
	signUpErr   error
	genUserID   string
	genToken    string
	genTokenErr error
	parseID     string
	parseErr    error
	logoutErr   error

	lastSignUpUsername string
	lastSignUpEmail    string
	lastSignUpPassword string
	lastGenEmail       string
	lastGenPassword    string
	lastParseToken     string
	loggedOut          *service.Claims
}

func (m *mockAuth) SignUp(ctx context.Context, username, email, password string) (string, error) {
	m.lastSignUpUsername = username
	m.lastSignUpEmail = email
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}

func (m *mockAuth) GenerateToken(ctx context.Context, email, password string) (string, string, error) {
	m.lastGenEmail = email
	m.lastGenPassword = password
	return m.genUserID, m.genToken, m.genTokenErr
}

func (m *mockAuth) ParseToken(ctx context.Context, token string) (*service.Claims, error) {
	m.lastParseToken = token
	if m.parseErr != nil {
		return nil, m.parseErr
	}
	return &service.Claims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti-" + token},
		UserID:           m.parseID,
	}, nil
}

func (m *mockAuth) Logout(ctx context.Context, claims *service.Claims) error {
	m.loggedOut = claims
	return m.logoutErr
}

type mockExpenses struct {
	recordErr error
	listResp  []models.Expense
	listErr   error
	updateErr error
	deleteErr error

	lastUserID    string
	lastExpenseID string
	lastInput     service.ExpenseInput
	lastFilter    service.ExpenseFilter
}

func (m *mockExpenses) Record(ctx context.Context, userID string, in service.ExpenseInput) (models.Expense, error) {
	m.lastUserID = userID
	m.lastInput = in
	if m.recordErr != nil {
		return models.Expense{}, m.recordErr
	}
	return models.Expense{ID: "e1", Type: in.Type, Date: in.Date, Description: in.Description, Amount: in.Amount}, nil
}

func (m *mockExpenses) List(ctx context.Context, userID string, f service.ExpenseFilter) ([]models.Expense, error) {
	m.lastUserID = userID
	m.lastFilter = f
	return m.listResp, m.listErr
}

func (m *mockExpenses) Update(ctx context.Context, callerID, expenseID string, in service.ExpenseInput) (models.Expense, error) {
	m.lastUserID = callerID
	m.lastExpenseID = expenseID
	m.lastInput = in
	if m.updateErr != nil {
		return models.Expense{}, m.updateErr
	}
	return models.Expense{ID: expenseID, Type: in.Type, Date: in.Date, Description: in.Description, Amount: in.Amount}, nil
}

func (m *mockExpenses) Delete(ctx context.Context, callerID, expenseID string) error {
	m.lastUserID = callerID
	m.lastExpenseID = expenseID
	return m.deleteErr
}

type mockProfiles struct {
	profile models.UserProfile
	err     error
	lastID  string
}

func (m *mockProfiles) Profile(ctx context.Context, userID string) (models.UserProfile, error) {
	m.lastID = userID
	return m.profile, m.err
}

// mockSummary is called from the websocket writer goroutine as well.
type mockSummary struct {
	mu         sync.Mutex
	summary    models.Summary
	err        error
	calls      int
	lastUserID string
	lastFilter service.ExpenseFilter
}

func (m *mockSummary) Summarize(ctx context.Context, userID string, f service.ExpenseFilter) (models.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastUserID = userID
	m.lastFilter = f
	return m.summary, m.err
}

func (m *mockSummary) snapshot() (int, string, service.ExpenseFilter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls, m.lastUserID, m.lastFilter
}

type mockActivity struct {
	resp       []models.ActivityEvent
	err        error
	lastUserID string
	lastFilter service.ActivityFilter
}

func (m *mockActivity) List(ctx context.Context, userID string, f service.ActivityFilter) ([]models.ActivityEvent, error) {
	m.lastUserID = userID
	m.lastFilter = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withAuth(req *http.Request, token string) *http.Request {
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
