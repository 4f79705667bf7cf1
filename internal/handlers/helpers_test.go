package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"charity/internal/auth"
	"charity/internal/config"
	"charity/internal/logging"
	"charity/internal/models"
	"charity/internal/services"
	"charity/internal/store"
	"charity/internal/websocket"
)

// The stubs embed the service interface so only the methods a test sets
// need a function; calling anything else panics.

type stubAuth struct {
	AuthService
	registerFn func(ctx context.Context, email, password, name string) (services.Session, error)
	loginFn    func(ctx context.Context, email, password string) (services.Session, error)
	meFn       func(ctx context.Context, userID int64) (models.User, error)
	forgotFn   func(ctx context.Context, email string) (services.ResetTicket, error)
	resetFn    func(ctx context.Context, token, newPassword string) error
}

func (s stubAuth) Register(ctx context.Context, email, password, name string) (services.Session, error) {
	return s.registerFn(ctx, email, password, name)
}

func (s stubAuth) Login(ctx context.Context, email, password string) (services.Session, error) {
	return s.loginFn(ctx, email, password)
}

func (s stubAuth) Me(ctx context.Context, userID int64) (models.User, error) {
	return s.meFn(ctx, userID)
}

func (s stubAuth) ForgotPassword(ctx context.Context, email string) (services.ResetTicket, error) {
	return s.forgotFn(ctx, email)
}

func (s stubAuth) ResetPassword(ctx context.Context, token, newPassword string) error {
	return s.resetFn(ctx, token, newPassword)
}

type stubLedger struct {
	LedgerService
	depositFn   func(ctx context.Context, userID, amountMinor int64) (services.LedgerResult, error)
	withdrawFn  func(ctx context.Context, userID, amountMinor int64) (services.LedgerResult, error)
	autoPayFn   func(ctx context.Context, userID int64, enabled bool) (models.Account, error)
	historyFn   func(ctx context.Context, userID int64, q services.HistoryQuery) ([]models.Transaction, error)
	receiptFn   func(ctx context.Context, actor services.Actor, transactionID int64) (services.Receipt, error)
	reconcileFn func(ctx context.Context) ([]store.Reconciliation, error)
}

func (s stubLedger) Deposit(ctx context.Context, userID, amountMinor int64) (services.LedgerResult, error) {
	return s.depositFn(ctx, userID, amountMinor)
}

func (s stubLedger) Withdraw(ctx context.Context, userID, amountMinor int64) (services.LedgerResult, error) {
	return s.withdrawFn(ctx, userID, amountMinor)
}

func (s stubLedger) SetAutoPay(ctx context.Context, userID int64, enabled bool) (models.Account, error) {
	return s.autoPayFn(ctx, userID, enabled)
}

func (s stubLedger) History(ctx context.Context, userID int64, q services.HistoryQuery) ([]models.Transaction, error) {
	return s.historyFn(ctx, userID, q)
}

func (s stubLedger) Receipt(ctx context.Context, actor services.Actor, transactionID int64) (services.Receipt, error) {
	return s.receiptFn(ctx, actor, transactionID)
}

func (s stubLedger) Reconcile(ctx context.Context) ([]store.Reconciliation, error) {
	return s.reconcileFn(ctx)
}

type stubApplications struct {
	ApplicationService
	applyFn     func(ctx context.Context, app models.DonationApplication) (models.DonationApplication, error)
	getFn       func(ctx context.Context, actor services.Actor, id int64) (models.DonationApplication, error)
	setStatusFn func(ctx context.Context, actor services.Actor, id int64, raw string) (models.DonationApplication, error)
}

func (s stubApplications) Apply(ctx context.Context, app models.DonationApplication) (models.DonationApplication, error) {
	return s.applyFn(ctx, app)
}

func (s stubApplications) Get(ctx context.Context, actor services.Actor, id int64) (models.DonationApplication, error) {
	return s.getFn(ctx, actor, id)
}

func (s stubApplications) SetStatus(ctx context.Context, actor services.Actor, id int64, raw string) (models.DonationApplication, error) {
	return s.setStatusFn(ctx, actor, id, raw)
}

type stubDirectory struct {
	DirectoryService
	createBranchFn func(ctx context.Context, actor services.Actor, req services.BranchRequest) (models.Branch, error)
	listBranchesFn func(ctx context.Context) ([]models.Branch, error)
	donateFn       func(ctx context.Context, req services.DonationRequest) (models.Donation, error)
	searchFn       func(ctx context.Context, actor *services.Actor, q string) (services.SearchResults, error)
	deleteStoryFn  func(ctx context.Context, id int64) error
}

func (s stubDirectory) CreateBranch(ctx context.Context, actor services.Actor, req services.BranchRequest) (models.Branch, error) {
	return s.createBranchFn(ctx, actor, req)
}

func (s stubDirectory) ListBranches(ctx context.Context) ([]models.Branch, error) {
	return s.listBranchesFn(ctx)
}

func (s stubDirectory) Donate(ctx context.Context, req services.DonationRequest) (models.Donation, error) {
	return s.donateFn(ctx, req)
}

func (s stubDirectory) Search(ctx context.Context, actor *services.Actor, q string) (services.SearchResults, error) {
	return s.searchFn(ctx, actor, q)
}

func (s stubDirectory) DeleteStory(ctx context.Context, id int64) error {
	return s.deleteStoryFn(ctx, id)
}

type stubRoleStore map[int64]models.User

func (s stubRoleStore) GetByID(_ context.Context, userID int64) (models.User, error) {
	user, ok := s[userID]
	if !ok {
		return models.User{}, sql.ErrNoRows
	}
	return user, nil
}

const (
	adminID   int64 = 1
	officerID int64 = 10
	memberID  int64 = 20
)

func testUsers() stubRoleStore {
	branch := int64(3)
	return stubRoleStore{
		adminID:   {ID: adminID, Role: models.RoleMasterAdmin},
		officerID: {ID: officerID, Role: models.RoleOfficer, BranchID: &branch},
		memberID:  {ID: memberID, Role: models.RoleUser},
	}
}

func testConfig() config.Config {
	return config.Config{
		AppEnv:            "test",
		JWTSecret:         "secret",
		TokenTTL:          time.Minute,
		AllowedOrigins:    []string{"*"},
		MaxBodyBytes:      1 << 16,
		AuthRatePerMinute: 60,
		AuthRateBurst:     20,
	}
}

func newTestHandler(cfg config.Config, deps Deps) http.Handler {
	if deps.Users == nil {
		deps.Users = testUsers()
	}
	deps.Hub = websocket.NewHub()
	deps.Logger = logging.NewWithOutput("panic", "json", io.Discard)
	return New(cfg, deps).Routes()
}

func tokenFor(t *testing.T, id int64, role models.Role) string {
	t.Helper()
	token, err := auth.GenerateToken("secret", id, string(role), time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

func serve(t *testing.T, handler http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.1:1234"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload
}
