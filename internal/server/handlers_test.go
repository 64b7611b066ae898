package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"tradepit/internal/app"
	"tradepit/internal/common"
	"tradepit/internal/interfaces"
	"tradepit/internal/models"
	"tradepit/internal/services/accounts"
	"tradepit/internal/services/trading"
	"tradepit/internal/services/unlock"
	"tradepit/internal/storage"
)

// fixedOracle always returns the same verdict.
type fixedOracle struct {
	direction models.Direction
}

func (o *fixedOracle) GetTrend(ctx context.Context) models.Trend {
	return models.Trend{Direction: o.direction, Source: models.TrendSourceFeed}
}

// fakePayments is a scriptable PaymentClient for handler tests.
type fakePayments struct {
	session *models.CheckoutSession
	intents []models.PaymentIntent
}

func (f *fakePayments) CreateCheckoutSession(ctx context.Context, params models.CheckoutParams) (*models.CheckoutSession, error) {
	return f.session, nil
}

func (f *fakePayments) ListPaymentIntents(ctx context.Context, limit int) ([]models.PaymentIntent, error) {
	return f.intents, nil
}

// fakeMailer records outbound mail instead of sending it.
type fakeMailer struct {
	sent []sentMail
}

type sentMail struct {
	to      string
	subject string
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	f.sent = append(f.sent, sentMail{to: to, subject: subject})
	return nil
}

// newTestServer creates a server backed by real file storage, a fixed
// up-trending oracle, scriptable payments, and a recording mailer.
func newTestServer(t *testing.T) (*Server, *fakePayments) {
	t.Helper()
	srv, payments, _ := newTestServerWithOracle(t, &fixedOracle{direction: models.DirectionUp})
	return srv, payments
}

func newTestServerWithOracle(t *testing.T, oracle interfaces.TrendOracle) (*Server, *fakePayments, *fakeMailer) {
	t.Helper()
	logger := common.NewSilentLogger()
	cfg := common.NewDefaultConfig()
	cfg.Storage.File.Path = filepath.Join(t.TempDir(), "users.json")

	store, err := storage.NewFileStore(logger, &cfg.Storage.File)
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	registry, err := storage.NewRegistry(logger, store)
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	payments := &fakePayments{
		session: &models.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.stripe.com/pay/cs_test_1"},
	}
	mailer := &fakeMailer{}

	a := &app.App{
		Config:         cfg,
		Logger:         logger,
		Registry:       registry,
		PaymentClient:  payments,
		Mailer:         mailer,
		Oracle:         oracle,
		TradingService: trading.NewService(registry, oracle, logger),
		AccountService: accounts.NewService(registry, logger),
		UnlockService:  unlock.NewService(registry, payments, mailer, &cfg.Clients.Stripe, logger),
	}
	return NewServer(a), payments, mailer
}

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	return bytes.NewBuffer(data)
}

// registerTestAccount creates an account via the handler and returns its token.
func registerTestAccount(t *testing.T, srv *Server, username, password, accountType string) string {
	t.Helper()
	body := jsonBody(t, map[string]string{
		"username":     username,
		"password":     password,
		"account_type": accountType,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/users", body)
	rec := httptest.NewRecorder()
	srv.handleUserCreate(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("registerTestAccount: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]interface{}
	json.NewDecoder(rec.Body).Decode(&resp)
	data := resp["data"].(map[string]interface{})
	token, _ := data["token"].(string)
	if token == "" {
		t.Fatal("registerTestAccount: empty token")
	}
	return token
}

// asUser attaches an authenticated username to the request context,
// the same way the bearer middleware does.
func asUser(req *http.Request, username string) *http.Request {
	return req.WithContext(common.WithUsername(req.Context(), username))
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	data, ok := resp["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no data object: %v", resp)
	}
	return data
}
