package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"tradepit/internal/models"
)

func placeTrade(t *testing.T, srv *Server, username string, body map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/accounts/"+username+"/trades",
		jsonBody(t, body)), username)
	rec := httptest.NewRecorder()
	srv.routeAccounts(rec, req)
	return rec
}

func TestHandleTradePlace_Win(t *testing.T) {
	srv, _ := newTestServer(t)
	registerTestAccount(t, srv, "alice", "hunter2hunter2", "demo")

	rec := placeTrade(t, srv, "alice", map[string]interface{}{"amount": 100, "prediction": "up"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	if data["won"] != true {
		t.Errorf("expected a win against the up-trending oracle, got %v", data)
	}
	if data["outcome"] != "up" {
		t.Errorf("expected market outcome 'up', got %v", data["outcome"])
	}
	if data["delta"] != float64(90) {
		t.Errorf("expected delta 90, got %v", data["delta"])
	}
	if data["balance"] != float64(models.DemoStartingBalance+90) {
		t.Errorf("expected balance %v, got %v", float64(models.DemoStartingBalance+90), data["balance"])
	}
	if data["trend_source"] != "feed" {
		t.Errorf("expected trend_source 'feed', got %v", data["trend_source"])
	}
}

func TestHandleTradePlace_Loss(t *testing.T) {
	srv, _, _ := newTestServerWithOracle(t, &fixedOracle{direction: models.DirectionDown})
	registerTestAccount(t, srv, "alice", "hunter2hunter2", "demo")

	rec := placeTrade(t, srv, "alice", map[string]interface{}{"amount": 100, "prediction": "up"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	if data["won"] != false {
		t.Errorf("expected a loss, got %v", data)
	}
	if data["outcome"] != "down" {
		t.Errorf("expected market outcome 'down', got %v", data["outcome"])
	}
	if data["delta"] != float64(-100) {
		t.Errorf("expected delta -100, got %v", data["delta"])
	}
}

func TestHandleTradePlace_CaseInsensitivePrediction(t *testing.T) {
	srv, _ := newTestServer(t)
	registerTestAccount(t, srv, "alice", "hunter2hunter2", "demo")

	rec := placeTrade(t, srv, "alice", map[string]interface{}{"amount": 10, "prediction": " UP "})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for ' UP ', got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleTradePlace_InvalidPrediction(t *testing.T) {
	srv, _ := newTestServer(t)
	registerTestAccount(t, srv, "alice", "hunter2hunter2", "demo")

	rec := placeTrade(t, srv, "alice", map[string]interface{}{"amount": 10, "prediction": "sideways"})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandleTradePlace_StakeTooSmall(t *testing.T) {
	srv, _ := newTestServer(t)
	registerTestAccount(t, srv, "alice", "hunter2hunter2", "demo")

	for _, amount := range []float64{0, 0.5, -10} {
		rec := placeTrade(t, srv, "alice", map[string]interface{}{"amount": amount, "prediction": "up"})

		if rec.Code != http.StatusBadRequest {
			t.Errorf("amount %v: expected 400, got %d", amount, rec.Code)
		}
	}
}

func TestHandleTradePlace_InsufficientFunds(t *testing.T) {
	srv, _ := newTestServer(t)
	registerTestAccount(t, srv, "alice", "hunter2hunter2", "demo")

	rec := placeTrade(t, srv, "alice", map[string]interface{}{"amount": models.DemoStartingBalance + 1, "prediction": "up"})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleTradePlace_UnknownAccount(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := placeTrade(t, srv, "ghost", map[string]interface{}{"amount": 10, "prediction": "up"})

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleTradePlace_Unauthenticated(t *testing.T) {
	srv, _ := newTestServer(t)
	registerTestAccount(t, srv, "alice", "hunter2hunter2", "demo")

	req := httptest.NewRequest(http.MethodPost, "/api/accounts/alice/trades",
		jsonBody(t, map[string]interface{}{"amount": 10, "prediction": "up"}))
	rec := httptest.NewRecorder()
	srv.routeAccounts(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestHandleTradePlace_MethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)
	registerTestAccount(t, srv, "alice", "hunter2hunter2", "demo")

	req := asUser(httptest.NewRequest(http.MethodDelete, "/api/accounts/alice/trades", nil), "alice")
	rec := httptest.NewRecorder()
	srv.routeAccounts(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}
