package server

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"tradepit/internal/models"
)

func TestRouteAccounts_Snapshot(t *testing.T) {
	srv, _ := newTestServer(t)
	registerTestAccount(t, srv, "alice", "hunter2hunter2", "demo")

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/accounts/alice", nil), "alice")
	rec := httptest.NewRecorder()
	srv.routeAccounts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	if data["username"] != "alice" {
		t.Errorf("expected username 'alice', got %v", data["username"])
	}
	if data["balance"] != float64(models.DemoStartingBalance) {
		t.Errorf("expected balance %v, got %v", float64(models.DemoStartingBalance), data["balance"])
	}
	if data["trade_count"] != float64(0) {
		t.Errorf("expected trade_count 0, got %v", data["trade_count"])
	}
}

func TestRouteAccounts_Unauthenticated(t *testing.T) {
	srv, _ := newTestServer(t)
	registerTestAccount(t, srv, "alice", "hunter2hunter2", "demo")

	req := httptest.NewRequest(http.MethodGet, "/api/accounts/alice", nil)
	rec := httptest.NewRecorder()
	srv.routeAccounts(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Errorf("expected WWW-Authenticate header, got %q", rec.Header().Get("WWW-Authenticate"))
	}
}

func TestRouteAccounts_WrongSubject(t *testing.T) {
	srv, _ := newTestServer(t)
	registerTestAccount(t, srv, "alice", "hunter2hunter2", "demo")
	registerTestAccount(t, srv, "mallory", "hunter2hunter2", "demo")

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/accounts/alice", nil), "mallory")
	rec := httptest.NewRecorder()
	srv.routeAccounts(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for mismatched token subject, got %d", rec.Code)
	}
}

func TestRouteAccounts_UnknownUser(t *testing.T) {
	srv, _ := newTestServer(t)

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/accounts/ghost", nil), "ghost")
	rec := httptest.NewRecorder()
	srv.routeAccounts(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestRouteAccounts_MissingUsername(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/accounts/", nil)
	rec := httptest.NewRecorder()
	srv.routeAccounts(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty username, got %d", rec.Code)
	}
}

func TestHandleAccountTrades(t *testing.T) {
	srv, _ := newTestServer(t)
	registerTestAccount(t, srv, "alice", "hunter2hunter2", "demo")

	// One winning trade through the real service (the test oracle trends up).
	tradeReq := asUser(httptest.NewRequest(http.MethodPost, "/api/accounts/alice/trades",
		jsonBody(t, map[string]interface{}{"amount": 100, "prediction": "up"})), "alice")
	tradeRec := httptest.NewRecorder()
	srv.routeAccounts(tradeRec, tradeReq)
	if tradeRec.Code != http.StatusOK {
		t.Fatalf("trade failed: %d: %s", tradeRec.Code, tradeRec.Body.String())
	}

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/accounts/alice/trades", nil), "alice")
	rec := httptest.NewRecorder()
	srv.routeAccounts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	if data["count"] != float64(1) {
		t.Errorf("expected 1 trade, got %v", data["count"])
	}
	trades := data["trades"].([]interface{})
	first := trades[0].(map[string]interface{})
	if first["prediction"] != "up" {
		t.Errorf("expected prediction 'up', got %v", first["prediction"])
	}
	if first["result"] != "up" {
		t.Errorf("expected result 'up', got %v", first["result"])
	}
}

func TestHandleAccountTrades_NewestFirstWithLimit(t *testing.T) {
	srv, _ := newTestServer(t)
	registerTestAccount(t, srv, "alice", "hunter2hunter2", "demo")

	for _, amount := range []int{10, 20, 30} {
		tradeReq := asUser(httptest.NewRequest(http.MethodPost, "/api/accounts/alice/trades",
			jsonBody(t, map[string]interface{}{"amount": amount, "prediction": "up"})), "alice")
		tradeRec := httptest.NewRecorder()
		srv.routeAccounts(tradeRec, tradeReq)
		if tradeRec.Code != http.StatusOK {
			t.Fatalf("trade of %d failed: %d: %s", amount, tradeRec.Code, tradeRec.Body.String())
		}
	}

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/accounts/alice/trades?limit=2", nil), "alice")
	rec := httptest.NewRecorder()
	srv.routeAccounts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	if data["count"] != float64(2) {
		t.Errorf("expected 2 trades in page, got %v", data["count"])
	}
	if data["total"] != float64(3) {
		t.Errorf("expected total 3, got %v", data["total"])
	}
	trades := data["trades"].([]interface{})
	first := trades[0].(map[string]interface{})
	if first["amount"] != float64(30) {
		t.Errorf("expected newest trade (amount 30) first, got %v", first["amount"])
	}
}

func TestHandleAccountHistory(t *testing.T) {
	srv, _ := newTestServer(t)
	registerTestAccount(t, srv, "alice", "hunter2hunter2", "demo")

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/accounts/alice/history", nil), "alice")
	rec := httptest.NewRecorder()
	srv.routeAccounts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	// A fresh account has exactly its opening snapshot.
	if data["count"] != float64(1) {
		t.Errorf("expected 1 history point, got %v", data["count"])
	}
}

func TestHandleAccountChart(t *testing.T) {
	srv, _ := newTestServer(t)
	registerTestAccount(t, srv, "alice", "hunter2hunter2", "demo")

	// The chart needs at least two balance points; settle one trade.
	tradeReq := asUser(httptest.NewRequest(http.MethodPost, "/api/accounts/alice/trades",
		jsonBody(t, map[string]interface{}{"amount": 50, "prediction": "up"})), "alice")
	tradeRec := httptest.NewRecorder()
	srv.routeAccounts(tradeRec, tradeReq)
	if tradeRec.Code != http.StatusOK {
		t.Fatalf("trade failed: %d: %s", tradeRec.Code, tradeRec.Body.String())
	}

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/accounts/alice/chart", nil), "alice")
	rec := httptest.NewRecorder()
	srv.routeAccounts(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte{0x89, 'P', 'N', 'G'}) {
		t.Error("response body is not a PNG")
	}
}

func TestHandleAccountChart_TooFewPoints(t *testing.T) {
	srv, _ := newTestServer(t)
	registerTestAccount(t, srv, "alice", "hunter2hunter2", "demo")

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/accounts/alice/chart", nil), "alice")
	rec := httptest.NewRecorder()
	srv.routeAccounts(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for a single-point history, got %d", rec.Code)
	}
}

func TestRouteAccounts_UnknownSubPath(t *testing.T) {
	srv, _ := newTestServer(t)
	registerTestAccount(t, srv, "alice", "hunter2hunter2", "demo")

	req := asUser(httptest.NewRequest(http.MethodGet, "/api/accounts/alice/nope", nil), "alice")
	rec := httptest.NewRecorder()
	srv.routeAccounts(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleLeaderboard(t *testing.T) {
	srv, _ := newTestServer(t)
	registerTestAccount(t, srv, "alice", "hunter2hunter2", "demo")
	registerTestAccount(t, srv, "bob", "hunter2hunter2", "demo")

	// A winning trade lifts alice above bob.
	tradeReq := asUser(httptest.NewRequest(http.MethodPost, "/api/accounts/alice/trades",
		jsonBody(t, map[string]interface{}{"amount": 100, "prediction": "up"})), "alice")
	tradeRec := httptest.NewRecorder()
	srv.routeAccounts(tradeRec, tradeReq)
	if tradeRec.Code != http.StatusOK {
		t.Fatalf("trade failed: %d: %s", tradeRec.Code, tradeRec.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	rec := httptest.NewRecorder()
	srv.handleLeaderboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	if data["count"] != float64(2) {
		t.Fatalf("expected 2 entries, got %v", data["count"])
	}
	entries := data["leaderboard"].([]interface{})
	top := entries[0].(map[string]interface{})
	if top["username"] != "alice" {
		t.Errorf("expected alice on top, got %v", top["username"])
	}
	if top["rank"] != float64(1) {
		t.Errorf("expected rank 1, got %v", top["rank"])
	}
}

func TestHandleLeaderboard_Limit(t *testing.T) {
	srv, _ := newTestServer(t)
	registerTestAccount(t, srv, "alice", "hunter2hunter2", "demo")
	registerTestAccount(t, srv, "bob", "hunter2hunter2", "demo")
	registerTestAccount(t, srv, "carol", "hunter2hunter2", "demo")

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard?limit=2", nil)
	rec := httptest.NewRecorder()
	srv.handleLeaderboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	if data["count"] != float64(2) {
		t.Errorf("expected 2 entries, got %v", data["count"])
	}
}
