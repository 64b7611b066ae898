package accounts

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tradepit/internal/common"
	"tradepit/internal/models"
	"tradepit/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.Registry) {
	t.Helper()
	fs, err := storage.NewFileStore(common.NewSilentLogger(), &common.FileConfig{
		Path: filepath.Join(t.TempDir(), "users.json"),
	})
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	reg, err := storage.NewRegistry(common.NewSilentLogger(), fs)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return NewService(reg, common.NewSilentLogger()), reg
}

func TestGetAccount(t *testing.T) {
	svc, reg := newTestService(t)
	if err := reg.Create(models.NewAccount("alice", "h", models.TierDemo)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	acct, err := svc.GetAccount(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetAccount: %v", err)
	}
	if acct.Balance != models.DemoStartingBalance {
		t.Errorf("balance = %v", acct.Balance)
	}

	_, err = svc.GetAccount(context.Background(), "ghost")
	if !errors.Is(err, models.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestGetTradesAndHistory(t *testing.T) {
	svc, reg := newTestService(t)
	acct := models.NewAccount("alice", "h", models.TierDemo)
	acct.Trades = append(acct.Trades, models.NewTrade(50, models.DirectionDown, models.DirectionUp))
	acct.UpdateBalance(-50)
	if err := reg.Create(acct); err != nil {
		t.Fatalf("Create: %v", err)
	}

	trades, err := svc.GetTrades(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetTrades: %v", err)
	}
	if len(trades) != 1 || trades[0].Amount != 50 {
		t.Errorf("trades = %+v", trades)
	}

	history, err := svc.GetHistory(context.Background(), "alice")
	if err != nil {
		t.Fatalf("GetHistory: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history length = %d, want 2", len(history))
	}
}

func TestRenderBalanceChart(t *testing.T) {
	svc, reg := newTestService(t)
	acct := models.NewAccount("alice", "h", models.TierDemo)
	acct.UpdateBalance(90)
	acct.UpdateBalance(-40)
	if err := reg.Create(acct); err != nil {
		t.Fatalf("Create: %v", err)
	}

	png, err := svc.RenderBalanceChart(context.Background(), "alice")
	if err != nil {
		t.Fatalf("RenderBalanceChart: %v", err)
	}

	// PNG magic bytes
	if !bytes.HasPrefix(png, []byte{0x89, 0x50, 0x4E, 0x47}) {
		t.Error("output is not a PNG")
	}
}

func TestLeaderboard(t *testing.T) {
	svc, reg := newTestService(t)

	rich := models.NewAccount("rich", "h", models.TierDemo)
	rich.UpdateBalance(500)
	poor := models.NewAccount("poor", "h", models.TierDemo)
	poor.UpdateBalance(-500)
	for _, acct := range []*models.Account{
		models.NewAccount("bob", "h", models.TierDemo),
		models.NewAccount("alice", "h", models.TierDemo),
		rich,
		poor,
	} {
		if err := reg.Create(acct); err != nil {
			t.Fatalf("Create %s: %v", acct.Username, err)
		}
	}

	entries, err := svc.Leaderboard(context.Background(), 0)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("entries = %d, want 4", len(entries))
	}

	if entries[0].Username != "rich" || entries[0].Rank != 1 {
		t.Errorf("top entry = %+v", entries[0])
	}
	// Ties break alphabetically.
	if entries[1].Username != "alice" || entries[2].Username != "bob" {
		t.Errorf("tie order = %s, %s", entries[1].Username, entries[2].Username)
	}
	if entries[3].Username != "poor" || entries[3].Rank != 4 {
		t.Errorf("last entry = %+v", entries[3])
	}
}

func TestLeaderboard_Limit(t *testing.T) {
	svc, reg := newTestService(t)
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		if err := reg.Create(models.NewAccount(name, "h", models.TierDemo)); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	entries, err := svc.Leaderboard(context.Background(), 3)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("entries = %d, want 3", len(entries))
	}

	// A non-positive limit falls back to the default page size.
	entries, err = svc.Leaderboard(context.Background(), -1)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(entries) != DefaultLeaderboardSize {
		t.Errorf("entries = %d, want %d", len(entries), DefaultLeaderboardSize)
	}
}

func TestRenderBalanceChart_TooFewPoints(t *testing.T) {
	_, err := RenderBalanceChart("alice", []models.BalancePoint{
		{Timestamp: time.Now(), Balance: 100},
	})
	if err == nil {
		t.Error("expected error for a single data point")
	}
}
