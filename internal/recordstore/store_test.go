package recordstore

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/config"
)

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func openStore(t *testing.T, cfg config.RecordStoreConfig) *Store {
	t.Helper()
	if cfg.Path == "" {
		cfg.Path = filepath.Join(t.TempDir(), "records.db")
	}
	s, err := Open(context.Background(), cfg, newLogger())
	if err != nil {
		t.Fatalf("open record store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndListActivity(t *testing.T) {
	s := openStore(t, config.RecordStoreConfig{})

	id, err := s.RecordActivity(context.Background(), Activity{
		FarmerID:     1,
		Date:         "2026-08-29",
		ActivityType: "Sowing",
		Crop:         "Tomato",
		AreaAcres:    2,
	})
	if err != nil {
		t.Fatalf("record activity: %v", err)
	}
	if id == 0 {
		t.Fatal("expected assigned id")
	}

	activities, err := s.ListActivities(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("list activities: %v", err)
	}
	if len(activities) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(activities))
	}
	got := activities[0]
	if got.ActivityType != "Sowing" || got.Crop != "Tomato" || got.AreaAcres != 2 {
		t.Fatalf("unexpected activity: %+v", got)
	}
}

func TestRecordAndListTransaction(t *testing.T) {
	s := openStore(t, config.RecordStoreConfig{})

	if _, err := s.RecordTransaction(context.Background(), Transaction{
		FarmerID: 1,
		Date:     "2026-08-01",
		Type:     "EXPENSE",
		Category: "Fertilizer",
		Amount:   500,
	}); err != nil {
		t.Fatalf("record transaction: %v", err)
	}
	if _, err := s.RecordTransaction(context.Background(), Transaction{
		FarmerID: 1,
		Date:     "2026-08-15",
		Type:     "INCOME",
		Category: "Harvest",
		Amount:   4000,
	}); err != nil {
		t.Fatalf("record transaction: %v", err)
	}

	txs, err := s.ListTransactions(context.Background(), 1, 0)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if txs[0].Date != "2026-08-15" {
		t.Fatalf("expected newest first, got %+v", txs[0])
	}

	other, err := s.ListTransactions(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no transactions for other farmer, got %d", len(other))
	}
}

func TestSessionEventTimelineAndPrune(t *testing.T) {
	s := openStore(t, config.RecordStoreConfig{RetentionDays: 1})

	s.clock = func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) }
	if err := s.AppendSessionEvent(context.Background(), SessionEvent{SessionID: "old", State: "IDLE"}); err != nil {
		t.Fatalf("append event: %v", err)
	}

	s.clock = func() time.Time { return time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC) }
	if err := s.AppendSessionEvent(context.Background(), SessionEvent{SessionID: "new", State: "LISTENING", Detail: "capture started"}); err != nil {
		t.Fatalf("append event: %v", err)
	}
	if err := s.Prune(context.Background()); err != nil {
		t.Fatalf("prune: %v", err)
	}

	old, err := s.ListSessionEvents(context.Background(), "old", 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(old) != 0 {
		t.Fatalf("expected old events pruned, got %d", len(old))
	}
	recent, err := s.ListSessionEvents(context.Background(), "new", 10)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(recent) != 1 || recent[0].Detail != "capture started" {
		t.Fatalf("unexpected events: %+v", recent)
	}
}
