package recordstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/config"
	_ "modernc.org/sqlite"
)

// Activity is one logged field activity.
type Activity struct {
	ID           int64     `json:"id"`
	FarmerID     int       `json:"farmer_id"`
	Date         string    `json:"date"` // YYYY-MM-DD
	ActivityType string    `json:"activity_type"`
	Crop         string    `json:"crop"`
	AreaAcres    float64   `json:"area_acres"`
	Notes        string    `json:"notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Transaction is one logged income or expense.
type Transaction struct {
	ID        int64     `json:"id"`
	FarmerID  int       `json:"farmer_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	Type      string    `json:"type"` // INCOME or EXPENSE
	Category  string    `json:"category"`
	Amount    float64   `json:"amount"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionEvent is one state machine transition for the audit timeline.
type SessionEvent struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	State     string    `json:"state"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store wraps the SQLite-backed farm record store.
type Store struct {
	db    *sql.DB
	cfg   config.RecordStoreConfig
	log   *slog.Logger
	clock func() time.Time
}

// Open initializes the record store according to config.
func Open(ctx context.Context, cfg config.RecordStoreConfig, log *slog.Logger) (*Store, error) {
	dir := filepath.Dir(cfg.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cfg.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, cfg: cfg, log: log, clock: time.Now}

	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if cfg.VacuumOnStart {
		if _, err := s.db.ExecContext(ctx, "VACUUM"); err != nil {
			log.Warn("record store vacuum failed", slog.String("error", err.Error()))
		}
	}

	if err := s.Prune(ctx); err != nil {
		log.Warn("record store prune on start failed", slog.String("error", err.Error()))
	}

	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS activities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    farmer_id INTEGER NOT NULL,
    date TEXT NOT NULL,
    activity_type TEXT NOT NULL,
    crop TEXT NOT NULL,
    area_acres REAL,
    notes TEXT,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    farmer_id INTEGER NOT NULL,
    date TEXT NOT NULL,
    type TEXT NOT NULL,
    category TEXT NOT NULL,
    amount REAL NOT NULL,
    notes TEXT,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS session_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL,
    state TEXT NOT NULL,
    detail TEXT,
    created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_activities_farmer_date ON activities(farmer_id, date);
CREATE INDEX IF NOT EXISTS idx_transactions_farmer_date ON transactions(farmer_id, date);
CREATE INDEX IF NOT EXISTS idx_session_events_session ON session_events(session_id, created_at);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

// Close releases underlying resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordActivity inserts a field activity. Callers apply their own
// defaults first; the store persists what it is given.
func (s *Store) RecordActivity(ctx context.Context, a Activity) (int64, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.clock().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO activities(farmer_id, date, activity_type, crop, area_acres, notes, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		a.FarmerID, a.Date, a.ActivityType, a.Crop, a.AreaAcres, a.Notes, a.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// RecordTransaction inserts a financial transaction.
func (s *Store) RecordTransaction(ctx context.Context, t Transaction) (int64, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.clock().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions(farmer_id, date, type, category, amount, notes, created_at)
		 VALUES(?, ?, ?, ?, ?, ?, ?)`,
		t.FarmerID, t.Date, t.Type, t.Category, t.Amount, t.Notes, t.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListActivities returns up to limit activities for a farmer, newest
// first. limit <= 0 means all.
func (s *Store) ListActivities(ctx context.Context, farmerID, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, farmer_id, date, activity_type, crop, area_acres, notes, created_at
		 FROM activities WHERE farmer_id = ? ORDER BY date DESC, id DESC LIMIT ?`, farmerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var a Activity
		var created string
		if err := rows.Scan(&a.ID, &a.FarmerID, &a.Date, &a.ActivityType, &a.Crop, &a.AreaAcres, &a.Notes, &created); err != nil {
			return nil, err
		}
		a.CreatedAt = parseTimestamp(created)
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListTransactions returns up to limit transactions for a farmer, newest
// first. limit <= 0 means all.
func (s *Store) ListTransactions(ctx context.Context, farmerID, limit int) ([]Transaction, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, farmer_id, date, type, category, amount, notes, created_at
		 FROM transactions WHERE farmer_id = ? ORDER BY date DESC, id DESC LIMIT ?`, farmerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		var created string
		if err := rows.Scan(&t.ID, &t.FarmerID, &t.Date, &t.Type, &t.Category, &t.Amount, &t.Notes, &created); err != nil {
			return nil, err
		}
		t.CreatedAt = parseTimestamp(created)
		out = append(out, t)
	}
	return out, rows.Err()
}

// AppendSessionEvent writes a session transition into the audit timeline.
func (s *Store) AppendSessionEvent(ctx context.Context, evt SessionEvent) error {
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = s.clock().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_events(session_id, state, detail, created_at) VALUES(?, ?, ?, ?)`,
		evt.SessionID, evt.State, evt.Detail, evt.CreatedAt)
	return err
}

// ListSessionEvents retrieves up to limit events for a session ordered
// ascending by time.
func (s *Store) ListSessionEvents(ctx context.Context, sessionID string, limit int) ([]SessionEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, state, detail, created_at
		 FROM session_events WHERE session_id = ? ORDER BY created_at ASC, id ASC LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SessionEvent
	for rows.Next() {
		var e SessionEvent
		var created string
		if err := rows.Scan(&e.ID, &e.SessionID, &e.State, &e.Detail, &created); err != nil {
			return nil, err
		}
		e.CreatedAt = parseTimestamp(created)
		out = append(out, e)
	}
	return out, rows.Err()
}

// Prune drops session events older than the configured retention window.
// Farm records themselves are never pruned.
func (s *Store) Prune(ctx context.Context) error {
	if s.cfg.RetentionDays <= 0 {
		return nil
	}
	cutoff := s.clock().Add(-time.Duration(s.cfg.RetentionDays) * 24 * time.Hour)
	_, err := s.db.ExecContext(ctx, `DELETE FROM session_events WHERE created_at < ?`, cutoff.UTC())
	return err
}

func parseTimestamp(raw string) time.Time {
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts
	}
	return time.Time{}
}
