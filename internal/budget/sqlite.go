package budget

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/leasingborsen/pricelist-cli/internal/model"
)

// SQLiteLedger implements Ledger using modernc.org/sqlite.
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLite opens a SQLite ledger at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteLedger{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS ai_spend (
	day         TEXT NOT NULL,
	month       TEXT NOT NULL,
	cents       INTEGER NOT NULL,
	recorded_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	dealer_hint   TEXT,
	method_used   TEXT NOT NULL,
	variant_count INTEGER NOT NULL,
	cost_cents    INTEGER NOT NULL,
	tokens_used   INTEGER NOT NULL,
	created_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ai_spend_day ON ai_spend(day);
CREATE INDEX IF NOT EXISTS idx_ai_spend_month ON ai_spend(month);
CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at);
`

func (l *SQLiteLedger) Migrate(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (l *SQLiteLedger) DailyTotalCents(ctx context.Context, at time.Time) (int, error) {
	return l.totalCents(ctx, `SELECT COALESCE(SUM(cents), 0) FROM ai_spend WHERE day = ?`, DayKey(at))
}

func (l *SQLiteLedger) MonthlyTotalCents(ctx context.Context, at time.Time) (int, error) {
	return l.totalCents(ctx, `SELECT COALESCE(SUM(cents), 0) FROM ai_spend WHERE month = ?`, MonthKey(at))
}

func (l *SQLiteLedger) totalCents(ctx context.Context, query, key string) (int, error) {
	var total int
	if err := l.db.QueryRowContext(ctx, query, key).Scan(&total); err != nil {
		return 0, eris.Wrap(err, "sqlite: sum spend")
	}
	return total, nil
}

func (l *SQLiteLedger) RecordSpend(ctx context.Context, at time.Time, cents int) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO ai_spend (day, month, cents, recorded_at) VALUES (?, ?, ?, ?)`,
		DayKey(at), MonthKey(at), cents, at.UTC(),
	)
	return eris.Wrap(err, "sqlite: record spend")
}

func (l *SQLiteLedger) RecordSession(ctx context.Context, session model.Session) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO sessions (id, dealer_hint, method_used, variant_count, cost_cents, tokens_used, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.DealerHint, string(session.MethodUsed),
		session.VariantCount, session.CostCents, session.TokensUsed, session.CreatedAt.UTC(),
	)
	return eris.Wrap(err, "sqlite: record session")
}

func (l *SQLiteLedger) ListSessions(ctx context.Context, limit int) ([]model.Session, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, dealer_hint, method_used, variant_count, cost_cents, tokens_used, created_at
		 FROM sessions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list sessions")
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var s model.Session
		var method string
		if err := rows.Scan(&s.ID, &s.DealerHint, &method, &s.VariantCount, &s.CostCents, &s.TokensUsed, &s.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan session")
		}
		s.MethodUsed = model.SourceMethod(method)
		sessions = append(sessions, s)
	}
	return sessions, eris.Wrap(rows.Err(), "sqlite: list sessions iterate")
}

func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}
