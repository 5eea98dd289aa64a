package budget

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/leasingborsen/pricelist-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the ledger uses, kept narrow so
// tests can substitute pgxmock.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresLedger implements Ledger using pgxpool. Used when several
// workers share one budget.
type PostgresLedger struct {
	pool Pool
}

// NewPostgres creates a PostgresLedger with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresLedger, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresLedger{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool, used by tests.
func NewPostgresWithPool(pool Pool) *PostgresLedger {
	return &PostgresLedger{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS ai_spend (
	day         TEXT NOT NULL,
	month       TEXT NOT NULL,
	cents       BIGINT NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	dealer_hint   TEXT,
	method_used   TEXT NOT NULL,
	variant_count INTEGER NOT NULL,
	cost_cents    BIGINT NOT NULL,
	tokens_used   BIGINT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ai_spend_day ON ai_spend(day);
CREATE INDEX IF NOT EXISTS idx_ai_spend_month ON ai_spend(month);
CREATE INDEX IF NOT EXISTS idx_sessions_created_at ON sessions(created_at);
`

func (l *PostgresLedger) Migrate(ctx context.Context) error {
	_, err := l.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (l *PostgresLedger) DailyTotalCents(ctx context.Context, at time.Time) (int, error) {
	return l.totalCents(ctx, `SELECT COALESCE(SUM(cents), 0) FROM ai_spend WHERE day = $1`, DayKey(at))
}

func (l *PostgresLedger) MonthlyTotalCents(ctx context.Context, at time.Time) (int, error) {
	return l.totalCents(ctx, `SELECT COALESCE(SUM(cents), 0) FROM ai_spend WHERE month = $1`, MonthKey(at))
}

func (l *PostgresLedger) totalCents(ctx context.Context, query, key string) (int, error) {
	var total int64
	if err := l.pool.QueryRow(ctx, query, key).Scan(&total); err != nil {
		return 0, eris.Wrap(err, "postgres: sum spend")
	}
	return int(total), nil
}

func (l *PostgresLedger) RecordSpend(ctx context.Context, at time.Time, cents int) error {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO ai_spend (day, month, cents, recorded_at) VALUES ($1, $2, $3, $4)`,
		DayKey(at), MonthKey(at), cents, at.UTC(),
	)
	return eris.Wrap(err, "postgres: record spend")
}

func (l *PostgresLedger) RecordSession(ctx context.Context, session model.Session) error {
	_, err := l.pool.Exec(ctx,
		`INSERT INTO sessions (id, dealer_hint, method_used, variant_count, cost_cents, tokens_used, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		session.ID, session.DealerHint, string(session.MethodUsed),
		session.VariantCount, session.CostCents, session.TokensUsed, session.CreatedAt.UTC(),
	)
	return eris.Wrap(err, "postgres: record session")
}

func (l *PostgresLedger) ListSessions(ctx context.Context, limit int) ([]model.Session, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := l.pool.Query(ctx,
		`SELECT id, dealer_hint, method_used, variant_count, cost_cents, tokens_used, created_at
		 FROM sessions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list sessions")
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var s model.Session
		var method string
		if err := rows.Scan(&s.ID, &s.DealerHint, &method, &s.VariantCount, &s.CostCents, &s.TokensUsed, &s.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan session")
		}
		s.MethodUsed = model.SourceMethod(method)
		sessions = append(sessions, s)
	}
	return sessions, eris.Wrap(rows.Err(), "postgres: list sessions iterate")
}

func (l *PostgresLedger) Close() error {
	l.pool.Close()
	return nil
}
