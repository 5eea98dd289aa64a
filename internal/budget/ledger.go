package budget

import (
	"context"
	"sync"
	"time"

	"github.com/leasingborsen/pricelist-cli/internal/model"
)

// Period key formats. All bucketing is in UTC so a session is charged
// to one unambiguous day regardless of server timezone.
const (
	dayFormat   = "2006-01-02"
	monthFormat = "2006-01"
)

// DayKey and MonthKey bucket a timestamp for ledger accounting.
func DayKey(at time.Time) string   { return at.UTC().Format(dayFormat) }
func MonthKey(at time.Time) string { return at.UTC().Format(monthFormat) }

// Ledger persists actual AI spend and the sessions that produced it.
type Ledger interface {
	DailyTotalCents(ctx context.Context, at time.Time) (int, error)
	MonthlyTotalCents(ctx context.Context, at time.Time) (int, error)
	RecordSpend(ctx context.Context, at time.Time, cents int) error
	RecordSession(ctx context.Context, session model.Session) error
	ListSessions(ctx context.Context, limit int) ([]model.Session, error)
	Close() error
}

// MemoryLedger keeps spend in process memory. Used by tests and one-shot
// CLI runs where persistence across invocations does not matter.
type MemoryLedger struct {
	mu       sync.Mutex
	byDay    map[string]int
	byMonth  map[string]int
	sessions []model.Session
}

// NewMemoryLedger returns an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		byDay:   make(map[string]int),
		byMonth: make(map[string]int),
	}
}

func (l *MemoryLedger) DailyTotalCents(_ context.Context, at time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.byDay[DayKey(at)], nil
}

func (l *MemoryLedger) MonthlyTotalCents(_ context.Context, at time.Time) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.byMonth[MonthKey(at)], nil
}

func (l *MemoryLedger) RecordSpend(_ context.Context, at time.Time, cents int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.byDay[DayKey(at)] += cents
	l.byMonth[MonthKey(at)] += cents
	return nil
}

func (l *MemoryLedger) RecordSession(_ context.Context, session model.Session) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.sessions = append(l.sessions, session)
	return nil
}

func (l *MemoryLedger) ListSessions(_ context.Context, limit int) ([]model.Session, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 || limit > len(l.sessions) {
		limit = len(l.sessions)
	}
	// Newest first.
	out := make([]model.Session, 0, limit)
	for i := len(l.sessions) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.sessions[i])
	}
	return out, nil
}

func (l *MemoryLedger) Close() error { return nil }
