package budget

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leasingborsen/pricelist-cli/internal/model"
)

func TestDayAndMonthKeysAreUTC(t *testing.T) {
	t.Parallel()

	// 23:30 in UTC+2 is 21:30 UTC the same day; 00:30 UTC+2 on the 1st
	// is still the previous month in UTC.
	cph := time.FixedZone("CPH", 2*3600)
	assert.Equal(t, "2026-08-31", DayKey(time.Date(2026, 8, 31, 23, 30, 0, 0, cph)))
	assert.Equal(t, "2026-08", MonthKey(time.Date(2026, 9, 1, 0, 30, 0, 0, cph)))
}

func TestMemoryLedgerBucketsSpend(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()
	ctx := context.Background()

	day1 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	require.NoError(t, ledger.RecordSpend(ctx, day1, 10))
	require.NoError(t, ledger.RecordSpend(ctx, day2, 20))
	require.NoError(t, ledger.RecordSpend(ctx, day2, 5))

	daily, err := ledger.DailyTotalCents(ctx, day2)
	require.NoError(t, err)
	assert.Equal(t, 25, daily)

	monthly, err := ledger.MonthlyTotalCents(ctx, day2)
	require.NoError(t, err)
	assert.Equal(t, 35, monthly)
}

func TestMemoryLedgerListSessionsNewestFirst(t *testing.T) {
	t.Parallel()

	ledger := NewMemoryLedger()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, ledger.RecordSession(ctx, model.Session{ID: id}))
	}

	sessions, err := ledger.ListSessions(ctx, 2)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "c", sessions[0].ID)
	assert.Equal(t, "b", sessions[1].ID)
}

func TestSQLiteLedgerRoundTrip(t *testing.T) {
	t.Parallel()

	ledger, err := NewSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })

	ctx := context.Background()
	require.NoError(t, ledger.Migrate(ctx))

	at := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	require.NoError(t, ledger.RecordSpend(ctx, at, 15))
	require.NoError(t, ledger.RecordSpend(ctx, at, 10))

	daily, err := ledger.DailyTotalCents(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, 25, daily)

	monthly, err := ledger.MonthlyTotalCents(ctx, at)
	require.NoError(t, err)
	assert.Equal(t, 25, monthly)

	// A different month sums independently.
	other, err := ledger.MonthlyTotalCents(ctx, at.AddDate(0, 1, 0))
	require.NoError(t, err)
	assert.Zero(t, other)

	require.NoError(t, ledger.RecordSession(ctx, model.Session{
		ID:           "s1",
		DealerHint:   "Toyota Hvidovre",
		MethodUsed:   model.MethodHybrid,
		VariantCount: 27,
		CostCents:    25,
		TokensUsed:   54_000,
		CreatedAt:    at,
	}))

	sessions, err := ledger.ListSessions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s1", sessions[0].ID)
	assert.Equal(t, model.MethodHybrid, sessions[0].MethodUsed)
	assert.Equal(t, 27, sessions[0].VariantCount)
}

func TestSQLiteLedgerWorksWithGovernor(t *testing.T) {
	t.Parallel()

	ledger, err := NewSQLite(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })
	require.NoError(t, ledger.Migrate(context.Background()))

	g := NewGovernor(ledger, Caps{PerDocumentCents: 50, DailyCents: 30, MonthlyCents: 1_000})
	g.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }

	decision, err := g.Authorize(context.Background(), "s1", 20)
	require.NoError(t, err)
	require.True(t, decision.CanAfford)

	require.NoError(t, g.Commit(context.Background(), model.Session{
		ID: "s1", MethodUsed: model.MethodAI, CostCents: 20, CreatedAt: g.now(),
	}))

	// The committed spend now blocks a second session of the same size.
	second, err := g.Authorize(context.Background(), "s2", 20)
	require.NoError(t, err)
	assert.False(t, second.CanAfford)
	assert.Equal(t, "daily cap exceeded", second.Reason)
}
