package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leasingborsen/pricelist-cli/internal/budget"
	"github.com/leasingborsen/pricelist-cli/internal/hybrid"
	"github.com/leasingborsen/pricelist-cli/internal/pattern"
	"github.com/leasingborsen/pricelist-cli/internal/resilience"
)

// newTestRouter wires a router over a pattern-only orchestrator.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	ledger := budget.NewMemoryLedger()
	t.Cleanup(func() { ledger.Close() })

	orch := hybrid.New(
		pattern.NewExtractor(nil),
		nil,
		budget.NewGovernor(ledger, budget.DefaultCaps()),
		budget.NewEstimator(budget.Rates{}),
		"claude-haiku-4-5-20251001",
	)
	return newRouter(orch)
}

func TestServeHealth(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestServeExtract(t *testing.T) {
	router := newTestRouter(t)

	body := `{"text":"AYGO X PRIVATLEASING\nActive 1.0 benzin 72 hk\n10.000 km/år 36 mdr. 102.163 kr. 4.999 kr. 2.699 kr./md."}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AYGO X")
	assert.Contains(t, rec.Body.String(), `"session_id"`)
}

func TestServeExtractBadBody(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader("not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServeExtractEmptyDocument(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/extract", strings.NewReader(`{"text":"  "}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation")
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusForError(resilience.NewValidation("bad")))
	assert.Equal(t, http.StatusPaymentRequired, statusForError(resilience.NewCostLimit("cap")))
	assert.Equal(t, http.StatusBadGateway, statusForError(assert.AnError))
}
