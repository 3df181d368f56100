package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"airfare-ledger-service/internal/infrastructure/identity"
	ledgerRepo "airfare-ledger-service/internal/interface/repository"
	"airfare-ledger-service/internal/usecase"
	"airfare-ledger-service/pkg/logger"
	"airfare-ledger-service/pkg/opaque"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*http.ServeMux, *usecase.SubmissionLifecycle, *ledgerRepo.MemoryLedgerClient) {
	t.Helper()
	log := logger.NewLogger()
	wallet := identity.NewEnvWallet("0xabc", "test-signing-key", log)
	ledger := ledgerRepo.NewMemoryLedgerClient(wallet)
	index := ledgerRepo.NewLedgerKeyIndexRepository(ledger, log)
	records := ledgerRepo.NewLedgerQueryRecordRepository(ledger, index, log)
	codec := opaque.NewSimFHE()
	lifecycle := usecase.NewSubmissionLifecycle(records, wallet, codec, log, nil, 10*time.Millisecond, 300, 999)
	queries := usecase.NewQueryService(records, codec, log)

	mux := http.NewServeMux()
	NewHandler(queries, lifecycle, log).Register(mux)
	return mux, lifecycle, ledger
}

func TestListQueriesEmpty(t *testing.T) {
	mux, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/queries", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Queries []json.RawMessage `json:"queries"`
		Errors  []string          `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Empty(t, body.Queries)
	assert.Empty(t, body.Errors)
}

func TestSubmitAndList(t *testing.T) {
	mux, lifecycle, _ := newTestServer(t)

	payload := `{"origin":"JFK","destination":"LHR","departureDate":"2025-06-01","passengers":2}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/queries", strings.NewReader(payload)))

	require.Equal(t, http.StatusAccepted, rec.Code)

	var submitted struct {
		ID     string `json:"id"`
		Events []struct {
			Stage   string `json:"stage"`
			Message string `json:"message"`
		} `json:"events"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))
	assert.NotEmpty(t, submitted.ID)
	require.NotEmpty(t, submitted.Events)
	assert.Equal(t, "created", submitted.Events[0].Stage)

	lifecycle.Close()

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/queries", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listed struct {
		Queries []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"queries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed.Queries, 1)
	assert.Equal(t, submitted.ID, listed.Queries[0].ID)
	assert.Equal(t, "completed", listed.Queries[0].Status)
}

func TestSubmitValidationError(t *testing.T) {
	mux, _, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/queries",
		strings.NewReader(`{"destination":"LHR","departureDate":"2025-06-01"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListQueriesUnavailable(t *testing.T) {
	mux, _, ledger := newTestServer(t)
	ledger.SetAvailable(false)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/queries", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestStats(t *testing.T) {
	mux, lifecycle, _ := newTestServer(t)

	payload := `{"origin":"JFK","destination":"LHR","departureDate":"2025-06-01"}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/queries", strings.NewReader(payload)))
	require.Equal(t, http.StatusAccepted, rec.Code)

	lifecycle.Close()

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		Count          int `json:"count"`
		CompletedCount int `json:"completedCount"`
		MinPrice       int `json:"minPrice"`
		MaxPrice       int `json:"maxPrice"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Count)
	assert.Equal(t, 1, stats.CompletedCount)
	assert.GreaterOrEqual(t, stats.MinPrice, 300)
	assert.LessOrEqual(t, stats.MaxPrice, 999)
}
