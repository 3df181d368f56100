package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"

	"airfare-ledger-service/internal/domain/entity"
	"airfare-ledger-service/internal/domain/repository"
	"airfare-ledger-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLedger counts Get calls to assert the unavailable short-circuit.
type countingLedger struct {
	repository.LedgerClient
	gets int32
}

func (l *countingLedger) Get(ctx context.Context, key string) ([]byte, error) {
	atomic.AddInt32(&l.gets, 1)
	return l.LedgerClient.Get(ctx, key)
}

func newRecordRepo(t *testing.T, ledger repository.LedgerClient) repository.QueryRecordRepository {
	t.Helper()
	log := logger.NewLogger()
	return NewLedgerQueryRecordRepository(ledger, NewLedgerKeyIndexRepository(ledger, log), log)
}

func sampleRecord(key string, submittedAt int64) *entity.QueryRecord {
	return &entity.QueryRecord{
		Key:           key,
		Origin:        "JFK",
		Destination:   "LHR",
		DepartureDate: "2025-06-01",
		EncodedQuery:  "FHE-e30=",
		EncodedPrice:  "FHE-eyJwcmljZSI6NDM3fQ==",
		SubmittedAt:   submittedAt,
		Owner:         "0xabc",
		Status:        entity.StatusPending,
	}
}

func TestGetAllEmptyLedger(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedgerClient(newTestWallet("0xabc", true))
	records := newRecordRepo(t, ledger)

	list, recordErrs, err := records.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, recordErrs)
}

func TestGetAllDanglingIndexKey(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedgerClient(newTestWallet("0xabc", true))
	records := newRecordRepo(t, ledger)

	data, err := json.Marshal(sampleRecord("a", 100))
	require.NoError(t, err)
	require.NoError(t, ledger.Put(ctx, "query_a", data))
	// "b" is indexed but was never written.
	require.NoError(t, ledger.Put(ctx, keyIndexKey, []byte(`["a","b"]`)))

	list, recordErrs, err := records.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "a", list[0].Key)
	require.Len(t, recordErrs, 1)
	assert.Equal(t, "b", recordErrs[0].Key)
}

func TestGetAllUndecodableRecordIsolated(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedgerClient(newTestWallet("0xabc", true))
	records := newRecordRepo(t, ledger)

	data, err := json.Marshal(sampleRecord("good", 100))
	require.NoError(t, err)
	require.NoError(t, ledger.Put(ctx, "query_good", data))
	require.NoError(t, ledger.Put(ctx, "query_bad", []byte("{broken")))
	require.NoError(t, ledger.Put(ctx, keyIndexKey, []byte(`["good","bad"]`)))

	list, recordErrs, err := records.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "good", list[0].Key)
	require.Len(t, recordErrs, 1)
	assert.Equal(t, "bad", recordErrs[0].Key)
}

func TestGetAllUnavailableSkipsReads(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryLedgerClient(newTestWallet("0xabc", true))
	mem.SetAvailable(false)
	counting := &countingLedger{LedgerClient: mem}
	records := newRecordRepo(t, counting)

	list, recordErrs, err := records.GetAll(ctx)
	assert.True(t, errors.Is(err, repository.ErrLedgerUnavailable))
	assert.Empty(t, list)
	assert.Empty(t, recordErrs)
	assert.Zero(t, atomic.LoadInt32(&counting.gets), "no get may be attempted while unavailable")
}

func TestPutNewRecordIndexesKey(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedgerClient(newTestWallet("0xabc", true))
	log := logger.NewLogger()
	index := NewLedgerKeyIndexRepository(ledger, log)
	records := NewLedgerQueryRecordRepository(ledger, index, log)

	require.NoError(t, records.Put(ctx, sampleRecord("k1", 100)))

	keys, err := index.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"k1"}, keys)

	list, recordErrs, err := records.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, recordErrs)
	require.Len(t, list, 1)
	assert.Equal(t, "k1", list[0].Key)
}

func TestPutIdempotent(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedgerClient(newTestWallet("0xabc", true))
	log := logger.NewLogger()
	index := NewLedgerKeyIndexRepository(ledger, log)
	records := NewLedgerQueryRecordRepository(ledger, index, log)

	record := sampleRecord("k1", 100)
	require.NoError(t, records.Put(ctx, record))
	first, err := ledger.Get(ctx, "query_k1")
	require.NoError(t, err)

	require.NoError(t, records.Put(ctx, record))
	second, err := ledger.Get(ctx, "query_k1")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	keys, err := index.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"k1"}, keys, "re-put must not duplicate the index key")
}

func TestPutUpdateDoesNotReappend(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedgerClient(newTestWallet("0xabc", true))
	log := logger.NewLogger()
	index := NewLedgerKeyIndexRepository(ledger, log)
	records := NewLedgerQueryRecordRepository(ledger, index, log)

	record := sampleRecord("k1", 100)
	require.NoError(t, records.Put(ctx, record))

	record.Status = entity.StatusCompleted
	require.NoError(t, records.Put(ctx, record))

	keys, err := index.ListKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"k1"}, keys)

	got, err := records.GetOne(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.StatusCompleted, got.Status)
}

func TestGetOneAbsent(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedgerClient(newTestWallet("0xabc", true))
	records := newRecordRepo(t, ledger)

	got, err := records.GetOne(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDecodeDefaultsMissingStatusToPending(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedgerClient(newTestWallet("0xabc", true))
	records := newRecordRepo(t, ledger)

	// A record written by an older client, with no status field.
	raw := []byte(`{"origin":"JFK","destination":"LHR","departureDate":"2025-06-01","timestamp":100,"owner":"0xabc"}`)
	require.NoError(t, ledger.Put(ctx, "query_old", raw))
	require.NoError(t, ledger.Put(ctx, keyIndexKey, []byte(`["old"]`)))

	got, err := records.GetOne(ctx, "old")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, entity.StatusPending, got.Status)
}
