package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"airfare-ledger-service/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testWallet is a togglable wallet for exercising the signing paths.
type testWallet struct {
	mu        sync.Mutex
	principal string
	canSign   bool
}

func newTestWallet(principal string, canSign bool) *testWallet {
	return &testWallet{principal: principal, canSign: canSign}
}

func (w *testWallet) Principal() string {
	return w.principal
}

func (w *testWallet) CanSign() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canSign
}

func (w *testWallet) SetCanSign(canSign bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.canSign = canSign
}

func TestMemoryLedgerPutGet(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedgerClient(newTestWallet("0xabc", true))

	require.NoError(t, ledger.Put(ctx, "some_key", []byte("value")))

	value, err := ledger.Get(ctx, "some_key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), value)
}

func TestMemoryLedgerGetAbsent(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedgerClient(newTestWallet("0xabc", true))

	value, err := ledger.Get(ctx, "never_written")
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestMemoryLedgerProbeToggle(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedgerClient(newTestWallet("0xabc", true))

	assert.True(t, ledger.ProbeAvailable(ctx))
	ledger.SetAvailable(false)
	assert.False(t, ledger.ProbeAvailable(ctx))
}

func TestMemoryLedgerPutWithoutSigner(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedgerClient(newTestWallet("0xabc", false))

	err := ledger.Put(ctx, "some_key", []byte("value"))
	require.Error(t, err)

	var ledgerErr *repository.LedgerError
	require.True(t, errors.As(err, &ledgerErr))
	assert.Equal(t, repository.LedgerOpWrite, ledgerErr.Op)
	assert.True(t, errors.Is(err, repository.ErrSigningUnavailable))

	// Reads never need the signing capability.
	_, err = ledger.Get(ctx, "some_key")
	require.NoError(t, err)
}
