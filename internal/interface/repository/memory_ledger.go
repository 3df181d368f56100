package repository

import (
	"context"
	"sync"

	"airfare-ledger-service/internal/domain/repository"
)

// MemoryLedgerClient is an in-process ledger backend. It backs the
// "memory" configuration for local runs and doubles as the test ledger.
// Availability can be toggled to exercise the unavailable path.
type MemoryLedgerClient struct {
	mu        sync.RWMutex
	entries   map[string][]byte
	available bool
	wallet    repository.Wallet
}

// NewMemoryLedgerClient creates a new in-memory ledger client
func NewMemoryLedgerClient(wallet repository.Wallet) *MemoryLedgerClient {
	return &MemoryLedgerClient{
		entries:   make(map[string][]byte),
		available: true,
		wallet:    wallet,
	}
}

// SetAvailable toggles the availability probe result
func (c *MemoryLedgerClient) SetAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.available = available
}

// ProbeAvailable reports whether the ledger accepts operations
func (c *MemoryLedgerClient) ProbeAvailable(ctx context.Context) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.available
}

// Get returns the value stored under key, or (nil, nil) if unset
func (c *MemoryLedgerClient) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Put stores value under key, requiring the wallet's signing capability
func (c *MemoryLedgerClient) Put(ctx context.Context, key string, value []byte) error {
	if c.wallet != nil && !c.wallet.CanSign() {
		return &repository.LedgerError{Op: repository.LedgerOpWrite, Key: key, Err: repository.ErrSigningUnavailable}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	c.entries[key] = stored
	return nil
}
