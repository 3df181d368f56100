package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"airfare-ledger-service/internal/domain/repository"
	"airfare-ledger-service/pkg/logger"
)

// keyIndexKey is the ledger entry holding the ordered set of all record keys.
const keyIndexKey = "query_keys"

// LedgerKeyIndexRepository implements the KeyIndexRepository interface over
// a single ledger entry containing a JSON array of keys.
//
// AppendKey is read-modify-write with no compare-and-swap: when two
// sessions append concurrently, the later write can overwrite the earlier
// addition and lose a key. The gap is deliberate (the ledger contract has
// no conditional write); callers recover by a full record rescan, which is
// authoritative over this index.
type LedgerKeyIndexRepository struct {
	ledger repository.LedgerClient
	logger logger.Logger
}

// NewLedgerKeyIndexRepository creates a new ledger-backed key index repository
func NewLedgerKeyIndexRepository(ledger repository.LedgerClient, logger logger.Logger) repository.KeyIndexRepository {
	return &LedgerKeyIndexRepository{
		ledger: ledger,
		logger: logger,
	}
}

// ListKeys returns the ordered record keys. An absent or malformed index
// entry yields an empty list; malformed is logged, not fatal.
func (r *LedgerKeyIndexRepository) ListKeys(ctx context.Context) ([]string, error) {
	if !r.ledger.ProbeAvailable(ctx) {
		return nil, repository.ErrLedgerUnavailable
	}

	data, err := r.ledger.Get(ctx, keyIndexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read key index: %w", err)
	}
	if len(data) == 0 {
		return []string{}, nil
	}

	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		r.logger.Warn("Malformed key index entry, treating as empty", "error", err)
		return []string{}, nil
	}
	return keys, nil
}

// AppendKey adds key to the index unless it is already present
func (r *LedgerKeyIndexRepository) AppendKey(ctx context.Context, key string) error {
	keys, err := r.ListKeys(ctx)
	if err != nil {
		return err
	}

	for _, k := range keys {
		if k == key {
			return nil
		}
	}

	keys = append(keys, key)
	data, err := json.Marshal(keys)
	if err != nil {
		return fmt.Errorf("failed to marshal key index: %w", err)
	}

	if err := r.ledger.Put(ctx, keyIndexKey, data); err != nil {
		return fmt.Errorf("failed to write key index: %w", err)
	}
	return nil
}
