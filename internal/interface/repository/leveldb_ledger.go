package repository

import (
	"context"

	"airfare-ledger-service/internal/domain/repository"
	"airfare-ledger-service/pkg/logger"

	"github.com/syndtr/goleveldb/leveldb"
)

// LevelDBLedgerClient implements the LedgerClient interface on an embedded
// leveldb store. Intended for single-process local deployments; concurrent
// sessions against a shared ledger need the mongo or postgres backend.
type LevelDBLedgerClient struct {
	db     *leveldb.DB
	wallet repository.Wallet
	logger logger.Logger
}

// NewLevelDBLedgerClient opens (or creates) the leveldb store at path
func NewLevelDBLedgerClient(path string, wallet repository.Wallet, logger logger.Logger) (*LevelDBLedgerClient, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBLedgerClient{
		db:     db,
		wallet: wallet,
		logger: logger,
	}, nil
}

// Close closes the underlying store
func (c *LevelDBLedgerClient) Close() error {
	return c.db.Close()
}

// ProbeAvailable reports whether the store is open
func (c *LevelDBLedgerClient) ProbeAvailable(ctx context.Context) bool {
	// A cheap property read doubles as a liveness check on the handle.
	_, err := c.db.GetProperty("leveldb.num-files-at-level0")
	return err == nil
}

// Get returns the value stored under key, or (nil, nil) if unset
func (c *LevelDBLedgerClient) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.db.Get([]byte(key), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, nil
		}
		return nil, &repository.LedgerError{Op: repository.LedgerOpRead, Key: key, Err: err}
	}
	return value, nil
}

// Put stores value under key, requiring the wallet's signing capability
func (c *LevelDBLedgerClient) Put(ctx context.Context, key string, value []byte) error {
	if !c.wallet.CanSign() {
		return &repository.LedgerError{Op: repository.LedgerOpWrite, Key: key, Err: repository.ErrSigningUnavailable}
	}

	if err := c.db.Put([]byte(key), value, nil); err != nil {
		return &repository.LedgerError{Op: repository.LedgerOpWrite, Key: key, Err: err}
	}
	return nil
}
