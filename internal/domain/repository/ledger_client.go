package repository

import (
	"context"
	"errors"
	"fmt"
)

// LedgerOp tags a LedgerError with the operation that failed.
type LedgerOp string

const (
	LedgerOpRead  LedgerOp = "read"
	LedgerOpWrite LedgerOp = "write"
)

// ErrLedgerUnavailable is returned when the availability probe fails;
// callers must short-circuit instead of issuing reads or writes.
var ErrLedgerUnavailable = errors.New("ledger is not available")

// ErrSigningUnavailable is the write failure cause when the wallet holds
// no signing capability. Reads never require one.
var ErrSigningUnavailable = errors.New("no signing capability")

// LedgerError wraps a transport or authorization failure from a ledger
// backend.
type LedgerError struct {
	Op  LedgerOp
	Key string
	Err error
}

func (e *LedgerError) Error() string {
	return fmt.Sprintf("ledger %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *LedgerError) Unwrap() error {
	return e.Err
}

// LedgerClient defines the operation set over the remote key-value ledger.
// Get returns (nil, nil) for a key that was never written; absence is not
// an error. All operations are request/response with bounded wait.
type LedgerClient interface {
	ProbeAvailable(ctx context.Context) bool
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}
