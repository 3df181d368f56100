package repository

import (
	"context"

	"airfare-ledger-service/internal/domain/entity"
)

// QueryRecordRepository defines the interface for query record operations
// against the ledger.
//
// GetAll isolates per-record failures: a record that cannot be read or
// decoded is collected into the RecordError slice and the listing goes on.
// Result ordering is the caller's responsibility.
type QueryRecordRepository interface {
	GetAll(ctx context.Context) ([]*entity.QueryRecord, []entity.RecordError, error)
	GetOne(ctx context.Context, key string) (*entity.QueryRecord, error)
	Put(ctx context.Context, record *entity.QueryRecord) error
}
