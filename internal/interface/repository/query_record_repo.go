package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"airfare-ledger-service/internal/domain/entity"
	"airfare-ledger-service/internal/domain/repository"
	"airfare-ledger-service/pkg/logger"
)

// recordKeyPrefix namespaces query record entries on the ledger.
const recordKeyPrefix = "query_"

// LedgerQueryRecordRepository implements the QueryRecordRepository
// interface: records live at "query_<key>", the key set lives in the
// key index entry. The record is always written before its key is
// indexed, so a record may transiently exist without an index entry.
type LedgerQueryRecordRepository struct {
	ledger repository.LedgerClient
	index  repository.KeyIndexRepository
	logger logger.Logger
}

// NewLedgerQueryRecordRepository creates a new ledger-backed query record repository
func NewLedgerQueryRecordRepository(ledger repository.LedgerClient, index repository.KeyIndexRepository, logger logger.Logger) repository.QueryRecordRepository {
	return &LedgerQueryRecordRepository{
		ledger: ledger,
		index:  index,
		logger: logger,
	}
}

// GetAll lists every indexed record. Records that fail to read or decode
// are collected into the returned RecordError slice, never aborting the
// listing. Ordering is the caller's responsibility.
func (r *LedgerQueryRecordRepository) GetAll(ctx context.Context) ([]*entity.QueryRecord, []entity.RecordError, error) {
	if !r.ledger.ProbeAvailable(ctx) {
		return nil, nil, repository.ErrLedgerUnavailable
	}

	keys, err := r.index.ListKeys(ctx)
	if err != nil {
		return nil, nil, err
	}

	records := make([]*entity.QueryRecord, 0, len(keys))
	var recordErrs []entity.RecordError

	for _, key := range keys {
		record, err := r.readRecord(ctx, key)
		if err != nil {
			r.logger.Warn("Skipping unreadable record", "key", key, "error", err)
			recordErrs = append(recordErrs, entity.RecordError{Key: key, Err: err})
			continue
		}
		records = append(records, record)
	}

	return records, recordErrs, nil
}

// GetOne returns the record stored under key, or (nil, nil) if absent
func (r *LedgerQueryRecordRepository) GetOne(ctx context.Context, key string) (*entity.QueryRecord, error) {
	if !r.ledger.ProbeAvailable(ctx) {
		return nil, repository.ErrLedgerUnavailable
	}

	data, err := r.ledger.Get(ctx, recordKeyPrefix+key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return decodeRecord(key, data)
}

// Put serializes record and writes it under its ledger key. The key is
// appended to the index only when the record was previously absent;
// updating an existing record never re-appends.
func (r *LedgerQueryRecordRepository) Put(ctx context.Context, record *entity.QueryRecord) error {
	if !r.ledger.ProbeAvailable(ctx) {
		return repository.ErrLedgerUnavailable
	}

	existing, err := r.ledger.Get(ctx, recordKeyPrefix+record.Key)
	if err != nil {
		return err
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record %s: %w", record.Key, err)
	}

	if err := r.ledger.Put(ctx, recordKeyPrefix+record.Key, data); err != nil {
		return err
	}

	if len(existing) == 0 {
		if err := r.index.AppendKey(ctx, record.Key); err != nil {
			return fmt.Errorf("record %s written but not indexed: %w", record.Key, err)
		}
	}
	return nil
}

func (r *LedgerQueryRecordRepository) readRecord(ctx context.Context, key string) (*entity.QueryRecord, error) {
	data, err := r.ledger.Get(ctx, recordKeyPrefix+key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("indexed key has no record entry")
	}
	return decodeRecord(key, data)
}

func decodeRecord(key string, data []byte) (*entity.QueryRecord, error) {
	var record entity.QueryRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	record.Key = key
	if record.Status == "" {
		record.Status = entity.StatusPending
	}
	return &record, nil
}
