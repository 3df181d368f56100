package usecase

import (
	"context"
	"sort"

	"airfare-ledger-service/internal/domain/entity"
	"airfare-ledger-service/internal/domain/repository"
	"airfare-ledger-service/pkg/logger"
	"airfare-ledger-service/pkg/opaque"
)

// QueryService exposes read-side operations: the sorted record snapshot
// and aggregate statistics. It never writes to the ledger.
type QueryService struct {
	records repository.QueryRecordRepository
	codec   opaque.Codec
	logger  logger.Logger
}

// NewQueryService creates a new query service
func NewQueryService(records repository.QueryRecordRepository, codec opaque.Codec, logger logger.Logger) *QueryService {
	return &QueryService{
		records: records,
		codec:   codec,
		logger:  logger,
	}
}

// LoadAll returns the full record snapshot in canonical order: newest
// first, ties broken by key. Per-record failures come back alongside the
// valid records.
func (s *QueryService) LoadAll(ctx context.Context) ([]*entity.QueryRecord, []entity.RecordError, error) {
	records, recordErrs, err := s.records.GetAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].SubmittedAt != records[j].SubmittedAt {
			return records[i].SubmittedAt > records[j].SubmittedAt
		}
		return records[i].Key < records[j].Key
	})

	return records, recordErrs, nil
}

// Aggregate derives summary statistics from a record snapshot. Price
// bounds cover completed records whose price decodes; a record with an
// undecodable price still counts toward Count. With no completed
// decodable record, min, max and avg are 0 by convention.
func (s *QueryService) Aggregate(records []*entity.QueryRecord) entity.QueryStats {
	stats := entity.QueryStats{Count: len(records)}

	var prices []int
	for _, record := range records {
		switch record.Status {
		case entity.StatusCompleted:
			stats.CompletedCount++
		default:
			stats.PendingCount++
		}

		if record.Status != entity.StatusCompleted || record.EncodedPrice == "" {
			continue
		}
		var payload entity.PricePayload
		if err := s.codec.Decode(record.EncodedPrice, &payload); err != nil {
			s.logger.Warn("Excluding undecodable price from statistics", "key", record.Key, "error", err)
			continue
		}
		prices = append(prices, payload.Price)
	}

	if len(prices) == 0 {
		return stats
	}

	stats.MinPrice = prices[0]
	stats.MaxPrice = prices[0]
	sum := 0
	for _, price := range prices {
		if price < stats.MinPrice {
			stats.MinPrice = price
		}
		if price > stats.MaxPrice {
			stats.MaxPrice = price
		}
		sum += price
	}
	stats.AvgPrice = sum / len(prices) // truncating integer average

	return stats
}
