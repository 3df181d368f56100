package usecase

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"airfare-ledger-service/internal/domain/entity"
	"airfare-ledger-service/internal/domain/repository"
	"airfare-ledger-service/pkg/logger"
	"airfare-ledger-service/pkg/metrics"
	"airfare-ledger-service/pkg/opaque"

	"github.com/google/uuid"
)

// Stage is one state in the submission state machine.
type Stage string

const (
	StageCreated            Stage = "created"
	StageEncoding           Stage = "encoding"
	StagePersistedPending   Stage = "persisted_pending"
	StageAnalyzing          Stage = "analyzing"
	StagePersistedCompleted Stage = "persisted_completed"
	StageDone               Stage = "done"
	StageFailed             Stage = "failed"
)

// StatusEvent is the notification emitted synchronously at each stage
// transition.
type StatusEvent struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}

// StatusObserver receives stage transitions for one submission. Events
// after persisted_pending arrive on the analysis goroutine.
type StatusObserver func(StatusEvent)

// SubmitRequest carries the cleartext query fields from the caller.
type SubmitRequest struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	Passengers    int    `json:"passengers"`
}

// Validate checks the required fields client-side, before anything is
// encoded or written.
func (r *SubmitRequest) Validate() error {
	if r.Origin == "" {
		return &entity.ValidationError{Field: "origin", Reason: "must not be empty"}
	}
	if r.Destination == "" {
		return &entity.ValidationError{Field: "destination", Reason: "must not be empty"}
	}
	if r.DepartureDate == "" {
		return &entity.ValidationError{Field: "departureDate", Reason: "must not be empty"}
	}
	return nil
}

// SubmissionLifecycle drives a query through
// created -> encoding -> persisted_pending -> analyzing ->
// persisted_completed -> done, with failed reachable from every
// non-terminal stage.
//
// The analyzing stage models off-band price computation: Submit returns
// right after the pending record is durable and the completion write runs
// on a timer. A completion write failure leaves the record durably
// pending; there is no rollback.
type SubmissionLifecycle struct {
	records      repository.QueryRecordRepository
	wallet       repository.Wallet
	codec        opaque.Codec
	logger       logger.Logger
	metrics      *metrics.Metrics
	analyzeDelay time.Duration
	priceMin     int
	priceMax     int
	wg           sync.WaitGroup
}

// NewSubmissionLifecycle creates a new submission lifecycle controller
func NewSubmissionLifecycle(
	records repository.QueryRecordRepository,
	wallet repository.Wallet,
	codec opaque.Codec,
	logger logger.Logger,
	metrics *metrics.Metrics,
	analyzeDelay time.Duration,
	priceMin, priceMax int,
) *SubmissionLifecycle {
	return &SubmissionLifecycle{
		records:      records,
		wallet:       wallet,
		codec:        codec,
		logger:       logger,
		metrics:      metrics,
		analyzeDelay: analyzeDelay,
		priceMin:     priceMin,
		priceMax:     priceMax,
	}
}

// Submit validates, encodes and persists a new pending query, then
// schedules the simulated analysis. It returns the generated record key
// once the pending record is durable; after that point the lifecycle can
// no longer be canceled.
func (s *SubmissionLifecycle) Submit(ctx context.Context, req SubmitRequest, observe StatusObserver) (string, error) {
	emit := func(stage Stage, message string) {
		if observe != nil {
			observe(StatusEvent{Stage: stage, Message: message})
		}
	}

	emit(StageCreated, "Query received")

	if err := req.Validate(); err != nil {
		emit(StageFailed, fmt.Sprintf("Validation failed: %v", err))
		return "", err
	}

	emit(StageEncoding, "Encrypting query with FHE...")

	key := uuid.NewString()

	encodedQuery, err := s.codec.Encode(entity.QueryPayload{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		Passengers:    req.Passengers,
	})
	if err != nil {
		emit(StageFailed, fmt.Sprintf("Failed to encode query: %v", err))
		return "", err
	}

	// Simulated market analysis result, generated up front like the
	// encode step itself.
	basePrice := s.priceMin + rand.Intn(s.priceMax-s.priceMin+1)
	encodedPrice, err := s.codec.Encode(entity.PricePayload{Price: basePrice})
	if err != nil {
		emit(StageFailed, fmt.Sprintf("Failed to encode price: %v", err))
		return "", err
	}

	record := &entity.QueryRecord{
		Key:           key,
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		EncodedQuery:  encodedQuery,
		EncodedPrice:  encodedPrice,
		SubmittedAt:   time.Now().Unix(),
		Owner:         s.wallet.Principal(),
		Status:        entity.StatusPending,
	}

	if err := s.records.Put(ctx, record); err != nil {
		s.logger.Error("Failed to persist pending query", "key", key, "error", err)
		s.failed("persist_pending")
		emit(StageFailed, fmt.Sprintf("Submission failed: %v", err))
		return "", err
	}

	if s.metrics != nil {
		s.metrics.QueriesSubmitted.Inc()
	}
	s.logger.Info("Query persisted as pending", "key", key, "owner", record.Owner)
	emit(StagePersistedPending, "Encrypted query submitted! Processing with FHE...")
	emit(StageAnalyzing, "FHE market analysis in progress...")

	startedAt := time.Now()
	s.wg.Add(1)
	time.AfterFunc(s.analyzeDelay, func() {
		defer s.wg.Done()
		s.complete(key, startedAt, emit)
	})

	return key, nil
}

// complete runs when the simulated analysis delay elapses. The record is
// re-read first: this controller does not assume it was the only writer
// in the meantime.
func (s *SubmissionLifecycle) complete(key string, startedAt time.Time, emit func(Stage, string)) {
	ctx := context.Background()

	record, err := s.records.GetOne(ctx, key)
	if err != nil {
		s.logger.Error("Failed to re-read record for completion", "key", key, "error", err)
		s.failed("complete_read")
		emit(StageFailed, fmt.Sprintf("Analysis failed: %v", err))
		return
	}
	if record == nil {
		s.logger.Error("Record vanished before completion", "key", key)
		s.failed("complete_read")
		emit(StageFailed, "Analysis failed: record not found")
		return
	}

	record.Status = entity.StatusCompleted

	if err := s.records.Put(ctx, record); err != nil {
		// The record stays durably pending; there is no compensating
		// write.
		s.logger.Error("Failed to persist completed query, record remains pending", "key", key, "error", err)
		s.failed("complete_write")
		emit(StageFailed, fmt.Sprintf("Analysis failed, query remains pending: %v", err))
		return
	}

	if s.metrics != nil {
		s.metrics.QueriesCompleted.Inc()
		s.metrics.AnalysisDuration.Observe(time.Since(startedAt).Seconds())
	}
	s.logger.Info("Query completed", "key", key)
	emit(StagePersistedCompleted, "FHE analysis complete! Price generated anonymously.")
	emit(StageDone, "Query lifecycle finished")
}

func (s *SubmissionLifecycle) failed(operation string) {
	if s.metrics != nil {
		s.metrics.QueriesFailed.Inc()
		s.metrics.ErrorsCount.WithLabelValues(operation).Inc()
	}
}

// Close waits for all scheduled analyses to finish
func (s *SubmissionLifecycle) Close() {
	s.wg.Wait()
}
