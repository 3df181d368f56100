package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"airfare-ledger-service/internal/domain/entity"
	"airfare-ledger-service/internal/domain/repository"
	"airfare-ledger-service/internal/usecase"
	"airfare-ledger-service/pkg/logger"
)

// Handler exposes the presentation boundary over HTTP: list the record
// snapshot, submit a query, and aggregate statistics. Nothing else is
// exposed.
type Handler struct {
	queries   *usecase.QueryService
	lifecycle *usecase.SubmissionLifecycle
	logger    logger.Logger
}

// NewHandler creates a new API handler
func NewHandler(queries *usecase.QueryService, lifecycle *usecase.SubmissionLifecycle, logger logger.Logger) *Handler {
	return &Handler{
		queries:   queries,
		lifecycle: lifecycle,
		logger:    logger,
	}
}

// Register mounts the API routes on mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/queries", h.handleQueries)
	mux.HandleFunc("/api/v1/stats", h.handleStats)
}

// queryView is the wire shape of one record in API responses.
type queryView struct {
	ID             string `json:"id"`
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	DepartureDate  string `json:"departureDate"`
	EncryptedQuery string `json:"encryptedQuery"`
	EncryptedPrice string `json:"encryptedPrice"`
	Timestamp      int64  `json:"timestamp"`
	Owner          string `json:"owner"`
	Status         string `json:"status"`
}

func toView(record *entity.QueryRecord) queryView {
	return queryView{
		ID:             record.Key,
		Origin:         record.Origin,
		Destination:    record.Destination,
		DepartureDate:  record.DepartureDate,
		EncryptedQuery: record.EncodedQuery,
		EncryptedPrice: record.EncodedPrice,
		Timestamp:      record.SubmittedAt,
		Owner:          record.Owner,
		Status:         string(record.Status),
	}
}

func (h *Handler) handleQueries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listQueries(w, r)
	case http.MethodPost:
		h.submitQuery(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) listQueries(w http.ResponseWriter, r *http.Request) {
	records, recordErrs, err := h.queries.LoadAll(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	views := make([]queryView, 0, len(records))
	for _, record := range records {
		views = append(views, toView(record))
	}
	errStrings := make([]string, 0, len(recordErrs))
	for _, recordErr := range recordErrs {
		errStrings = append(errStrings, recordErr.Error())
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"queries": views,
		"errors":  errStrings,
	})
}

func (h *Handler) submitQuery(w http.ResponseWriter, r *http.Request) {
	var req usecase.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Later lifecycle events arrive on the analysis goroutine; only the
	// events emitted before Submit returns make it into the response.
	var mu sync.Mutex
	var events []usecase.StatusEvent
	observe := func(event usecase.StatusEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, event)
	}

	key, err := h.lifecycle.Submit(r.Context(), req, observe)
	if err != nil {
		h.writeError(w, err)
		return
	}

	mu.Lock()
	snapshot := make([]usecase.StatusEvent, len(events))
	copy(snapshot, events)
	mu.Unlock()

	h.writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"id":     key,
		"events": snapshot,
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	records, _, err := h.queries.LoadAll(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, h.queries.Aggregate(records))
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var validationErr *entity.ValidationError
	var ledgerErr *repository.LedgerError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrLedgerUnavailable):
		status = http.StatusServiceUnavailable
	case errors.As(err, &ledgerErr):
		status = http.StatusBadGateway
	}

	h.logger.Error("Request failed", "status", status, "error", err)
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}
