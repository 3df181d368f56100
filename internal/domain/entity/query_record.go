// internal/domain/entity/query_record.go
package entity

// QueryStatus is the completion state of a flight price query.
type QueryStatus string

const (
	StatusPending   QueryStatus = "pending"
	StatusCompleted QueryStatus = "completed"
)

// QueryRecord is one flight price query as stored on the ledger.
// The wire format is UTF-8 JSON under ledger key "query_<Key>"; the key
// itself is not part of the serialized body.
type QueryRecord struct {
	Key           string      `json:"-"`
	Origin        string      `json:"origin"`
	Destination   string      `json:"destination"`
	DepartureDate string      `json:"departureDate"`
	EncodedQuery  string      `json:"encryptedQuery"`
	EncodedPrice  string      `json:"encryptedPrice"`
	SubmittedAt   int64       `json:"timestamp"` // epoch seconds, set once at creation
	Owner         string      `json:"owner"`
	Status        QueryStatus `json:"status,omitempty"`
}

// QueryPayload is the cleartext query body before it goes through the
// opaque codec into QueryRecord.EncodedQuery.
type QueryPayload struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	Passengers    int    `json:"passengers"`
}

// PricePayload is the cleartext price body behind QueryRecord.EncodedPrice.
type PricePayload struct {
	Price int `json:"price"`
}

// QueryStats summarizes a snapshot of query records. Price bounds cover
// completed records whose price decodes; all three are zero when there is
// no such record.
type QueryStats struct {
	Count          int `json:"count"`
	CompletedCount int `json:"completedCount"`
	PendingCount   int `json:"pendingCount"`
	MinPrice       int `json:"minPrice"`
	MaxPrice       int `json:"maxPrice"`
	AvgPrice       int `json:"avgPrice"`
}
