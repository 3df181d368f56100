// internal/domain/entity/errors.go
package entity

import "fmt"

// ValidationError reports a submission field that failed local validation.
// It is raised before anything touches the ledger.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// RecordError is one failed record read collected during a full listing.
// A bad record shrinks the result set instead of failing the listing.
type RecordError struct {
	Key string
	Err error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %s: %v", e.Key, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}
