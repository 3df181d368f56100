package opaque

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// SchemeTag marks a blob as produced by the simulated FHE codec.
const SchemeTag = "FHE-"

// DecodeError reports a blob that lacks the scheme tag or carries a
// malformed payload.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("opaque decode: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("opaque decode: %s", e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Codec turns application values into opaque tagged blobs and back.
// Implementations are pure transforms: no network, no ledger I/O.
// Decode(Encode(v)) == v for every JSON-representable v; callers must not
// assume the transform is irreversible.
type Codec interface {
	Encode(v interface{}) (string, error)
	Decode(blob string, out interface{}) error
}

// SimFHE simulates homomorphic encryption as tag + base64(JSON). It gives
// no confidentiality; anyone holding the blob can decode it.
type SimFHE struct{}

func NewSimFHE() *SimFHE {
	return &SimFHE{}
}

// Encode serializes v and wraps it in the scheme tag.
func (c *SimFHE) Encode(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to encode value: %w", err)
	}
	return SchemeTag + base64.StdEncoding.EncodeToString(data), nil
}

// Decode unwraps the scheme tag and deserializes the payload into out.
func (c *SimFHE) Decode(blob string, out interface{}) error {
	if !strings.HasPrefix(blob, SchemeTag) {
		return &DecodeError{Reason: "missing scheme tag"}
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(blob, SchemeTag))
	if err != nil {
		return &DecodeError{Reason: "payload is not base64", Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Reason: "payload is not well-formed", Err: err}
	}
	return nil
}
