package opaque

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPayload struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departureDate"`
	Passengers    int    `json:"passengers"`
}

func TestRoundTrip(t *testing.T) {
	codec := NewSimFHE()

	in := testPayload{
		Origin:        "JFK",
		Destination:   "LHR",
		DepartureDate: "2025-06-01",
		Passengers:    2,
	}
	blob, err := codec.Encode(in)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(blob, SchemeTag))

	var out testPayload
	require.NoError(t, codec.Decode(blob, &out))
	assert.Equal(t, in, out)
}

func TestRoundTripPrice(t *testing.T) {
	codec := NewSimFHE()

	blob, err := codec.Encode(map[string]int{"price": 437})
	require.NoError(t, err)

	var out struct {
		Price int `json:"price"`
	}
	require.NoError(t, codec.Decode(blob, &out))
	assert.Equal(t, 437, out.Price)
}

func TestDecodeMissingTag(t *testing.T) {
	codec := NewSimFHE()

	var out testPayload
	err := codec.Decode("eyJvcmlnaW4iOiJKRksifQ==", &out)
	require.Error(t, err)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Contains(t, decodeErr.Reason, "scheme tag")
}

func TestDecodeBadBase64(t *testing.T) {
	codec := NewSimFHE()

	var out testPayload
	err := codec.Decode(SchemeTag+"%%%not-base64%%%", &out)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
}

func TestDecodeBadJSON(t *testing.T) {
	codec := NewSimFHE()

	// "not json" in base64
	var out testPayload
	err := codec.Decode(SchemeTag+"bm90IGpzb24=", &out)

	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
}
