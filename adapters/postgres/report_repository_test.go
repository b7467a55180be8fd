package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"poissonkit/domain/conformance"
)

func TestWarningColumnRoundTrip(t *testing.T) {
	cases := [][]conformance.WarningCode{
		nil,
		{conformance.WarningInferredParameter},
		{conformance.WarningInferredParameter, "OTHER_CODE"},
	}
	for _, ws := range cases {
		assert.Equal(t, ws, decodeWarnings(encodeWarnings(ws)), "warnings %v", ws)
	}

	assert.False(t, encodeWarnings(nil).Valid, "no warnings stores NULL, not an empty string")
}

func TestNullIfEmpty(t *testing.T) {
	assert.False(t, nullIfEmpty("").Valid)

	col := nullIfEmpty("X_mean, chi-squared, p-value: 1, 2, 0.57")
	assert.True(t, col.Valid)
	assert.Equal(t, "X_mean, chi-squared, p-value: 1, 2, 0.57", col.String)
}
