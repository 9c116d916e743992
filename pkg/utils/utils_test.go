package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionTimestamp(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 1500, time.FixedZone("CET", 3600))

	formatted := FormatVersionTimestamp(ts)
	assert.Equal(t, "2024-03-01T09:00:00.000001500Z", formatted)

	parsed, err := ParseVersionTimestamp(formatted)
	require.NoError(t, err)
	assert.True(t, ts.Equal(parsed))

	// written by the publication service
	parsed, err = ParseVersionTimestamp("2024-03-01T09:00:00.123Z")
	require.NoError(t, err)
	assert.Equal(t, 123*time.Millisecond, time.Duration(parsed.Nanosecond()))

	_, err = ParseVersionTimestamp("yesterday")
	assert.Error(t, err)
}

func TestVersionTimestamp_LexicalOrder(t *testing.T) {
	earlier := FormatVersionTimestamp(time.Date(2024, 3, 1, 9, 59, 59, 999999999, time.UTC))
	later := FormatVersionTimestamp(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	assert.Less(t, earlier, later)
}

type sampleRequest struct {
	Identifier *string `json:"identifier" validate:"required"`
	Message    *string `json:"message,omitempty" validate:"omitempty,notblank,max=5"`
}

func TestValidateStruct(t *testing.T) {
	id := "x"
	blank := "   "
	long := "too long"

	assert.NoError(t, ValidateStruct(sampleRequest{Identifier: &id}))

	err := ValidateStruct(sampleRequest{})
	require.Error(t, err)
	assert.Equal(t, "identifier is required", err.Error())

	err = ValidateStruct(sampleRequest{Identifier: &id, Message: &blank})
	require.Error(t, err)
	assert.Equal(t, "message must not be blank", err.Error())

	err = ValidateStruct(sampleRequest{Identifier: &id, Message: &long})
	require.Error(t, err)
	assert.Equal(t, "message must be at most 5 characters", err.Error())
}
