package valueobjects

import (
	"testing"

	pkgerrors "doi-requests-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublicationIDFromString(t *testing.T) {
	id, err := NewPublicationIDFromString("7A1A1B52-5E1C-4FA4-8D0B-4E2A2B3C1F10")
	require.NoError(t, err)
	assert.Equal(t, "7a1a1b52-5e1c-4fa4-8d0b-4e2a2b3c1f10", id.String())
	assert.False(t, id.IsZero())

	_, err = NewPublicationIDFromString("InvalidPublicationId")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Equal(t, "Invalid publication identifier: InvalidPublicationId", pkgerrors.GetAppError(err).Message)

	_, err = NewPublicationIDFromString("")
	assert.Equal(t, "Invalid publication identifier: null", pkgerrors.GetAppError(err).Message)
}

func TestNewPublicationIDFromPointer(t *testing.T) {
	_, err := NewPublicationIDFromPointer(nil)
	require.Error(t, err)
	assert.Equal(t, "Invalid publication identifier: null", pkgerrors.GetAppError(err).Message)

	raw := "7a1a1b52-5e1c-4fa4-8d0b-4e2a2b3c1f10"
	id, err := NewPublicationIDFromPointer(&raw)
	require.NoError(t, err)
	assert.True(t, id.Equals(MustPublicationID(raw)))
}

func TestParseDoiRequestStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    DoiRequestStatus
		wantErr bool
	}{
		{"REQUESTED", DoiRequestStatusRequested, false},
		{"approved", DoiRequestStatusApproved, false},
		{" Rejected ", DoiRequestStatusRejected, false},
		{"PENDING", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDoiRequestStatus(tt.input)
			if tt.wantErr {
				assert.True(t, pkgerrors.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.False(t, DoiRequestStatus("approved").IsValid())
}
