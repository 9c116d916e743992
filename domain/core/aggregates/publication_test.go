package aggregates

import (
	"testing"
	"time"

	"doi-requests-backend/domain/core/valueobjects"
	pkgerrors "doi-requests-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestPublication(t *testing.T, doiRequest *DoiRequest) *Publication {
	t.Helper()
	title := "On the origin of identifiers"
	pub, err := ReconstructPublication(PublicationState{
		ID:           valueobjects.MustPublicationID("7a1a1b52-5e1c-4fa4-8d0b-4e2a2b3c1f10"),
		ModifiedDate: baseTime,
		Owner:        "owner@unit",
		PublisherID:  "https://api.example.org/customer/123",
		Status:       "DRAFT",
		MainTitle:    &title,
		DoiRequest:   doiRequest,
		Attributes:   map[string]any{"projects": "opaque"},
	})
	require.NoError(t, err)
	return pub
}

func TestReconstructPublication_RequiresKey(t *testing.T) {
	_, err := ReconstructPublication(PublicationState{ModifiedDate: baseTime})
	assert.Error(t, err)

	_, err = ReconstructPublication(PublicationState{ID: valueobjects.MustPublicationID("7a1a1b52-5e1c-4fa4-8d0b-4e2a2b3c1f10")})
	assert.Error(t, err)
}

func TestCreateDoiRequest(t *testing.T) {
	t.Run("creates request in REQUESTED", func(t *testing.T) {
		pub := newTestPublication(t, nil)
		now := baseTime.Add(time.Hour)

		require.NoError(t, pub.CreateDoiRequest("owner@unit", nil, now))

		request := pub.DoiRequest()
		require.NotNil(t, request)
		assert.Equal(t, valueobjects.DoiRequestStatusRequested, request.Status)
		assert.Equal(t, now, request.Date)
		assert.Empty(t, request.Messages)
		assert.Equal(t, now, pub.ModifiedDate())
		assert.Equal(t, baseTime, pub.BaseModifiedDate())
		assert.True(t, pub.IsModified())
	})

	t.Run("initial message is recorded", func(t *testing.T) {
		pub := newTestPublication(t, nil)
		message := "  please  "

		require.NoError(t, pub.CreateDoiRequest("owner@unit", &message, baseTime.Add(time.Minute)))

		messages := pub.DoiRequest().Messages
		require.Len(t, messages, 1)
		assert.Equal(t, "please", messages[0].Text)
		assert.Equal(t, "owner@unit", messages[0].Author)
	})

	t.Run("blank message is rejected", func(t *testing.T) {
		pub := newTestPublication(t, nil)
		message := "   "

		err := pub.CreateDoiRequest("owner@unit", &message, baseTime.Add(time.Minute))
		assert.True(t, pkgerrors.IsValidation(err))
		assert.False(t, pub.HasDoiRequest())
	})

	t.Run("second request conflicts and keeps the first", func(t *testing.T) {
		pub := newTestPublication(t, nil)
		first := baseTime.Add(time.Minute)
		require.NoError(t, pub.CreateDoiRequest("owner@unit", nil, first))

		err := pub.CreateDoiRequest("owner@unit", nil, first.Add(time.Minute))
		require.Error(t, err)
		assert.True(t, pkgerrors.IsConflict(err))
		assert.Contains(t, err.Error(), "DOI request already exists for "+pub.ID().String())
		assert.Equal(t, first, pub.DoiRequest().Date)
		assert.Equal(t, first, pub.ModifiedDate())
	})
}

func TestUpdateDoiRequestStatus(t *testing.T) {
	statuses := []valueobjects.DoiRequestStatus{
		valueobjects.DoiRequestStatusRequested,
		valueobjects.DoiRequestStatusApproved,
		valueobjects.DoiRequestStatusRejected,
	}

	for _, status := range statuses {
		t.Run("without request "+status.String(), func(t *testing.T) {
			pub := newTestPublication(t, nil)

			err := pub.UpdateDoiRequestStatus(status, baseTime.Add(time.Minute))
			assert.True(t, pkgerrors.IsValidation(err))
			assert.False(t, pub.IsModified())
		})
	}

	t.Run("any status replaces any other", func(t *testing.T) {
		pub := newTestPublication(t, &DoiRequest{Status: valueobjects.DoiRequestStatusRejected, Date: baseTime})
		now := baseTime.Add(time.Hour)

		require.NoError(t, pub.UpdateDoiRequestStatus(valueobjects.DoiRequestStatusApproved, now))
		assert.Equal(t, valueobjects.DoiRequestStatusApproved, pub.DoiRequest().Status)
		assert.Equal(t, now, pub.DoiRequest().Date)

		require.NoError(t, pub.UpdateDoiRequestStatus(valueobjects.DoiRequestStatusRequested, now.Add(time.Second)))
		assert.Equal(t, valueobjects.DoiRequestStatusRequested, pub.DoiRequest().Status)
	})

	t.Run("unknown status is rejected", func(t *testing.T) {
		pub := newTestPublication(t, &DoiRequest{Status: valueobjects.DoiRequestStatusRequested, Date: baseTime})

		err := pub.UpdateDoiRequestStatus(valueobjects.DoiRequestStatus("PENDING"), baseTime.Add(time.Minute))
		assert.True(t, pkgerrors.IsValidation(err))
	})
}

func TestAddDoiRequestMessage(t *testing.T) {
	t.Run("appends in order", func(t *testing.T) {
		pub := newTestPublication(t, &DoiRequest{Status: valueobjects.DoiRequestStatusRequested, Date: baseTime})

		require.NoError(t, pub.AddDoiRequestMessage("owner@unit", "first", baseTime.Add(time.Minute)))
		require.NoError(t, pub.AddDoiRequestMessage("curator@unit", "second", baseTime.Add(2*time.Minute)))

		messages := pub.DoiRequest().Messages
		require.Len(t, messages, 2)
		assert.Equal(t, "first", messages[0].Text)
		assert.Equal(t, "curator@unit", messages[1].Author)
		assert.Equal(t, baseTime, pub.DoiRequest().Date)
	})

	t.Run("requires a request", func(t *testing.T) {
		pub := newTestPublication(t, nil)
		assert.True(t, pkgerrors.IsValidation(pub.AddDoiRequestMessage("owner@unit", "hello", baseTime.Add(time.Minute))))
	})

	t.Run("rejects blank text", func(t *testing.T) {
		pub := newTestPublication(t, &DoiRequest{Status: valueobjects.DoiRequestStatusRequested, Date: baseTime})
		assert.True(t, pkgerrors.IsValidation(pub.AddDoiRequestMessage("owner@unit", " \t", baseTime.Add(time.Minute))))
	})
}

func TestModifiedDateIsStrictlyIncreasing(t *testing.T) {
	pub := newTestPublication(t, nil)

	// a clock behind the stored version
	require.NoError(t, pub.CreateDoiRequest("owner@unit", nil, baseTime.Add(-time.Hour)))

	assert.True(t, pub.ModifiedDate().After(baseTime))
	assert.Equal(t, baseTime.Add(time.Microsecond), pub.ModifiedDate())
}

func TestDoiRequestIsCopiedOut(t *testing.T) {
	pub := newTestPublication(t, &DoiRequest{
		Status:   valueobjects.DoiRequestStatusRequested,
		Date:     baseTime,
		Messages: []Message{{Author: "owner@unit", Text: "hi", Timestamp: baseTime}},
	})

	request := pub.DoiRequest()
	request.Messages[0].Text = "changed"
	request.Status = valueobjects.DoiRequestStatusApproved

	assert.Equal(t, "hi", pub.DoiRequest().Messages[0].Text)
	assert.Equal(t, valueobjects.DoiRequestStatusRequested, pub.DoiRequest().Status)
	assert.Equal(t, map[string]any{"projects": "opaque"}, pub.State().Attributes)
}

func TestIsOwnedBy(t *testing.T) {
	pub := newTestPublication(t, nil)
	assert.True(t, pub.IsOwnedBy("owner@unit"))
	assert.False(t, pub.IsOwnedBy("someone@else"))
	assert.False(t, pub.IsOwnedBy(""))
}

func versionOf(t *testing.T, id string, modified time.Time, request *DoiRequest) *Publication {
	t.Helper()
	pub, err := ReconstructPublication(PublicationState{
		ID:           valueobjects.MustPublicationID(id),
		ModifiedDate: modified,
		Owner:        "owner@unit",
		DoiRequest:   request,
	})
	require.NoError(t, err)
	return pub
}

func TestLatestVersions(t *testing.T) {
	const first = "11111111-1111-4111-8111-111111111111"
	const second = "22222222-2222-4222-8222-222222222222"

	old := versionOf(t, first, baseTime, &DoiRequest{Status: valueobjects.DoiRequestStatusRequested, Date: baseTime})
	current := versionOf(t, first, baseTime.Add(time.Hour), &DoiRequest{Status: valueobjects.DoiRequestStatusApproved, Date: baseTime.Add(time.Hour)})
	other := versionOf(t, second, baseTime, nil)

	latest := LatestVersions([]*Publication{current, other, old})

	require.Len(t, latest, 2)
	assert.Same(t, current, latest[0])
	assert.Same(t, other, latest[1])
	assert.Nil(t, LatestVersion(nil))
}

func TestIsNewerVersion_TieBreak(t *testing.T) {
	const id = "11111111-1111-4111-8111-111111111111"

	earlierRequest := versionOf(t, id, baseTime, &DoiRequest{Status: valueobjects.DoiRequestStatusRequested, Date: baseTime})
	laterRequest := versionOf(t, id, baseTime, &DoiRequest{Status: valueobjects.DoiRequestStatusApproved, Date: baseTime.Add(time.Second)})
	assert.True(t, IsNewerVersion(laterRequest, earlierRequest))
	assert.False(t, IsNewerVersion(earlierRequest, laterRequest))

	rejected := versionOf(t, id, baseTime, &DoiRequest{Status: valueobjects.DoiRequestStatusRejected, Date: baseTime})
	assert.True(t, IsNewerVersion(rejected, earlierRequest))

	// order of input does not change the pick
	assert.Same(t, laterRequest, LatestVersion([]*Publication{earlierRequest, laterRequest, rejected}))
	assert.Same(t, laterRequest, LatestVersion([]*Publication{rejected, laterRequest, earlierRequest}))
}
