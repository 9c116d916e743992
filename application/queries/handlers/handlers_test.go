package handlers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"doi-requests-backend/application/ports"
	"doi-requests-backend/application/queries"
	"doi-requests-backend/application/services"
	"doi-requests-backend/domain/core/aggregates"
	"doi-requests-backend/domain/core/valueobjects"
	"doi-requests-backend/infrastructure/persistence/memory"
	"doi-requests-backend/pkg/auth"
	pkgerrors "doi-requests-backend/pkg/errors"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const publisherID = "https://api.example.org/customer/123"

var created = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type MockPublicationRepository struct {
	mock.Mock
}

func (m *MockPublicationRepository) GetLatest(ctx context.Context, id valueobjects.PublicationID) (*aggregates.Publication, error) {
	args := m.Called(ctx, id)
	pub, _ := args.Get(0).(*aggregates.Publication)
	return pub, args.Error(1)
}

func (m *MockPublicationRepository) PutNewVersion(ctx context.Context, pub *aggregates.Publication) error {
	return m.Called(ctx, pub).Error(0)
}

func (m *MockPublicationRepository) QueryByPublisher(ctx context.Context, publisherID string) ([]*aggregates.Publication, error) {
	args := m.Called(ctx, publisherID)
	pubs, _ := args.Get(0).([]*aggregates.Publication)
	return pubs, args.Error(1)
}

var _ ports.PublicationRepository = (*MockPublicationRepository)(nil)

func seed(t *testing.T, repo *memory.PublicationRepository, n int, owner string, modified time.Time, status valueobjects.DoiRequestStatus) valueobjects.PublicationID {
	t.Helper()
	id := valueobjects.MustPublicationID(fmt.Sprintf("00000000-0000-4000-8000-%012d", n))
	require.NoError(t, repo.Seed(aggregates.PublicationState{
		ID:           id,
		ModifiedDate: modified,
		Owner:        owner,
		PublisherID:  publisherID,
		DoiRequest:   &aggregates.DoiRequest{Status: status, Date: modified},
	}))
	return id
}

func TestListDoiRequestsHandler_CreatorAndCurator(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPublicationRepository()
	for i := 1; i <= 3; i++ {
		seed(t, repo, i, "a@unit", created.Add(time.Duration(i)*time.Minute), valueobjects.DoiRequestStatusRequested)
	}
	seed(t, repo, 4, "b@unit", created, valueobjects.DoiRequestStatusRequested)
	seed(t, repo, 5, "a@unit", created, valueobjects.DoiRequestStatusApproved)

	handler := NewListDoiRequestsHandler(repo, zap.NewNop())

	own, err := handler.Handle(ctx, queries.ListDoiRequestsQuery{
		PublisherID: publisherID, Status: valueobjects.DoiRequestStatusRequested, Owner: "a@unit",
	})
	require.NoError(t, err)
	assert.Len(t, own, 3)
	for _, summary := range own {
		assert.Equal(t, "a@unit", summary.Owner)
	}
	assert.Equal(t, "00000000-0000-4000-8000-000000000003", own[0].Identifier)

	all, err := handler.Handle(ctx, queries.ListDoiRequestsQuery{
		PublisherID: publisherID, Status: valueobjects.DoiRequestStatusRequested,
	})
	require.NoError(t, err)
	assert.Len(t, all, 4)

	again, err := handler.Handle(ctx, queries.ListDoiRequestsQuery{
		PublisherID: publisherID, Status: valueobjects.DoiRequestStatusRequested,
	})
	require.NoError(t, err)
	assert.Equal(t, all, again)
}

func TestListDoiRequestsHandler_StaleVersionsAreIgnored(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPublicationRepository()
	id := seed(t, repo, 1, "a@unit", created, valueobjects.DoiRequestStatusRequested)

	pub, err := repo.GetLatest(ctx, id)
	require.NoError(t, err)
	require.NoError(t, pub.UpdateDoiRequestStatus(valueobjects.DoiRequestStatusApproved, created.Add(time.Hour)))
	require.NoError(t, repo.PutNewVersion(ctx, pub))

	handler := NewListDoiRequestsHandler(repo, zap.NewNop())

	requested, err := handler.Handle(ctx, queries.ListDoiRequestsQuery{PublisherID: publisherID, Status: valueobjects.DoiRequestStatusRequested})
	require.NoError(t, err)
	assert.Empty(t, requested)

	approved, err := handler.Handle(ctx, queries.ListDoiRequestsQuery{PublisherID: publisherID, Status: valueobjects.DoiRequestStatusApproved})
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, "APPROVED", lo.FromPtr(approved[0].Status))
}

func TestListDoiRequestsHandler_StoreFailure(t *testing.T) {
	repo := &MockPublicationRepository{}
	repo.On("QueryByPublisher", mock.Anything, publisherID).
		Return(nil, pkgerrors.NewStoreReadError(errors.New("index unavailable")))

	handler := NewListDoiRequestsHandler(repo, zap.NewNop())
	_, err := handler.Handle(context.Background(), queries.ListDoiRequestsQuery{
		PublisherID: publisherID, Status: valueobjects.DoiRequestStatusRequested,
	})

	require.Error(t, err)
	assert.Equal(t, "Error reading from table", pkgerrors.GetAppError(err).Message)
	assert.NotContains(t, pkgerrors.GetAppError(err).Message, "index unavailable")
}

func TestGetDoiRequestHandler(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewPublicationRepository()
	withRequest := seed(t, repo, 1, "a@unit", created, valueobjects.DoiRequestStatusRequested)
	withoutRequest := valueobjects.MustPublicationID("00000000-0000-4000-8000-000000000002")
	require.NoError(t, repo.Seed(aggregates.PublicationState{
		ID: withoutRequest, ModifiedDate: created, Owner: "a@unit", PublisherID: publisherID,
	}))

	handler := NewGetDoiRequestHandler(repo, services.NewAccessControl(zap.NewNop()), zap.NewNop())

	summary, err := handler.Handle(ctx, queries.GetDoiRequestQuery{PublicationID: withRequest, User: &auth.User{Username: "a@unit"}})
	require.NoError(t, err)
	assert.Equal(t, "REQUESTED", lo.FromPtr(summary.Status))

	curator := &auth.User{Username: "c@unit", PublisherID: publisherID, Roles: []string{"curator"}}
	_, err = handler.Handle(ctx, queries.GetDoiRequestQuery{PublicationID: withRequest, User: curator})
	assert.NoError(t, err)

	_, err = handler.Handle(ctx, queries.GetDoiRequestQuery{PublicationID: withRequest, User: &auth.User{Username: "b@unit"}})
	assert.True(t, pkgerrors.IsForbidden(err))

	_, err = handler.Handle(ctx, queries.GetDoiRequestQuery{PublicationID: withoutRequest, User: &auth.User{Username: "a@unit"}})
	assert.True(t, pkgerrors.IsNotFound(err))
}
