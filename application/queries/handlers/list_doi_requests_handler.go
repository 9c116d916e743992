package handlers

import (
	"context"

	"doi-requests-backend/application/ports"
	"doi-requests-backend/application/projections"
	"doi-requests-backend/application/queries"
	"doi-requests-backend/domain/core/aggregates"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ListDoiRequestsHandler handles DOI request listing
type ListDoiRequestsHandler struct {
	repo   ports.PublicationRepository
	logger *zap.Logger
}

// NewListDoiRequestsHandler creates a new list DOI requests handler
func NewListDoiRequestsHandler(repo ports.PublicationRepository, logger *zap.Logger) *ListDoiRequestsHandler {
	return &ListDoiRequestsHandler{
		repo:   repo,
		logger: logger,
	}
}

// Handle executes the list DOI requests query. Versions are resolved to the
// latest one per publication before filtering, so an old version in the
// requested status never stands in for a newer one.
func (h *ListDoiRequestsHandler) Handle(ctx context.Context, query queries.ListDoiRequestsQuery) ([]projections.DoiRequestSummary, error) {
	versions, err := h.repo.QueryByPublisher(ctx, query.PublisherID)
	if err != nil {
		return nil, err
	}

	latest := aggregates.LatestVersions(versions)
	matching := lo.Filter(latest, func(pub *aggregates.Publication, _ int) bool {
		request := pub.DoiRequest()
		if request == nil || request.Status != query.Status {
			return false
		}
		return query.Owner == "" || pub.IsOwnedBy(query.Owner)
	})

	h.logger.Debug("Listed DOI requests",
		zap.String("publisherID", query.PublisherID),
		zap.String("status", query.Status.String()),
		zap.Bool("ownerOnly", query.Owner != ""),
		zap.Int("versions", len(versions)),
		zap.Int("publications", len(latest)),
		zap.Int("matching", len(matching)),
	)

	return projections.NewDoiRequestSummaries(matching), nil
}
