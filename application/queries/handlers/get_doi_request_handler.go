package handlers

import (
	"context"
	"fmt"

	"doi-requests-backend/application/ports"
	"doi-requests-backend/application/projections"
	"doi-requests-backend/application/queries"
	"doi-requests-backend/application/services"
	pkgerrors "doi-requests-backend/pkg/errors"

	"go.uber.org/zap"
)

// GetDoiRequestHandler handles single DOI request lookups
type GetDoiRequestHandler struct {
	repo          ports.PublicationRepository
	accessControl *services.AccessControl
	logger        *zap.Logger
}

// NewGetDoiRequestHandler creates a new get DOI request handler
func NewGetDoiRequestHandler(
	repo ports.PublicationRepository,
	accessControl *services.AccessControl,
	logger *zap.Logger,
) *GetDoiRequestHandler {
	return &GetDoiRequestHandler{
		repo:          repo,
		accessControl: accessControl,
		logger:        logger,
	}
}

// Handle executes the get DOI request query
func (h *GetDoiRequestHandler) Handle(ctx context.Context, query queries.GetDoiRequestQuery) (*projections.DoiRequestSummary, error) {
	pub, err := h.repo.GetLatest(ctx, query.PublicationID)
	if err != nil {
		return nil, err
	}

	if err := h.accessControl.RequireOwnerOrCurator(query.User, pub, "read DOI request"); err != nil {
		return nil, err
	}

	if !pub.HasDoiRequest() {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("No DOI request for publication %s", pub.ID()))
	}

	summary := projections.NewDoiRequestSummary(pub)
	return &summary, nil
}
