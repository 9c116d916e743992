package handlers

import (
	"context"

	"doi-requests-backend/application/commands"
	"doi-requests-backend/application/ports"
	"doi-requests-backend/application/services"

	"go.uber.org/zap"
)

// UpdateDoiRequestStatusHandler handles DOI request status changes
type UpdateDoiRequestStatusHandler struct {
	repo          ports.PublicationRepository
	accessControl *services.AccessControl
	clock         ports.Clock
	logger        *zap.Logger
}

// NewUpdateDoiRequestStatusHandler creates a new update DOI request status handler
func NewUpdateDoiRequestStatusHandler(
	repo ports.PublicationRepository,
	accessControl *services.AccessControl,
	clock ports.Clock,
	logger *zap.Logger,
) *UpdateDoiRequestStatusHandler {
	return &UpdateDoiRequestStatusHandler{
		repo:          repo,
		accessControl: accessControl,
		clock:         clock,
		logger:        logger,
	}
}

// Handle executes the update DOI request status command
func (h *UpdateDoiRequestStatusHandler) Handle(ctx context.Context, cmd commands.UpdateDoiRequestStatusCommand) error {
	pub, err := h.repo.GetLatest(ctx, cmd.PublicationID)
	if err != nil {
		return err
	}

	if err := h.accessControl.RequireOwnerOrCurator(cmd.User, pub, "update DOI request status"); err != nil {
		return err
	}

	previous := pub.DoiRequest()
	if err := pub.UpdateDoiRequestStatus(cmd.Status, h.clock.Now()); err != nil {
		return err
	}

	if err := h.repo.PutNewVersion(ctx, pub); err != nil {
		return err
	}

	h.logger.Info("DOI request status updated",
		zap.String("publicationID", pub.ID().String()),
		zap.String("from", previous.Status.String()),
		zap.String("to", cmd.Status.String()),
	)
	return nil
}
