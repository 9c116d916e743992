package handlers

import (
	"context"

	"doi-requests-backend/application/commands"
	"doi-requests-backend/application/ports"
	"doi-requests-backend/application/services"

	"go.uber.org/zap"
)

// CreateDoiRequestHandler handles DOI request creation
type CreateDoiRequestHandler struct {
	repo          ports.PublicationRepository
	accessControl *services.AccessControl
	clock         ports.Clock
	logger        *zap.Logger
}

// NewCreateDoiRequestHandler creates a new create DOI request handler
func NewCreateDoiRequestHandler(
	repo ports.PublicationRepository,
	accessControl *services.AccessControl,
	clock ports.Clock,
	logger *zap.Logger,
) *CreateDoiRequestHandler {
	return &CreateDoiRequestHandler{
		repo:          repo,
		accessControl: accessControl,
		clock:         clock,
		logger:        logger,
	}
}

// Handle executes the create DOI request command
func (h *CreateDoiRequestHandler) Handle(ctx context.Context, cmd commands.CreateDoiRequestCommand) error {
	pub, err := h.repo.GetLatest(ctx, cmd.PublicationID)
	if err != nil {
		return err
	}

	if err := h.accessControl.RequireOwner(cmd.User, pub, "create DOI request"); err != nil {
		return err
	}

	if err := pub.CreateDoiRequest(cmd.User.Username, cmd.Message, h.clock.Now()); err != nil {
		return err
	}

	if err := h.repo.PutNewVersion(ctx, pub); err != nil {
		return err
	}

	h.logger.Info("DOI request created",
		zap.String("publicationID", pub.ID().String()),
		zap.Time("modifiedDate", pub.ModifiedDate()),
	)
	return nil
}
