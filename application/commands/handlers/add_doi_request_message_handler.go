package handlers

import (
	"context"

	"doi-requests-backend/application/commands"
	"doi-requests-backend/application/ports"
	"doi-requests-backend/application/services"

	"go.uber.org/zap"
)

// AddDoiRequestMessageHandler handles messages on DOI requests
type AddDoiRequestMessageHandler struct {
	repo          ports.PublicationRepository
	accessControl *services.AccessControl
	clock         ports.Clock
	logger        *zap.Logger
}

// NewAddDoiRequestMessageHandler creates a new add DOI request message handler
func NewAddDoiRequestMessageHandler(
	repo ports.PublicationRepository,
	accessControl *services.AccessControl,
	clock ports.Clock,
	logger *zap.Logger,
) *AddDoiRequestMessageHandler {
	return &AddDoiRequestMessageHandler{
		repo:          repo,
		accessControl: accessControl,
		clock:         clock,
		logger:        logger,
	}
}

// Handle executes the add DOI request message command
func (h *AddDoiRequestMessageHandler) Handle(ctx context.Context, cmd commands.AddDoiRequestMessageCommand) error {
	pub, err := h.repo.GetLatest(ctx, cmd.PublicationID)
	if err != nil {
		return err
	}

	if err := h.accessControl.RequireOwnerOrCurator(cmd.User, pub, "add DOI request message"); err != nil {
		return err
	}

	if err := pub.AddDoiRequestMessage(cmd.User.Username, cmd.Text, h.clock.Now()); err != nil {
		return err
	}

	if err := h.repo.PutNewVersion(ctx, pub); err != nil {
		return err
	}

	h.logger.Info("DOI request message added",
		zap.String("publicationID", pub.ID().String()),
		zap.Int("messages", len(pub.DoiRequest().Messages)),
	)
	return nil
}
