package services

import (
	"doi-requests-backend/domain/core/aggregates"
	"doi-requests-backend/pkg/auth"
	pkgerrors "doi-requests-backend/pkg/errors"

	"go.uber.org/zap"
)

// AccessControl decides whether a user may act on a publication. Denials
// carry a generic message; the identities involved are only logged.
type AccessControl struct {
	logger *zap.Logger
}

// NewAccessControl creates a new access control service
func NewAccessControl(logger *zap.Logger) *AccessControl {
	return &AccessControl{logger: logger}
}

// IsCuratorOf reports whether user curates the publisher of pub
func (a *AccessControl) IsCuratorOf(user *auth.User, pub *aggregates.Publication) bool {
	return user.IsCurator() && user.PublisherID != "" && user.PublisherID == pub.PublisherID()
}

// RequireOwner allows only the owner of pub
func (a *AccessControl) RequireOwner(user *auth.User, pub *aggregates.Publication, action string) error {
	if user.IsAuthenticated() && pub.IsOwnedBy(user.Username) {
		return nil
	}
	return a.deny(user, pub, action)
}

// RequireOwnerOrCurator allows the owner of pub and curators of its publisher
func (a *AccessControl) RequireOwnerOrCurator(user *auth.User, pub *aggregates.Publication, action string) error {
	if !user.IsAuthenticated() {
		return a.deny(user, pub, action)
	}
	if pub.IsOwnedBy(user.Username) || a.IsCuratorOf(user, pub) {
		return nil
	}
	return a.deny(user, pub, action)
}

func (a *AccessControl) deny(user *auth.User, pub *aggregates.Publication, action string) error {
	var actingUser, publisherID string
	if user != nil {
		actingUser = user.Username
		publisherID = user.PublisherID
	}

	a.logger.Warn("Access denied",
		zap.String("action", action),
		zap.String("publicationID", pub.ID().String()),
		zap.String("actingUser", actingUser),
		zap.String("owner", pub.Owner()),
		zap.String("userPublisherID", publisherID),
		zap.String("publisherID", pub.PublisherID()),
	)
	return pkgerrors.NewForbiddenError()
}
