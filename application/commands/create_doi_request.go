package commands

import (
	"doi-requests-backend/domain/core/valueobjects"
	"doi-requests-backend/pkg/auth"
	pkgerrors "doi-requests-backend/pkg/errors"
)

// CreateDoiRequestCommand requests a DOI for a publication
type CreateDoiRequestCommand struct {
	PublicationID valueobjects.PublicationID
	User          *auth.User
	Message       *string
}

// Validate validates the CreateDoiRequestCommand
func (c CreateDoiRequestCommand) Validate() error {
	if c.PublicationID.IsZero() {
		return pkgerrors.NewBadRequestError("Invalid publication identifier: null")
	}
	if !c.User.IsAuthenticated() {
		return pkgerrors.NewForbiddenError()
	}
	return nil
}
