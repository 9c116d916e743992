package commands

import (
	"doi-requests-backend/domain/core/valueobjects"
	"doi-requests-backend/pkg/auth"
	pkgerrors "doi-requests-backend/pkg/errors"
)

// UpdateDoiRequestStatusCommand moves a DOI request to a new status
type UpdateDoiRequestStatusCommand struct {
	PublicationID valueobjects.PublicationID
	User          *auth.User
	Status        valueobjects.DoiRequestStatus
}

// Validate validates the UpdateDoiRequestStatusCommand
func (c UpdateDoiRequestStatusCommand) Validate() error {
	if c.PublicationID.IsZero() {
		return pkgerrors.NewBadRequestError("Invalid publication identifier: null")
	}
	if !c.User.IsAuthenticated() {
		return pkgerrors.NewForbiddenError()
	}
	if !c.Status.IsValid() {
		return pkgerrors.NewBadRequestErrorf("Invalid DOI request status: %s", c.Status)
	}
	return nil
}
