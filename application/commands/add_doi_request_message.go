package commands

import (
	"strings"

	"doi-requests-backend/domain/core/valueobjects"
	"doi-requests-backend/pkg/auth"
	pkgerrors "doi-requests-backend/pkg/errors"
)

// AddDoiRequestMessageCommand appends a message to a DOI request
type AddDoiRequestMessageCommand struct {
	PublicationID valueobjects.PublicationID
	User          *auth.User
	Text          string
}

// Validate validates the AddDoiRequestMessageCommand
func (c AddDoiRequestMessageCommand) Validate() error {
	if c.PublicationID.IsZero() {
		return pkgerrors.NewBadRequestError("Invalid publication identifier: null")
	}
	if !c.User.IsAuthenticated() {
		return pkgerrors.NewForbiddenError()
	}
	if strings.TrimSpace(c.Text) == "" {
		return pkgerrors.NewBadRequestError("Message must not be blank")
	}
	return nil
}
