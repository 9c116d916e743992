package queries

import (
	"doi-requests-backend/domain/core/valueobjects"
	"doi-requests-backend/pkg/auth"
	pkgerrors "doi-requests-backend/pkg/errors"
)

// GetDoiRequestQuery fetches the DOI request of one publication
type GetDoiRequestQuery struct {
	PublicationID valueobjects.PublicationID
	User          *auth.User
}

// Validate validates the GetDoiRequestQuery
func (q GetDoiRequestQuery) Validate() error {
	if q.PublicationID.IsZero() {
		return pkgerrors.NewBadRequestError("Invalid publication identifier: null")
	}
	if !q.User.IsAuthenticated() {
		return pkgerrors.NewForbiddenError()
	}
	return nil
}
