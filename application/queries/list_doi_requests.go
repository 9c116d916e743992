package queries

import (
	"doi-requests-backend/domain/core/valueobjects"
	pkgerrors "doi-requests-backend/pkg/errors"
)

// ListDoiRequestsQuery lists the DOI requests of a publisher in one status,
// optionally only those of one owner.
type ListDoiRequestsQuery struct {
	PublisherID string
	Status      valueobjects.DoiRequestStatus
	Owner       string
}

// Validate validates the ListDoiRequestsQuery
func (q ListDoiRequestsQuery) Validate() error {
	if q.PublisherID == "" {
		return pkgerrors.NewBadRequestError("Publisher is required")
	}
	if !q.Status.IsValid() {
		return pkgerrors.NewBadRequestErrorf("Invalid DOI request status: %s", q.Status)
	}
	return nil
}
