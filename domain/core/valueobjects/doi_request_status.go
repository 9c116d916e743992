package valueobjects

import (
	"strings"

	"github.com/samber/lo"

	pkgerrors "doi-requests-backend/pkg/errors"
)

// DoiRequestStatus is the lifecycle state of a DOI request
type DoiRequestStatus string

const (
	DoiRequestStatusRequested DoiRequestStatus = "REQUESTED"
	DoiRequestStatusApproved  DoiRequestStatus = "APPROVED"
	DoiRequestStatusRejected  DoiRequestStatus = "REJECTED"
)

var knownStatuses = []DoiRequestStatus{
	DoiRequestStatusRequested,
	DoiRequestStatusApproved,
	DoiRequestStatusRejected,
}

// ParseDoiRequestStatus parses a status case-insensitively
func ParseDoiRequestStatus(s string) (DoiRequestStatus, error) {
	candidate := DoiRequestStatus(strings.ToUpper(strings.TrimSpace(s)))
	if candidate.IsValid() {
		return candidate, nil
	}
	return "", pkgerrors.NewBadRequestErrorf("Invalid DOI request status: %s", s)
}

// String returns the canonical upper-case status
func (s DoiRequestStatus) String() string {
	return string(s)
}

// IsValid reports whether s is one of the known statuses
func (s DoiRequestStatus) IsValid() bool {
	return lo.Contains(knownStatuses, s)
}
