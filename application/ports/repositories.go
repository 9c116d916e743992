package ports

import (
	"context"
	"time"

	"doi-requests-backend/domain/core/aggregates"
	"doi-requests-backend/domain/core/valueobjects"
)

// PublicationRepository defines the interface for publication persistence.
// Every write adds a new version; existing versions are never changed.
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type PublicationRepository interface {
	// GetLatest retrieves the most recent version of a publication
	GetLatest(ctx context.Context, id valueobjects.PublicationID) (*aggregates.Publication, error)

	// PutNewVersion stores pub as a new version. It fails with a version
	// conflict when a version newer than pub.BaseModifiedDate() was written
	// by this service in the meantime. Versions written by other systems
	// after the read are not detected.
	PutNewVersion(ctx context.Context, pub *aggregates.Publication) error

	// QueryByPublisher retrieves every stored version of every publication of
	// a publisher. Callers resolve versions themselves.
	QueryByPublisher(ctx context.Context, publisherID string) ([]*aggregates.Publication, error)
}

// Clock supplies the current time to command handlers
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock in UTC
type SystemClock struct{}

// Now returns the current UTC time
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

// Now implements Clock
func (f ClockFunc) Now() time.Time {
	return f()
}
