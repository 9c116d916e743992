package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"doi-requests-backend/application/ports"
	"doi-requests-backend/domain/core/aggregates"
	"doi-requests-backend/domain/core/valueobjects"
	pkgerrors "doi-requests-backend/pkg/errors"
)

var _ ports.PublicationRepository = (*PublicationRepository)(nil)

// PublicationRepository provides an in-memory implementation of
// ports.PublicationRepository with the same versioning rules as the table.
type PublicationRepository struct {
	mu       sync.RWMutex
	versions map[string][]aggregates.PublicationState
	// head is the last version written through PutNewVersion
	head map[string]time.Time
}

// NewPublicationRepository creates a new in-memory publication repository
func NewPublicationRepository() *PublicationRepository {
	return &PublicationRepository{
		versions: make(map[string][]aggregates.PublicationState),
		head:     make(map[string]time.Time),
	}
}

// Seed stores a version the way the publication service would, without
// touching the head.
func (r *PublicationRepository) Seed(state aggregates.PublicationState) error {
	if state.ID.IsZero() || state.ModifiedDate.IsZero() {
		return fmt.Errorf("invalid publication version")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.insert(state)
}

// GetLatest retrieves the most recent version of a publication
func (r *PublicationRepository) GetLatest(ctx context.Context, id valueobjects.PublicationID) (*aggregates.Publication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions, err := reconstructAll(r.versions[id.String()])
	if err != nil {
		return nil, pkgerrors.NewStoreReadError(err)
	}

	latest := aggregates.LatestVersion(versions)
	if latest == nil {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("Publication not found: %s", id))
	}
	return latest, nil
}

// PutNewVersion stores pub as a new version. Like the table, it only detects
// conflicts with versions written through PutNewVersion; seeded versions never
// move the head.
func (r *PublicationRepository) PutNewVersion(ctx context.Context, pub *aggregates.Publication) error {
	if !pub.IsModified() {
		return pkgerrors.NewInternalError(fmt.Sprintf("publication %s has no changes to store", pub.ID()))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := pub.ID().String()
	if head, ok := r.head[id]; ok && head.After(pub.BaseModifiedDate()) {
		return pkgerrors.NewVersionConflictError(id)
	}

	if err := r.insert(pub.State()); err != nil {
		return pkgerrors.NewVersionConflictError(id).WithCause(err)
	}
	r.head[id] = pub.ModifiedDate()
	return nil
}

// QueryByPublisher retrieves every version of every publication of a publisher
func (r *PublicationRepository) QueryByPublisher(ctx context.Context, publisherID string) ([]*aggregates.Publication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var publications []*aggregates.Publication
	for _, versions := range r.versions {
		for _, state := range versions {
			if state.PublisherID != publisherID {
				continue
			}
			pub, err := aggregates.ReconstructPublication(state)
			if err != nil {
				continue
			}
			publications = append(publications, pub)
		}
	}
	return publications, nil
}

// insert appends a version unless one with the same modified date exists.
// Callers hold the write lock.
func (r *PublicationRepository) insert(state aggregates.PublicationState) error {
	id := state.ID.String()
	for _, existing := range r.versions[id] {
		if existing.ModifiedDate.Equal(state.ModifiedDate) {
			return fmt.Errorf("version %s of %s already exists", state.ModifiedDate.Format(time.RFC3339Nano), id)
		}
	}
	r.versions[id] = append(r.versions[id], state)
	return nil
}

func reconstructAll(states []aggregates.PublicationState) ([]*aggregates.Publication, error) {
	publications := make([]*aggregates.Publication, 0, len(states))
	for _, state := range states {
		pub, err := aggregates.ReconstructPublication(state)
		if err != nil {
			return nil, err
		}
		publications = append(publications, pub)
	}
	return publications, nil
}
