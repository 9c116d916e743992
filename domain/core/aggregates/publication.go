package aggregates

import (
	"fmt"
	"strings"
	"time"

	"doi-requests-backend/domain/core/valueobjects"
	pkgerrors "doi-requests-backend/pkg/errors"
)

// Publication is the aggregate root for a publication record and its embedded
// DOI request. Publication rows are created by the publication service; this
// service only derives new versions from the latest one.
type Publication struct {
	id          valueobjects.PublicationID
	owner       string
	publisherID string
	status      string
	mainTitle   *string
	doiRequest  *DoiRequest

	// modifiedDate is the range key of the version this value will be stored as
	modifiedDate time.Time
	// baseModifiedDate is the range key of the version this value was read from
	baseModifiedDate time.Time

	// attributes holds stored attributes this service does not own. They are
	// opaque here and written back unchanged by the store adapter that read them.
	attributes map[string]any
}

// PublicationState is the flat representation store adapters read and write
type PublicationState struct {
	ID           valueobjects.PublicationID
	ModifiedDate time.Time
	Owner        string
	PublisherID  string
	Status       string
	MainTitle    *string
	DoiRequest   *DoiRequest
	Attributes   map[string]any
}

// ReconstructPublication rebuilds a publication from a stored version
func ReconstructPublication(state PublicationState) (*Publication, error) {
	if state.ID.IsZero() {
		return nil, fmt.Errorf("publication identifier is required")
	}
	if state.ModifiedDate.IsZero() {
		return nil, fmt.Errorf("publication %s has no modified date", state.ID)
	}

	var doiRequest *DoiRequest
	if state.DoiRequest != nil {
		copied := state.DoiRequest.clone()
		doiRequest = &copied
	}

	return &Publication{
		id:               state.ID,
		owner:            state.Owner,
		publisherID:      state.PublisherID,
		status:           state.Status,
		mainTitle:        state.MainTitle,
		doiRequest:       doiRequest,
		modifiedDate:     state.ModifiedDate.UTC(),
		baseModifiedDate: state.ModifiedDate.UTC(),
		attributes:       state.Attributes,
	}, nil
}

// State returns a copy of the publication's stored representation
func (p *Publication) State() PublicationState {
	var doiRequest *DoiRequest
	if p.doiRequest != nil {
		copied := p.doiRequest.clone()
		doiRequest = &copied
	}
	return PublicationState{
		ID:           p.id,
		ModifiedDate: p.modifiedDate,
		Owner:        p.owner,
		PublisherID:  p.publisherID,
		Status:       p.status,
		MainTitle:    p.mainTitle,
		DoiRequest:   doiRequest,
		Attributes:   p.attributes,
	}
}

// ID returns the publication identifier
func (p *Publication) ID() valueobjects.PublicationID {
	return p.id
}

// Owner returns the user identity that owns the publication
func (p *Publication) Owner() string {
	return p.owner
}

// PublisherID returns the URI of the publishing organization
func (p *Publication) PublisherID() string {
	return p.publisherID
}

// Status returns the publication status as stored by the publication service
func (p *Publication) Status() string {
	return p.status
}

// MainTitle returns the main title, nil when the publication has none
func (p *Publication) MainTitle() *string {
	return p.mainTitle
}

// ModifiedDate returns the version timestamp
func (p *Publication) ModifiedDate() time.Time {
	return p.modifiedDate
}

// BaseModifiedDate returns the timestamp of the version this value was read
// from. Store adapters use it as the write precondition.
func (p *Publication) BaseModifiedDate() time.Time {
	return p.baseModifiedDate
}

// IsModified reports whether the publication changed since it was read
func (p *Publication) IsModified() bool {
	return !p.modifiedDate.Equal(p.baseModifiedDate)
}

// DoiRequest returns a copy of the DOI request, nil when none exists
func (p *Publication) DoiRequest() *DoiRequest {
	if p.doiRequest == nil {
		return nil
	}
	copied := p.doiRequest.clone()
	return &copied
}

// HasDoiRequest reports whether a DOI request exists
func (p *Publication) HasDoiRequest() bool {
	return p.doiRequest != nil
}

// IsOwnedBy reports whether username owns the publication
func (p *Publication) IsOwnedBy(username string) bool {
	return username != "" && p.owner == username
}

// CreateDoiRequest attaches a new DOI request in status REQUESTED. A
// publication holds at most one DOI request.
func (p *Publication) CreateDoiRequest(author string, message *string, now time.Time) error {
	if p.doiRequest != nil {
		return pkgerrors.NewConflictError(fmt.Sprintf("DOI request already exists for %s", p.id))
	}

	at := p.nextModifiedDate(now)
	request := DoiRequest{
		Status:   valueobjects.DoiRequestStatusRequested,
		Date:     at,
		Messages: []Message{},
	}

	if message != nil {
		text := strings.TrimSpace(*message)
		if text == "" {
			return pkgerrors.NewBadRequestError("Message must not be blank")
		}
		request.Messages = append(request.Messages, Message{Author: author, Text: text, Timestamp: at})
	}

	p.doiRequest = &request
	p.modifiedDate = at
	return nil
}

// UpdateDoiRequestStatus moves the DOI request to status. Any status may
// replace any other.
func (p *Publication) UpdateDoiRequestStatus(status valueobjects.DoiRequestStatus, now time.Time) error {
	if p.doiRequest == nil {
		return pkgerrors.NewBadRequestError(
			fmt.Sprintf("You must create a DOI request for %s before you can update it", p.id))
	}
	if !status.IsValid() {
		return pkgerrors.NewBadRequestErrorf("Invalid DOI request status: %s", status)
	}

	at := p.nextModifiedDate(now)
	p.doiRequest.Status = status
	p.doiRequest.Date = at
	p.modifiedDate = at
	return nil
}

// AddDoiRequestMessage appends a message to the DOI request
func (p *Publication) AddDoiRequestMessage(author, text string, now time.Time) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return pkgerrors.NewBadRequestError("Message must not be blank")
	}
	if p.doiRequest == nil {
		return pkgerrors.NewBadRequestError(
			fmt.Sprintf("You must create a DOI request for %s before you can add messages", p.id))
	}

	at := p.nextModifiedDate(now)
	p.doiRequest.Messages = append(p.doiRequest.Messages, Message{Author: author, Text: text, Timestamp: at})
	p.modifiedDate = at
	return nil
}

// nextModifiedDate returns now, or one microsecond past the current version
// when the clock has not moved past it.
func (p *Publication) nextModifiedDate(now time.Time) time.Time {
	now = now.UTC()
	if !now.After(p.modifiedDate) {
		return p.modifiedDate.Add(time.Microsecond)
	}
	return now
}
