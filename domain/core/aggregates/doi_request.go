package aggregates

import (
	"time"

	"doi-requests-backend/domain/core/valueobjects"
)

// DoiRequest is the DOI request embedded in a publication
type DoiRequest struct {
	Status   valueobjects.DoiRequestStatus
	Date     time.Time
	Messages []Message
}

// Message is a note exchanged between the owner and curators on a DOI request
type Message struct {
	Author    string
	Text      string
	Timestamp time.Time
}

func (r DoiRequest) clone() DoiRequest {
	messages := make([]Message, len(r.Messages))
	copy(messages, r.Messages)
	r.Messages = messages
	return r
}

func (p *Publication) doiRequestSortKey() (time.Time, string) {
	if p.doiRequest == nil {
		return time.Time{}, ""
	}
	return p.doiRequest.Date, p.doiRequest.Status.String()
}
