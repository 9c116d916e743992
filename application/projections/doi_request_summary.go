package projections

import (
	"encoding/json"
	"sort"
	"time"

	"doi-requests-backend/domain/core/aggregates"
	pkgerrors "doi-requests-backend/pkg/errors"
)

// DoiRequestSummary is the read model returned for DOI requests
type DoiRequestSummary struct {
	Identifier  string     `json:"identifier"`
	Owner       string     `json:"owner"`
	Status      *string    `json:"status"`
	Date        *time.Time `json:"date"`
	Title       *string    `json:"title"`
	PublisherID string     `json:"publisherId"`
}

// NewDoiRequestSummary projects a publication to its summary
func NewDoiRequestSummary(pub *aggregates.Publication) DoiRequestSummary {
	summary := DoiRequestSummary{
		Identifier:  pub.ID().String(),
		Owner:       pub.Owner(),
		Title:       pub.MainTitle(),
		PublisherID: pub.PublisherID(),
	}

	if request := pub.DoiRequest(); request != nil {
		status := request.Status.String()
		date := request.Date.UTC()
		summary.Status = &status
		summary.Date = &date
	}

	return summary
}

// NewDoiRequestSummaries projects publications ordered by DOI request date,
// newest first, then by identifier.
func NewDoiRequestSummaries(pubs []*aggregates.Publication) []DoiRequestSummary {
	summaries := make([]DoiRequestSummary, 0, len(pubs))
	for _, pub := range pubs {
		summaries = append(summaries, NewDoiRequestSummary(pub))
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		switch {
		case a.Date == nil && b.Date == nil:
		case a.Date == nil:
			return false
		case b.Date == nil:
			return true
		case !a.Date.Equal(*b.Date):
			return a.Date.After(*b.Date)
		}
		return a.Identifier < b.Identifier
	})

	return summaries
}

// Marshal serializes a response body. A failure is an internal error.
func Marshal(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, pkgerrors.NewInternalError("Failed to serialize response").WithCause(err)
	}
	return body, nil
}
