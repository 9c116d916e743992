package dynamodb

import (
	"fmt"

	"doi-requests-backend/domain/core/aggregates"
	"doi-requests-backend/domain/core/valueobjects"
	"doi-requests-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/samber/lo"
)

// publicationItem represents the DynamoDB item structure for a publication version
type publicationItem struct {
	Identifier        string                 `dynamodbav:"identifier"`
	ModifiedDate      string                 `dynamodbav:"modifiedDate"`
	Owner             string                 `dynamodbav:"owner,omitempty"`
	PublisherID       string                 `dynamodbav:"publisherId,omitempty"`
	Status            string                 `dynamodbav:"status,omitempty"`
	StatusDate        string                 `dynamodbav:"statusDate,omitempty"`
	EntityDescription *entityDescriptionItem `dynamodbav:"entityDescription,omitempty"`
	DoiRequest        *doiRequestItem        `dynamodbav:"doiRequest,omitempty"`
}

type entityDescriptionItem struct {
	MainTitle *string `dynamodbav:"mainTitle,omitempty"`
}

type doiRequestItem struct {
	Status   string        `dynamodbav:"status"`
	Date     string        `dynamodbav:"date"`
	Messages []messageItem `dynamodbav:"messages"`
}

type messageItem struct {
	Author    string `dynamodbav:"author"`
	Text      string `dynamodbav:"text"`
	Timestamp string `dynamodbav:"timestamp"`
}

// statusDate builds the range key of the publisher index
func statusDate(status string, modifiedDate string) string {
	if status == "" {
		status = StatusNone
	}
	return status + "#" + modifiedDate
}

// unmarshalPublication converts a stored version to a publication. Attributes
// this service does not own are kept as raw attribute values.
func unmarshalPublication(raw map[string]types.AttributeValue) (*aggregates.Publication, error) {
	var item publicationItem
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal publication: %w", err)
	}

	id, err := valueobjects.NewPublicationIDFromString(item.Identifier)
	if err != nil {
		return nil, fmt.Errorf("invalid identifier %q: %w", item.Identifier, err)
	}

	modifiedDate, err := utils.ParseVersionTimestamp(item.ModifiedDate)
	if err != nil {
		return nil, fmt.Errorf("publication %s: invalid %s: %w", id, AttrModifiedDate, err)
	}

	var doiRequest *aggregates.DoiRequest
	if item.DoiRequest != nil {
		doiRequest, err = item.DoiRequest.toDomain()
		if err != nil {
			return nil, fmt.Errorf("publication %s: %w", id, err)
		}
	}

	var mainTitle *string
	if item.EntityDescription != nil {
		mainTitle = item.EntityDescription.MainTitle
	}

	foreign := lo.OmitByKeys(raw, ownedAttributes)

	return aggregates.ReconstructPublication(aggregates.PublicationState{
		ID:           id,
		ModifiedDate: modifiedDate,
		Owner:        item.Owner,
		PublisherID:  item.PublisherID,
		Status:       item.Status,
		MainTitle:    mainTitle,
		DoiRequest:   doiRequest,
		Attributes: lo.MapValues(foreign, func(v types.AttributeValue, _ string) any {
			return v
		}),
	})
}

func (d *doiRequestItem) toDomain() (*aggregates.DoiRequest, error) {
	status, err := valueobjects.ParseDoiRequestStatus(d.Status)
	if err != nil {
		return nil, fmt.Errorf("invalid DOI request status %q", d.Status)
	}
	date, err := utils.ParseVersionTimestamp(d.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid DOI request date: %w", err)
	}

	messages := make([]aggregates.Message, 0, len(d.Messages))
	for _, m := range d.Messages {
		timestamp, err := utils.ParseVersionTimestamp(m.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("invalid DOI request message timestamp: %w", err)
		}
		messages = append(messages, aggregates.Message{Author: m.Author, Text: m.Text, Timestamp: timestamp})
	}

	return &aggregates.DoiRequest{Status: status, Date: date, Messages: messages}, nil
}

// marshalPublication converts a publication to a new version item
func marshalPublication(pub *aggregates.Publication) (map[string]types.AttributeValue, error) {
	state := pub.State()
	modifiedDate := utils.FormatVersionTimestamp(state.ModifiedDate)

	item := publicationItem{
		Identifier:   state.ID.String(),
		ModifiedDate: modifiedDate,
		Owner:        state.Owner,
		PublisherID:  state.PublisherID,
		Status:       state.Status,
	}
	if state.PublisherID != "" {
		var requestStatus string
		if state.DoiRequest != nil {
			requestStatus = state.DoiRequest.Status.String()
		}
		item.StatusDate = statusDate(requestStatus, modifiedDate)
	}
	if state.DoiRequest != nil {
		item.DoiRequest = newDoiRequestItem(state.DoiRequest)
	}
	if _, carried := state.Attributes[AttrEntityDescription]; !carried && state.MainTitle != nil {
		item.EntityDescription = &entityDescriptionItem{MainTitle: state.MainTitle}
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal publication: %w", err)
	}

	for name, value := range state.Attributes {
		if _, exists := av[name]; exists {
			continue
		}
		if raw, ok := value.(types.AttributeValue); ok {
			av[name] = raw
			continue
		}
		converted, err := attributevalue.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal attribute %s: %w", name, err)
		}
		av[name] = converted
	}

	return av, nil
}

func newDoiRequestItem(request *aggregates.DoiRequest) *doiRequestItem {
	return &doiRequestItem{
		Status: request.Status.String(),
		Date:   utils.FormatRFC3339(request.Date),
		Messages: lo.Map(request.Messages, func(m aggregates.Message, _ int) messageItem {
			return messageItem{Author: m.Author, Text: m.Text, Timestamp: utils.FormatRFC3339(m.Timestamp)}
		}),
	}
}
