package valueobjects

import (
	"github.com/google/uuid"

	pkgerrors "doi-requests-backend/pkg/errors"
)

// nullLiteral is echoed back when an identifier was not supplied at all
const nullLiteral = "null"

// PublicationID is a value object representing a publication identifier.
// Publication identifiers are assigned by the publication service and are
// always UUIDs.
type PublicationID struct {
	value string
}

// NewPublicationIDFromString parses an identifier, echoing the offending
// literal in the error message.
func NewPublicationIDFromString(id string) (PublicationID, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		if id == "" {
			id = nullLiteral
		}
		return PublicationID{}, invalidPublicationID(id)
	}
	return PublicationID{value: parsed.String()}, nil
}

// NewPublicationIDFromPointer parses an optional identifier; nil is reported
// as the literal "null".
func NewPublicationIDFromPointer(id *string) (PublicationID, error) {
	if id == nil {
		return PublicationID{}, invalidPublicationID(nullLiteral)
	}
	return NewPublicationIDFromString(*id)
}

// MustPublicationID parses id and panics on failure. Intended for tests and
// constants.
func MustPublicationID(id string) PublicationID {
	pid, err := NewPublicationIDFromString(id)
	if err != nil {
		panic(err)
	}
	return pid
}

// NewPublicationID creates a random PublicationID
func NewPublicationID() PublicationID {
	return PublicationID{value: uuid.New().String()}
}

// String returns the string representation of the PublicationID
func (id PublicationID) String() string {
	return id.value
}

// Equals checks if two PublicationIDs are equal
func (id PublicationID) Equals(other PublicationID) bool {
	return id.value == other.value
}

// IsZero checks if the PublicationID is the zero value
func (id PublicationID) IsZero() bool {
	return id.value == ""
}

func invalidPublicationID(literal string) error {
	return pkgerrors.NewBadRequestErrorf("Invalid publication identifier: %s", literal)
}
