package dynamodb

// Attribute names of publication items.
const (
	AttrIdentifier         = "identifier"
	AttrModifiedDate       = "modifiedDate"
	AttrOwner              = "owner"
	AttrPublisherID        = "publisherId"
	AttrStatus             = "status"
	AttrStatusDate         = "statusDate"
	AttrEntityDescription  = "entityDescription"
	AttrDoiRequest         = "doiRequest"
	AttrLatestModifiedDate = "latestModifiedDate"
)

// HeadMarker is the range key of the per-publication head row. It sorts
// before every timestamp, and the head row has no publisherId so it never
// appears in the publisher index.
const HeadMarker = "#HEAD"

// StatusNone is the status part of statusDate for publications without a DOI request
const StatusNone = "NONE"

// ownedAttributes are rewritten on every version. Everything else is copied
// from the version the change was derived from.
var ownedAttributes = []string{
	AttrIdentifier,
	AttrModifiedDate,
	AttrOwner,
	AttrPublisherID,
	AttrStatus,
	AttrStatusDate,
	AttrDoiRequest,
}
