package model

// Intent is the classified purpose of a user message.
type Intent string

const (
	IntentQuery  Intent = "query"
	IntentUpsert Intent = "upsert"
	IntentDelete Intent = "delete"
)

// Known reports whether the intent is one of the three routable values.
func (i Intent) Known() bool {
	switch i {
	case IntentQuery, IntentUpsert, IntentDelete:
		return true
	}
	return false
}

// IntentClassification is the classifier's structured verdict on a message.
type IntentClassification struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence,omitempty"`
	Reasoning  string  `json:"reasoning,omitempty"`
}

// UpsertRecord is the extractor's structured output for an upsert turn.
// Quantity is the new absolute total; relative phrases ("add 5 more") are
// resolved by the extractor against the inventory snapshot it was given.
type UpsertRecord struct {
	Name        string
	Quantity    int64
	Description string
}

// DeleteRecord is the extractor's structured output for a delete turn.
type DeleteRecord struct {
	Name string
}
