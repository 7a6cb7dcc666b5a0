package webhooks

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Event is the common envelope of a webhook delivery. Data is left
// unparsed; resource-specific handling decodes it further or reads
// individual fields via DataField.
type Event struct {
	// Name is the event type, e.g. "payment_intent.succeeded".
	Name string `json:"name"`
	// AccountID is the account the event belongs to, if any.
	AccountID string `json:"account_id,omitempty"`
	// CreatedAt is when the event occurred, as sent by the API.
	CreatedAt string `json:"created_at,omitempty"`
	// Data is the event payload.
	Data json.RawMessage `json:"data"`
}

// ParseEvent decodes a webhook payload into an Event. Parse failures
// surface the underlying JSON error verbatim.
func ParseEvent(payload []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}

	return &event, nil
}

// DataField looks up a path inside the event data, e.g. "object.id" or
// "amount". The result's Exists method reports whether the path was
// present.
func (e *Event) DataField(path string) gjson.Result {
	return gjson.GetBytes(e.Data, path)
}
