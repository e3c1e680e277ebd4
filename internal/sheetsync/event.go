// Package sheetsync mirrors lead writes to a user's spreadsheet endpoint.
// Delivery is best effort: failures are logged and counted, never returned to
// the write that triggered them.
package sheetsync

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Actions carried in the mirror payload.
const (
	ActionAdd    = "ADD"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
	ActionTest   = "TEST"
)

const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Envelope is one pending delivery: the rendered payload and where it goes.
// Queue transports carry it as their message body.
type Envelope struct {
	UserID  string          `json:"userId"`
	URL     string          `json:"url"`
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// Payload flattens record into a JSON object and adds the action and an ISO
// timestamp. Fields named action or timestamp on the record are overwritten.
func Payload(record any, action string, at time.Time) ([]byte, error) {
	fields := map[string]any{}
	if record != nil {
		raw, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("sheetsync: marshal record: %w", err)
		}
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&fields); err != nil {
			return nil, fmt.Errorf("sheetsync: record is not an object: %w", err)
		}
		if fields == nil {
			fields = map[string]any{}
		}
	}
	fields["action"] = action
	fields["timestamp"] = at.UTC().Format(timestampLayout)
	return json.Marshal(fields)
}

// TestPayload is the body sent when a user verifies a new endpoint.
func TestPayload(at time.Time) ([]byte, error) {
	return Payload(map[string]string{"name": "Test Connection"}, ActionTest, at)
}
