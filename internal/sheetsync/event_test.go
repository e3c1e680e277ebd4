package sheetsync

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/nectar-lead-tracker/internal/leads"
)

var fixedNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestPayloadFlattensRecord(t *testing.T) {
	lead := &leads.Lead{ID: "l1", UserID: "secret-user", Name: "Asha", Phone: "98200", Status: "New", OrderValue: "250"}
	raw, err := Payload(lead, ActionAdd, fixedNow)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "l1", got["id"])
	assert.Equal(t, "Asha", got["name"])
	assert.Equal(t, "250", got["orderValue"])
	assert.Equal(t, "ADD", got["action"])
	assert.Equal(t, "2024-06-15T12:00:00.000Z", got["timestamp"])
	assert.NotContains(t, string(raw), "secret-user")
}

func TestPayloadDeleteCarriesOnlyID(t *testing.T) {
	raw, err := Payload(map[string]any{"id": "l1"}, ActionDelete, fixedNow)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"l1","action":"DELETE","timestamp":"2024-06-15T12:00:00.000Z"}`, string(raw))
}

func TestPayloadRejectsNonObject(t *testing.T) {
	_, err := Payload([]string{"a"}, ActionAdd, fixedNow)
	assert.Error(t, err)
}

func TestTestPayload(t *testing.T) {
	raw, err := TestPayload(fixedNow.In(time.FixedZone("IST", 19800)))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Test Connection","action":"TEST","timestamp":"2024-06-15T12:00:00.000Z"}`, string(raw))
}
