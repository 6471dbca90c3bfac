package pubsub

import (
	"encoding/json"
	"testing"

	"shopreg/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccountMessage(t *testing.T) {
	event := newTestEvent()

	msg, err := newAccountMessage(event)
	require.NoError(t, err)
	assert.Equal(t, event.UserID, msg.orderingKey)
	assert.Equal(t, map[string]string{
		attrEventID:       "evt-1",
		attrEventType:     service.AccountEventRegistered,
		attrUserID:        event.UserID,
		attrRequestID:     "req-1",
		attrSchemaVersion: accountEventSchemaVersion,
	}, msg.attributes)

	var decoded service.AccountEvent
	require.NoError(t, json.Unmarshal(msg.data, &decoded))
	assert.Equal(t, *event, decoded)
}

func TestNewAccountMessage_WithoutRequestID(t *testing.T) {
	event := newTestEvent()
	event.RequestID = ""

	msg, err := newAccountMessage(event)
	require.NoError(t, err)
	assert.NotContains(t, msg.attributes, attrRequestID)
}

func TestNewAccountMessage_NilEvent(t *testing.T) {
	_, err := newAccountMessage(nil)
	assert.Error(t, err)
}
