package pubsub

import (
	"encoding/json"

	"shopreg/internal/domain/service"

	"github.com/pkg/errors"
)

// Attribute keys set on every account message, so subscribers can filter without decoding data.
const (
	attrEventID       = "event_id"
	attrEventType     = "event_type"
	attrUserID        = "user_id"
	attrRequestID     = "request_id"
	attrSchemaVersion = "schema_version"
)

const accountEventSchemaVersion = "1"

// accountMessage is an AccountEvent encoded for any provider.
type accountMessage struct {
	data        []byte
	attributes  map[string]string
	orderingKey string
}

// newAccountMessage encodes event as JSON. Events of one user share an
// ordering key so consumers see them in publish order.
func newAccountMessage(event *service.AccountEvent) (*accountMessage, error) {
	if event == nil {
		return nil, errors.New("account event is nil")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode account event")
	}

	attributes := map[string]string{
		attrEventID:       event.EventID,
		attrEventType:     event.Type,
		attrUserID:        event.UserID,
		attrSchemaVersion: accountEventSchemaVersion,
	}
	if event.RequestID != "" {
		attributes[attrRequestID] = event.RequestID
	}

	return &accountMessage{
		data:        data,
		attributes:  attributes,
		orderingKey: event.UserID,
	}, nil
}
