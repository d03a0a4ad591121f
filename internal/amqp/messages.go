package amqp

import (
	"encoding/json"
	"time"
)

// Entry sync actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// EntrySyncMessage notifies downstream consumers that an entry changed.
// It carries only the id and action; consumers fetch the record themselves.
type EntrySyncMessage struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

func NewEntrySyncMessage(id, action string) *EntrySyncMessage {
	return &EntrySyncMessage{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

func (m *EntrySyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func EntrySyncMessageFromJSON(data []byte) (*EntrySyncMessage, error) {
	var msg EntrySyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// MaterializedMessage announces a batch of freshly materialized occurrences.
type MaterializedMessage struct {
	TemplateIDs []string  `json:"template_ids"`
	Inserted    int       `json:"inserted"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewMaterializedMessage(templateIDs []string, inserted int) *MaterializedMessage {
	return &MaterializedMessage{
		TemplateIDs: templateIDs,
		Inserted:    inserted,
		Timestamp:   time.Now(),
	}
}

func (m *MaterializedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MaterializedMessageFromJSON(data []byte) (*MaterializedMessage, error) {
	var msg MaterializedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
