package amqp

import "testing"

func TestEntrySyncMessageRoundTrip(t *testing.T) {
	msg := NewEntrySyncMessage("abc-123", ActionCreated)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	got, err := EntrySyncMessageFromJSON(data)
	if err != nil {
		t.Fatalf("EntrySyncMessageFromJSON() error = %v", err)
	}
	if got.ID != "abc-123" || got.Action != ActionCreated {
		t.Errorf("round trip = %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestEntrySyncMessageFromJSONInvalid(t *testing.T) {
	if _, err := EntrySyncMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestMaterializedMessageRoundTrip(t *testing.T) {
	msg := NewMaterializedMessage([]string{"tmpl-1", "tmpl-2"}, 3)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}
	got, err := MaterializedMessageFromJSON(data)
	if err != nil {
		t.Fatalf("MaterializedMessageFromJSON() error = %v", err)
	}
	if len(got.TemplateIDs) != 2 || got.Inserted != 3 {
		t.Errorf("round trip = %+v", got)
	}
}
