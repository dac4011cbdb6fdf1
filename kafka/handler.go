package kafka

import (
	"context"
	"encoding/json"
	"log"

	"github.com/IBM/sarama"

	"helpdesk/events"
)

// EventHandler re-injects relayed domain events into the local bus.
// Events this instance emitted itself are skipped, otherwise a relayed
// event would loop forever between the bus and the topic.
type EventHandler struct {
	bus        *events.Bus
	instanceID string
}

func NewEventHandler(bus *events.Bus, instanceID string) *EventHandler {
	return &EventHandler{bus: bus, instanceID: instanceID}
}

func (h *EventHandler) Handle(ctx context.Context, message *sarama.ConsumerMessage) error {
	var event events.Event
	if err := json.Unmarshal(message.Value, &event); err != nil {
		log.Printf("Failed to unmarshal relayed event: %v", err)
		return err
	}

	if event.Origin == h.instanceID {
		return nil
	}
	if event.Origin == "" {
		// Relayed events always carry an origin; treat a blank one as
		// malformed rather than re-publishing it back to the topic.
		log.Printf("Dropping relayed event without origin: %s", event.Type)
		return nil
	}

	h.bus.Publish(event)
	return nil
}
