package kafka

import (
	"log"
	"strconv"

	"github.com/google/uuid"

	"helpdesk/events"
)

// Relay mirrors locally-raised domain events onto the Kafka topic so
// other instances can fan them out to their own websocket clients.
// Events that arrived from the topic already carry an origin and are
// never sent again.
type Relay struct {
	producer   *Producer
	topic      string
	instanceID string
}

func NewRelay(producer *Producer, topic string) *Relay {
	return &Relay{
		producer:   producer,
		topic:      topic,
		instanceID: uuid.NewString(),
	}
}

// InstanceID identifies this process on the topic; the consumer skips
// messages carrying it.
func (r *Relay) InstanceID() string {
	return r.instanceID
}

// Attach subscribes the relay to every event type on the bus.
func (r *Relay) Attach(bus *events.Bus) {
	for _, t := range []events.Type{
		events.NewConversation,
		events.NewMessage,
		events.NewTicket,
		events.TicketReply,
	} {
		bus.Subscribe(t, r.onEvent)
	}
}

func (r *Relay) onEvent(e events.Event) {
	if e.Origin != "" {
		return
	}
	e.Origin = r.instanceID

	key := strconv.FormatUint(uint64(e.ConversationID), 10)
	if e.ConversationID == 0 {
		key = strconv.FormatUint(uint64(e.TicketID), 10)
	}
	if err := r.producer.SendMessage(r.topic, key, e); err != nil {
		log.Printf("Event relay failed for %s: %v", e.Type, err)
	}
}
