package events

import (
	"log"
	"sync"
)

type Type string

const (
	NewConversation Type = "new_conversation"
	NewMessage      Type = "new_message"
	NewTicket       Type = "new_ticket"
	TicketReply     Type = "ticket_reply"
)

// Event carries the ids of the entities involved in a domain event. Origin
// is empty for events raised locally and set to the emitting instance id
// when an event has been relayed through Kafka.
type Event struct {
	Type           Type   `json:"type"`
	ConversationID uint   `json:"conversation_id,omitempty"`
	MessageID      uint   `json:"message_id,omitempty"`
	TicketID       uint   `json:"ticket_id,omitempty"`
	ReplyID        uint   `json:"reply_id,omitempty"`
	Origin         string `json:"origin,omitempty"`
}

type Handler func(Event)

// Bus dispatches events synchronously to subscribers in registration order.
// Ordering matters: the automation engine must run before the notification
// dispatcher so notifications see automation writes.
type Bus struct {
	mu       sync.RWMutex
	handlers map[Type][]Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[Type][]Handler)}
}

func (b *Bus) Subscribe(t Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[t] = append(b.handlers[t], h)
}

func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[e.Type]))
	copy(handlers, b.handlers[e.Type])
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(h, e)
	}
}

// dispatch isolates subscriber panics so one failing subscriber cannot
// abort the triggering operation or the remaining subscribers.
func (b *Bus) dispatch(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("event subscriber panic on %s: %v", e.Type, r)
		}
	}()
	h(e)
}
