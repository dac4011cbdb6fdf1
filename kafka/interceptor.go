package kafka

import (
	"strconv"
	"time"

	"github.com/IBM/sarama"
)

// EventInterceptor stamps every outgoing relay message with the emission
// time, so consumers can measure relay lag.
type EventInterceptor struct{}

func NewEventInterceptor() *EventInterceptor {
	return &EventInterceptor{}
}

func (i *EventInterceptor) OnSend(msg *sarama.ProducerMessage) {
	msg.Headers = append(msg.Headers, sarama.RecordHeader{
		Key:   []byte("emitted-at"),
		Value: []byte(strconv.FormatInt(time.Now().UnixMilli(), 10)),
	})
}
