package kafkax

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"stockroom/internal/stock"
)

func MustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

// Publisher wraps events into versioned envelopes before handing them to
// the async producer.
type Publisher struct {
	Producer *Producer
	Service  string
}

func (p *Publisher) Publish(eventType string, key []byte, payload any) {
	env := stock.Envelope{
		EventID:      uuid.NewString(),
		EventType:    eventType,
		EventVersion: 1,
		OccurredAt:   time.Now().UTC(),
		Producer:     p.Service,
		Payload:      MustMarshal(payload),
	}
	p.Producer.Publish(key, MustMarshal(env),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
