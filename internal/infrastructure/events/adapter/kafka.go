package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"go-prestachat/internal/infrastructure/events/port"
)

// KafkaPublisher writes events to a single topic, keyed so that every event of
// a conversation lands on the same partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, errors.New("kafka: no brokers configured")
	}
	if topic == "" {
		return nil, errors.New("kafka: topic is required")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           5 * time.Second,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}, nil
}

var _ port.Publisher = (*KafkaPublisher)(nil)

func (p *KafkaPublisher) Publish(ctx context.Context, e port.Event) error {
	msg, err := encode(e, time.Now().UTC())
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// encode renders the payload as a JSON object with a "type" field merged in.
func encode(e port.Event, now time.Time) (kafka.Message, error) {
	if e.Type == "" {
		return kafka.Message{}, errors.New("kafka: event type is required")
	}
	raw, err := json.Marshal(e.Payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("kafka: encode %s: %w", e.Type, err)
	}
	fields := map[string]json.RawMessage{}
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &fields); err != nil {
			return kafka.Message{}, fmt.Errorf("kafka: %s payload must be an object: %w", e.Type, err)
		}
	}
	typ, _ := json.Marshal(e.Type)
	fields["type"] = typ
	value, err := json.Marshal(fields)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:     []byte(e.Key),
		Value:   value,
		Time:    now,
		Headers: []kafka.Header{{Key: "event-type", Value: []byte(e.Type)}},
	}, nil
}
