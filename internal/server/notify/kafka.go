package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// CodeEvent is published for an external mailer to deliver.
type CodeEvent struct {
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Code             string    `json:"code"`
	ExpiresInMinutes int       `json:"expires_in_minutes"`
	IssuedAt         time.Time `json:"issued_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes CodeEvents keyed by email, so events for one
// address stay ordered within a partition.
type KafkaNotifier struct {
	writer   messageWriter
	validity time.Duration
	now      func() time.Time
}

func NewKafkaNotifier(brokers []string, topic string, validity time.Duration) *KafkaNotifier {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return &KafkaNotifier{writer: w, validity: validity, now: time.Now}
}

func (n *KafkaNotifier) Send(ctx context.Context, email, code, name string) error {
	payload, err := json.Marshal(CodeEvent{
		Email:            email,
		Name:             name,
		Code:             code,
		ExpiresInMinutes: int(n.validity.Minutes()),
		IssuedAt:         n.now().UTC(),
	})
	if err != nil {
		return err
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(email),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("kafka publish for %s: %w", email, err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
