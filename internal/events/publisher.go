// Package events publishes settlement outcomes to Kafka so downstream
// consumers (notifications, seller dashboards) learn about terminal
// payment results without polling the backend.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const settlementsTopic = "payment-settlements"

type SettlementEvent struct {
	OrderID   string    `json:"order_id"`
	Reference string    `json:"reference"`
	Outcome   string    `json:"outcome"`
	Amount    string    `json:"amount"`
	SettledAt time.Time `json:"settled_at"`
}

type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  settlementsTopic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishSettlement(ctx context.Context, event SettlementEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal settlement event: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Reference),
		Value: payload,
	})
	if err != nil {
		return fmt.Errorf("write settlement event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
