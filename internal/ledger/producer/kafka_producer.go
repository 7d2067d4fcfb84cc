package producer

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/Diego23232/daytradeotc-backend/pkg/contracts/events"
)

type KafkaPublisher struct {
	Writer *kafka.Writer
	Topic  string
}

func NewKafkaPublisher(w *kafka.Writer, topic string) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, Topic: topic}
}

// PublishLedgerEntry publica o lançamento chaveado pela conta, preservando
// a ordem por conta dentro da partição.
func (p *KafkaPublisher) PublishLedgerEntry(ctx context.Context, e events.LedgerEntry) error {
	b, _ := json.Marshal(e)
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(e.AccountID),
		Value: b,
	})
}
