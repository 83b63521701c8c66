package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
)

// message is the wire form published by the storefront.
type message struct {
	Type       string    `json:"type"`
	UserID     string    `json:"userId"`
	ProductID  string    `json:"productId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Decode turns a tracking message into an Event ready for Insert.
func Decode(payload []byte) (*Event, error) {
	var m message
	if err := json.Unmarshal(payload, &m); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	e := &Event{
		Type:      Type(m.Type),
		UserID:    m.UserID,
		ProductID: strings.TrimSpace(m.ProductID),
		CreatedAt: m.OccurredAt.UTC(),
	}
	if !e.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, m.Type)
	}
	if e.Type == TypeProductView && e.ProductID == "" {
		return nil, ErrMissingProduct
	}
	return e, nil
}

// Consumer appends tracking events read from a Kafka topic.
type Consumer struct {
	repo    Repository
	brokers []string
	topic   string
	groupID string
}

func NewConsumer(repo Repository, brokers []string, topic, groupID string) *Consumer {
	return &Consumer{repo: repo, brokers: brokers, topic: topic, groupID: groupID}
}

// Handle stores one message. Malformed messages are logged and dropped so
// they do not block the partition.
func (c *Consumer) Handle(ctx context.Context, payload []byte) error {
	e, err := Decode(payload)
	if err != nil {
		log.Printf("[ingest] skip topic=%s err=%v", c.topic, err)
		return nil
	}
	if err := c.repo.Insert(ctx, e); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// Run blocks until ctx is done.
func (c *Consumer) Run(ctx context.Context) {
	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers: c.brokers,
		Topic:   c.topic,
		GroupID: c.groupID,
	})
	defer reader.Close()

	log.Printf("[ingest] consuming topic=%s group=%s", c.topic, c.groupID)
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Printf("[ingest] consumer shutting down topic=%s", c.topic)
				return
			}
			log.Printf("[ingest] read error topic=%s err=%v", c.topic, err)
			continue
		}
		if err := c.Handle(ctx, msg.Value); err != nil {
			log.Printf("[ingest] handle error topic=%s offset=%d err=%v", c.topic, msg.Offset, err)
		}
	}
}
