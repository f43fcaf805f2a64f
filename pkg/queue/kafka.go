package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type KafkaProducer struct {
	writer *kafka.Writer
}

type KafkaConsumer struct {
	reader *kafka.Reader
}

func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
		Async:    false,
	}

	return &KafkaProducer{writer: writer}
}

func NewKafkaConsumer(brokers []string, topic, groupID string) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: 1 * time.Second,
		StartOffset:    kafka.FirstOffset,
	})

	return &KafkaConsumer{reader: reader}
}

func (p *KafkaProducer) Publish(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	return p.writer.WriteMessages(ctx, message)
}

func (c *KafkaConsumer) Subscribe(ctx context.Context, handler func(Message) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			message, err := c.reader.ReadMessage(ctx)
			if err != nil {
				return fmt.Errorf("failed to read message: %w", err)
			}

			var event Event
			if err := json.Unmarshal(message.Value, &event); err != nil {
				fmt.Printf("Failed to unmarshal message: %v\n", err)
				continue
			}

			msg := Message{
				Key:   string(message.Key),
				Event: event,
				Topic: message.Topic,
			}

			if err := handler(msg); err != nil {
				fmt.Printf("Failed to handle message: %v\n", err)
				continue
			}
		}
	}
}

func (c *KafkaConsumer) Close() error {
	return c.reader.Close()
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

type Message struct {
	Key   string
	Event Event
	Topic string
}

type EventType string

const (
	EventRecipeCreated      EventType = "recipe_created"
	EventRecipeUpdated      EventType = "recipe_updated"
	EventRecipeDeleted      EventType = "recipe_deleted"
	EventFavoriteAdded      EventType = "favorite_added"
	EventFavoriteRemoved    EventType = "favorite_removed"
	EventBasketAdded        EventType = "basket_added"
	EventBasketRemoved      EventType = "basket_removed"
	EventSubscriptionAdded  EventType = "subscription_added"
	EventSubscriptionEnded  EventType = "subscription_ended"
)

type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

func NewEvent(eventType EventType, data interface{}) (Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal event data: %w", err)
	}
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      payload,
	}, nil
}

type RecipeEventData struct {
	RecipeID string `json:"recipe_id"`
	AuthorID string `json:"author_id"`
	// 事件发出时购物篮里含有该菜谱的用户，
	// 删除后关联行已不在库里，只能随事件携带
	AffectedUsers []string `json:"affected_users,omitempty"`
}

type RelationEventData struct {
	UserID   string `json:"user_id"`
	RecipeID string `json:"recipe_id,omitempty"`
	AuthorID string `json:"author_id,omitempty"`
}
