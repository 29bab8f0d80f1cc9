package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"habit-tracker/internal/config"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Event types published to the habit-events topic.
const (
	EventTypeUserRegistered = "user.registered"
	EventTypeReminderSent   = "reminder.sent"
)

// Envelope wraps every published event.
type Envelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// UserRegisteredEvent is emitted after a successful registration.
type UserRegisteredEvent struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// ReminderSentEvent is emitted after a reminder reaches the gateway.
type ReminderSentEvent struct {
	HabitID string    `json:"habit_id"`
	UserID  string    `json:"user_id"`
	ChatID  string    `json:"chat_id"`
	SentAt  time.Time `json:"sent_at"`
}

// Producer handles publishing events to Kafka
type Producer struct {
	writer *kafka.Writer
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg *config.KafkaConfig) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    10,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
	}

	return &Producer{
		writer: writer,
	}
}

func (p *Producer) publish(ctx context.Context, key, eventType string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	data, err := json.Marshal(&Envelope{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
		Payload:   body,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}

	log.Printf("Published %s event for key %s", eventType, key)
	return nil
}

// PublishUserRegistered publishes a user registration event
func (p *Producer) PublishUserRegistered(ctx context.Context, event *UserRegisteredEvent) error {
	return p.publish(ctx, event.UserID, EventTypeUserRegistered, event)
}

// PublishReminderSent publishes a reminder delivery event
func (p *Producer) PublishReminderSent(ctx context.Context, event *ReminderSentEvent) error {
	return p.publish(ctx, event.HabitID, EventTypeReminderSent, event)
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
