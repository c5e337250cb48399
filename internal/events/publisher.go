package events

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sbilibin2017/users-service/internal/logger"
)

// UserRegisteredEvent is emitted after a successful registration.
type UserRegisteredEvent struct {
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Publisher writes user lifecycle events to kafka.
type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher creates a Publisher for the given broker address and topic.
func NewPublisher(addr, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(addr),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// PublishUserRegistered emits a registration event keyed by user id.
func (p *Publisher) PublishUserRegistered(ctx context.Context, userID int64, username, email string) error {
	event := UserRegisteredEvent{
		UserID:       userID,
		Username:     username,
		Email:        email,
		RegisteredAt: time.Now(),
	}

	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatInt(userID, 10)),
		Value: value,
	})

	logger.Log.Infow(
		"op", "events.user_registered",
		"user_id", userID,
		"error", err,
	)

	return err
}

// Close flushes and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
