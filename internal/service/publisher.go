package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/doit-app/challenge-arena-go/internal/config"
	"github.com/doit-app/challenge-arena-go/pkg/logger"
)

// Engagement event routing keys.
const (
	EventVoteCast     = "vote.cast"
	EventArenaPoints  = "arena.points"
	EventXPAwarded    = "xp.awarded"
	EventCommentAdded = "comment.added"
)

// EngagementEvent is the message published for downstream consumers when a
// vote, point award, XP award or comment happens.
type EngagementEvent struct {
	Type      string    `json:"type"`
	UserID    uuid.UUID `json:"user_id"`
	VideoID   uuid.UUID `json:"video_id,omitempty"`
	Amount    int       `json:"amount,omitempty"`
	Kind      string    `json:"kind,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// EventPublisher publishes engagement events to a RabbitMQ topic exchange.
// Publishing is best-effort: failures are logged and never propagated, so
// local state can diverge from what consumers saw. A nil *EventPublisher is
// valid and publishes nothing.
type EventPublisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	config  *config.RabbitMQConfig
	mu      sync.RWMutex
}

// NewEventPublisher connects and declares the engagement exchange.
func NewEventPublisher(cfg *config.RabbitMQConfig) (*EventPublisher, error) {
	p := &EventPublisher{config: cfg}
	if err := p.connect(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *EventPublisher) connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	connURL := fmt.Sprintf("amqp://%s:%s@%s:%d/",
		p.config.User, p.config.Password, p.config.Host, p.config.Port)

	conn, err := amqp.Dial(connURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to enable publisher confirms: %w", err)
	}

	if err := ch.ExchangeDeclare(
		p.config.Exchange,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	p.conn = conn
	p.channel = ch
	return nil
}

// Publish sends one engagement event. Failures are logged and swallowed.
func (p *EventPublisher) Publish(ctx context.Context, event EngagementEvent) {
	if p == nil {
		return
	}
	event.Timestamp = time.Now()

	body, err := json.Marshal(event)
	if err != nil {
		logger.Log.Warn("marshal engagement event failed", zap.Error(err))
		return
	}

	p.mu.RLock()
	ch := p.channel
	p.mu.RUnlock()
	if ch == nil {
		return
	}

	err = ch.PublishWithContext(ctx,
		p.config.Exchange,
		event.Type,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		logger.Log.Warn("publish engagement event failed",
			zap.String("type", event.Type),
			zap.Error(err),
		)
	}
}

// IsHealthy reports whether the connection is open.
func (p *EventPublisher) IsHealthy() bool {
	if p == nil {
		return false
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.conn != nil && !p.conn.IsClosed()
}

// Close shuts down the channel and connection.
func (p *EventPublisher) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
