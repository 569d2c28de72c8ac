package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/layer-3/kana-auth/ports"
)

const (
	// LoginTopic receives one event per successful login
	LoginTopic = "kana-auth.login"
	// LogoutTopic receives one event per logout that presented a refresh secret
	LogoutTopic = "kana-auth.logout"
)

// LoginEvent represents a login event
type LoginEvent struct {
	AccountID  string    `json:"account_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// LogoutEvent represents a logout event
type LogoutEvent struct {
	AccountID  string    `json:"account_id"`
	TokenID    string    `json:"token_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill
type WatermillPublisher struct {
	publisher message.Publisher
	clock     ports.Clock
}

// NewWatermillPublisher creates a new Watermill publisher. A nil clock means
// ports.SystemClock.
func NewWatermillPublisher(publisher message.Publisher, clock ports.Clock) ports.EventPublisher {
	if clock == nil {
		clock = ports.SystemClock
	}
	return &WatermillPublisher{publisher: publisher, clock: clock}
}

// PublishLogin publishes a login event
func (p *WatermillPublisher) PublishLogin(ctx context.Context, accountID string) error {
	return p.publish(ctx, LoginTopic, LoginEvent{
		AccountID:  accountID,
		OccurredAt: p.clock.Now().UTC(),
	})
}

// PublishLogout publishes a logout event
func (p *WatermillPublisher) PublishLogout(ctx context.Context, accountID string, tokenID string) error {
	return p.publish(ctx, LogoutTopic, LogoutEvent{
		AccountID:  accountID,
		TokenID:    tokenID,
		OccurredAt: p.clock.Now().UTC(),
	})
}

func (p *WatermillPublisher) publish(ctx context.Context, topic string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// LogPublisher records events in the log when no broker is configured
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a publisher that only logs
func NewLogPublisher(logger *slog.Logger) ports.EventPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogPublisher{logger: logger}
}

// PublishLogin logs a login event
func (p *LogPublisher) PublishLogin(ctx context.Context, accountID string) error {
	p.logger.DebugContext(ctx, "login event", "topic", LoginTopic, "account_id", accountID)
	return nil
}

// PublishLogout logs a logout event
func (p *LogPublisher) PublishLogout(ctx context.Context, accountID string, tokenID string) error {
	p.logger.DebugContext(ctx, "logout event", "topic", LogoutTopic, "account_id", accountID, "token_id", tokenID)
	return nil
}
