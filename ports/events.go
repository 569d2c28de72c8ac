package ports

import "context"

// EventPublisher publishes session events to other consumers
type EventPublisher interface {
	PublishLogin(ctx context.Context, accountID string) error
	PublishLogout(ctx context.Context, accountID string, tokenID string) error
}
