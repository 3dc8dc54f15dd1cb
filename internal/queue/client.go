package queue

import (
	"context"

	"compliance-backend/internal/shared/telemetry"
)

// Client sends messages to a queue backend.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

// Noop drops every message.
type Noop struct{}

// Send implements Client.
func (Noop) Send(context.Context, Message) error { return nil }

// Notify sends msg and logs a failure instead of returning it.
func Notify(ctx context.Context, c Client, msg Message) {
	if c == nil {
		return
	}
	if err := c.Send(ctx, msg); err != nil {
		telemetry.Warn("queue.notify_failed", map[string]any{
			"organization_id": msg.OrganizationID,
			"user_id":         msg.UserID,
			"document_id":     msg.DocumentID,
			"error":           err.Error(),
		})
	}
}

var _ Client = Noop{}
