package amqp

import (
	"context"
	"errors"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

const prefetchCount = 10

// ApprovalHandler processes one approval event. An error requeues the
// delivery once; a second failure drops it.
type ApprovalHandler func(ctx context.Context, msg *ProgressApprovedMessage) error

// ConsumeProgressApproved delivers every message on the approval queue to
// handler until ctx is cancelled or the channel closes.
func (c *Client) ConsumeProgressApproved(ctx context.Context, handler ApprovalHandler) error {
	c.mu.Lock()
	ch := c.channel
	c.mu.Unlock()
	if ch == nil || ch.IsClosed() {
		return errNotConnected
	}

	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		return fmt.Errorf("set prefetch: %w", err)
	}
	deliveries, err := ch.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	c.logger.InfoContext(ctx, "Started consuming approval events", "queue", c.queueName)
	return c.dispatch(ctx, deliveries, handler)
}

func (c *Client) dispatch(ctx context.Context, deliveries <-chan amqp091.Delivery, handler ApprovalHandler) error {
	for {
		select {
		case <-ctx.Done():
			c.logger.InfoContext(ctx, "Stopping message consumption", "reason", ctx.Err())
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("amqp: delivery channel closed")
			}
			c.handleDelivery(ctx, d, handler)
		}
	}
}

func (c *Client) handleDelivery(ctx context.Context, d amqp091.Delivery, handler ApprovalHandler) {
	msg, err := ProgressApprovedMessageFromJSON(d.Body)
	if err != nil || msg.EventID == "" || msg.ProjectID == "" {
		c.logger.ErrorContext(ctx, "Dropping malformed approval event", "error", err, "body_size", len(d.Body))
		_ = d.Nack(false, false)
		return
	}

	if err := handler(ctx, msg); err != nil {
		requeue := !d.Redelivered
		c.logger.ErrorContext(ctx, "Failed to handle approval event",
			"error", err,
			"event_id", msg.EventID,
			"project_id", msg.ProjectID,
			"requeue", requeue)
		_ = d.Nack(false, requeue)
		return
	}

	_ = d.Ack(false)
	c.logger.DebugContext(ctx, "Handled approval event", "event_id", msg.EventID, "project_id", msg.ProjectID)
}
