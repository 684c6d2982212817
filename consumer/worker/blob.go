package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tnqbao/gau-travel-service/infra"
	"github.com/tnqbao/gau-travel-service/infra/produce"
	"github.com/tnqbao/gau-travel-service/utils"
)

const maxRetries = 3

// BlobConsumer removes blobs left behind by account deletion and by replaced
// profile or article images.
// Deliveries must carry a valid signature no older than maxAge when
// signingSecret is set.
type BlobConsumer struct {
	channel       *amqp.Channel
	infra         *infra.Infra
	signingSecret string
	maxAge        time.Duration
	backoff       time.Duration
	now           func() time.Time
}

func NewBlobConsumer(channel *amqp.Channel, infra *infra.Infra, signingSecret string, maxAge time.Duration) *BlobConsumer {
	return &BlobConsumer{
		channel:       channel,
		infra:         infra,
		signingSecret: signingSecret,
		maxAge:        maxAge,
		backoff:       2 * time.Second,
		now:           time.Now,
	}
}

func (c *BlobConsumer) Start(ctx context.Context) error {
	if err := c.consume(ctx, produce.UserBlobDeleteQueue, "Delete User Blobs", c.handleDeleteUserBlobs); err != nil {
		return fmt.Errorf("failed to start user blob consumer: %w", err)
	}
	if err := c.consume(ctx, produce.ObjectDeleteQueue, "Delete Object", c.handleDeleteObject); err != nil {
		return fmt.Errorf("failed to start object consumer: %w", err)
	}
	return nil
}

func (c *BlobConsumer) consume(ctx context.Context, queue, tag string, handle func(context.Context, amqp.Delivery)) error {
	msgs, err := c.channel.Consume(
		queue,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer on %s: %w", queue, err)
	}

	c.infra.Logger.InfoWithContextf(ctx, "[Blob Consumer] Started listening on queue: %s", queue)

	go func() {
		for {
			select {
			case <-ctx.Done():
				c.infra.Logger.InfoWithContextf(ctx, "[Blob Consumer - %s] Shutting down...", tag)
				return
			case msg, ok := <-msgs:
				if !ok {
					c.infra.Logger.WarningWithContextf(ctx, "[Blob Consumer - %s] Channel closed", tag)
					return
				}
				handle(ctx, msg)
			}
		}
	}()

	return nil
}

func (c *BlobConsumer) handleDeleteUserBlobs(ctx context.Context, msg amqp.Delivery) {
	if !c.authentic(ctx, msg, produce.UserBlobDeleteRoutingKey, "Delete User Blobs") {
		return
	}

	var payload produce.DeleteUserBlobsMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Blob Consumer - Delete User Blobs] Failed to unmarshal message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	prefix, err := utils.UserBlobPrefix(payload.UserID)
	if err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Blob Consumer - Delete User Blobs] Invalid message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	c.retry(ctx, msg, "Delete User Blobs", func() error {
		return c.infra.Storage.DeleteObjectsWithPrefix(ctx, prefix)
	})
}

func (c *BlobConsumer) handleDeleteObject(ctx context.Context, msg amqp.Delivery) {
	if !c.authentic(ctx, msg, produce.ObjectDeleteRoutingKey, "Delete Object") {
		return
	}

	var payload produce.DeleteObjectMessage
	if err := json.Unmarshal(msg.Body, &payload); err != nil {
		c.infra.Logger.ErrorWithContextf(ctx, err, "[Blob Consumer - Delete Object] Failed to unmarshal message: %v", err)
		_ = msg.Nack(false, false)
		return
	}

	// a user may only ever release objects under its own prefix
	prefix, err := utils.UserBlobPrefix(payload.UserID)
	if err != nil || !strings.HasPrefix(payload.ObjectPath, prefix) || len(payload.ObjectPath) == len(prefix) {
		c.infra.Logger.WarningWithContextf(ctx, "[Blob Consumer - Delete Object] Rejected path %q for user %q", payload.ObjectPath, payload.UserID)
		_ = msg.Nack(false, false)
		return
	}

	c.retry(ctx, msg, "Delete Object", func() error {
		err := c.infra.Storage.DeleteObject(ctx, payload.ObjectPath)
		if errors.Is(err, utils.ErrNotFound) {
			return nil
		}
		return err
	})
}

// authentic drops deliveries whose signature does not match or whose signing
// time is outside the accepted window.
func (c *BlobConsumer) authentic(ctx context.Context, msg amqp.Delivery, routingKey, tag string) bool {
	if c.signingSecret == "" {
		return true
	}
	signedAt := msg.Headers[utils.SignedAtHeader]
	if !utils.VerifyMessage(c.signingSecret, routingKey, signedAt, msg.Body, msg.Headers[utils.SignatureHeader]) {
		c.infra.Logger.WarningWithContextf(ctx, "[Blob Consumer - %s] Dropping message with invalid signature", tag)
		_ = msg.Nack(false, false)
		return false
	}
	if !utils.SignedWithin(signedAt, c.now(), c.maxAge) {
		c.infra.Logger.WarningWithContextf(ctx, "[Blob Consumer - %s] Dropping stale message signed at %v", tag, signedAt)
		_ = msg.Nack(false, false)
		return false
	}
	return true
}

// retry runs job up to maxRetries times with linear backoff, then acks on
// success or requeues the message.
func (c *BlobConsumer) retry(ctx context.Context, msg amqp.Delivery, tag string, job func() error) {
	var err error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err = job()
		if err == nil {
			c.infra.Logger.InfoWithContextf(ctx, "[Blob Consumer - %s] Completed: %s", tag, string(msg.Body))
			_ = msg.Ack(false)
			return
		}

		c.infra.Logger.ErrorWithContextf(ctx, err, "[Blob Consumer - %s] Attempt %d/%d failed: %v", tag, attempt, maxRetries, err)

		if attempt < maxRetries {
			time.Sleep(time.Duration(attempt) * c.backoff)
		}
	}

	c.infra.Logger.ErrorWithContextf(ctx, err, "[Blob Consumer - %s] Failed after %d attempts, requeueing message", tag, maxRetries)
	_ = msg.Nack(false, true)
}
