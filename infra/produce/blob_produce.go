package produce

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	BlobExchange = "blob.exchange"

	// UserBlobDeleteQueue removes every object under a deleted user's prefix
	UserBlobDeleteQueue      = "blob.delete_user"
	UserBlobDeleteRoutingKey = "blob.delete_user"

	// ObjectDeleteQueue removes a single replaced object (old profile image)
	ObjectDeleteQueue      = "blob.delete_object"
	ObjectDeleteRoutingKey = "blob.delete_object"
)

type DeleteUserBlobsMessage struct {
	UserID    string `json:"user_id"`
	Timestamp int64  `json:"timestamp"`
}

type DeleteObjectMessage struct {
	UserID     string `json:"user_id"`
	ObjectPath string `json:"object_path"`
	Timestamp  int64  `json:"timestamp"`
}

type BlobService struct {
	channel       *amqp.Channel
	signingSecret string
}

// InitBlobService declares the blob exchange and queues. Messages are signed
// with signingSecret when it is set.
func InitBlobService(channel *amqp.Channel, signingSecret string) *BlobService {
	service := &BlobService{
		channel:       channel,
		signingSecret: signingSecret,
	}

	err := channel.ExchangeDeclare(
		BlobExchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		panic("Failed to declare Blob exchange: " + err.Error())
	}

	for queue, routingKey := range map[string]string{
		UserBlobDeleteQueue: UserBlobDeleteRoutingKey,
		ObjectDeleteQueue:   ObjectDeleteRoutingKey,
	} {
		if _, err := channel.QueueDeclare(
			queue,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			nil,
		); err != nil {
			panic("Failed to declare " + queue + " queue: " + err.Error())
		}

		if err := channel.QueueBind(queue, routingKey, BlobExchange, false, nil); err != nil {
			panic("Failed to bind " + queue + " queue: " + err.Error())
		}
	}

	return service
}

// PublishDeleteUserBlobs asks the consumer to remove everything under {userID}/
func (s *BlobService) PublishDeleteUserBlobs(ctx context.Context, userID string) error {
	return s.publish(ctx, UserBlobDeleteRoutingKey, DeleteUserBlobsMessage{
		UserID:    userID,
		Timestamp: time.Now().Unix(),
	})
}

func (s *BlobService) PublishDeleteObject(ctx context.Context, userID, objectPath string) error {
	return s.publish(ctx, ObjectDeleteRoutingKey, DeleteObjectMessage{
		UserID:     userID,
		ObjectPath: objectPath,
		Timestamp:  time.Now().Unix(),
	})
}

func (s *BlobService) publish(ctx context.Context, routingKey string, msg interface{}) error {
	publishing, err := newPublishing(s.signingSecret, routingKey, msg)
	if err != nil {
		return err
	}
	publishing.DeliveryMode = amqp.Persistent

	return s.channel.PublishWithContext(ctx, BlobExchange, routingKey, false, false, publishing)
}
