package produce

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tnqbao/gau-travel-service/utils"
)

type BlobPublisher interface {
	PublishDeleteUserBlobs(ctx context.Context, userID string) error
	PublishDeleteObject(ctx context.Context, userID, objectPath string) error
}

type EmailPublisher interface {
	SendWelcome(ctx context.Context, email, recipientName string) error
	SendAccountDeleted(ctx context.Context, email, recipientName string) error
}

type Produce struct {
	BlobService  BlobPublisher
	EmailService EmailPublisher
}

func InitProduce(channel *amqp.Channel, signingSecret string) *Produce {
	blobService := InitBlobService(channel, signingSecret)
	if blobService == nil {
		panic("Failed to initialize Blob service")
	}

	emailService := InitEmailService(channel, signingSecret)
	if emailService == nil {
		panic("Failed to initialize Email service")
	}

	return &Produce{
		BlobService:  blobService,
		EmailService: emailService,
	}
}

// newPublishing encodes msg as JSON and, when secret is set, attaches the
// signature headers the consumer verifies.
func newPublishing(secret, routingKey string, msg interface{}) (amqp.Publishing, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return amqp.Publishing{}, err
	}

	publishing := amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	}
	if secret != "" {
		signedAt := time.Now().Unix()
		publishing.Headers = amqp.Table{
			utils.SignatureHeader: utils.SignMessage(secret, routingKey, signedAt, body),
			utils.SignedAtHeader:  signedAt,
		}
	}
	return publishing, nil
}
