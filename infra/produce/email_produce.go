package produce

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	EmailExchange = "email_exchange"

	welcomeRoutingKey        = "email.notification"
	accountDeletedRoutingKey = "email.warning"
)

type EmailMessage struct {
	Type          string `json:"type"`
	Recipient     string `json:"recipient"`
	RecipientName string `json:"recipientName,omitempty"`
	Content       string `json:"content"`
}

// EmailService hands account notifications to the shared mail worker.
// The exchange is owned by that worker and is not declared here.
type EmailService struct {
	channel       *amqp.Channel
	signingSecret string
}

func InitEmailService(channel *amqp.Channel, signingSecret string) *EmailService {
	return &EmailService{
		channel:       channel,
		signingSecret: signingSecret,
	}
}

func (s *EmailService) SendWelcome(ctx context.Context, email, recipientName string) error {
	return s.send(ctx, welcomeRoutingKey, EmailMessage{
		Type:          "notification",
		Recipient:     email,
		RecipientName: recipientName,
		Content:       "Welcome aboard! Your travel journal account is ready.",
	})
}

func (s *EmailService) SendAccountDeleted(ctx context.Context, email, recipientName string) error {
	return s.send(ctx, accountDeletedRoutingKey, EmailMessage{
		Type:          "warning",
		Recipient:     email,
		RecipientName: recipientName,
		Content:       "Your account and all of its articles, comments, likes and files have been deleted.",
	})
}

func (s *EmailService) send(ctx context.Context, routingKey string, message EmailMessage) error {
	if message.Recipient == "" {
		return fmt.Errorf("email message for %s has no recipient", routingKey)
	}

	publishing, err := newPublishing(s.signingSecret, routingKey, message)
	if err != nil {
		return fmt.Errorf("failed to marshal email message: %w", err)
	}

	if err := s.channel.PublishWithContext(ctx, EmailExchange, routingKey, false, false, publishing); err != nil {
		return fmt.Errorf("failed to publish email message: %w", err)
	}
	return nil
}
