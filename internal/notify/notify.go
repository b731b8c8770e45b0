// Package notify dispatches password-reset tokens out-of-band. The
// actual mail rendering and delivery belongs to whatever consumes the
// reset channel; the core only publishes.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Swevix/WebRGZ/config"
	"github.com/Swevix/WebRGZ/internal/mq"
)

// ResetChannel is the MQ channel reset-mail payloads are published to.
const ResetChannel = "password-reset-emails"

// ResetPayload is the message body handed to the mail consumer.
type ResetPayload struct {
	Email       string    `json:"email"`
	Token       string    `json:"token"`
	RequestedAt time.Time `json:"requested_at"`
}

// MQNotifier publishes reset payloads to the configured broker.
type MQNotifier struct {
	broker *mq.MQ
}

// NewNotifier picks the notifier backend from cfg.MQ.Driver. The "log"
// driver needs no broker and just records the dispatch.
func NewNotifier(ctx context.Context, cfg config.Config) (ResetNotifier, func() error, error) {
	switch cfg.MQ.Driver {
	case "rabbitmq":
		backend, err := mq.NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, nil, err
		}
		broker := mq.New(backend)
		return &MQNotifier{broker: broker}, broker.Close, nil
	case "pubsub":
		backend, err := mq.NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, nil, err
		}
		broker := mq.New(backend)
		return &MQNotifier{broker: broker}, broker.Close, nil
	case "log":
		return LogNotifier{}, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown mq driver %q", cfg.MQ.Driver)
	}
}

// ResetNotifier matches the consumer-side interface in services.
type ResetNotifier interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// SendPasswordReset publishes the reset payload to the reset channel.
func (n *MQNotifier) SendPasswordReset(ctx context.Context, email, token string) error {
	payload, err := json.Marshal(ResetPayload{
		Email:       email,
		Token:       token,
		RequestedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	_, err = n.broker.Publish(ctx, ResetChannel, payload, map[string]string{"kind": "password-reset"})
	return err
}

// LogNotifier records the dispatch instead of delivering it. Useful in
// development when no broker is running.
type LogNotifier struct{}

func (LogNotifier) SendPasswordReset(_ context.Context, email, token string) error {
	log.Printf("[INFO] password reset issued for %s: token %s", email, token)
	return nil
}
