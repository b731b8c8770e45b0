/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Swevix/WebRGZ/config"
	"github.com/Swevix/WebRGZ/internal/mq"
	"github.com/Swevix/WebRGZ/internal/notify"
)

// mailerCmd represents the mailer command
var mailerCmd = &cobra.Command{
	Use:   "mailer",
	Short: "Consumes password-reset messages from the broker",
	Long: `Consumes password-reset messages from the configured broker and
hands them to the mail pipeline. Usage:

	webrgz mailer
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var backend mq.Backend
		var err error
		switch cfg.MQ.Driver {
		case "rabbitmq":
			backend, err = mq.NewRabbitMQClient(cfg.RabbitMQ)
		case "pubsub":
			backend, err = mq.NewPubSubClient(ctx, cfg.PubSub)
		default:
			err = fmt.Errorf("mailer needs a broker, got mq driver %q", cfg.MQ.Driver)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start mailer: %v\n", err)
			os.Exit(1)
		}

		broker := mq.New(backend)
		defer func() {
			_ = broker.Close()
		}()

		// Blocks until the context is cancelled by a signal.
		err = broker.Subscribe(ctx, notify.ResetChannel, func(ctx context.Context, msg mq.Message) error {
			var payload notify.ResetPayload
			if err := json.Unmarshal(msg.Data, &payload); err != nil {
				log.Printf("[WARN] dropping malformed reset message %s: %v", msg.ID, err)
				return nil
			}
			// Delivery is a stub for now: a real SMTP hookup goes here.
			log.Printf("[INFO] sending password reset mail to %s (requested %s)",
				payload.Email, payload.RequestedAt.Format("15:04:05"))
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "mailer error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mailerCmd)
}
