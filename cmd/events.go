/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/portfolio-site/portfolio/config"
	"github.com/portfolio-site/portfolio/internal/logging"
	"github.com/portfolio-site/portfolio/internal/mq"
	"github.com/portfolio-site/portfolio/internal/services"
	"github.com/spf13/cobra"
)

// eventsCmd represents the events command.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect site events on the message broker",
}

var eventsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Log site events as they are published",
	Long: `Subscribes to the configured events channel and logs every event
until interrupted. Requires MQ_BACKEND. Usage:

	portfolio events watch
`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		broker, err := mq.New(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		if broker == nil {
			return errors.New("no message broker configured; set MQ_BACKEND")
		}
		defer broker.Close()

		logger.Info(ctx, "watching events", "backend", cfg.MQ.Backend, "channel", cfg.MQ.Channel)
		return watchResult(broker.Subscribe(ctx, cfg.MQ.Channel, logEvent(logger)), cfg.MQ.Channel)
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsWatchCmd)
}

// watchResult turns the outcome of a subscription into the command's error.
func watchResult(err error, channel string) error {
	switch {
	case errors.Is(err, context.Canceled):
		return nil
	case errors.Is(err, mq.ErrChannelNotFound):
		return fmt.Errorf("events channel %q does not exist yet; start the server and publish an event first: %w", channel, err)
	}
	return err
}

// logEvent acknowledges every message. Payloads that do not decode are
// logged and dropped rather than redelivered forever.
func logEvent(logger logging.Logger) mq.Handler {
	return func(ctx context.Context, msg mq.Message) error {
		event, err := services.DecodeEvent(msg.Data)
		if err != nil {
			logger.Warn(ctx, "undecodable event", "id", msg.ID, "error", err)
			return nil
		}
		logger.Info(ctx, "event",
			"id", msg.ID,
			"type", event.Type,
			"user_id", event.UserID,
			"username", event.Username,
			"post_id", event.PostID,
			"occurred_at", event.OccurredAt,
		)
		return nil
	}
}

