/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/naija-emoji/apiserver/internal/events"
	"github.com/naija-emoji/apiserver/internal/mq"
	"github.com/spf13/cobra"
)

// eventsCmd represents the events command.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect emoji change events",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Log emoji change events as they arrive",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger := setup()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Open(ctx, cfg)
		if err != nil {
			return err
		}
		if queue == nil {
			return errors.New("events are disabled; set EVENTS_BACKEND to rabbitmq or pubsub")
		}
		defer queue.Close()

		logger.Info("tailing events", slog.String("channel", cfg.Events.Channel))
		err = events.Subscribe(ctx, queue, cfg.Events.Channel, func(ctx context.Context, event events.Event) error {
			logger.InfoContext(ctx, "emoji event",
				slog.String("type", string(event.Type)),
				slog.Int("emoji_id", event.EmojiID),
				slog.String("actor", event.Actor),
				slog.Time("occurred_at", event.OccurredAt),
			)
			return nil
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
