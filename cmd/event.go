package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/hostel-management/internal/core/events"
	"github.com/spf13/cobra"
)

// subscribeAuditLog writes every published event to the log.
func subscribeAuditLog(bus *events.EventBus, logger *slog.Logger) {
	for _, eventType := range events.Catalog {
		bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			logger.InfoContext(ctx, "audit",
				"event_id", event.EventID(),
				"event_type", event.EventType(),
				"occurred_at", event.OccurredAt(),
				"payload", event.Payload())
			return nil
		})
	}
}

var eventCmd = &cobra.Command{
	Use:   "event",
	Short: "Event bus commands",
}

var listEventsCmd = &cobra.Command{
	Use:   "list",
	Short: "List the event types the server subscribes to",
	Run: func(cmd *cobra.Command, args []string) {
		log := slog.New(slog.DiscardHandler)
		bus := events.NewEventBus(log)
		subscribeAuditLog(bus, log)
		for _, eventType := range bus.EventTypes() {
			fmt.Fprintln(cmd.OutOrStdout(), eventType)
		}
	},
}

func init() {
	eventCmd.AddCommand(listEventsCmd)
	rootCmd.AddCommand(eventCmd)
}
