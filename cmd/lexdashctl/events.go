package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"lexdash/internal/amqp"
	"lexdash/internal/locale"
)

func newEventsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect record events",
	}

	watch := &cobra.Command{
		Use:   "watch",
		Short: "Print record events from the AMQP queue until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.AMQPURL == "" {
				return errors.New("record events are disabled: set AMQP_URL")
			}
			client, err := amqp.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue, a.logger)
			if err != nil {
				return fmt.Errorf("connect to AMQP: %w", err)
			}
			defer client.Close()

			out := cmd.OutOrStdout()
			err = client.Consume(cmd.Context(), func(msg *amqp.RecordMessage) error {
				_, err := fmt.Fprintln(out, formatRecordMessage(msg))
				return err
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.AddCommand(watch)
	return cmd
}

func formatRecordMessage(msg *amqp.RecordMessage) string {
	return fmt.Sprintf("%s %-18s %s user=%s",
		locale.Date(msg.Timestamp)+" "+msg.Timestamp.Format("15:04:05"),
		msg.RoutingKey(), msg.ID, msg.UserID)
}
