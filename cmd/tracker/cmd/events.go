package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"tracker/internal/amqp"
	"tracker/internal/cli"
	"tracker/internal/log"
)

func newEventsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "events",
		Short: "Print ledger change events as they arrive",
		Long: `Consume the ledger change events other tracker runs publish to AMQP and
print one line per event until interrupted. Requires AMQP_URL.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipLedger: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.cfg.AMQPEnabled() {
				return errors.New("AMQP_URL is not set")
			}
			client, err := amqp.NewClient(a.cfg.AMQPURL, a.cfg.AMQPExchange, a.cfg.AMQPQueue)
			if err != nil {
				return err
			}
			defer client.Close()

			parent := cmd.Context()
			if parent == nil {
				parent = context.Background()
			}
			ctx, cancel := cli.GracefulShutdown(parent, a.logger.WithComponent(log.ComponentAMQP), nil)
			defer cancel()

			out := cmd.OutOrStdout()
			err = client.ConsumeLedgerEvents(ctx, func(ev *amqp.LedgerEvent) error {
				_, err := fmt.Fprintln(out, formatEvent(ev))
				return err
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}

func formatEvent(ev *amqp.LedgerEvent) string {
	ts := ev.Timestamp.Local().Format(time.DateTime)
	switch ev.Op {
	case amqp.OpAppend, amqp.OpDelete:
		return fmt.Sprintf("%s  %-7s  record #%d", ts, ev.Op, ev.RecordID)
	default:
		return fmt.Sprintf("%s  %-7s  %d records", ts, ev.Op, ev.Count)
	}
}
