package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"retention/dialersync/internal/app/pkg/errorx"
)

func newWatchCmd(opts *globalOpts) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "watch <assignment-id>",
		Short: "Wait for the next lead sync notification of an assignment",
		Long: `Wait for the next lead sync notification of an assignment.
Subscribes to the redis channel <redis.channel>:<assignment-id> and prints the
first message, typically after queuing an add or unassign with async=1.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, cleanup, err := opts.loadApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if app.Redis == nil {
				return errorx.ConfigMissing("redis.addr")
			}

			channel := fmt.Sprintf("%s:%s", app.Config.Redis.Channel, args[0])
			fmt.Fprintf(cmd.ErrOrStderr(), "waiting on %s (timeout %v)\n", channel, timeout)

			msg, err := app.Redis.Subscribe(ctx, channel, timeout)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 60*time.Second, "how long to wait")
	return cmd
}
