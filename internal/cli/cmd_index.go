package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newIndexCmd(opts *globalOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Inspect the local lead reverse-index",
	}
	cmd.AddCommand(newIndexLSCmd(opts))
	return cmd
}

func newIndexLSCmd(opts *globalOpts) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List lead index entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, cleanup, err := opts.loadApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			entries, err := app.LeadService.ListIndex(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "LEAD_ID\tASSIGNMENT\tDEAL\tPHONE\tLIST\tAGENT\tUPDATED")
			for _, e := range entries {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					e.LeadID, e.AssignmentID, e.DealID, e.PhoneNumber, e.ListID, e.AgentProfileID,
					e.UpdatedAt.Format(time.RFC3339))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	return cmd
}
