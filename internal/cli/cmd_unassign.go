package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"retention/dialersync/internal/app/domains/entity/etlead"
)

func newUnassignCmd(opts *globalOpts) *cobra.Command {
	var ids etlead.Identifiers

	cmd := &cobra.Command{
		Use:   "unassign",
		Short: "Remove the dialer lead(s) for an assignment",
		Long: `Remove the dialer lead(s) for an assignment.
The local index is consulted first; without a hit the dialer is searched by
deal id and phone number. Matching nothing is not an error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, cleanup, err := opts.loadApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			res, err := app.LeadService.UnassignLead(ctx, ids)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(res); err != nil {
				return err
			}
			if !res.OK {
				return fmt.Errorf("matched %d lead(s) but every deletion failed", res.Matched)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&ids.AssignmentID, "assignment-id", "", "assignment id")
	cmd.Flags().StringVar(&ids.DealID, "deal-id", "", "deal id (vendor_lead_code)")
	cmd.Flags().StringVar(&ids.PhoneNumber, "phone", "", "phone number")
	cmd.Flags().StringVar(&ids.ListID, "list-id", "", "list id")
	cmd.Flags().StringVar(&ids.AgentProfileID, "agent-profile-id", "", "agent profile id")
	return cmd
}
