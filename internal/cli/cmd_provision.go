package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"retention/dialersync/internal/app/domains/apimodel/request"
	"retention/dialersync/internal/app/domains/entity/etagent"
	"retention/dialersync/internal/app/domains/modules/mdprovision"
)

func newProvisionCmd(opts *globalOpts) *cobra.Command {
	var agentsFile string

	cmd := &cobra.Command{
		Use:   "provision",
		Short: "Ensure campaign, list and user for every agent",
		Long: `Ensure campaign, list and user for every agent.
Agents come from --agents (JSON array of profiles) or, without it, from all
active agent profiles in the row store. One status line is printed per agent.
Partial failures are reported and do not change the exit code; re-run to retry.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var profiles []*etagent.Profile
			if agentsFile != "" {
				f, err := os.Open(agentsFile)
				if err != nil {
					return err
				}
				profiles, err = request.DecodeProfiles(f)
				f.Close()
				if err != nil {
					return err
				}
			}

			app, cleanup, err := opts.loadApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			batch, err := app.ProvisionService.RunBatch(ctx, profiles)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, report := range batch.Agents {
				fmt.Fprintln(out, report.StatusLine())
			}
			fmt.Fprintf(out, "total=%d failed=%d\n", batch.Total, batch.Failed)
			if err := batch.Err(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&agentsFile, "agents", "", "JSON file with an array of agent profiles")
	return cmd
}

func newEnsureUserCmd(opts *globalOpts) *cobra.Command {
	var (
		profileID string
		profile   request.AgentProfileRequest
	)

	cmd := &cobra.Command{
		Use:   "ensure-user",
		Short: "Ensure a single agent's campaign, list and user",
		Long: `Ensure a single agent's campaign, list and user.
With only --profile-id the profile is read from the row store; otherwise the
profile is built from the flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if profileID == "" {
				return fmt.Errorf("--profile-id is required")
			}

			ctx := cmd.Context()
			app, cleanup, err := opts.loadApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			fromFlags := profile.Username != "" || profile.DisplayName != "" || profile.Email != ""
			var report *mdprovision.AgentReport
			if fromFlags {
				profile.ID = profileID
				report, err = app.ProvisionService.EnsureAgent(ctx, profile.ToProfile())
			} else {
				report, err = app.ProvisionService.EnsureAgentByID(ctx, profileID)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), report.StatusLine())
			if !report.OK() {
				return fmt.Errorf("agent %s was not fully provisioned", profileID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&profileID, "profile-id", "", "agent profile id")
	cmd.Flags().StringVar(&profile.Username, "username", "", "desired dialer username")
	cmd.Flags().StringVar(&profile.DisplayName, "display-name", "", "agent display name")
	cmd.Flags().StringVar(&profile.Email, "email", "", "agent email")
	cmd.Flags().StringVar(&profile.Password, "password", "", "dialer password (defaults to provisioning.default_password)")
	cmd.Flags().StringVar(&profile.CampaignID, "campaign-id", "", "campaign id (defaults to dialer.campaign_id)")
	cmd.Flags().StringVar(&profile.ListID, "list-id", "", "list id (defaults to dialer.list_id)")
	return cmd
}
