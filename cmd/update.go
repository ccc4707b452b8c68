package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"molt/internal/updater"
	"molt/internal/version"
)

// CreateUpdateCmd creates the update command.
func CreateUpdateCmd() *cobra.Command {
	var (
		checkOnly  bool
		prerelease bool
		rollback   bool
	)

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Update molt to the latest release",
		Long: `Checks GitHub releases for a newer version and replaces the running binary
in place. The previous binary is kept as a backup and can be restored with
--rollback.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			svc, err := updater.NewService(&updater.Options{
				Repository: version.Repository,
				Prerelease: prerelease,
			})
			if err != nil {
				return err
			}
			if !svc.IsEnabled() {
				return fmt.Errorf("self-update unavailable: %s", svc.DisabledReason())
			}

			ctx := cmd.Context()

			if rollback {
				status := svc.GetStatus(ctx)
				if !status.BackupAvailable {
					return fmt.Errorf("no backup to roll back to")
				}
				if err := svc.Rollback(ctx); err != nil {
					return err
				}
				fmt.Fprintf(out, "Rolled back to %s, restart molt to run it\n", status.BackupVersion)
				return nil
			}

			info, err := svc.CheckForUpdate(ctx)
			if err != nil {
				return err
			}
			if !info.UpdateAvailable {
				fmt.Fprintf(out, "molt %s is up to date\n", info.CurrentVersion)
				return nil
			}

			fmt.Fprintf(out, "Update available: %s -> %s (published %s)\n",
				info.CurrentVersion, info.LatestVersion, info.PublishedAt.Format("2006-01-02"))
			if info.ReleaseURL != "" {
				fmt.Fprintf(out, "Release notes: %s\n", info.ReleaseURL)
			}
			if checkOnly {
				return nil
			}

			if err := svc.ApplyUpdate(ctx); err != nil {
				return err
			}
			fmt.Fprintf(out, "Updated to %s, restart molt to run it\n", info.LatestVersion)
			return nil
		},
	}

	cmd.Flags().BoolVar(&checkOnly, "check", false, "Only check whether an update is available")
	cmd.Flags().BoolVar(&prerelease, "prerelease", false, "Include prerelease versions")
	cmd.Flags().BoolVar(&rollback, "rollback", false, "Restore the previous binary from backup")

	return cmd
}
