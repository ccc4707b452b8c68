package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"molt/internal/version"
)

// CreateVersionCmd creates the version command.
func CreateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Run: func(cmd *cobra.Command, args []string) {
			info := version.Get()
			fmt.Fprintf(cmd.OutOrStdout(), "molt %s (commit %s, built %s, %s, %s)\n",
				info.Version, info.GitCommit, info.BuildDate, info.GoVersion, info.Platform)
		},
	}
}
