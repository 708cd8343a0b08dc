package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/wtc/pkg/config"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit, and build time of wtc.`,
		Run: func(cmd *cobra.Command, args []string) {
			if output, _ := cmd.Flags().GetString(config.FlagOutput); output == config.OutputJSON {
				info := config.GetBuildInfo()
				data, _ := json.MarshalIndent(info, "", "  ")
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), config.VersionString())
			}
		},
	}
}
