package duxnet

import (
	"github.com/spf13/cobra"

	"github.com/duxnet-project/duxnet/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Get the duxnet version.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := version.Get()
		cmd.Printf("Version: %s\n", info.GitVersion)
		cmd.Printf("Commit: %s\n", info.GitCommit)
		cmd.Printf("Built: %s\n", info.BuildDate)
		cmd.Printf("Platform: %s/%s\n", info.GOOS, info.GOARCH)
		return nil
	},
}
