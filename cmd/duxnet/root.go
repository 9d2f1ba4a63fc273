package duxnet

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func init() { //nolint:gochecknoinits // Using init in cobra command is idiomatic
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(versionCmd)
}

var RootCmd = &cobra.Command{
	Use:   "duxnet",
	Short: "Decentralized service marketplace node",
	Long:  `Decentralized service marketplace node`,
}

func Execute(version string) {
	// local overrides for development; missing file is fine
	_ = godotenv.Load()

	RootCmd.Version = version
	RootCmd.SetVersionTemplate(fmt.Sprintf("DuxNet Version: %s\n", version))

	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
