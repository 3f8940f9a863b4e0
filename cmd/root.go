package cmd

import (
	"fmt"
	"os"

	"musewave/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "musewave",
	Short: "MuseWave is a publishing and listening platform for independent musicians.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
