package cmd

import (
	"musewave/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the MuseWave HTTP server",
	Long:  `Start the MuseWave API server, serving the catalog, engagement and search endpoints plus the live activity feed.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
