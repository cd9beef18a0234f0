package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath = ""
	logPath    = ""
	verbose    = false
	batchedSpf = false
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "linkstate",
	Short: "Link-state routing simulator",
	Long: `linkstate simulates the control plane of a link-state routing protocol.
Every router floods versioned advertisements of its links until the network converges, then computes its routes with Dijkstra.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "cfg",
		Title: "Topology Configuration",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "sim",
		Title: "Simulation Commands",
	})
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", configPath, "topology config, the built-in demo network is used if empty")
	rootCmd.PersistentFlags().StringVarP(&logPath, "log-path", "l", logPath, "also write logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&batchedSpf, "batched", "b", batchedSpf, "recompute routes once per flood instead of once per accepted advertisement")
}
