package cmd

import (
	"fmt"

	"github.com/encodeous/linkstate/core"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Converge the network, replay the scripted updates and print every routing table",
	RunE: func(cmd *cobra.Command, args []string) error {
		topo, cfg, closer, err := buildTopology(cmd)
		if err != nil {
			return err
		}
		defer closer()

		topo.Log.Info("network initialized", "nodes", len(topo.Nodes()), "version", topo.Version())

		_, err = core.ApplyUpdates(topo, cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, id := range topo.Nodes() {
			tbl, err := topo.FormatTable(id)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "\n%s\n", tbl)
		}
		return nil
	},
	GroupID: "sim",
}

func init() {
	rootCmd.AddCommand(runCmd)
}
