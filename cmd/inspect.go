package cmd

import (
	"fmt"
	"net/netip"

	"github.com/encodeous/linkstate/state"
	"github.com/spf13/cobra"
)

var tableCmd = &cobra.Command{
	Use:   "table <node>",
	Short: "Prints the routing table of a node after convergence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topo, _, closer, err := buildTopology(cmd)
		if err != nil {
			return err
		}
		defer closer()
		tbl, err := topo.FormatTable(state.NodeId(args[0]))
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), tbl)
		return nil
	},
	GroupID: "sim",
}

var pathCmd = &cobra.Command{
	Use:   "path <from> <to>",
	Short: "Prints the shortest path between two nodes, as computed by the source",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		topo, _, closer, err := buildTopology(cmd)
		if err != nil {
			return err
		}
		defer closer()
		src, dst := state.NodeId(args[0]), state.NodeId(args[1])
		path, ok, err := topo.PathBetween(src, dst)
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[PATH] No path found from %s to %s.\n", src, dst)
			return nil
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[PATH] %s\n", formatPath(path))
		return nil
	},
	GroupID: "sim",
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <from> <address>",
	Short: "Finds the node owning an address and the route towards it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, err := netip.ParseAddr(args[1])
		if err != nil {
			return err
		}
		topo, _, closer, err := buildTopology(cmd)
		if err != nil {
			return err
		}
		defer closer()
		res, err := topo.Resolve(state.NodeId(args[0]), addr)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), formatResolution(addr, res))
		return nil
	},
	GroupID: "sim",
}

var inspectCmd = &cobra.Command{
	Use:     "inspect",
	Aliases: []string{"i"},
	Short:   "Inspects the converged state of every node",
	RunE: func(cmd *cobra.Command, args []string) error {
		topo, _, closer, err := buildTopology(cmd)
		if err != nil {
			return err
		}
		defer closer()
		_, _ = fmt.Fprint(cmd.OutOrStdout(), topo.Inspect())
		return nil
	},
	GroupID: "sim",
}

func init() {
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(pathCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(inspectCmd)
}
