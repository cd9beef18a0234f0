package cmd

import (
	"fmt"
	"os"

	"github.com/encodeous/linkstate/state"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [output]",
	Short: "Creates a topology config, interactively unless --skip is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "topology.yaml"
		if len(args) == 1 {
			path = args[0]
		}
		if skip, _ := cmd.Flags().GetBool("skip"); skip {
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := state.PathValidator(path); err != nil {
				return err
			}
			return state.SaveConfig(path, state.DemoCfg())
		}

		fmt.Println("linkstate Initialization Wizard")
		cfg, err := promptTopology()
		if err != nil {
			return err
		}
		path, err = safeSavePath(path, "Topology Config")
		if err != nil {
			return err
		}
		return state.SaveConfig(path, cfg)
	},
	GroupID: "cfg",
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Validates the config and prints every link it evaluates to",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err = state.TopologyConfigValidator(cfg); err != nil {
			return err
		}
		links, err := cfg.GetLinks()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, l := range links {
			_, _ = fmt.Fprintf(out, "%s <-> %s cost %d\n", l.V1, l.V2, l.Cost)
		}
		for _, p := range cfg.GetPrefixes() {
			_, _ = fmt.Fprintf(out, "%s owned by %s\n", p.V2, p.V1)
		}
		return nil
	},
	GroupID: "cfg",
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(graphCmd)
	initCmd.Flags().BoolP("skip", "s", false, "write the demo network without prompting")
}
