package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"net/netip"
	"strings"

	"github.com/encodeous/linkstate/core"
	"github.com/encodeous/linkstate/state"
	"github.com/spf13/cobra"
)

func loadConfig() (*state.TopologyCfg, error) {
	if configPath == "" {
		return state.DemoCfg(), nil
	}
	return state.LoadConfig(configPath)
}

// buildTopology loads the config, builds the topology and runs the initial flood.
// Sink lines are written to the command's output.
func buildTopology(cmd *cobra.Command) (*core.Topology, *state.TopologyCfg, func() error, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger, closer, err := core.NewLogger(cfg.GetName(), level, logPath, cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, nil, err
	}
	topo, err := core.Build(cfg,
		core.WithLogger(logger),
		core.WithSink(lineSink(cmd.OutOrStdout())),
		core.WithBatchedSpf(batchedSpf),
	)
	if err != nil {
		_ = closer()
		return nil, nil, nil, err
	}
	return topo, cfg, closer, nil
}

func lineSink(w io.Writer) func(string) {
	return func(line string) {
		_, _ = fmt.Fprintln(w, line)
	}
}

func formatPath(path []state.NodeId) string {
	names := make([]string, 0, len(path))
	for _, n := range path {
		names = append(names, string(n))
	}
	return strings.Join(names, " -> ")
}

func formatResolution(addr netip.Addr, res core.Resolution) string {
	if !res.Reachable {
		return fmt.Sprintf("[RESOLVE] %s is owned by %s (%s), which is unreachable", addr, res.Owner, res.Prefix)
	}
	return fmt.Sprintf("[RESOLVE] %s is owned by %s (%s) via %s cost %d: %s",
		addr, res.Owner, res.Prefix, res.Route.NextHop, res.Route.Cost, formatPath(res.Path))
}
