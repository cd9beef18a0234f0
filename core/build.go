package core

import (
	"fmt"

	"github.com/encodeous/linkstate/state"
)

// Build constructs a topology from the config and runs the initial flood
func Build(cfg *state.TopologyCfg, opts ...Option) (*Topology, error) {
	err := state.TopologyConfigValidator(cfg)
	if err != nil {
		return nil, err
	}
	t := NewTopology(opts...)
	for _, id := range cfg.Nodes {
		if err = t.AddNode(id); err != nil {
			return nil, err
		}
	}
	links, err := cfg.GetLinks()
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		if err = t.AddLink(l.V1, l.V2, l.Cost); err != nil {
			return nil, err
		}
	}
	for _, p := range cfg.GetPrefixes() {
		if err = t.AssignPrefix(p.V1, p.V2); err != nil {
			return nil, err
		}
	}
	t.Flood()
	return t, nil
}

// ApplyUpdates replays the scripted link cost changes of the config, re-converging after each one
func ApplyUpdates(t *Topology, cfg *state.TopologyCfg) ([]FloodResult, error) {
	results := make([]FloodResult, 0, len(cfg.Updates))
	for i, u := range cfg.Updates {
		res, err := t.UpdateLinkCost(u.A, u.B, u.Cost)
		if err != nil {
			return results, fmt.Errorf("update %d: %w", i, err)
		}
		results = append(results, res)
	}
	return results, nil
}
