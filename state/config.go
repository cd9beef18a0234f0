package state

import (
	"fmt"
	"maps"
	"net/netip"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
)

// LinkCfg is an explicit (a, b, cost) triple
type LinkCfg struct {
	A    NodeId `yaml:"a"`
	B    NodeId `yaml:"b"`
	Cost Cost   `yaml:"cost"`
}

// TopologyCfg describes the routers of a simulated network and the links between them
type TopologyCfg struct {
	Name        string                    `yaml:"name,omitempty"`         // used as the log prefix
	Nodes       []NodeId                  `yaml:"nodes"`                  // every router in the network
	DefaultCost *Cost                     `yaml:"default_cost,omitempty"` // cost of graph pairings without an explicit cost
	Graph       []string                  `yaml:"graph,omitempty"`        // graph syntax, see ParseGraph
	Links       []LinkCfg                 `yaml:"links,omitempty"`        // explicit links
	Prefixes    map[NodeId][]netip.Prefix `yaml:"prefixes,omitempty"`     // stub networks owned by a router
	Updates     []LinkCfg                 `yaml:"updates,omitempty"`      // link cost changes applied after the initial convergence
}

func (c *TopologyCfg) GetDefaultCost() Cost {
	if c.DefaultCost == nil {
		return DefaultCost
	}
	return *c.DefaultCost
}

func (c *TopologyCfg) GetName() string {
	if c.Name == "" {
		return DefaultTopologyName
	}
	return c.Name
}

func (c *TopologyCfg) IsNode(node NodeId) bool {
	return slices.Contains(c.Nodes, node)
}

// GetLinks evaluates the graph and merges it with the explicit links. A link may only be declared once.
func (c *TopologyCfg) GetLinks() ([]Link, error) {
	nodes := make([]string, 0, len(c.Nodes))
	for _, n := range c.Nodes {
		nodes = append(nodes, string(n))
	}
	links, err := ParseGraph(c.Graph, nodes, c.GetDefaultCost())
	if err != nil {
		return nil, err
	}
	seen := make(map[Pair[NodeId, NodeId]]struct{})
	for _, l := range links {
		seen[l.Pair] = struct{}{}
	}
	for _, l := range c.Links {
		p := MakeSortedPair(l.A, l.B)
		if _, ok := seen[p]; ok {
			return nil, fmt.Errorf("duplicate link found: %s, %s", p.V1, p.V2)
		}
		seen[p] = struct{}{}
		links = append(links, Link{Pair: p, Cost: l.Cost})
	}
	slices.SortFunc(links, func(a, b Link) int {
		return ComparePairs(a.Pair, b.Pair)
	})
	return links, nil
}

// GetPrefixes returns all prefixes with their owner, ordered by owner then prefix
func (c *TopologyCfg) GetPrefixes() []Pair[NodeId, netip.Prefix] {
	out := make([]Pair[NodeId, netip.Prefix], 0)
	for _, owner := range slices.Sorted(maps.Keys(c.Prefixes)) {
		for _, p := range c.Prefixes[owner] {
			out = append(out, Pair[NodeId, netip.Prefix]{owner, p})
		}
	}
	return out
}

func LoadConfig(path string) (*TopologyCfg, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg TopologyCfg
	err = yaml.Unmarshal(file, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

func SaveConfig(path string, cfg *TopologyCfg) error {
	bytes, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, bytes, 0600)
}

// DemoCfg is the five router network used as the default scenario
func DemoCfg() *TopologyCfg {
	return &TopologyCfg{
		Name:  "demo",
		Nodes: []NodeId{"A", "B", "C", "D", "E"},
		Links: []LinkCfg{
			{"A", "B", 5}, {"A", "C", 1},
			{"B", "D", 2}, {"B", "E", 3},
			{"C", "E", 1}, {"D", "E", 4},
		},
	}
}

func parseSymbolList(s string, validSymbols []string) ([]string, error) {
	spl := strings.Split(strings.TrimSpace(s), ",")
	line := make([]string, 0)
	for _, s := range spl {
		x := strings.TrimSpace(s)
		if x == "" {
			continue
		}
		if !slices.Contains(validSymbols, x) {
			return nil, fmt.Errorf(`%s is not a valid node/group`, x)
		}
		line = append(line, x)
	}
	if len(line) == 0 {
		return nil, fmt.Errorf(`node/group list must not be empty`)
	}
	slices.Sort(line)
	return line, nil
}

// splitCost separates the optional ": cost" suffix of a pairing line
func splitCost(line string, defaultCost Cost) (string, Cost, error) {
	idx := strings.LastIndex(line, ":")
	if idx == -1 {
		return line, defaultCost, nil
	}
	raw := strings.TrimSpace(line[idx+1:])
	val, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return "", 0, fmt.Errorf("invalid cost %q in line: %s", raw, line)
	}
	cost := Cost(val)
	if cost == INF {
		return "", 0, fmt.Errorf("%w: %d is reserved", ErrInvalidCost, cost)
	}
	return line[:idx], cost, nil
}

/*
ParseGraph Graph syntax is something like this:

Group1 = node1, node2, node3

Group2 = node4, node5

Group1, Group2, OtherNode : 3 // Group1, Group2, OtherNode will all be interconnected with cost 3, but not within Group1 or Group2

Group1, Group1 // every node is connected to every other node, with the default cost

node8, node9 : 10 // node8 and node9 will be connected with cost 10

graph represents the above graph
nodes represents a set of unique terminal nodes that the graph will evaluate down to
*/
func ParseGraph(graph []string, nodes []string, defaultCost Cost) ([]Link, error) {
	type pairing struct {
		Pair[string, string]
		cost Cost
	}
	parsedPairings := make([]pairing, 0)

	groups := make(map[string][]string)

	symbols := slices.Clone(nodes)

	// pass 0, collect all symbols

	for _, line := range graph {
		line = strings.TrimSpace(line)
		if strings.Contains(line, "=") {
			// group definition
			spl := strings.Split(line, "=")
			if len(spl) != 2 {
				return nil, fmt.Errorf("invalid graph: %s. group definition must contain one '='", line)
			}
			grp := strings.TrimSpace(spl[0])
			if slices.Contains(nodes, grp) {
				return nil, fmt.Errorf("group name must not be a node name: %s", grp)
			}
			symbols = append(symbols, grp)
		}
	}
	slices.Sort(symbols)
	symbols = slices.Compact(symbols)

	// used for topological sorting
	// map: group -> []<groups that the node depends on>
	topo := make(map[string][]string)
	expansion := make(map[string][]string)

	// pass 1, parse graph
	for _, line := range graph {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, "=") {
			spl := strings.Split(line, "=")
			grp := strings.TrimSpace(spl[0])
			if _, ok := groups[grp]; ok {
				return nil, fmt.Errorf("duplicate group name: %s", grp)
			}
			if strings.Contains(spl[1], ":") {
				return nil, fmt.Errorf("group definition must not carry a cost: %s", line)
			}
			lst, err := parseSymbolList(spl[1], symbols)
			if err != nil {
				return nil, err
			}
			// track dependencies
			deps := make([]string, 0)
			for _, l := range lst {
				if !slices.Contains(nodes, l) {
					// depends on a group
					deps = append(deps, l)
				} else {
					expansion[grp] = append(expansion[grp], l)
				}
			}
			slices.Sort(deps)
			deps = slices.Compact(deps)

			topo[grp] = deps
			groups[grp] = lst
		} else {
			body, cost, err := splitCost(line, defaultCost)
			if err != nil {
				return nil, err
			}
			names, err := parseSymbolList(body, symbols)
			if err != nil {
				return nil, err
			}
			if len(names) < 2 {
				return nil, fmt.Errorf("invalid pairing, %v", names)
			}
			for i, name := range names {
				for _, prev := range names[:i] {
					parsedPairings = append(parsedPairings, pairing{MakeSortedPair(prev, name), cost})
				}
			}
		}
	}

	// pass 2, expand group names
	// just topological sorting
	for len(topo) > 0 {
		// find free group
		var group string
		for k, v := range topo {
			if len(v) == 0 {
				group = k
				break
			}
		}
		if group == "" {
			cycleNodes := make([]string, 0)
			for node := range topo {
				cycleNodes = append(cycleNodes, node)
			}
			slices.Sort(cycleNodes)
			return nil, fmt.Errorf("cycle detected in graph: %v", cycleNodes)
		}
		delete(topo, group)

		// remove and expand the group for every dependent
		for k, deps := range topo {
			if slices.Contains(deps, group) {
				expansion[k] = append(expansion[k], expansion[group]...)
				slices.Sort(expansion[k])
				expansion[k] = slices.Compact(expansion[k])

				deps = slices.DeleteFunc(deps, func(dep string) bool {
					return dep == group
				})
				topo[k] = deps
			}
		}
	}

	expand := func(sym string) []NodeId {
		if slices.Contains(nodes, sym) {
			return []NodeId{NodeId(sym)}
		}
		x := make([]NodeId, 0, len(expansion[sym]))
		for _, exp := range expansion[sym] {
			x = append(x, NodeId(exp))
		}
		return x
	}

	// pass 3, rewrite pairings
	costs := make(map[Pair[NodeId, NodeId]]Cost)
	for _, pair := range parsedPairings {
		for _, x1 := range expand(pair.V1) {
			for _, y1 := range expand(pair.V2) {
				if x1 == y1 {
					continue
				}
				key := MakeSortedPair(x1, y1)
				if old, ok := costs[key]; ok && old != pair.cost {
					return nil, fmt.Errorf("conflicting costs for link %s, %s: %d and %d", key.V1, key.V2, old, pair.cost)
				}
				costs[key] = pair.cost
			}
		}
	}

	links := make([]Link, 0, len(costs))
	for _, key := range slices.SortedFunc(maps.Keys(costs), ComparePairs[NodeId]) {
		links = append(links, Link{Pair: key, Cost: costs[key]})
	}
	return links, nil
}
