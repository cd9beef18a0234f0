package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/encodeous/linkstate/state"
	"github.com/manifoldco/promptui"
)

func promptDefaultStr(label string, def string, validateFunc promptui.ValidateFunc) (string, error) {
	prompt := promptui.Prompt{
		Label:     label,
		Default:   def,
		AllowEdit: true,
		Validate:  validateFunc,
	}
	return prompt.Run()
}

func promptYN(prefix string, def bool) bool {
	choose := promptui.Select{
		Label:     prefix,
		Items:     []string{"Yes", "No"},
		Size:      2,
		CursorPos: 0,
	}
	if !def {
		choose.CursorPos = 1
	}
	run, _, err := choose.Run()
	if err != nil {
		return false
	}
	return run == 0
}

// parseNodeList splits a comma separated list of node names
func parseNodeList(s string) ([]state.NodeId, error) {
	nodes := make([]state.NodeId, 0)
	seen := make(map[string]struct{})
	for _, x := range strings.Split(s, ",") {
		x = strings.TrimSpace(x)
		if x == "" {
			continue
		}
		if err := state.NameValidator(x); err != nil {
			return nil, err
		}
		if _, ok := seen[x]; ok {
			return nil, fmt.Errorf("duplicate node found: %s", x)
		}
		seen[x] = struct{}{}
		nodes = append(nodes, state.NodeId(x))
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("at least one node is required")
	}
	return nodes, nil
}

func costValidator(s string) error {
	val, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return fmt.Errorf("%w: %q is not a non-negative integer", state.ErrInvalidCost, s)
	}
	return state.CostValidator(state.Cost(val))
}

// graphLineValidator accepts an empty line, or a line that keeps the graph parseable together with the previous lines
func graphLineValidator(cfg *state.TopologyCfg) promptui.ValidateFunc {
	return func(line string) error {
		if strings.TrimSpace(line) == "" {
			return nil
		}
		next := *cfg
		next.Graph = append(append([]string(nil), cfg.Graph...), line)
		_, err := next.GetLinks()
		return err
	}
}

func safeSavePath(path string, name string) (string, error) {
	for {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		fmt.Printf("Where do you want to save the %s?\n", name)
		path, err = promptDefaultStr("path", abs, state.PathValidator)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(path); err != nil {
			return path, nil
		}
		fmt.Printf("Warning: %s file already exists: %s, do you want to overwrite it?\n", name, path)
		if promptYN("Overwrite?", false) {
			return path, nil
		}
	}
}

// promptTopology walks through the topology config interactively, starting from the demo network's values
func promptTopology() (*state.TopologyCfg, error) {
	def := state.DemoCfg()
	cfg := &state.TopologyCfg{}

	fmt.Println("Topology Configuration")
	fmt.Println("Give this topology a name:")
	name, err := promptDefaultStr("name", def.Name, state.NameValidator)
	if err != nil {
		return nil, err
	}
	cfg.Name = name

	fmt.Println("Which routers are part of the network? (comma separated)")
	names := make([]string, 0, len(def.Nodes))
	for _, n := range def.Nodes {
		names = append(names, string(n))
	}
	raw, err := promptDefaultStr("nodes", strings.Join(names, ", "), func(s string) error {
		_, err := parseNodeList(s)
		return err
	})
	if err != nil {
		return nil, err
	}
	if cfg.Nodes, err = parseNodeList(raw); err != nil {
		return nil, err
	}

	fmt.Println("What is the cost of links declared without one?")
	raw, err = promptDefaultStr("default cost", strconv.Itoa(int(state.DefaultCost)), costValidator)
	if err != nil {
		return nil, err
	}
	val, _ := strconv.ParseUint(strings.TrimSpace(raw), 10, 32)
	cost := state.Cost(val)
	cfg.DefaultCost = &cost

	fmt.Println("Describe the links, one graph line at a time, e.g. \"A, B : 5\" or \"core = A, B\". Leave empty to finish.")
	for {
		line, err := promptDefaultStr("graph", "", graphLineValidator(cfg))
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(line) == "" {
			break
		}
		cfg.Graph = append(cfg.Graph, strings.TrimSpace(line))
	}
	return cfg, state.TopologyConfigValidator(cfg)
}
