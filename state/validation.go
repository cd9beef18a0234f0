package state

import (
	"fmt"
	"net/netip"
	"os"
	"path"
	"path/filepath"
	"regexp"
)

var namePattern, _ = regexp.Compile("^[0-9A-Za-z._-]+$")

func PathValidator(s string) error {
	_, err := os.Stat(path.Dir(s))
	if err != nil {
		return err
	}
	_, err = filepath.Abs(s)
	return err
}

func NameValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%w: %s must match pattern %s", ErrInvalidNode, s, namePattern.String())
	}
	if len(s) > MaxNameLength {
		return fmt.Errorf("%w: len(\"%s\") = %d > %d is too long", ErrInvalidNode, s, len(s), MaxNameLength)
	}
	return nil
}

func CostValidator(c Cost) error {
	if c == INF {
		return fmt.Errorf("%w: %d is reserved for unreachable destinations", ErrInvalidCost, c)
	}
	return nil
}

func linkValidator(cfg *TopologyCfg, l LinkCfg) error {
	if !cfg.IsNode(l.A) {
		return fmt.Errorf("%w: node %s not defined", ErrUnknownNode, l.A)
	}
	if !cfg.IsNode(l.B) {
		return fmt.Errorf("%w: node %s not defined", ErrUnknownNode, l.B)
	}
	if l.A == l.B {
		return fmt.Errorf("%w: %s, %s", ErrSelfLink, l.A, l.B)
	}
	return CostValidator(l.Cost)
}

func TopologyConfigValidator(cfg *TopologyCfg) error {
	seen := make(map[NodeId]struct{})
	for _, node := range cfg.Nodes {
		err := NameValidator(string(node))
		if err != nil {
			return err
		}
		if _, ok := seen[node]; ok {
			return fmt.Errorf("duplicate node found: %s", node)
		}
		seen[node] = struct{}{}
	}
	if err := CostValidator(cfg.GetDefaultCost()); err != nil {
		return err
	}
	for _, l := range cfg.Links {
		if err := linkValidator(cfg, l); err != nil {
			return err
		}
	}
	if _, err := cfg.GetLinks(); err != nil {
		return err
	}
	for _, l := range cfg.Updates {
		if err := linkValidator(cfg, l); err != nil {
			return fmt.Errorf("invalid update: %w", err)
		}
	}
	owners := make(map[netip.Prefix]NodeId)
	for _, p := range cfg.GetPrefixes() {
		if !cfg.IsNode(p.V1) {
			return fmt.Errorf("%w: prefix owner %s not defined", ErrUnknownNode, p.V1)
		}
		if !p.V2.IsValid() {
			return fmt.Errorf("invalid prefix owned by %s", p.V1)
		}
		pfx := p.V2.Masked()
		if owner, ok := owners[pfx]; ok {
			return fmt.Errorf("prefix %s is owned by both %s and %s", pfx, owner, p.V1)
		}
		owners[pfx] = p.V1
	}
	return nil
}
