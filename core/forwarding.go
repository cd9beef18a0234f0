package core

import (
	"fmt"
	"net/netip"
	"slices"

	"github.com/encodeous/linkstate/state"
)

// Resolution is the answer to "how does src reach addr"
type Resolution struct {
	Owner     state.NodeId
	Prefix    netip.Prefix
	Route     state.Route
	Path      []state.NodeId
	Reachable bool
}

// AssignPrefix makes owner the origin of a stub network. More specific prefixes win on lookup.
func (t *Topology) AssignPrefix(owner state.NodeId, pfx netip.Prefix) error {
	if _, err := t.Node(owner); err != nil {
		return err
	}
	if !pfx.IsValid() {
		return fmt.Errorf("invalid prefix %s", pfx)
	}
	pfx = pfx.Masked()
	if cur, ok := t.prefixes.Get(pfx); ok && cur != owner {
		return fmt.Errorf("prefix %s is already owned by %s", pfx, cur)
	}
	t.prefixes.Insert(pfx, owner)
	if !slices.Contains(t.owned[owner], pfx) {
		t.owned[owner] = append(t.owned[owner], pfx)
	}
	return nil
}

// Prefixes returns the stub networks owned by a router
func (t *Topology) Prefixes(owner state.NodeId) []netip.Prefix {
	return slices.Clone(t.owned[owner])
}

// Owner finds the router owning the most specific prefix containing addr
func (t *Topology) Owner(addr netip.Addr) (state.NodeId, bool) {
	return t.prefixes.Lookup(addr)
}

// Resolve finds the owner of addr and the route src currently uses to reach it
func (t *Topology) Resolve(src state.NodeId, addr netip.Addr) (Resolution, error) {
	n, err := t.Node(src)
	if err != nil {
		return Resolution{}, err
	}
	owner, ok := t.Owner(addr)
	if !ok {
		return Resolution{}, fmt.Errorf("%w: %s", state.ErrNoOwner, addr)
	}
	res := Resolution{Owner: owner}
	for _, p := range t.owned[owner] {
		if p.Contains(addr) && (!res.Prefix.IsValid() || p.Bits() > res.Prefix.Bits()) {
			res.Prefix = p
		}
	}
	if owner == src {
		res.Route = state.Route{Dest: src, NextHop: src, Cost: 0}
		res.Path = []state.NodeId{src}
		res.Reachable = true
		return res, nil
	}
	route, ok := n.Route(owner)
	if !ok {
		return res, nil
	}
	res.Route = route
	res.Path, res.Reachable = n.PathTo(owner)
	return res, nil
}
