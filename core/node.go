package core

import (
	"log/slog"
	"maps"

	"github.com/encodeous/linkstate/perf"
	"github.com/encodeous/linkstate/state"
	"github.com/jellydator/ttlcache/v3"
)

type pathResult struct {
	path []state.NodeId
	ok   bool
}

// Node is a single router. It owns its link-state database and the routing table derived from it.
// Node is not safe for concurrent use, see Runtime.
type Node struct {
	Id       state.NodeId
	local    state.Advertisement
	lsdb     map[state.NodeId]state.Advertisement
	versions map[state.NodeId]uint64
	table    state.RoutingTable
	// batched nodes defer the recomputation until settle is called
	batched bool
	dirty   bool
	paths   *ttlcache.Cache[state.NodeId, pathResult]
	log     *slog.Logger
}

func NewNode(id state.NodeId, log *slog.Logger) *Node {
	local := make(state.Advertisement)
	n := &Node{
		Id:       id,
		local:    local,
		lsdb:     map[state.NodeId]state.Advertisement{id: local},
		versions: make(map[state.NodeId]uint64),
		table:    make(state.RoutingTable),
		paths: ttlcache.New[state.NodeId, pathResult](
			ttlcache.WithTTL[state.NodeId, pathResult](ttlcache.NoTTL),
			ttlcache.WithDisableTouchOnHit[state.NodeId, pathResult](),
		),
		log: log,
	}
	return n
}

// AddLink inserts or overwrites a local link. The routing table is left untouched until the next accepted advertisement.
func (n *Node) AddLink(neigh state.NodeId, cost state.Cost) {
	n.local[neigh] = cost
	n.paths.DeleteAll()
}

// RemoveLink deletes a local link, it returns false if there was no such link
func (n *Node) RemoveLink(neigh state.NodeId) bool {
	if _, ok := n.local[neigh]; !ok {
		return false
	}
	delete(n.local, neigh)
	n.paths.DeleteAll()
	return true
}

// Accept applies the freshness rule to lsa. The advertisement is accepted iff we have never heard from its origin,
// or its version is strictly greater than the last accepted one. Accepting replaces the origin's entry wholesale.
func (n *Node) Accept(lsa state.Lsa) bool {
	if lsa.Origin == n.Id {
		logEvent(n.log, InconsistentState, "received own advertisement", "node", n.Id, "version", lsa.Version)
		return false
	}
	if last, ok := n.versions[lsa.Origin]; ok && lsa.Version <= last {
		perf.LsaRejected.Add(1)
		logEvent(n.log, LsaStale, "stale advertisement ignored", "node", n.Id, "origin", lsa.Origin, "version", lsa.Version, "have", last)
		return false
	}
	n.versions[lsa.Origin] = lsa.Version
	n.lsdb[lsa.Origin] = lsa.Links.Clone()
	perf.LsaAccepted.Add(1)
	logEvent(n.log, LsaAccepted, "accepted advertisement", "node", n.Id, "origin", lsa.Origin, "version", lsa.Version)

	if n.batched {
		n.dirty = true
		n.paths.DeleteAll()
	} else {
		n.ComputeRoutes()
	}
	return true
}

// ComputeRoutes rebuilds the routing table from scratch over the current database
func (n *Node) ComputeRoutes() {
	n.table = runSpf(n.Id, n.lsdb).table()
	n.dirty = false
	n.paths.DeleteAll()
	logEvent(n.log, SpfComputed, "computed routes", "node", n.Id, "routes", len(n.table))
}

func (n *Node) settle() {
	if n.dirty {
		n.ComputeRoutes()
	}
}

// knows reports whether id appears anywhere in the database, either as an origin or as a neighbour
func (n *Node) knows(id state.NodeId) bool {
	if _, ok := n.lsdb[id]; ok {
		return true
	}
	for _, adv := range n.lsdb {
		if _, ok := adv[id]; ok {
			return true
		}
	}
	return false
}

// PathTo reconstructs the full shortest path [n.Id, ..., target] with its own search over the database.
// It returns false if the target is unreachable or not present in the database at all.
func (n *Node) PathTo(target state.NodeId) ([]state.NodeId, bool) {
	if target == n.Id {
		return []state.NodeId{n.Id}, true
	}
	if item := n.paths.Get(target); item != nil {
		res := item.Value()
		return append([]state.NodeId(nil), res.path...), res.ok
	}
	var res pathResult
	if n.knows(target) {
		res.path, res.ok = runSpf(n.Id, n.lsdb).path(target)
	}
	n.paths.Set(target, res, ttlcache.NoTTL)
	return append([]state.NodeId(nil), res.path...), res.ok
}

// Local returns a copy of this node's own advertisement
func (n *Node) Local() state.Advertisement {
	return n.local.Clone()
}

// Database returns a copy of the link-state database
func (n *Node) Database() map[state.NodeId]state.Advertisement {
	db := make(map[state.NodeId]state.Advertisement, len(n.lsdb))
	for origin, adv := range n.lsdb {
		db[origin] = adv.Clone()
	}
	return db
}

// Routes returns a copy of the routing table
func (n *Node) Routes() state.RoutingTable {
	n.settle()
	return n.table.Clone()
}

// Route looks up a single destination
func (n *Node) Route(dest state.NodeId) (state.Route, bool) {
	n.settle()
	r, ok := n.table[dest]
	return r, ok
}

// Version returns the last accepted version for origin
func (n *Node) Version(origin state.NodeId) (uint64, bool) {
	v, ok := n.versions[origin]
	return v, ok
}

func (n *Node) Versions() map[state.NodeId]uint64 {
	return maps.Clone(n.versions)
}
