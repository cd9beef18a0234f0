package state

import (
	"maps"
	"slices"
)

// NodeId is the symbolic name of a router
type NodeId string

// Cost is a non-negative link metric. INF marks an unreachable destination and is never a valid link cost.
type Cost uint32

// Advertisement holds the outgoing links of a single origin, keyed by neighbour
type Advertisement map[NodeId]Cost

// Clone deep copies the advertisement, so that later mutations of the source do not leak into the copy
func (a Advertisement) Clone() Advertisement {
	if a == nil {
		return Advertisement{}
	}
	return maps.Clone(a)
}

// Neighbours returns the neighbours of this advertisement in ascending order
func (a Advertisement) Neighbours() []NodeId {
	return slices.Sorted(maps.Keys(a))
}

// Lsa is a versioned link-state advertisement as it is flooded through the network
type Lsa struct {
	Origin  NodeId
	Links   Advertisement
	Version uint64
}

// Metric is the accumulated cost of a path. It is wide enough that summing
// link costs along any simple path cannot overflow.
type Metric uint64

// Route is a single entry of a routing table
type Route struct {
	Dest    NodeId
	NextHop NodeId
	Cost    Metric
}

type RoutingTable map[NodeId]Route

// Destinations returns all destinations in the table in ascending order
func (t RoutingTable) Destinations() []NodeId {
	return slices.Sorted(maps.Keys(t))
}

func (t RoutingTable) Clone() RoutingTable {
	return maps.Clone(t)
}

// Link is an undirected physical link between two routers. V1 < V2 always holds for links produced by the topology.
type Link struct {
	Pair[NodeId, NodeId]
	Cost Cost
}

// AddMetric extends a path metric by one link. It returns false if the link is unusable.
func AddMetric(m Metric, c Cost) (Metric, bool) {
	if c == INF {
		return 0, false
	}
	return m + Metric(c), true
}
