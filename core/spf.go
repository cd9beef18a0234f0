package core

import (
	"container/heap"
	"slices"
	"time"

	"github.com/encodeous/linkstate/perf"
	"github.com/encodeous/linkstate/state"
)

// Tie-break rule: a destination keeps the path of the first relaxation that reached it at its minimum cost.
// Relaxation only replaces a tentative cost when the new cost is strictly smaller. Neighbours are relaxed in
// ascending id order, and heap entries of equal cost are popped in the order they were discovered (seq).
// Together this makes the selected next hop independent of map iteration order and of the heap implementation.

type spfEntry struct {
	node state.NodeId
	cost state.Metric
	seq  uint64
}

type spfQueue []spfEntry

func (q spfQueue) Len() int { return len(q) }

func (q spfQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].seq < q[j].seq
}

func (q spfQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *spfQueue) Push(x any) { *q = append(*q, x.(spfEntry)) }

func (q *spfQueue) Pop() any {
	old := *q
	n := len(old)
	x := old[n-1]
	*q = old[:n-1]
	return x
}

// spfTree is the shortest path tree rooted at source
type spfTree struct {
	source state.NodeId
	dist   map[state.NodeId]state.Metric
	prev   map[state.NodeId]state.NodeId
	hop    map[state.NodeId]state.NodeId
}

// runSpf computes the shortest path tree from source over the given database.
// Nodes that are only mentioned as neighbours are reachable, but contribute no further edges.
func runSpf(source state.NodeId, lsdb map[state.NodeId]state.Advertisement) *spfTree {
	start := time.Now()
	defer func() {
		perf.SpfLatency.Add(float64(time.Since(start).Microseconds()))
		perf.SpfRuns.Add(1)
	}()

	t := &spfTree{
		source: source,
		dist:   map[state.NodeId]state.Metric{source: 0},
		prev:   make(map[state.NodeId]state.NodeId),
		hop:    make(map[state.NodeId]state.NodeId),
	}
	visited := make(map[state.NodeId]bool)
	q := &spfQueue{}
	seq := uint64(0)
	heap.Push(q, spfEntry{node: source, cost: 0, seq: seq})

	for q.Len() > 0 {
		cur := heap.Pop(q).(spfEntry)
		if visited[cur.node] {
			continue // stale entry
		}
		visited[cur.node] = true

		adv, ok := lsdb[cur.node]
		if !ok {
			continue // we have not heard from this node yet
		}
		for _, neigh := range adv.Neighbours() {
			if visited[neigh] {
				continue
			}
			alt, ok := state.AddMetric(cur.cost, adv[neigh])
			if !ok {
				continue
			}
			if old, ok := t.dist[neigh]; ok && alt >= old {
				continue
			}
			t.dist[neigh] = alt
			t.prev[neigh] = cur.node
			if cur.node == source {
				t.hop[neigh] = neigh
			} else {
				t.hop[neigh] = t.hop[cur.node]
			}
			seq++
			heap.Push(q, spfEntry{node: neigh, cost: alt, seq: seq})
		}
	}
	return t
}

// table builds a routing table from the tree, excluding the source itself
func (t *spfTree) table() state.RoutingTable {
	tbl := make(state.RoutingTable, len(t.dist))
	for dest, cost := range t.dist {
		if dest == t.source {
			continue
		}
		tbl[dest] = state.Route{
			Dest:    dest,
			NextHop: t.hop[dest],
			Cost:    cost,
		}
	}
	return tbl
}

// path walks the tree back from target, returning [source, ..., target]
func (t *spfTree) path(target state.NodeId) ([]state.NodeId, bool) {
	if target == t.source {
		return []state.NodeId{t.source}, true
	}
	if _, ok := t.dist[target]; !ok {
		return nil, false
	}
	seq := []state.NodeId{target}
	for cur := target; cur != t.source; {
		cur = t.prev[cur]
		seq = append(seq, cur)
	}
	slices.Reverse(seq)
	return seq, true
}
