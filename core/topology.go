package core

import (
	"fmt"
	"log/slog"
	"maps"
	"net/netip"
	"slices"
	"time"

	"github.com/encodeous/linkstate/perf"
	"github.com/encodeous/linkstate/state"
	"github.com/gaissmai/bart"
)

// Topology owns every Node of a simulated network, the physical links between them, and the advertisement version counter.
// It drives flooding synchronously; it is not safe for concurrent use, see Runtime.
type Topology struct {
	Log      *slog.Logger
	nodes    map[state.NodeId]*Node
	version  uint64
	sink     func(string)
	batched  bool
	prefixes *bart.Table[state.NodeId]
	owned    map[state.NodeId][]netip.Prefix
}

type Option func(t *Topology)

// WithSink sets the plain text log sink, it receives one line per flood and one per link event
func WithSink(sink func(line string)) Option {
	return func(t *Topology) {
		t.sink = sink
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(t *Topology) {
		t.Log = log
	}
}

// WithBatchedSpf defers shortest path computation until the flood has converged.
// The converged routing tables are identical either way.
func WithBatchedSpf(batched bool) Option {
	return func(t *Topology) {
		t.batched = batched
	}
}

type FloodResult struct {
	Version uint64
	Updates int // number of accepted advertisements
	Passes  int // full passes over every (advertisement, receiver) pair, including the final quiet one
}

func NewTopology(opts ...Option) *Topology {
	t := &Topology{
		nodes:    make(map[state.NodeId]*Node),
		prefixes: new(bart.Table[state.NodeId]),
		owned:    make(map[state.NodeId][]netip.Prefix),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Topology) emit(line string) {
	if t.sink != nil {
		t.sink(line)
	}
}

// AddNode adds a router, it is a no-op if the router already exists
func (t *Topology) AddNode(id state.NodeId) error {
	if err := state.NameValidator(string(id)); err != nil {
		return err
	}
	if _, ok := t.nodes[id]; ok {
		return nil
	}
	n := NewNode(id, t.Log)
	n.batched = t.batched
	t.nodes[id] = n
	return nil
}

// Node returns the router with the given id
func (t *Topology) Node(id state.NodeId) (*Node, error) {
	n, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", state.ErrUnknownNode, id)
	}
	return n, nil
}

// Nodes returns every router id in ascending order
func (t *Topology) Nodes() []state.NodeId {
	return slices.Sorted(maps.Keys(t.nodes))
}

func (t *Topology) Version() uint64 {
	return t.version
}

func (t *Topology) checkLink(a, b state.NodeId) (*Node, *Node, error) {
	na, err := t.Node(a)
	if err != nil {
		return nil, nil, err
	}
	nb, err := t.Node(b)
	if err != nil {
		return nil, nil, err
	}
	if a == b {
		return nil, nil, fmt.Errorf("%w: %s", state.ErrSelfLink, a)
	}
	return na, nb, nil
}

// AddLink adds or updates the link between a and b in both directions with the same cost
func (t *Topology) AddLink(a, b state.NodeId, cost state.Cost) error {
	na, nb, err := t.checkLink(a, b)
	if err != nil {
		return err
	}
	if err = state.CostValidator(cost); err != nil {
		return err
	}
	na.AddLink(b, cost)
	nb.AddLink(a, cost)
	logEvent(t.Log, LinkChanged, "link set", "a", a, "b", b, "cost", cost)
	return nil
}

// RemoveLink removes the link between a and b in both directions
func (t *Topology) RemoveLink(a, b state.NodeId) error {
	na, nb, err := t.checkLink(a, b)
	if err != nil {
		return err
	}
	ra := na.RemoveLink(b)
	rb := nb.RemoveLink(a)
	if !ra && !rb {
		return fmt.Errorf("%w: %s <-> %s", state.ErrUnknownLink, a, b)
	}
	logEvent(t.Log, LinkChanged, "link removed", "a", a, "b", b)
	return nil
}

// Links returns every physical link, ordered by endpoints
func (t *Topology) Links() []state.Link {
	seen := make(map[state.Pair[state.NodeId, state.NodeId]]state.Cost)
	for id, n := range t.nodes {
		for neigh, cost := range n.local {
			seen[state.MakeSortedPair(id, neigh)] = cost
		}
	}
	pairs := slices.Collect(maps.Keys(seen))
	state.SortPairs(pairs)
	links := make([]state.Link, 0, len(seen))
	for _, p := range pairs {
		links = append(links, state.Link{Pair: p, Cost: seen[p]})
	}
	return links
}

// Flood distributes a fresh snapshot of every router's advertisement to every other router
// until a full pass causes no router to accept anything.
func (t *Topology) Flood() FloodResult {
	start := time.Now()
	t.version++

	ids := t.Nodes()
	// snapshot, so that later local changes cannot alter an advertisement in flight
	pending := make([]state.Lsa, 0, len(ids))
	for _, id := range ids {
		pending = append(pending, state.Lsa{
			Origin:  id,
			Links:   t.nodes[id].local.Clone(),
			Version: t.version,
		})
	}

	res := FloodResult{Version: t.version}
	stable := false
	for !stable {
		stable = true
		res.Passes++
		for _, lsa := range pending {
			for _, id := range ids {
				if id == lsa.Origin {
					continue
				}
				if t.nodes[id].Accept(lsa) {
					res.Updates++
					stable = false
				}
			}
		}
	}
	for _, id := range ids {
		t.nodes[id].settle()
	}

	perf.FloodLatency.Add(float64(time.Since(start).Microseconds()))
	perf.FloodPasses.Add(float64(res.Passes))
	perf.FloodUpdates.Add(float64(res.Updates))
	logEvent(t.Log, Converged, "network converged", "version", res.Version, "updates", res.Updates, "passes", res.Passes)
	t.emit(fmt.Sprintf("[CONVERGENCE] Network stabilized after %d updates. (Seq %d)", res.Updates, res.Version))
	return res
}

// UpdateLinkCost sets the cost of the link between a and b, then re-converges the whole network
func (t *Topology) UpdateLinkCost(a, b state.NodeId, cost state.Cost) (FloodResult, error) {
	if _, _, err := t.checkLink(a, b); err != nil {
		return FloodResult{}, err
	}
	if err := state.CostValidator(cost); err != nil {
		return FloodResult{}, err
	}
	t.emit(fmt.Sprintf("[EVENT] Link %s <-> %s updated to cost %d", a, b, cost))
	if err := t.AddLink(a, b, cost); err != nil {
		return FloodResult{}, err
	}
	return t.Flood(), nil
}

// DisconnectLink removes the link between a and b, then re-converges the whole network
func (t *Topology) DisconnectLink(a, b state.NodeId) (FloodResult, error) {
	if err := t.RemoveLink(a, b); err != nil {
		return FloodResult{}, err
	}
	t.emit(fmt.Sprintf("[EVENT] Link %s <-> %s removed", a, b))
	return t.Flood(), nil
}

// Routes returns the routing table of the given router
func (t *Topology) Routes(id state.NodeId) (state.RoutingTable, error) {
	n, err := t.Node(id)
	if err != nil {
		return nil, err
	}
	return n.Routes(), nil
}

// PathBetween returns the shortest path from src to dst as seen by src
func (t *Topology) PathBetween(src, dst state.NodeId) ([]state.NodeId, bool, error) {
	n, err := t.Node(src)
	if err != nil {
		return nil, false, err
	}
	if _, err = t.Node(dst); err != nil {
		return nil, false, err
	}
	path, ok := n.PathTo(dst)
	return path, ok, nil
}

// FormatTable renders the routing table of the given router
func (t *Topology) FormatTable(id state.NodeId) (string, error) {
	n, err := t.Node(id)
	if err != nil {
		return "", err
	}
	return n.FormatTable(), nil
}
