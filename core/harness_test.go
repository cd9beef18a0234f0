package core

import (
	"strings"
	"testing"

	"github.com/encodeous/linkstate/state"
	"github.com/stretchr/testify/require"
)

// SinkRecorder collects the lines written to the topology sink
type SinkRecorder struct {
	lines []string
}

func (s *SinkRecorder) Sink(line string) {
	s.lines = append(s.lines, line)
}

// Take returns the recorded lines and clears the recorder
func (s *SinkRecorder) Take() []string {
	x := s.lines
	s.lines = nil
	return x
}

func (s *SinkRecorder) String() string {
	return strings.Join(s.lines, "\n")
}

// TestingT is satisfied by both *testing.T and *rapid.T
type TestingT interface {
	Errorf(format string, args ...any)
	FailNow()
}

// MakeTopology builds a topology with the given nodes and (a, b, cost) links, without flooding
func MakeTopology(t TestingT, nodes []state.NodeId, links []state.LinkCfg, opts ...Option) *Topology {
	topo := NewTopology(opts...)
	for _, n := range nodes {
		require.NoError(t, topo.AddNode(n))
	}
	for _, l := range links {
		require.NoError(t, topo.AddLink(l.A, l.B, l.Cost))
	}
	return topo
}

// MakeDemo builds and converges the five router demo network
func MakeDemo(t testing.TB, opts ...Option) (*Topology, *SinkRecorder) {
	t.Helper()
	rec := &SinkRecorder{}
	cfg := state.DemoCfg()
	topo := MakeTopology(t, cfg.Nodes, cfg.Links, append([]Option{WithSink(rec.Sink)}, opts...)...)
	topo.Flood()
	return topo, rec
}

func MustNode(t testing.TB, topo *Topology, id state.NodeId) *Node {
	t.Helper()
	n, err := topo.Node(id)
	require.NoError(t, err)
	return n
}

func R(dest, nh state.NodeId, cost state.Metric) state.Route {
	return state.Route{Dest: dest, NextHop: nh, Cost: cost}
}
