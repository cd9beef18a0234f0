package core

import (
	"testing"

	"github.com/encodeous/linkstate/state"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemoInitialConvergence(t *testing.T) {
	// This test is for the following network, with our router being A:
	//      5
	//   A --- B
	//  1|     |\ 2
	//   |    3| D
	//   C --- E/ 4
	//      1
	topo, rec := MakeDemo(t)

	assert.Equal(t, []string{"[CONVERGENCE] Network stabilized after 20 updates. (Seq 1)"}, rec.Take())
	assert.Equal(t, uint64(1), topo.Version())

	a := MustNode(t, topo, "A")
	expected := state.RoutingTable{
		// A-B direct and A-C-E-B both cost 5, the direct link was discovered first
		"B": R("B", "B", 5),
		"C": R("C", "C", 1),
		"D": R("D", "C", 6),
		"E": R("E", "C", 2),
	}
	if diff := cmp.Diff(expected, a.Routes()); diff != "" {
		t.Errorf("unexpected routes (-want +got):\n%s", diff)
	}

	path, ok := a.PathTo("D")
	require.True(t, ok)
	assert.Equal(t, []state.NodeId{"A", "C", "E", "D"}, path)
}

func TestDemoUpdateLinkCost(t *testing.T) {
	topo, rec := MakeDemo(t)
	rec.Take()
	a := MustNode(t, topo, "A")
	before, _ := a.Route("C")

	res, err := topo.UpdateLinkCost("A", "B", 1)
	require.NoError(t, err)
	assert.Equal(t, FloodResult{Version: 2, Updates: 20, Passes: 2}, res)
	assert.Equal(t, []string{
		"[EVENT] Link A <-> B updated to cost 1",
		"[CONVERGENCE] Network stabilized after 20 updates. (Seq 2)",
	}, rec.Take())

	b, ok := a.Route("B")
	require.True(t, ok)
	assert.Equal(t, R("B", "B", 1), b)
	c, ok := a.Route("C")
	require.True(t, ok)
	assert.Equal(t, before, c)

	// D is now cheaper through B
	d, _ := a.Route("D")
	assert.Equal(t, R("D", "B", 3), d)
}

func TestFormatTable(t *testing.T) {
	topo, _ := MakeDemo(t)
	out, err := topo.FormatTable("A")
	require.NoError(t, err)
	assert.Equal(t, "ROUTING TABLE: A\n"+
		"Dest     | Next Hop   | Cost \n"+
		"-----------------------------------\n"+
		"B        | B          | 5    \n"+
		"C        | C          | 1    \n"+
		"D        | C          | 6    \n"+
		"E        | C          | 2    ", out)
}

func TestLinkSymmetry(t *testing.T) {
	topo := MakeTopology(t, []state.NodeId{"a", "b"}, nil)
	require.NoError(t, topo.AddLink("a", "b", 7))

	assert.Equal(t, state.Advertisement{"b": 7}, MustNode(t, topo, "a").Local())
	assert.Equal(t, state.Advertisement{"a": 7}, MustNode(t, topo, "b").Local())
	assert.Equal(t, []state.Link{{Pair: state.Pair[state.NodeId, state.NodeId]{V1: "a", V2: "b"}, Cost: 7}}, topo.Links())
}

func TestOwnRecordAliasesLocal(t *testing.T) {
	topo, _ := MakeDemo(t)
	require.NoError(t, topo.AddLink("A", "D", 9))
	a := MustNode(t, topo, "A")
	assert.Equal(t, a.Local(), a.Database()["A"])
}

func TestFreshnessMonotonicity(t *testing.T) {
	topo, _ := MakeDemo(t)
	a := MustNode(t, topo, "A")
	db, versions, routes := a.Database(), a.Versions(), a.Routes()

	// same version and an older one, with a different body
	assert.False(t, a.Accept(state.Lsa{Origin: "B", Links: state.Advertisement{"A": 100}, Version: 1}))
	assert.False(t, a.Accept(state.Lsa{Origin: "B", Links: state.Advertisement{"A": 100}, Version: 0}))

	assert.Empty(t, cmp.Diff(db, a.Database()))
	assert.Empty(t, cmp.Diff(versions, a.Versions()))
	assert.Empty(t, cmp.Diff(routes, a.Routes()))

	// a fresher advertisement replaces the entry wholesale
	assert.True(t, a.Accept(state.Lsa{Origin: "B", Links: state.Advertisement{"D": 2}, Version: 2}))
	assert.Equal(t, state.Advertisement{"D": 2}, a.Database()["B"])
	v, ok := a.Version("B")
	assert.True(t, ok)
	assert.Equal(t, uint64(2), v)
}

func TestAcceptOwnAdvertisementIsRejected(t *testing.T) {
	n := NewNode("a", nil)
	n.AddLink("b", 1)
	assert.False(t, n.Accept(state.Lsa{Origin: "a", Links: state.Advertisement{}, Version: 5}))
	assert.Equal(t, state.Advertisement{"b": 1}, n.Database()["a"])
	_, ok := n.Version("a")
	assert.False(t, ok)
}

func TestConvergedRedeliveryIsQuiet(t *testing.T) {
	topo, _ := MakeDemo(t)
	_, err := topo.UpdateLinkCost("B", "E", 10)
	require.NoError(t, err)

	// once stable, delivering the current advertisements again causes no acceptance anywhere
	for _, origin := range topo.Nodes() {
		lsa := state.Lsa{Origin: origin, Links: MustNode(t, topo, origin).Local(), Version: topo.Version()}
		for _, id := range topo.Nodes() {
			if id != origin {
				assert.False(t, MustNode(t, topo, id).Accept(lsa), "%s accepted %s", id, origin)
			}
		}
	}

	// every node shares the same view of the network
	want := MustNode(t, topo, "A").Database()
	for _, id := range topo.Nodes() {
		assert.Empty(t, cmp.Diff(want, MustNode(t, topo, id).Database()), "database of %s", id)
	}
}

func TestFloodTakesTwoPasses(t *testing.T) {
	topo, _ := MakeDemo(t)
	res := topo.Flood()
	assert.Equal(t, FloodResult{Version: 2, Updates: 20, Passes: 2}, res)
}

func TestSingleNodeFlood(t *testing.T) {
	topo := MakeTopology(t, []state.NodeId{"solo"}, nil)
	res := topo.Flood()
	assert.Equal(t, FloodResult{Version: 1, Updates: 0, Passes: 1}, res)
	assert.Empty(t, MustNode(t, topo, "solo").Routes())
}

func TestUnreachability(t *testing.T) {
	topo, rec := MakeDemo(t)
	for _, n := range []state.NodeId{"B", "C", "D"} {
		_, err := topo.DisconnectLink(n, "E")
		require.NoError(t, err)
	}
	assert.Contains(t, rec.String(), "[EVENT] Link D <-> E removed")

	for _, id := range []state.NodeId{"A", "B", "C", "D"} {
		n := MustNode(t, topo, id)
		_, ok := n.Route("E")
		assert.False(t, ok, "%s still routes to E", id)
		path, ok, err := topo.PathBetween(id, "E")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, path)
	}
	assert.Empty(t, MustNode(t, topo, "E").Routes())

	_, err := topo.DisconnectLink("C", "E")
	assert.ErrorIs(t, err, state.ErrUnknownLink)
}

func TestNeighbourWithoutAdvertisement(t *testing.T) {
	n := NewNode("a", nil)
	n.AddLink("b", 2)
	assert.Empty(t, n.Routes(), "adding a link must not recompute routes")

	// b knows c, but c has never advertised anything
	require.True(t, n.Accept(state.Lsa{Origin: "b", Links: state.Advertisement{"a": 2, "c": 3}, Version: 1}))
	assert.Equal(t, state.RoutingTable{
		"b": R("b", "b", 2),
		"c": R("c", "b", 5),
	}, n.Routes())

	path, ok := n.PathTo("c")
	require.True(t, ok)
	assert.Equal(t, []state.NodeId{"a", "b", "c"}, path)

	_, ok = n.PathTo("z")
	assert.False(t, ok, "z is not in the database")
}

func TestPathToSelf(t *testing.T) {
	topo, _ := MakeDemo(t)
	path, ok, err := topo.PathBetween("C", "C")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []state.NodeId{"C"}, path)
}

func TestPathCacheInvalidation(t *testing.T) {
	topo, _ := MakeDemo(t)
	a := MustNode(t, topo, "A")
	path, _ := a.PathTo("B")
	assert.Equal(t, []state.NodeId{"A", "B"}, path)

	// the returned slice must not alias the cache
	path[1] = "X"
	path, _ = a.PathTo("B")
	assert.Equal(t, []state.NodeId{"A", "B"}, path)

	_, err := topo.UpdateLinkCost("A", "B", 50)
	require.NoError(t, err)
	path, _ = a.PathTo("B")
	assert.Equal(t, []state.NodeId{"A", "C", "E", "B"}, path)
}

func TestTieBreakFirstDiscoveryWins(t *testing.T) {
	//   A -1- B
	//   |     |
	//   1     1
	//   |     |
	//   C -1- D
	topo := MakeTopology(t, []state.NodeId{"A", "B", "C", "D"}, []state.LinkCfg{
		{"A", "B", 1}, {"A", "C", 1}, {"B", "D", 1}, {"C", "D", 1},
	})
	topo.Flood()
	a := MustNode(t, topo, "A")
	d, _ := a.Route("D")
	assert.Equal(t, R("D", "B", 2), d)
	path, _ := a.PathTo("D")
	assert.Equal(t, []state.NodeId{"A", "B", "D"}, path)

	// a direct link of equal cost is relaxed before anything reached through B
	_, err := topo.UpdateLinkCost("A", "D", 2)
	require.NoError(t, err)
	d, _ = a.Route("D")
	assert.Equal(t, R("D", "D", 2), d)
}

func TestBatchedSpfMatches(t *testing.T) {
	eager, _ := MakeDemo(t)
	batched, _ := MakeDemo(t, WithBatchedSpf(true))
	for _, step := range []state.LinkCfg{{"A", "B", 1}, {"C", "E", 9}, {"D", "A", 3}} {
		_, err := eager.UpdateLinkCost(step.A, step.B, step.Cost)
		require.NoError(t, err)
		_, err = batched.UpdateLinkCost(step.A, step.B, step.Cost)
		require.NoError(t, err)
		for _, id := range eager.Nodes() {
			want, _ := eager.Routes(id)
			got, _ := batched.Routes(id)
			assert.Empty(t, cmp.Diff(want, got), "routes of %s after %v", id, step)
		}
	}
}

func TestContractViolations(t *testing.T) {
	topo, rec := MakeDemo(t)
	rec.Take()

	assert.ErrorIs(t, topo.AddLink("A", "Z", 1), state.ErrUnknownNode)
	assert.ErrorIs(t, topo.AddLink("A", "A", 1), state.ErrSelfLink)
	assert.ErrorIs(t, topo.AddLink("A", "B", state.INF), state.ErrInvalidCost)
	assert.ErrorIs(t, topo.AddNode("not a name"), state.ErrInvalidNode)

	_, err := topo.UpdateLinkCost("Z", "A", 1)
	assert.ErrorIs(t, err, state.ErrUnknownNode)
	_, err = topo.UpdateLinkCost("A", "B", state.INF)
	assert.ErrorIs(t, err, state.ErrInvalidCost)
	assert.Empty(t, rec.Take(), "rejected updates must not be announced")
	assert.Equal(t, uint64(1), topo.Version())

	_, err = topo.Routes("Z")
	assert.ErrorIs(t, err, state.ErrUnknownNode)
	_, _, err = topo.PathBetween("A", "Z")
	assert.ErrorIs(t, err, state.ErrUnknownNode)
	_, err = topo.FormatTable("Z")
	assert.ErrorIs(t, err, state.ErrUnknownNode)
}

func TestAddNodeIdempotent(t *testing.T) {
	topo, _ := MakeDemo(t)
	before := MustNode(t, topo, "A")
	require.NoError(t, topo.AddNode("A"))
	assert.Same(t, before, MustNode(t, topo, "A"))
	assert.Len(t, topo.Nodes(), 5)
}

func TestSnapshotIsolation(t *testing.T) {
	topo, _ := MakeDemo(t)
	a := MustNode(t, topo, "A")
	// mutating the live advertisement after a flood must not leak into what others hold
	require.NoError(t, topo.AddLink("A", "D", 1))
	assert.Equal(t, state.Advertisement{"B": 5, "C": 1}, MustNode(t, topo, "E").Database()["A"])
	assert.Equal(t, state.Advertisement{"B": 5, "C": 1, "D": 1}, a.Local())
}

func TestLargeCostsKeepFullPrecision(t *testing.T) {
	topo := MakeTopology(t, []state.NodeId{"a", "b", "c", "d"}, []state.LinkCfg{
		{A: "a", B: "b", Cost: state.INFM},
		{A: "b", B: "c", Cost: state.INFM},
		{A: "a", B: "d", Cost: state.INFM},
		{A: "d", B: "c", Cost: 5},
	})
	topo.Flood()

	routes, err := topo.Routes("a")
	require.NoError(t, err)
	assert.Equal(t, R("c", "d", state.Metric(state.INFM)+5), routes["c"])
	assert.Equal(t, R("b", "b", state.Metric(state.INFM)), routes["b"])

	path, ok, err := topo.PathBetween("a", "c")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []state.NodeId{"a", "d", "c"}, path)

	// a -> b -> c is the only way left, at twice the largest link cost
	_, err = topo.DisconnectLink("d", "c")
	require.NoError(t, err)
	routes, err = topo.Routes("a")
	require.NoError(t, err)
	assert.Equal(t, R("c", "b", 2*state.Metric(state.INFM)), routes["c"])
}
