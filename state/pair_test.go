package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeSortedPair(t *testing.T) {
	assert.Equal(t, Pair[NodeId, NodeId]{"A", "B"}, MakeSortedPair[NodeId]("B", "A"))
	assert.Equal(t, Pair[NodeId, NodeId]{"A", "B"}, MakeSortedPair[NodeId]("A", "B"))
	assert.Equal(t, MakeSortedPair(3, 1), MakeSortedPair(1, 3))
}

func TestSortPairs(t *testing.T) {
	pairs := []Pair[NodeId, NodeId]{
		MakeSortedPair[NodeId]("D", "E"),
		MakeSortedPair[NodeId]("B", "A"),
		MakeSortedPair[NodeId]("E", "B"),
		MakeSortedPair[NodeId]("B", "D"),
		MakeSortedPair[NodeId]("C", "A"),
	}
	SortPairs(pairs)
	assert.Equal(t, []Pair[NodeId, NodeId]{
		{"A", "B"},
		{"A", "C"},
		{"B", "D"},
		{"B", "E"},
		{"D", "E"},
	}, pairs)
}

func TestAddMetric(t *testing.T) {
	m, ok := AddMetric(3, 4)
	assert.True(t, ok)
	assert.Equal(t, Metric(7), m)

	// sums of the largest link costs must keep growing
	m, ok = AddMetric(Metric(INFM), INFM)
	assert.True(t, ok)
	assert.Equal(t, Metric(INFM)*2, m)
	assert.Greater(t, m, Metric(INFM)+5)

	_, ok = AddMetric(0, INF)
	assert.False(t, ok)
}

func TestAdvertisementClone(t *testing.T) {
	adv := Advertisement{"B": 5, "A": 1}
	c := adv.Clone()
	adv["C"] = 2
	assert.Equal(t, Advertisement{"A": 1, "B": 5}, c)
	assert.Equal(t, []NodeId{"A", "B", "C"}, adv.Neighbours())
	assert.NotNil(t, Advertisement(nil).Clone())
}
