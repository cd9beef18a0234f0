package state

const (
	INF = ^Cost(0)
	// INFM is the largest valid link cost
	INFM = INF - 1
)

var (
	// DefaultCost is used for graph pairings that do not carry an explicit cost
	DefaultCost = Cost(1)
	// MaxNameLength bounds the length of a node name
	MaxNameLength = 100
	// DefaultTopologyName is used as the log prefix when the config does not name the topology
	DefaultTopologyName = "linkstate"
)
