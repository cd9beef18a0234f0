package core

import (
	"fmt"
	"strings"
)

// FormatTable renders the routing table, one row per destination in ascending order
func (n *Node) FormatTable() string {
	tbl := n.Routes()
	lines := make([]string, 0, len(tbl)+3)
	lines = append(lines, fmt.Sprintf("ROUTING TABLE: %s", n.Id))
	lines = append(lines, fmt.Sprintf("%-8s | %-10s | %-5s", "Dest", "Next Hop", "Cost"))
	lines = append(lines, strings.Repeat("-", 35))
	for _, dest := range tbl.Destinations() {
		r := tbl[dest]
		lines = append(lines, fmt.Sprintf("%-8s | %-10s | %-5d", r.Dest, r.NextHop, r.Cost))
	}
	return strings.Join(lines, "\n")
}
