package core

import (
	"fmt"
	"slices"
	"strings"
)

// Inspect dumps the state of every router in a human-readable form
func (t *Topology) Inspect() string {
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("Version: %d\n", t.version))
	sb.WriteString("Nodes:\n")
	for _, id := range t.Nodes() {
		n := t.nodes[id]
		sb.WriteString(fmt.Sprintf(" - %s\n", id))

		sb.WriteString("   Links:\n")
		rt := make([]string, 0)
		for _, neigh := range n.local.Neighbours() {
			rt = append(rt, fmt.Sprintf("    - %s cost %d", neigh, n.local[neigh]))
		}
		if len(rt) == 0 {
			rt = append(rt, "    (none)")
		}
		sb.WriteString(strings.Join(rt, "\n") + "\n")

		sb.WriteString("   Database:\n")
		rt = make([]string, 0)
		for origin, adv := range n.lsdb {
			ver := "local"
			if v, ok := n.versions[origin]; ok {
				ver = fmt.Sprintf("seq %d", v)
			}
			links := make([]string, 0, len(adv))
			for _, neigh := range adv.Neighbours() {
				links = append(links, fmt.Sprintf("%s=%d", neigh, adv[neigh]))
			}
			rt = append(rt, fmt.Sprintf("    - %s (%s): %s", origin, ver, strings.Join(links, ", ")))
		}
		slices.Sort(rt)
		sb.WriteString(strings.Join(rt, "\n") + "\n")

		sb.WriteString("   Route Table:\n")
		rt = make([]string, 0)
		tbl := n.Routes()
		for _, dest := range tbl.Destinations() {
			r := tbl[dest]
			rt = append(rt, fmt.Sprintf("    - %s via %s cost %d", dest, r.NextHop, r.Cost))
		}
		if len(rt) == 0 {
			rt = append(rt, "    (none)")
		}
		sb.WriteString(strings.Join(rt, "\n") + "\n")

		if pfx := t.owned[id]; len(pfx) != 0 {
			sb.WriteString("   Prefixes:\n")
			for _, p := range pfx {
				sb.WriteString(fmt.Sprintf("    - %s\n", p))
			}
		}
	}
	return sb.String()
}
