package templates

import (
	"strconv"
	"strings"
)

// Level is one priority level of a schedule as drawn by ScheduleDOT.
type Level struct {
	Priority int
	Groups   []Group
}

type Group struct {
	Index int
	Ranks [][]int // node IDs by order
	Nodes []Node
}

type Node struct {
	ID     int
	Label  string
	Order  int
	Number int
}

type Edge struct {
	From, To int
	Label    string
}

func prefixedIDs(prefix string, ids []int) string {
	var sb strings.Builder
	for i, id := range ids {
		sb.WriteString(prefix)
		sb.WriteString(strconv.Itoa(id))
		if i < len(ids)-1 {
			sb.WriteString("; ")
		}
	}
	return sb.String()
}
