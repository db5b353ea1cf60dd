package stacktree

import (
	"strconv"

	"github.com/grafana/tracetiming/pkg/model"
)

// TimingByDepth lays out every call as a box in the row of its stack depth,
// producing flame-chart rows. Row i holds the calls at depth i.
func TimingByDepth(tree *model.Tree, events []model.Event, nodes []model.NodeID) []model.TimingRow {
	var rows []model.TimingRow
	for i := range events {
		node := tree.Nodes[nodes[i]]
		for len(rows) <= node.Depth {
			rows = append(rows, model.TimingRow{Label: strconv.Itoa(len(rows))})
		}
		start, end := events[i].Span()
		rows[node.Depth].Entries = append(rows[node.Depth].Entries, model.TimingEntry{
			Start:  start,
			End:    end,
			Label:  node.Label,
			Source: model.EventIndex(i),
		})
	}
	return rows
}
