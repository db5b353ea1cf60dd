package selftime

import (
	"cmp"
	"slices"

	"github.com/grafana/tracetiming/pkg/model"
)

// LeafTiming lays out the self-time pieces of spans as display rows: one row
// per label, rows ordered by label name. Since self-time pieces are disjoint,
// no row ever holds overlapping entries.
func LeafTiming(spans []model.Span, strings *model.StringTable) ([]model.TimingRow, error) {
	byLabel := make(map[model.StringID]int)
	var rows []model.TimingRow
	err := Sweep(spans, func(p Piece) {
		i, ok := byLabel[p.Label]
		if !ok {
			i = len(rows)
			byLabel[p.Label] = i
			rows = append(rows, model.TimingRow{Label: strings.Lookup(p.Label)})
		}
		rows[i].Entries = append(rows[i].Entries, model.TimingEntry{
			Start:  p.Start,
			End:    p.End,
			Label:  p.Label,
			Source: p.Source,
		})
	})
	if err != nil {
		return nil, err
	}
	for i := range rows {
		slices.SortStableFunc(rows[i].Entries, func(a, b model.TimingEntry) int {
			return cmp.Compare(a.Start, b.Start)
		})
	}
	slices.SortStableFunc(rows, func(a, b model.TimingRow) int {
		return cmp.Compare(a.Label, b.Label)
	})
	return rows, nil
}

// FromIntervals converts start-ordered intervals into spans, using the
// interval position as the span id.
func FromIntervals(intervals []model.Interval) []model.Span {
	spans := make([]model.Span, len(intervals))
	for i, iv := range intervals {
		spans[i] = model.Span{
			ID:     model.NodeID(i),
			Label:  iv.Label,
			Source: iv.Source,
			Start:  iv.Start,
			End:    iv.End,
		}
	}
	return spans
}
