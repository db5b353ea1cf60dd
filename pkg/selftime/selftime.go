// Package selftime splits properly nested spans into the disjoint pieces of
// exclusive ("self") time of each span.
package selftime

import (
	"github.com/grafana/tracetiming/pkg/model"
)

// Piece is a non-empty stretch of self time of a span.
type Piece struct {
	ID     model.NodeID
	Label  model.StringID
	Source model.EventIndex
	Start  model.Timestamp
	End    model.Timestamp
}

// Sweep walks spans ordered by non-decreasing start and calls fn with every
// non-empty piece of self time, in the order the pieces are resolved. For a
// given span, pieces arrive in increasing start order and never overlap.
//
// Spans must be properly nested: a span that partially overlaps an enclosing
// span yields a *model.NestingViolationError.
func Sweep(spans []model.Span, fn func(Piece)) error {
	// path holds the unresolved ancestors; the top is the most recently
	// opened span. An ancestor's Start is moved past each child so that only
	// its remaining self time is tracked.
	path := make([]model.Span, 0, 32)
	emit := func(s model.Span, end model.Timestamp) {
		if end > s.Start {
			fn(Piece{ID: s.ID, Label: s.Label, Source: s.Source, Start: s.Start, End: end})
		}
	}

	for _, cur := range spans {
		for {
			if len(path) == 0 {
				path = append(path, cur)
				break
			}
			top := &path[len(path)-1]
			switch {
			case cur.Start < top.Start:
				return &model.NestingViolationError{Reason: "spans are not ordered by start", Parent: *top, Child: cur}

			case top.End <= cur.Start:
				// The ancestor ended before cur starts.
				emit(*top, top.End)
				path = path[:len(path)-1]
				continue

			case top.End > cur.End:
				emit(*top, cur.Start)
				top.Start = cur.End
				path = append(path, cur)

			case top.End == cur.End && top.Start != cur.Start:
				// cur takes over the rest of the ancestor's slot.
				emit(*top, cur.Start)
				top.ID, top.Label, top.Source, top.Start = cur.ID, cur.Label, cur.Source, cur.Start

			case top.End == cur.End:
				top.ID, top.Label, top.Source = cur.ID, cur.Label, cur.Source

			default:
				return &model.NestingViolationError{Reason: "partial overlap", Parent: *top, Child: cur}
			}
			break
		}
	}

	for i := len(path) - 1; i >= 0; i-- {
		emit(path[i], path[i].End)
	}
	return nil
}

// Decompose returns the self-time samples of spans ordered by start.
// Zero-length spans produce no samples.
func Decompose(spans []model.Span) ([]model.SelfTimeSample, error) {
	samples := make([]model.SelfTimeSample, 0, len(spans))
	err := Sweep(spans, func(p Piece) {
		samples = append(samples, model.SelfTimeSample{Node: p.ID, Start: p.Start, Duration: p.End - p.Start})
	})
	if err != nil {
		return nil, err
	}
	return samples, nil
}

// Totals sums the self time of every node.
func Totals(samples []model.SelfTimeSample) map[model.NodeID]model.Timestamp {
	totals := make(map[model.NodeID]model.Timestamp)
	for _, s := range samples {
		totals[s.Node] += s.Duration
	}
	return totals
}
