package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSpan(t *testing.T) {
	start, end := Timestamp(2), Timestamp(7)
	for _, tc := range []struct {
		name       string
		event      Event
		start, end Timestamp
	}{
		{name: "no payload", event: Event{Time: 3}, start: 3, end: 3},
		{name: "instant", event: Event{Time: 3, Payload: InstantPayload()}, start: 3, end: 3},
		{name: "complete", event: Event{Time: 3, Payload: CompletePayload(1, 4)}, start: 1, end: 4},
		{name: "generic with bounds", event: Event{Time: 3, Payload: GenericPayload(nil, &start, &end)}, start: 2, end: 7},
		{name: "generic with start only", event: Event{Time: 3, Payload: GenericPayload(nil, &start, nil)}, start: 3, end: 3},
		{name: "tracing start", event: Event{Time: 5, Payload: TracingStartPayload("DOM")}, start: 5, end: 5},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, e := tc.event.Span()
			assert.Equal(t, tc.start, s)
			assert.Equal(t, tc.end, e)
		})
	}
}

func TestSortIntervalsForNesting(t *testing.T) {
	in := []Interval{
		{Start: 1, End: 2, Label: 1},
		{Start: 0, End: 5, Label: 2},
		{Start: 1, End: 4, Label: 3},
		{Start: 1, End: 4, Label: 4},
	}
	SortIntervalsForNesting(in)
	labels := make([]StringID, 0, len(in))
	for _, i := range in {
		labels = append(labels, i.Label)
	}
	assert.Equal(t, []StringID{2, 3, 4, 1}, labels)
}

func TestTreePath(t *testing.T) {
	tree := &Tree{Nodes: []StackNode{
		{Parent: NoNode, Label: 1},
		{Parent: 0, Label: 2, Depth: 1},
		{Parent: 1, Label: 3, Depth: 2},
		{Parent: NoNode, Label: 4},
	}}
	assert.Equal(t, []NodeID{0, 1, 2}, tree.Path(2))
	assert.Equal(t, []NodeID{3}, tree.Path(3))
}

func TestNestingViolationError(t *testing.T) {
	err := fmt.Errorf("thread main: %w", &NestingViolationError{
		Reason: "partial overlap",
		Parent: Span{ID: 1, Start: 0, End: 5},
		Child:  Span{ID: 2, Start: 3, End: 8},
	})
	require.True(t, errors.Is(err, ErrNestingViolation))

	var nv *NestingViolationError
	require.True(t, errors.As(err, &nv))
	assert.Equal(t, NodeID(2), nv.Child.ID)
	assert.Contains(t, err.Error(), "parent 1 [0, 5] child 2 [3, 8]")
}

func TestTimeRange(t *testing.T) {
	r := TimeRange{Start: 2, End: 6}
	assert.True(t, r.Contains(2))
	assert.False(t, r.Contains(6))
	assert.True(t, r.Intersects(0, 2))
	assert.False(t, r.Intersects(6, 9))
	assert.False(t, r.Intersects(0, 1.5))
	assert.Equal(t, "1.25", Timestamp(1.25).String())
	assert.Equal(t, Timestamp(4), r.Duration())
	assert.Equal(t, Timestamp(0), Interval{Start: 3, End: 3, Phase: PhaseInstant}.Duration())
}
