package stacktree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/tracetiming/pkg/model"
)

type fixture struct {
	strings *model.StringTable
	events  []model.Event
}

func (f *fixture) call(name string, start, end model.Timestamp) *fixture {
	f.events = append(f.events, model.Event{
		Name:    f.strings.Put(name),
		Time:    start,
		Payload: model.CompletePayload(start, end),
	})
	return f
}

func newFixture() *fixture {
	return &fixture{strings: model.NewStringTable()}
}

func (f *fixture) labels(tree *model.Tree, id model.NodeID) []string {
	var names []string
	for _, n := range tree.Path(id) {
		names = append(names, f.strings.Lookup(tree.Nodes[n].Label))
	}
	return names
}

func TestReconstruct(t *testing.T) {
	f := newFixture().
		call("main", 0, 20).
		call("parse", 1, 8).
		call("lex", 2, 3).
		call("lex", 4, 6).
		call("eval", 8, 12).
		call("parse", 13, 15).
		call("idle", 21, 22)

	tree, nodes, err := Reconstruct(f.events)
	require.NoError(t, err)
	require.Len(t, nodes, len(f.events))

	assert.Equal(t, []string{"main"}, f.labels(tree, nodes[0]))
	assert.Equal(t, []string{"main", "parse"}, f.labels(tree, nodes[1]))
	assert.Equal(t, []string{"main", "parse", "lex"}, f.labels(tree, nodes[2]))
	// Repeated calls along the same path share a node.
	assert.Equal(t, nodes[2], nodes[3])
	assert.Equal(t, []string{"main", "eval"}, f.labels(tree, nodes[4]))
	assert.Equal(t, nodes[1], nodes[5])
	assert.Equal(t, []string{"idle"}, f.labels(tree, nodes[6]))
	assert.Equal(t, model.NoNode, tree.Nodes[nodes[6]].Parent)

	lex := tree.Nodes[nodes[2]]
	assert.Equal(t, 2, lex.Depth)
	assert.Equal(t, model.Timestamp(2), lex.SelfStart)
	assert.Equal(t, model.Timestamp(3), lex.TotalDuration)
	assert.Equal(t, model.Timestamp(9), tree.Nodes[nodes[1]].TotalDuration)
	assert.Equal(t, 5, tree.Len())
}

func TestReconstructBoundaries(t *testing.T) {
	// A call starting exactly when its predecessor ends is a sibling, and a
	// zero-length call at the end of its caller is too.
	f := newFixture().
		call("a", 0, 5).
		call("b", 5, 7).
		call("c", 7, 7).
		call("d", 7, 7)

	tree, nodes, err := Reconstruct(f.events)
	require.NoError(t, err)
	for i := range nodes {
		assert.Equal(t, model.NoNode, tree.Nodes[nodes[i]].Parent, "event %d", i)
	}

	// Calls sharing the caller's bounds are children.
	f = newFixture().call("a", 0, 5).call("b", 0, 5).call("c", 0, 2)
	tree, nodes, err = Reconstruct(f.events)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, f.labels(tree, nodes[2]))
}

func TestReconstructNestingViolation(t *testing.T) {
	f := newFixture().call("a", 0, 5).call("b", 3, 8)
	_, _, err := Reconstruct(f.events)
	require.ErrorIs(t, err, model.ErrNestingViolation)

	var nv *model.NestingViolationError
	require.ErrorAs(t, err, &nv)
	assert.Equal(t, model.EventIndex(0), nv.Parent.Source)
	assert.Equal(t, model.EventIndex(1), nv.Child.Source)
	assert.Equal(t, model.Timestamp(8), nv.Child.End)

	f = newFixture().call("a", 4, 5).call("b", 3, 8)
	_, _, err = Reconstruct(f.events)
	require.ErrorIs(t, err, model.ErrNestingViolation)
}

func TestReconstructEmpty(t *testing.T) {
	tree, nodes, err := Reconstruct(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, tree.Len())
	assert.Empty(t, nodes)
}

func TestSelfTime(t *testing.T) {
	f := newFixture().
		call("main", 0, 10).
		call("work", 2, 4).
		call("work", 5, 6)

	tree, samples, err := SelfTime(f.events)
	require.NoError(t, err)
	require.Equal(t, 2, tree.Len())

	mainNode, workNode := model.NodeID(0), model.NodeID(1)
	assert.Equal(t, []model.SelfTimeSample{
		{Node: mainNode, Start: 0, Duration: 2},
		{Node: workNode, Start: 2, Duration: 2},
		{Node: mainNode, Start: 4, Duration: 1},
		{Node: workNode, Start: 5, Duration: 1},
		{Node: mainNode, Start: 6, Duration: 4},
	}, samples)
}

func TestTimingByDepth(t *testing.T) {
	f := newFixture().
		call("main", 0, 10).
		call("parse", 1, 4).
		call("lex", 2, 3).
		call("eval", 5, 9)

	tree, nodes, err := Reconstruct(f.events)
	require.NoError(t, err)

	rows := TimingByDepth(tree, f.events, nodes)
	require.Len(t, rows, 3)
	assert.Equal(t, "0", rows[0].Label)
	assert.Len(t, rows[0].Entries, 1)
	assert.Equal(t, []model.TimingEntry{
		{Start: 1, End: 4, Label: f.strings.Put("parse"), Source: 1},
		{Start: 5, End: 9, Label: f.strings.Put("eval"), Source: 3},
	}, rows[1].Entries)
	assert.Equal(t, model.EventIndex(2), rows[2].Entries[0].Source)
}
