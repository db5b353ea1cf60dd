// Package stacktree rebuilds a call tree from a flat, properly nested
// sequence of calls, such as a JS tracer recording.
package stacktree

import (
	"github.com/grafana/tracetiming/pkg/model"
	"github.com/grafana/tracetiming/pkg/selftime"
)

type nodeKey struct {
	parent model.NodeID
	label  model.StringID
}

type ancestor struct {
	node  model.NodeID
	event model.EventIndex
	start model.Timestamp
	end   model.Timestamp
}

// Reconstruct builds the call tree of events ordered by start time. The
// extent of each event is given by Event.Span. It returns the tree and, for
// every event, the node it was mapped to.
//
// Events must be properly nested: an event that ends after the event
// enclosing it yields a *model.NestingViolationError.
func Reconstruct(events []model.Event) (*model.Tree, []model.NodeID, error) {
	var (
		tree    = &model.Tree{Nodes: make([]model.StackNode, 0, len(events)/4+1)}
		nodes   = make([]model.NodeID, len(events))
		lookup  = make(map[nodeKey]model.NodeID)
		path    = make([]ancestor, 0, 32)
		lastPos = model.Timestamp(0)
	)
	for i := range events {
		idx := model.EventIndex(i)
		start, end := events[i].Span()
		if i > 0 && start < lastPos {
			prevStart, prevEnd := events[i-1].Span()
			return nil, nil, &model.NestingViolationError{
				Reason: "events are not ordered by start",
				Parent: model.Span{ID: nodes[i-1], Label: events[i-1].Name, Source: idx - 1, Start: prevStart, End: prevEnd},
				Child:  model.Span{ID: model.NoNode, Label: events[i].Name, Source: idx, Start: start, End: end},
			}
		}
		lastPos = start

		// Pop the ancestors that have closed by now.
		for len(path) > 0 && path[len(path)-1].end <= start {
			path = path[:len(path)-1]
		}

		parent := model.NoNode
		depth := 0
		if len(path) > 0 {
			top := path[len(path)-1]
			if end > top.end {
				return nil, nil, &model.NestingViolationError{
					Reason: "call ends after its caller",
					Parent: model.Span{ID: top.node, Label: tree.Nodes[top.node].Label, Source: top.event, Start: top.start, End: top.end},
					Child:  model.Span{ID: model.NoNode, Label: events[i].Name, Source: idx, Start: start, End: end},
				}
			}
			parent = top.node
			depth = tree.Nodes[parent].Depth + 1
		}

		key := nodeKey{parent: parent, label: events[i].Name}
		node, ok := lookup[key]
		if !ok {
			node = model.NodeID(len(tree.Nodes))
			tree.Nodes = append(tree.Nodes, model.StackNode{
				Parent:    parent,
				Label:     events[i].Name,
				Depth:     depth,
				SelfStart: start,
			})
			lookup[key] = node
		}
		tree.Nodes[node].TotalDuration += end - start
		nodes[i] = node
		path = append(path, ancestor{node: node, event: idx, start: start, end: end})
	}
	return tree, nodes, nil
}

// Spans returns the extent of every event tagged with its node.
func Spans(events []model.Event, nodes []model.NodeID) []model.Span {
	spans := make([]model.Span, len(events))
	for i := range events {
		s, e := events[i].Span()
		spans[i] = model.Span{
			ID:     nodes[i],
			Label:  events[i].Name,
			Source: model.EventIndex(i),
			Start:  s,
			End:    e,
		}
	}
	return spans
}

// SelfTime reconstructs the call tree of events and splits every call into
// its self-time samples, keyed by node.
func SelfTime(events []model.Event) (*model.Tree, []model.SelfTimeSample, error) {
	tree, nodes, err := Reconstruct(events)
	if err != nil {
		return nil, nil, err
	}
	samples, err := selftime.Decompose(Spans(events, nodes))
	if err != nil {
		return nil, nil, err
	}
	return tree, samples, nil
}
