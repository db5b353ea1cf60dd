package model

// NodeID is an index into Tree.Nodes.
type NodeID int32

const NoNode NodeID = -1

// StackNode is one frame of a reconstructed call tree. Nodes are unique per
// (Parent, Label) pair, so repeated calls along the same path share a node.
type StackNode struct {
	Parent NodeID
	Label  StringID
	Depth  int
	// SelfStart is the start time of the first call mapped to the node.
	SelfStart Timestamp
	// TotalDuration sums the durations of every call mapped to the node.
	TotalDuration Timestamp
}

// Tree is an arena of stack nodes; parents always precede their children.
type Tree struct {
	Nodes []StackNode
}

func (t *Tree) Len() int {
	return len(t.Nodes)
}

// Path returns the node ids from the root down to id.
func (t *Tree) Path(id NodeID) []NodeID {
	var path []NodeID
	for ; id != NoNode; id = t.Nodes[id].Parent {
		path = append(path, id)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Span is an id-tagged interval fed to the self-time decomposition.
type Span struct {
	ID     NodeID
	Label  StringID
	Source EventIndex
	Start  Timestamp
	End    Timestamp
}

// SelfTimeSample is one disjoint piece of exclusive time of a node.
type SelfTimeSample struct {
	Node     NodeID
	Start    Timestamp
	Duration Timestamp
}

func (s SelfTimeSample) End() Timestamp {
	return s.Start + s.Duration
}
