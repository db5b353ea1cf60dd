package interval

import (
	"cmp"
	"slices"

	"github.com/grafana/tracetiming/pkg/model"
)

// openInterval is a start event still waiting for its end.
type openInterval struct {
	name    model.StringID
	index   model.EventIndex
	start   model.Timestamp
	payload *model.Payload
}

// openStacks keeps one LIFO stack of open intervals per event name, so that
// same-named intervals nest like parentheses.
type openStacks map[model.StringID][]openInterval

func (s openStacks) push(name model.StringID, o openInterval) {
	o.name = name
	s[name] = append(s[name], o)
}

// pop removes the most recently opened interval for name.
func (s openStacks) pop(name model.StringID) (openInterval, bool) {
	stack := s[name]
	if len(stack) == 0 {
		return openInterval{}, false
	}
	o := stack[len(stack)-1]
	if len(stack) == 1 {
		delete(s, name)
	} else {
		s[name] = stack[:len(stack)-1]
	}
	return o, true
}

// drain returns every interval still open, ordered by their start event.
func (s openStacks) drain() []openInterval {
	var n int
	for _, stack := range s {
		n += len(stack)
	}
	open := make([]openInterval, 0, n)
	for _, stack := range s {
		open = append(open, stack...)
	}
	clear(s)
	slices.SortFunc(open, func(a, b openInterval) int {
		return cmp.Compare(a.index, b.index)
	})
	return open
}
