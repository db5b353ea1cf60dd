package interval

import (
	"slices"

	"github.com/grafana/tracetiming/pkg/iter"
	"github.com/grafana/tracetiming/pkg/model"
)

// SelectIndexesInRange lazily selects the indexes of the events needed to
// reproduce every interval intersecting [rangeStart, rangeEnd).
//
// The start and end events of a matched pair are always selected together.
// An end without a start is kept when it lies at or after rangeStart; a
// start without an end is kept when it lies before rangeEnd. The screenshot
// shown at rangeStart is kept even though it was taken earlier.
//
// The iterator makes a single forward pass over events. Indexes are not
// yielded in ascending order; use CollectIndexes for a sorted slice.
func SelectIndexesInRange(events []model.Event, rangeStart, rangeEnd model.Timestamp) iter.Iterator[model.EventIndex] {
	return &rangeSlicer{
		events:     events,
		window:     model.TimeRange{Start: rangeStart, End: rangeEnd},
		open:       make(openStacks),
		screenshot: model.NoEvent,
	}
}

// CollectIndexes drains SelectIndexesInRange into an ascending slice.
func CollectIndexes(events []model.Event, rangeStart, rangeEnd model.Timestamp) []model.EventIndex {
	idx, _ := iter.Slice(SelectIndexesInRange(events, rangeStart, rangeEnd))
	slices.Sort(idx)
	return idx
}

type rangeSlicer struct {
	events []model.Event
	window model.TimeRange

	pos  int
	open openStacks
	// screenshot is the last screenshot taken before the range start.
	screenshot model.EventIndex
	drained    bool

	queue []model.EventIndex
	cur   model.EventIndex
}

func (s *rangeSlicer) Next() bool {
	for len(s.queue) == 0 {
		if !s.step() {
			return false
		}
	}
	s.cur = s.queue[0]
	s.queue = s.queue[1:]
	return true
}

func (s *rangeSlicer) At() model.EventIndex { return s.cur }
func (s *rangeSlicer) Err() error           { return nil }

func (s *rangeSlicer) Close() error {
	s.events = nil
	s.queue = nil
	return nil
}

// step consumes one event, or finalises the sweep once every event has been
// seen. It returns false when there is nothing left to decide.
func (s *rangeSlicer) step() bool {
	if s.pos >= len(s.events) {
		if s.drained {
			return false
		}
		s.drained = true
		s.flushScreenshot()
		for _, o := range s.open.drain() {
			if o.start < s.window.End {
				s.queue = append(s.queue, o.index)
			}
		}
		return true
	}

	idx := model.EventIndex(s.pos)
	e := &s.events[s.pos]
	s.pos++

	switch e.Kind() {
	case model.PayloadTracingStart:
		s.open.push(e.Name, openInterval{index: idx, start: e.Time})

	case model.PayloadTracingEnd:
		if o, ok := s.open.pop(e.Name); ok {
			if s.window.Intersects(o.start, e.Time) {
				s.queue = append(s.queue, o.index, idx)
			}
		} else if e.Time >= s.window.Start {
			s.queue = append(s.queue, idx)
		}

	case model.PayloadScreenshot:
		if e.Time < s.window.Start {
			s.screenshot = idx
			break
		}
		s.flushScreenshot()
		if e.Time < s.window.End {
			s.queue = append(s.queue, idx)
		}

	case model.PayloadComplete:
		if start, end := e.Span(); s.window.Intersects(start, end) {
			s.queue = append(s.queue, idx)
		}

	case model.PayloadGeneric:
		s.generic(idx, e)

	default:
		if s.window.Contains(e.Time) {
			s.queue = append(s.queue, idx)
		}
	}
	return true
}

func (s *rangeSlicer) generic(idx model.EventIndex, e *model.Event) {
	pl := e.Payload
	switch {
	case pl.StartTime != nil && pl.EndTime != nil:
		if s.window.Intersects(*pl.StartTime, *pl.EndTime) {
			s.queue = append(s.queue, idx)
		}
	case pl.StartTime != nil:
		// Never closed: visible once it has started.
		if *pl.StartTime < s.window.End {
			s.queue = append(s.queue, idx)
		}
	case pl.EndTime != nil:
		if *pl.EndTime >= s.window.Start {
			s.queue = append(s.queue, idx)
		}
	default:
		if s.window.Contains(e.Time) {
			s.queue = append(s.queue, idx)
		}
	}
}

func (s *rangeSlicer) flushScreenshot() {
	if s.screenshot == model.NoEvent {
		return
	}
	s.queue = append(s.queue, s.screenshot)
	s.screenshot = model.NoEvent
}
