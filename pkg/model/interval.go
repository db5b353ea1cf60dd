package model

import (
	"cmp"
	"slices"
)

// Phase describes which bounds of an Interval were observed.
type Phase uint8

const (
	// PhaseInstant is a zero-duration interval.
	PhaseInstant Phase = iota
	// PhaseInterval has both bounds observed.
	PhaseInterval
	// PhaseIntervalStart has an observed start; the end lies after the capture.
	PhaseIntervalStart
	// PhaseIntervalEnd has an observed end; the start lies before the capture.
	PhaseIntervalEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseInstant:
		return "instant"
	case PhaseInterval:
		return "interval"
	case PhaseIntervalStart:
		return "interval-start"
	case PhaseIntervalEnd:
		return "interval-end"
	default:
		return "unknown"
	}
}

// NoEvent marks the absence of a source event.
const NoEvent EventIndex = -1

// Interval is a reconstructed [Start, End) span. End >= Start always holds;
// instants have End == Start.
type Interval struct {
	Start Timestamp
	End   Timestamp
	Phase Phase
	Label StringID
	// Source is the event the interval was derived from: the start event
	// for paired intervals, or the end event when no start was observed.
	Source EventIndex
	// EndSource is the closing event of a paired interval, NoEvent otherwise.
	EndSource EventIndex
	// Incomplete marks intervals with a bound outside of the capture window.
	Incomplete bool
	Payload    *Payload
}

func (i Interval) Duration() Timestamp {
	return i.End - i.Start
}

// SortIntervals orders intervals by start time, keeping the relative order of
// intervals starting at the same time.
func SortIntervals(intervals []Interval) {
	slices.SortStableFunc(intervals, func(a, b Interval) int {
		return cmp.Compare(a.Start, b.Start)
	})
}

// SortIntervalsForNesting orders intervals by start time and, on ties, puts
// longer intervals first so that enclosing intervals precede their children.
func SortIntervalsForNesting(intervals []Interval) {
	slices.SortStableFunc(intervals, func(a, b Interval) int {
		if c := cmp.Compare(a.Start, b.Start); c != 0 {
			return c
		}
		return cmp.Compare(b.End, a.End)
	})
}

// AsEvent returns a self-contained event carrying the interval bounds.
func (i Interval) AsEvent() Event {
	return Event{
		Name:    i.Label,
		Time:    i.Start,
		Payload: CompletePayload(i.Start, i.End),
	}
}
