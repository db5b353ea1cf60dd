package interval

import (
	"cmp"
	"slices"

	"github.com/grafana/tracetiming/pkg/model"
)

type syntheticEvent struct {
	event model.Event
	// rank orders events sharing a timestamp: ends close before new starts
	// open, and zero-length pairs stay adjacent after other ends.
	rank int
	seq  int
}

const (
	rankEnd = iota
	rankZeroLength
	rankStart
)

// ToEvents synthesises a raw event stream from intervals. Pairing the result
// with the same capture window reproduces the intervals, up to ordering and
// source indices.
func ToEvents(intervals []model.Interval) []model.Event {
	synth := make([]syntheticEvent, 0, 2*len(intervals))
	add := func(e model.Event, rank int) {
		synth = append(synth, syntheticEvent{event: e, rank: rank, seq: len(synth)})
	}
	for _, i := range intervals {
		kind := model.PayloadInstant
		if i.Payload != nil {
			kind = i.Payload.Kind
		}
		switch {
		case i.Phase == model.PhaseInstant:
			add(model.Event{Name: i.Label, Time: i.Start, Payload: i.Payload}, rankStart)
		case kind == model.PayloadGeneric && i.Phase == model.PhaseIntervalEnd:
			add(model.Event{Name: i.Label, Time: i.End, Payload: i.Payload}, rankEnd)
		case kind == model.PayloadComplete, kind == model.PayloadGeneric, kind == model.PayloadScreenshot:
			// Self-contained: the payload carries everything needed.
			add(model.Event{Name: i.Label, Time: i.Start, Payload: i.Payload}, rankStart)
		case i.Phase == model.PhaseIntervalStart:
			add(model.Event{Name: i.Label, Time: i.Start, Payload: model.TracingStartPayload(category(i))}, rankStart)
		case i.Phase == model.PhaseIntervalEnd:
			add(model.Event{Name: i.Label, Time: i.End, Payload: model.TracingEndPayload(category(i))}, rankEnd)
		default:
			rank := rankStart
			if i.Start == i.End {
				rank = rankZeroLength
			}
			add(model.Event{Name: i.Label, Time: i.Start, Payload: model.TracingStartPayload(category(i))}, rank)
			endRank := rankEnd
			if i.Start == i.End {
				endRank = rankZeroLength
			}
			add(model.Event{Name: i.Label, Time: i.End, Payload: model.TracingEndPayload(category(i))}, endRank)
		}
	}
	slices.SortStableFunc(synth, func(a, b syntheticEvent) int {
		if c := cmp.Compare(a.event.Time, b.event.Time); c != 0 {
			return c
		}
		if c := cmp.Compare(a.rank, b.rank); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})
	events := make([]model.Event, len(synth))
	for i := range synth {
		events[i] = synth[i].event
	}
	return events
}

func category(i model.Interval) string {
	if i.Payload == nil {
		return ""
	}
	return i.Payload.Category
}
