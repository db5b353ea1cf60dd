// Package interval reconstructs intervals from a flat stream of phased
// events and answers range queries over the raw stream.
package interval

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/grafana/tracetiming/pkg/model"
)

type options struct {
	logger log.Logger
}

type Option func(*options)

// WithLogger sets the logger used to report events with an unrecognised
// payload shape.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func newOptions(opts []Option) options {
	o := options{logger: log.NewNopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

type pairer struct {
	capture model.TimeRange
	logger  log.Logger

	open       openStacks
	screenshot *pendingScreenshot
	out        []model.Interval
}

type pendingScreenshot struct {
	index model.EventIndex
	event *model.Event
}

// Pair turns a time-ordered event stream into intervals.
//
// Start and end events are matched per name in LIFO order, so same-named
// intervals nest. An end without a start produces an incomplete interval
// starting at min(captureStart, end); a start without an end produces an
// incomplete interval ending at captureEnd. Screenshots last until the next
// screenshot, the last one until captureEnd.
//
// Intervals are returned in the order they are closed.
func Pair(events []model.Event, captureStart, captureEnd model.Timestamp, opts ...Option) []model.Interval {
	o := newOptions(opts)
	p := &pairer{
		capture: model.TimeRange{Start: captureStart, End: captureEnd},
		logger:  o.logger,
		open:    make(openStacks),
		out:     make([]model.Interval, 0, len(events)),
	}
	for i := range events {
		p.add(model.EventIndex(i), &events[i])
	}
	p.finish()
	return p.out
}

func (p *pairer) add(idx model.EventIndex, e *model.Event) {
	if e.Payload == nil {
		p.instant(idx, e)
		return
	}
	switch e.Payload.Kind {
	case model.PayloadInstant:
		p.instant(idx, e)

	case model.PayloadTracingStart:
		p.open.push(e.Name, openInterval{index: idx, start: e.Time, payload: e.Payload})

	case model.PayloadTracingEnd:
		p.end(idx, e, e.Time)

	case model.PayloadComplete:
		start, end := e.Span()
		if end < start {
			level.Warn(p.logger).Log("msg", "complete event ends before it starts", "index", idx, "start", start, "end", end)
			end = start
		}
		p.emit(model.Interval{
			Start:     start,
			End:       end,
			Phase:     model.PhaseInterval,
			Label:     e.Name,
			Source:    idx,
			EndSource: model.NoEvent,
			Payload:   e.Payload,
		})

	case model.PayloadScreenshot:
		p.flushScreenshot(e.Time)
		p.screenshot = &pendingScreenshot{index: idx, event: e}

	case model.PayloadGeneric:
		p.generic(idx, e)

	default:
		level.Warn(p.logger).Log("msg", "unknown payload shape, treating as instant", "index", idx, "kind", e.Payload.Kind)
		p.instant(idx, e)
	}
}

func (p *pairer) generic(idx model.EventIndex, e *model.Event) {
	pl := e.Payload
	switch {
	case pl.StartTime != nil && pl.EndTime != nil:
		start, end := *pl.StartTime, *pl.EndTime
		p.emit(model.Interval{
			Start:     start,
			End:       end.Max(start),
			Phase:     model.PhaseInterval,
			Label:     e.Name,
			Source:    idx,
			EndSource: model.NoEvent,
			Payload:   pl,
		})
	case pl.StartTime != nil:
		p.emit(p.unmatchedStart(openInterval{name: e.Name, index: idx, start: *pl.StartTime, payload: pl}))
	case pl.EndTime != nil:
		p.emit(p.unmatchedEnd(idx, e, *pl.EndTime))
	default:
		p.instant(idx, e)
	}
}

func (p *pairer) instant(idx model.EventIndex, e *model.Event) {
	p.emit(model.Interval{
		Start:     e.Time,
		End:       e.Time,
		Phase:     model.PhaseInstant,
		Label:     e.Name,
		Source:    idx,
		EndSource: model.NoEvent,
		Payload:   e.Payload,
	})
}

func (p *pairer) end(idx model.EventIndex, e *model.Event, end model.Timestamp) {
	start, ok := p.open.pop(e.Name)
	if !ok {
		p.emit(p.unmatchedEnd(idx, e, end))
		return
	}
	p.emit(model.Interval{
		Start:     start.start,
		End:       end.Max(start.start),
		Phase:     model.PhaseInterval,
		Label:     e.Name,
		Source:    start.index,
		EndSource: idx,
		Payload:   start.payload,
	})
}

// unmatchedEnd builds the interval of an end whose start precedes the capture.
// Only the end payload is known.
func (p *pairer) unmatchedEnd(idx model.EventIndex, e *model.Event, end model.Timestamp) model.Interval {
	return model.Interval{
		Start:      p.capture.Start.Min(end),
		End:        end,
		Phase:      model.PhaseIntervalEnd,
		Label:      e.Name,
		Source:     idx,
		EndSource:  model.NoEvent,
		Incomplete: true,
		Payload:    e.Payload,
	}
}

func (p *pairer) flushScreenshot(until model.Timestamp) {
	s := p.screenshot
	if s == nil {
		return
	}
	p.screenshot = nil
	p.emit(model.Interval{
		Start:     s.event.Time,
		End:       until.Max(s.event.Time),
		Phase:     model.PhaseInterval,
		Label:     s.event.Name,
		Source:    s.index,
		EndSource: model.NoEvent,
		Payload:   s.event.Payload,
	})
}

func (p *pairer) finish() {
	p.flushScreenshot(p.capture.End)
	for _, o := range p.open.drain() {
		p.emit(p.unmatchedStart(o))
	}
}

// unmatchedStart closes an interval whose end lies after the capture.
func (p *pairer) unmatchedStart(o openInterval) model.Interval {
	return model.Interval{
		Start:      o.start,
		End:        (p.capture.End-o.start).Max(0) + o.start,
		Phase:      model.PhaseIntervalStart,
		Label:      o.name,
		Source:     o.index,
		EndSource:  model.NoEvent,
		Incomplete: true,
		Payload:    o.payload,
	}
}

func (p *pairer) emit(i model.Interval) {
	p.out = append(p.out, i)
}
