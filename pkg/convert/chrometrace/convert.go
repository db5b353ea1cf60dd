package chrometrace

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/grafana/tracetiming/pkg/iter"
	"github.com/grafana/tracetiming/pkg/model"
)

// Thread is the event stream of one (pid, tid) pair, ordered by time.
type Thread struct {
	PID    int64
	TID    int64
	Name   string
	Events []model.Event
	// Capture is the window spanned by the thread's events.
	Capture model.TimeRange
}

func (t *Thread) String() string {
	if t.Name != "" {
		return fmt.Sprintf("%s (%d:%d)", t.Name, t.PID, t.TID)
	}
	return fmt.Sprintf("%d:%d", t.PID, t.TID)
}

// Profile is a converted trace. All threads share one string table.
type Profile struct {
	Strings *model.StringTable
	Threads []*Thread
}

type threadKey struct {
	pid, tid int64
}

type converter struct {
	logger  log.Logger
	strings *model.StringTable
	threads map[threadKey]*threadState
	order   []threadKey
}

type threadState struct {
	*Thread
	// open holds the names of unclosed B events, for E events that omit
	// their name.
	open []string
}

// Convert groups events by thread and turns them into model events. Times are
// converted from microseconds to milliseconds.
func Convert(logger log.Logger, events []Event) *Profile {
	c := &converter{
		logger:  logger,
		strings: model.NewStringTable(),
		threads: make(map[threadKey]*threadState),
	}
	// Thread names may be declared after the thread's first event.
	for i := range events {
		if events[i].Phase == PhaseMetadata && events[i].Name == "thread_name" {
			c.thread(events[i]).Name, _ = events[i].Args["name"].(string)
		}
	}
	events = slices.Clone(events)
	slices.SortStableFunc(events, func(a, b Event) int {
		return cmp.Compare(a.Timestamp, b.Timestamp)
	})
	for i := range events {
		c.add(events[i])
	}
	return c.profile()
}

func (c *converter) thread(e Event) *threadState {
	key := threadKey{pid: e.ProcessID, tid: e.ThreadID}
	t, ok := c.threads[key]
	if !ok {
		t = &threadState{Thread: &Thread{PID: e.ProcessID, TID: e.ThreadID}}
		c.threads[key] = t
		c.order = append(c.order, key)
	}
	return t
}

func millis(us float64) model.Timestamp {
	return model.Timestamp(us / 1000)
}

func (c *converter) add(e Event) {
	if e.Phase == PhaseMetadata {
		return
	}
	t := c.thread(e)
	ts := millis(e.Timestamp)
	name := e.Name

	var payload *model.Payload
	switch e.Phase {
	case PhaseBegin:
		t.open = append(t.open, name)
		payload = model.TracingStartPayload(e.Category)

	case PhaseEnd:
		name = t.close(name)
		if name == "" {
			level.Warn(c.logger).Log("msg", "dropping end event without a name or an open begin", "thread", t, "ts", e.Timestamp)
			return
		}
		payload = model.TracingEndPayload(e.Category)

	case PhaseAsyncBegin:
		payload = model.TracingStartPayload(e.Category)

	case PhaseAsyncEnd:
		payload = model.TracingEndPayload(e.Category)

	case PhaseComplete:
		var dur float64
		if e.Duration != nil {
			dur = *e.Duration
		}
		payload = model.CompletePayload(ts, millis(e.Timestamp+dur))

	case PhaseInstant, PhaseInstantLegacy, PhaseAsyncInstant, PhaseMark, PhaseObjectSnap:
		if name == ScreenshotName {
			payload = model.ScreenshotPayload(windowID(e.ID))
		} else {
			payload = model.InstantPayload()
		}

	default:
		level.Warn(c.logger).Log("msg", "unsupported phase, keeping as generic event", "phase", e.Phase, "name", name)
		payload = model.GenericPayload(e.Args, nil, nil)
	}

	t.Events = append(t.Events, model.Event{
		Name:    c.strings.Put(name),
		Time:    ts,
		Payload: payload,
	})
}

// close returns the name of the B event closed by an E event.
func (t *threadState) close(name string) string {
	if name == "" {
		if len(t.open) == 0 {
			return ""
		}
		name = t.open[len(t.open)-1]
		t.open = t.open[:len(t.open)-1]
		return name
	}
	for i := len(t.open) - 1; i >= 0; i-- {
		if t.open[i] == name {
			t.open = slices.Delete(t.open, i, i+1)
			break
		}
	}
	return name
}

func (c *converter) profile() *Profile {
	p := &Profile{Strings: c.strings}
	for _, key := range c.order {
		t := c.threads[key]
		if len(t.Events) == 0 {
			continue
		}
		t.Capture = captureRange(t.Events)
		p.Threads = append(p.Threads, t.Thread)
	}
	return p
}

// captureRange is the window spanned by events, including the bounds carried
// by their payloads.
func captureRange(events []model.Event) model.TimeRange {
	starts := make([]model.Timestamp, len(events))
	ends := make([]model.Timestamp, len(events))
	for i := range events {
		s, e := events[i].Span()
		starts[i] = s.Min(events[i].Time)
		ends[i] = e.Max(events[i].Time)
	}
	// Slice iterators never fail.
	start, _ := iter.Min(iter.NewSliceIterator(starts))
	end, _ := iter.Max(iter.NewSliceIterator(ends))
	return model.TimeRange{Start: start, End: end}
}

func windowID(id any) string {
	if id == nil {
		return ""
	}
	return fmt.Sprint(id)
}
