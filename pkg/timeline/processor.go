// Package timeline runs interval pairing and the timing projections over the
// threads of a converted trace.
package timeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/hashicorp/go-multierror"
	lru "github.com/hashicorp/golang-lru/v2"
	pkgerrors "github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/grafana/tracetiming/pkg/appcontext"
	"github.com/grafana/tracetiming/pkg/convert/chrometrace"
	"github.com/grafana/tracetiming/pkg/interval"
	"github.com/grafana/tracetiming/pkg/model"
	"github.com/grafana/tracetiming/pkg/rows"
	"github.com/grafana/tracetiming/pkg/selftime"
	"github.com/grafana/tracetiming/pkg/stacktree"
)

// Result holds everything computed for a single thread. Results may be
// shared through the cache and must not be modified.
type Result struct {
	Thread    *chrometrace.Thread
	Intervals []model.Interval
	// Markers are the intervals packed into rows per marker name.
	Markers []model.TimingRow

	// The fields below are only set in tracer mode. Entry sources refer to
	// the thread's events.
	Tree    *model.Tree
	Samples []model.SelfTimeSample
	// Depth holds one row per stack depth with every call.
	Depth []model.TimingRow
	// Leaves holds the self-time pieces of the calls, one row per label.
	Leaves []model.TimingRow
}

// Incomplete returns the number of intervals with a bound outside of the
// capture window.
func (r *Result) Incomplete() int {
	return lo.CountBy(r.Intervals, func(i model.Interval) bool { return i.Incomplete })
}

// Stats are the running totals of a processor.
type Stats struct {
	Threads int64
	Failed  int64
	Cached  int64
}

type Processor struct {
	cfg     Config
	logger  log.Logger
	metrics *metrics
	cache   *lru.Cache[uint64, *Result]

	threads atomic.Int64
	failed  atomic.Int64
	cached  atomic.Int64
}

// New creates a processor. The logger and the metrics registry are taken
// from ctx.
func New(ctx context.Context, cfg Config) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Processor{
		cfg:     cfg,
		logger:  log.With(appcontext.Logger(ctx), "component", "timeline"),
		metrics: newMetrics(appcontext.Registry(ctx)),
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[uint64, *Result](cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		p.cache = cache
	}
	return p, nil
}

// Process handles the threads of the profile concurrently. Results are
// returned in thread order; threads that failed are left out and their
// errors are combined into the returned error. Cancelling ctx aborts
// processing and returns the context error only.
func (p *Processor) Process(ctx context.Context, profile *chrometrace.Profile) ([]*Result, error) {
	start := time.Now()
	results := make([]*Result, len(profile.Threads))
	var (
		mu     sync.Mutex
		errs   *multierror.Error
		failed int
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for i, t := range profile.Threads {
		i, t := i, t
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := p.ProcessThread(profile.Strings, t)
			if err != nil {
				mu.Lock()
				errs = multierror.Append(errs, pkgerrors.Wrapf(err, "thread %s", t))
				failed++
				mu.Unlock()
				return nil
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	level.Info(p.logger).Log(
		"msg", "processed threads",
		"mode", p.cfg.Mode,
		"threads", humanize.Comma(int64(len(profile.Threads))),
		"failed", failed,
		"duration", time.Since(start),
	)
	return lo.Compact(results), errs.ErrorOrNil()
}

// ProcessThread computes the result of a single thread, consulting the cache
// first.
func (p *Processor) ProcessThread(strings *model.StringTable, t *chrometrace.Thread) (*Result, error) {
	p.threads.Inc()
	var (
		key       uint64
		cacheable bool
	)
	if p.cache != nil {
		key, cacheable = cacheKey(p.cfg.Mode, strings, t.Capture, t.Events)
	}
	if cacheable {
		if r, ok := p.cache.Get(key); ok {
			p.cached.Inc()
			p.metrics.cache.WithLabelValues("hit").Inc()
			p.metrics.threads.WithLabelValues(string(p.cfg.Mode), "cached").Inc()
			if r.Thread != t {
				c := *r
				c.Thread = t
				r = &c
			}
			return r, nil
		}
		p.metrics.cache.WithLabelValues("miss").Inc()
	}

	start := time.Now()
	r, err := p.process(strings, t)
	p.metrics.duration.WithLabelValues(string(p.cfg.Mode)).Observe(time.Since(start).Seconds())
	if err != nil {
		p.failed.Inc()
		p.metrics.threads.WithLabelValues(string(p.cfg.Mode), "failed").Inc()
		if errors.Is(err, model.ErrNestingViolation) {
			p.metrics.violations.Inc()
		}
		level.Warn(p.logger).Log("msg", "failed to process thread", "thread", t, "err", err)
		return nil, err
	}
	p.metrics.threads.WithLabelValues(string(p.cfg.Mode), "success").Inc()
	if cacheable {
		p.cache.Add(key, r)
	}
	return r, nil
}

func (p *Processor) process(strings *model.StringTable, t *chrometrace.Thread) (*Result, error) {
	logger := log.With(p.logger, "thread", t)
	r := &Result{
		Thread:    t,
		Intervals: interval.Pair(t.Events, t.Capture.Start, t.Capture.End, interval.WithLogger(logger)),
	}
	incomplete := r.Incomplete()
	p.metrics.intervals.WithLabelValues("false").Add(float64(incomplete))
	p.metrics.intervals.WithLabelValues("true").Add(float64(len(r.Intervals) - incomplete))
	level.Debug(logger).Log(
		"msg", "paired intervals",
		"events", humanize.Comma(int64(len(t.Events))),
		"intervals", humanize.Comma(int64(len(r.Intervals))),
		"incomplete", incomplete,
		"capture", t.Capture.Duration(),
	)

	r.Markers = rows.PackByLabel(r.Intervals, strings)
	if p.cfg.Mode == ModeTracer {
		if err := tracer(r, strings); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// tracer builds the call tree of the intervals of r. Instants and
// screenshots are not calls and are left out.
func tracer(r *Result, strings *model.StringTable) error {
	calls := lo.Filter(r.Intervals, func(i model.Interval, _ int) bool {
		return i.Phase != model.PhaseInstant &&
			(i.Payload == nil || i.Payload.Kind != model.PayloadScreenshot)
	})
	model.SortIntervalsForNesting(calls)
	events := lo.Map(calls, func(i model.Interval, _ int) model.Event {
		return i.AsEvent()
	})

	tree, nodes, err := stacktree.Reconstruct(events)
	if err != nil {
		return err
	}
	spans := stacktree.Spans(events, nodes)
	samples, err := selftime.Decompose(spans)
	if err != nil {
		return err
	}
	leaves, err := selftime.LeafTiming(spans, strings)
	if err != nil {
		return err
	}
	depth := stacktree.TimingByDepth(tree, events, nodes)

	// Positions in calls are mapped back to the thread's events.
	for _, rs := range [][]model.TimingRow{depth, leaves} {
		for i := range rs {
			for j := range rs[i].Entries {
				e := &rs[i].Entries[j]
				e.Source = calls[e.Source].Source
			}
		}
	}
	r.Tree = tree
	r.Samples = samples
	r.Depth = depth
	r.Leaves = leaves
	return nil
}

func (p *Processor) Stats() Stats {
	return Stats{
		Threads: p.threads.Load(),
		Failed:  p.failed.Load(),
		Cached:  p.cached.Load(),
	}
}
