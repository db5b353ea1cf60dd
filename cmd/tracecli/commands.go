package main

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-kit/log/level"
	"gopkg.in/alecthomas/kingpin.v2"

	"github.com/grafana/tracetiming/pkg/convert/chrometrace"
	"github.com/grafana/tracetiming/pkg/interval"
	"github.com/grafana/tracetiming/pkg/iter"
	"github.com/grafana/tracetiming/pkg/model"
	"github.com/grafana/tracetiming/pkg/selftime"
	"github.com/grafana/tracetiming/pkg/timeline"
)

type traceParams struct {
	path string
}

func addTraceParams(cmd *kingpin.CmdClause) *traceParams {
	params := &traceParams{}
	cmd.Arg("trace", "Chrome trace event file, optionally gzip or zstd compressed.").Required().ExistingFileVar(&params.path)
	return params
}

type sliceParams struct {
	*traceParams
	start     float64
	end       float64
	batchSize int
}

func addSliceParams(cmd *kingpin.CmdClause) *sliceParams {
	params := &sliceParams{traceParams: addTraceParams(cmd)}
	cmd.Flag("start", "Start of the range in milliseconds.").Required().Float64Var(&params.start)
	cmd.Flag("end", "End of the range in milliseconds.").Required().Float64Var(&params.end)
	cmd.Flag("batch-size", "Number of selected events handled at once.").Default("1024").IntVar(&params.batchSize)
	return params
}

type selfTimeParams struct {
	*traceParams
	tree bool
}

func addSelfTimeParams(cmd *kingpin.CmdClause) *selfTimeParams {
	params := &selfTimeParams{traceParams: addTraceParams(cmd)}
	cmd.Flag("tree", "Print the call tree of every thread instead of a flat list.").BoolVar(&params.tree)
	return params
}

type stackTimingParams struct {
	*traceParams
	leaves bool
}

func addStackTimingParams(cmd *kingpin.CmdClause) *stackTimingParams {
	params := &stackTimingParams{traceParams: addTraceParams(cmd)}
	cmd.Flag("leaves", "Show the self time of every call, one row per label, instead of one row per stack depth.").BoolVar(&params.leaves)
	return params
}

func loadProfile(ctx context.Context, path string) (*chrometrace.Profile, error) {
	events, err := chrometrace.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := chrometrace.Convert(logger(ctx), events)
	if cfg.thread != "" {
		p.Threads = slices.DeleteFunc(p.Threads, func(t *chrometrace.Thread) bool {
			return !strings.Contains(t.String(), cfg.thread)
		})
	}
	level.Debug(logger(ctx)).Log(
		"msg", "loaded trace",
		"path", path,
		"events", humanize.Comma(int64(len(events))),
		"threads", len(p.Threads),
	)
	return p, nil
}

// process runs the timeline processor over the trace. A non-empty mode
// overrides the configured one. Threads that fail are reported and skipped.
func process(ctx context.Context, conf config, mode timeline.Mode, path string) (*chrometrace.Profile, []*timeline.Result, error) {
	p, err := loadProfile(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	if mode != "" {
		conf.Timeline.Mode = mode
	}
	proc, err := timeline.New(ctx, conf.Timeline)
	if err != nil {
		return nil, nil, err
	}
	results, err := proc.Process(ctx, p)
	if err != nil {
		if len(results) == 0 {
			return nil, nil, err
		}
		level.Warn(logger(ctx)).Log("msg", "some threads could not be processed", "err", err)
	}
	return p, results, nil
}

func intervals(ctx context.Context, conf config, params *traceParams) error {
	p, results, err := process(ctx, conf, "", params.path)
	if err != nil {
		return err
	}
	var records []intervalRecord
	for _, r := range results {
		ivs := slices.Clone(r.Intervals)
		model.SortIntervals(ivs)
		for _, iv := range ivs {
			records = append(records, intervalRecord{
				Thread:     r.Thread.String(),
				Label:      p.Strings.Lookup(iv.Label),
				Phase:      iv.Phase.String(),
				Start:      float64(iv.Start),
				End:        float64(iv.End),
				Duration:   float64(iv.Duration()),
				Incomplete: iv.Incomplete,
				Source:     int(iv.Source),
			})
		}
	}
	return render(ctx, records)
}

func slice(ctx context.Context, params *sliceParams) error {
	if params.end < params.start {
		return fmt.Errorf("range end %v is before its start %v", params.end, params.start)
	}
	if params.batchSize < 1 {
		return fmt.Errorf("batch size must be positive, got %d", params.batchSize)
	}
	p, err := loadProfile(ctx, params.path)
	if err != nil {
		return err
	}
	var records []eventRecord
	for _, t := range p.Threads {
		it := interval.SelectIndexesInRange(t.Events, model.Timestamp(params.start), model.Timestamp(params.end))
		err = iter.ReadBatch(ctx, it, params.batchSize, func(_ context.Context, batch []model.EventIndex) error {
			for _, idx := range batch {
				e := &t.Events[idx]
				records = append(records, eventRecord{
					Thread: t.String(),
					Index:  int(idx),
					Name:   p.Strings.Lookup(e.Name),
					Kind:   e.Kind().String(),
					Time:   float64(e.Time),
				})
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return render(ctx, records)
}

func selfTime(ctx context.Context, conf config, params *selfTimeParams) error {
	p, results, err := process(ctx, conf, timeline.ModeTracer, params.path)
	if err != nil {
		return err
	}
	if params.tree {
		return renderCallTrees(output(ctx), p.Strings, results)
	}
	var records []selfTimeRecord
	for _, r := range results {
		totals := selftime.Totals(r.Samples)
		first := len(records)
		for id, node := range r.Tree.Nodes {
			path := r.Tree.Path(model.NodeID(id))
			stack := make([]string, len(path))
			for i, n := range path {
				stack[i] = p.Strings.Lookup(r.Tree.Nodes[n].Label)
			}
			records = append(records, selfTimeRecord{
				Thread: r.Thread.String(),
				Stack:  stack,
				Self:   float64(totals[model.NodeID(id)]),
				Total:  float64(node.TotalDuration),
			})
		}
		slices.SortStableFunc(records[first:], func(a, b selfTimeRecord) int {
			return cmp.Compare(b.Self, a.Self)
		})
	}
	return render(ctx, records)
}

func markerRows(ctx context.Context, conf config, params *traceParams) error {
	p, results, err := process(ctx, conf, timeline.ModeMarkers, params.path)
	if err != nil {
		return err
	}
	return renderRows(ctx, p.Strings, results, func(r *timeline.Result) []model.TimingRow {
		return r.Markers
	})
}

func stackTiming(ctx context.Context, conf config, params *stackTimingParams) error {
	p, results, err := process(ctx, conf, timeline.ModeTracer, params.path)
	if err != nil {
		return err
	}
	return renderRows(ctx, p.Strings, results, func(r *timeline.Result) []model.TimingRow {
		if params.leaves {
			return r.Leaves
		}
		return r.Depth
	})
}

func renderRows(ctx context.Context, names *model.StringTable, results []*timeline.Result, rows func(*timeline.Result) []model.TimingRow) error {
	var records []rowRecord
	for _, r := range results {
		for i, row := range rows(r) {
			entries := make([]entryRecord, len(row.Entries))
			for j, e := range row.Entries {
				entries[j] = entryRecord{
					Label:  names.Lookup(e.Label),
					Start:  float64(e.Start),
					End:    float64(e.End),
					Source: int(e.Source),
				}
			}
			records = append(records, rowRecord{
				Thread:  r.Thread.String(),
				Row:     i,
				Label:   row.Label,
				Entries: entries,
			})
		}
	}
	return render(ctx, records)
}
