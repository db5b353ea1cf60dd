package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/olekukonko/tablewriter"
	"github.com/xlab/treeprint"

	"github.com/grafana/tracetiming/pkg/model"
	"github.com/grafana/tracetiming/pkg/selftime"
	"github.com/grafana/tracetiming/pkg/timeline"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type record interface {
	header() []string
	row() []string
}

func render[T record](ctx context.Context, records []T) error {
	w := output(ctx)
	if cfg.output == outputJSON {
		if records == nil {
			records = []T{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	var zero T
	table := tablewriter.NewWriter(w)
	table.SetHeader(zero.header())
	table.SetAutoWrapText(false)
	for _, r := range records {
		table.Append(r.row())
	}
	table.Render()
	return nil
}

func ms(t model.Timestamp) string {
	return fmt.Sprintf("%.3f", float64(t))
}

type intervalRecord struct {
	Thread     string  `json:"thread"`
	Label      string  `json:"label"`
	Phase      string  `json:"phase"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Duration   float64 `json:"duration"`
	Incomplete bool    `json:"incomplete,omitempty"`
	Source     int     `json:"source"`
}

func (intervalRecord) header() []string {
	return []string{"Thread", "Label", "Phase", "Start", "End", "Duration", "Incomplete"}
}

func (r intervalRecord) row() []string {
	return []string{
		r.Thread, r.Label, r.Phase,
		ms(model.Timestamp(r.Start)),
		ms(model.Timestamp(r.End)),
		ms(model.Timestamp(r.Duration)),
		fmt.Sprint(r.Incomplete),
	}
}

type eventRecord struct {
	Thread string  `json:"thread"`
	Index  int     `json:"index"`
	Name   string  `json:"name"`
	Kind   string  `json:"kind"`
	Time   float64 `json:"time"`
}

func (eventRecord) header() []string {
	return []string{"Thread", "Index", "Name", "Kind", "Time"}
}

func (r eventRecord) row() []string {
	return []string{r.Thread, fmt.Sprint(r.Index), r.Name, r.Kind, ms(model.Timestamp(r.Time))}
}

type selfTimeRecord struct {
	Thread string   `json:"thread"`
	Stack  []string `json:"stack"`
	Self   float64  `json:"self"`
	Total  float64  `json:"total"`
}

func (selfTimeRecord) header() []string {
	return []string{"Thread", "Stack", "Self", "Total"}
}

func (r selfTimeRecord) row() []string {
	return []string{r.Thread, strings.Join(r.Stack, " > "), ms(model.Timestamp(r.Self)), ms(model.Timestamp(r.Total))}
}

type entryRecord struct {
	Label  string  `json:"label"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Source int     `json:"source"`
}

type rowRecord struct {
	Thread  string        `json:"thread"`
	Row     int           `json:"row"`
	Label   string        `json:"label"`
	Entries []entryRecord `json:"entries"`
}

func (rowRecord) header() []string {
	return []string{"Thread", "Row", "Label", "Entries", "Spans"}
}

func (r rowRecord) row() []string {
	spans := ""
	for i, e := range r.Entries {
		if i == 8 {
			spans += fmt.Sprintf(" (+%d)", len(r.Entries)-i)
			break
		}
		if i > 0 {
			spans += " "
		}
		spans += fmt.Sprintf("%s[%s,%s)", e.Label, ms(model.Timestamp(e.Start)), ms(model.Timestamp(e.End)))
	}
	return []string{r.Thread, fmt.Sprint(r.Row), r.Label, fmt.Sprint(len(r.Entries)), spans}
}

// renderCallTrees prints the call tree of every thread with the self and
// total time of each node.
func renderCallTrees(w io.Writer, names *model.StringTable, results []*timeline.Result) error {
	for _, r := range results {
		totals := selftime.Totals(r.Samples)
		tree := treeprint.NewWithRoot(r.Thread.String())
		branches := make([]treeprint.Tree, r.Tree.Len())
		// Parents always precede their children.
		for id, n := range r.Tree.Nodes {
			parent := tree
			if n.Parent != model.NoNode {
				parent = branches[n.Parent]
			}
			branches[id] = parent.AddBranch(fmt.Sprintf("%s: self %s total %s",
				names.Lookup(n.Label), ms(totals[model.NodeID(id)]), ms(n.TotalDuration)))
		}
		if _, err := io.WriteString(w, tree.String()); err != nil {
			return err
		}
	}
	return nil
}
