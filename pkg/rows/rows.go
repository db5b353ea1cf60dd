// Package rows packs intervals into non-overlapping display rows.
package rows

import (
	"cmp"
	"slices"

	"github.com/grafana/tracetiming/pkg/model"
)

// Pack places each entry, in input order, in the first row whose last entry
// ends no later than the entry starts, opening a new row when none fits.
// Every row created is labelled with label. The assignment depends only on
// the input order.
func Pack(label string, entries []model.TimingEntry) []model.TimingRow {
	var rows []model.TimingRow
	for _, e := range entries {
		placed := false
		for i := range rows {
			if last, _ := rows[i].Last(); last.End <= e.Start {
				rows[i].Entries = append(rows[i].Entries, e)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, model.TimingRow{
				Label:   label,
				Entries: []model.TimingEntry{e},
			})
		}
	}
	return rows
}

// Entries converts intervals into timing entries.
func Entries(intervals []model.Interval) []model.TimingEntry {
	entries := make([]model.TimingEntry, len(intervals))
	for i, iv := range intervals {
		entries[i] = model.TimingEntry{
			Start:  iv.Start,
			End:    iv.End,
			Label:  iv.Label,
			Source: iv.Source,
		}
	}
	return entries
}

// PackByLabel builds marker-chart rows: intervals are grouped by label, the
// groups are ordered by label name, and each group is packed on its own rows
// labelled with the name. Within a group, intervals are packed in start
// order.
func PackByLabel(intervals []model.Interval, strings *model.StringTable) []model.TimingRow {
	groups := make(map[model.StringID][]model.TimingEntry)
	for _, e := range Entries(intervals) {
		groups[e.Label] = append(groups[e.Label], e)
	}
	labels := make([]model.StringID, 0, len(groups))
	for l := range groups {
		labels = append(labels, l)
	}
	slices.SortFunc(labels, func(a, b model.StringID) int {
		if c := cmp.Compare(strings.Lookup(a), strings.Lookup(b)); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})

	var rows []model.TimingRow
	for _, l := range labels {
		entries := groups[l]
		slices.SortStableFunc(entries, func(a, b model.TimingEntry) int {
			return cmp.Compare(a.Start, b.Start)
		})
		rows = append(rows, Pack(strings.Lookup(l), entries)...)
	}
	return rows
}
