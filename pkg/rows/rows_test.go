package rows

import (
	"math/rand"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/tracetiming/pkg/model"
)

func entry(start, end model.Timestamp) model.TimingEntry {
	return model.TimingEntry{Start: start, End: end}
}

func bounds(row model.TimingRow) [][2]model.Timestamp {
	return lo.Map(row.Entries, func(e model.TimingEntry, _ int) [2]model.Timestamp {
		return [2]model.Timestamp{e.Start, e.End}
	})
}

func TestPack(t *testing.T) {
	rows := Pack("DOMEvent", []model.TimingEntry{
		entry(0, 5),
		entry(1, 3),
		entry(3, 4),
		entry(5, 6),
		entry(2, 7),
		entry(4, 4),
	})
	require.Len(t, rows, 3)
	assert.Equal(t, [][2]model.Timestamp{{0, 5}, {5, 6}}, bounds(rows[0]))
	assert.Equal(t, [][2]model.Timestamp{{1, 3}, {3, 4}, {4, 4}}, bounds(rows[1]))
	assert.Equal(t, [][2]model.Timestamp{{2, 7}}, bounds(rows[2]))
	for _, r := range rows {
		assert.Equal(t, "DOMEvent", r.Label)
	}
}

func TestPackEmpty(t *testing.T) {
	assert.Empty(t, Pack("x", nil))
}

func TestPackNonOverlap(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	entries := make([]model.TimingEntry, 500)
	for i := range entries {
		s := model.Timestamp(rng.Intn(1000))
		entries[i] = entry(s, s+model.Timestamp(rng.Intn(50)))
	}
	rows := Pack("", entries)

	var placed int
	for _, r := range rows {
		placed += len(r.Entries)
		for i := 1; i < len(r.Entries); i++ {
			require.LessOrEqual(t, r.Entries[i-1].End, r.Entries[i].Start)
		}
	}
	assert.Equal(t, len(entries), placed)

	// Deterministic for a given order.
	assert.Equal(t, rows, Pack("", entries))
}

func TestPackByLabel(t *testing.T) {
	st := model.NewStringTable()
	paint, gc := st.Put("Paint"), st.Put("GCMajor")
	intervals := []model.Interval{
		{Start: 4, End: 6, Label: paint, Source: 0},
		{Start: 0, End: 10, Label: gc, Source: 1},
		{Start: 1, End: 5, Label: paint, Source: 2},
		{Start: 3, End: 3, Label: gc, Source: 3, Phase: model.PhaseInstant},
	}
	rows := PackByLabel(intervals, st)
	require.Len(t, rows, 4)

	assert.Equal(t, "GCMajor", rows[0].Label)
	assert.Equal(t, [][2]model.Timestamp{{0, 10}}, bounds(rows[0]))
	assert.Equal(t, "GCMajor", rows[1].Label)
	assert.Equal(t, [][2]model.Timestamp{{3, 3}}, bounds(rows[1]))

	assert.Equal(t, "Paint", rows[2].Label)
	assert.Equal(t, model.EventIndex(2), rows[2].Entries[0].Source)
	assert.Equal(t, "Paint", rows[3].Label)
	assert.Equal(t, model.EventIndex(0), rows[3].Entries[0].Source)
}
