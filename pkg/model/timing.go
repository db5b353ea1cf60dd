package model

// TimingEntry is one box of a display row.
type TimingEntry struct {
	Start  Timestamp
	End    Timestamp
	Label  StringID
	Source EventIndex
}

// TimingRow is a list of entries ordered by start; entries never overlap:
// Entries[i].End <= Entries[i+1].Start.
type TimingRow struct {
	Label   string
	Entries []TimingEntry
}

// Last returns the most recently placed entry.
func (r *TimingRow) Last() (TimingEntry, bool) {
	if len(r.Entries) == 0 {
		return TimingEntry{}, false
	}
	return r.Entries[len(r.Entries)-1], true
}
