package model

import (
	"math"
	"strconv"
)

// Timestamp is a point in time, or a duration, in milliseconds relative to
// the start of the profile. Comparisons are exact: no rounding is applied.
type Timestamp float64

// Infinity is an unbounded range end.
var Infinity = Timestamp(math.Inf(1))

func (t Timestamp) Min(b Timestamp) Timestamp {
	if t < b {
		return t
	}
	return b
}

func (t Timestamp) Max(b Timestamp) Timestamp {
	if t > b {
		return t
	}
	return b
}

func (t Timestamp) String() string {
	return strconv.FormatFloat(float64(t), 'f', -1, 64)
}

// TimeRange is a half-open [Start, End) range.
type TimeRange struct {
	Start Timestamp
	End   Timestamp
}

func (r TimeRange) Duration() Timestamp {
	return r.End - r.Start
}

// Contains reports whether t lies within [Start, End).
func (r TimeRange) Contains(t Timestamp) bool {
	return r.Start <= t && t < r.End
}

// Intersects reports whether the closed span [start, end] overlaps the range.
// An interval ending exactly at Start is still visible.
func (r TimeRange) Intersects(start, end Timestamp) bool {
	return start < r.End && end >= r.Start
}
