// Package chrometrace converts traces in the Chrome Trace Event Format into
// per-thread event streams.
//
// The format is documented here:
// https://docs.google.com/document/d/1CvAClvFfyA5R-PhYUmn5OOQtYMH4h6I0nSsKchNAySU
package chrometrace

// Phase constants.
const (
	PhaseBegin         = "B"
	PhaseEnd           = "E"
	PhaseComplete      = "X"
	PhaseInstant       = "i"
	PhaseInstantLegacy = "I"
	PhaseMark          = "R"
	PhaseAsyncBegin    = "b"
	PhaseAsyncEnd      = "e"
	PhaseAsyncInstant  = "n"
	PhaseObjectSnap    = "O"
	PhaseMetadata      = "M"
)

// ScreenshotName is the name Chrome gives to screenshot snapshots.
const ScreenshotName = "Screenshot"

// Event is one entry of the traceEvents array. Timestamps are in
// microseconds.
type Event struct {
	Name      string         `json:"name,omitempty"`
	Category  string         `json:"cat,omitempty"`
	Phase     string         `json:"ph"`
	Timestamp float64        `json:"ts"`
	Duration  *float64       `json:"dur,omitempty"`
	ProcessID int64          `json:"pid"`
	ThreadID  int64          `json:"tid"`
	ID        any            `json:"id,omitempty"`
	Args      map[string]any `json:"args,omitempty"`
}

// File is the object form of a trace. The array form is a bare list of
// events.
type File struct {
	TraceEvents     []Event `json:"traceEvents"`
	DisplayTimeUnit string  `json:"displayTimeUnit,omitempty"`
}
