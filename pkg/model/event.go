package model

// StringID is an index into a StringTable.
type StringID int32

// EventIndex is the position of an event in the raw event stream.
type EventIndex int

// Event is one timestamped record of the raw trace. Events are produced by a
// parser and never modified afterwards.
type Event struct {
	Name    StringID
	Time    Timestamp
	Payload *Payload
}

// Kind returns the payload kind, treating payload-less events as instants.
func (e *Event) Kind() PayloadKind {
	if e.Payload == nil {
		return PayloadInstant
	}
	return e.Payload.Kind
}

// Span returns the extent of the event. Complete payloads and Generic
// payloads carrying both bounds span [StartTime, EndTime]; every other event
// is a zero-length span at Time.
func (e *Event) Span() (start, end Timestamp) {
	p := e.Payload
	if p == nil {
		return e.Time, e.Time
	}
	switch p.Kind {
	case PayloadComplete:
		return p.startOr(e.Time), p.endOr(e.Time)
	case PayloadGeneric:
		if p.StartTime != nil && p.EndTime != nil {
			return *p.StartTime, *p.EndTime
		}
	}
	return e.Time, e.Time
}
