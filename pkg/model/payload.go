package model

import "fmt"

// PayloadKind tags the variant held by a Payload.
type PayloadKind uint8

const (
	PayloadInstant PayloadKind = iota
	PayloadTracingStart
	PayloadTracingEnd
	PayloadComplete
	PayloadScreenshot
	PayloadGeneric
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadInstant:
		return "instant"
	case PayloadTracingStart:
		return "tracing-start"
	case PayloadTracingEnd:
		return "tracing-end"
	case PayloadComplete:
		return "complete"
	case PayloadScreenshot:
		return "screenshot"
	case PayloadGeneric:
		return "generic"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Known reports whether k is one of the recognised payload variants.
func (k PayloadKind) Known() bool {
	return k <= PayloadGeneric
}

// Payload is the tagged union attached to an event. Only the fields relevant
// to Kind are set:
//
//	TracingStart, TracingEnd: Category
//	Complete:                 StartTime, EndTime
//	Screenshot:               WindowID
//	Generic:                  Fields, and optionally StartTime and/or EndTime
type Payload struct {
	Kind      PayloadKind
	Category  string
	StartTime *Timestamp
	EndTime   *Timestamp
	WindowID  string
	Fields    map[string]any
}

func InstantPayload() *Payload {
	return &Payload{Kind: PayloadInstant}
}

func TracingStartPayload(category string) *Payload {
	return &Payload{Kind: PayloadTracingStart, Category: category}
}

func TracingEndPayload(category string) *Payload {
	return &Payload{Kind: PayloadTracingEnd, Category: category}
}

func CompletePayload(start, end Timestamp) *Payload {
	return &Payload{Kind: PayloadComplete, StartTime: &start, EndTime: &end}
}

func ScreenshotPayload(windowID string) *Payload {
	return &Payload{Kind: PayloadScreenshot, WindowID: windowID}
}

// GenericPayload builds an opaque payload. start and end may be nil.
func GenericPayload(fields map[string]any, start, end *Timestamp) *Payload {
	return &Payload{Kind: PayloadGeneric, Fields: fields, StartTime: start, EndTime: end}
}

func (p *Payload) startOr(t Timestamp) Timestamp {
	if p.StartTime == nil {
		return t
	}
	return *p.StartTime
}

func (p *Payload) endOr(t Timestamp) Timestamp {
	if p.EndTime == nil {
		return t
	}
	return *p.EndTime
}
