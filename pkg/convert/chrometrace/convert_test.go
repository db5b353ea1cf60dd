package chrometrace

import (
	"bytes"
	"os"
	"testing"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafana/tracetiming/pkg/model"
)

func TestReadFile(t *testing.T) {
	events, err := ReadFile("testdata/page-load.json")
	require.NoError(t, err)
	require.Len(t, events, 10)

	p := Convert(log.NewNopLogger(), events)
	require.Len(t, p.Threads, 2)

	main := p.Threads[0]
	assert.Equal(t, "CrRendererMain", main.Name)
	assert.Equal(t, "CrRendererMain (1:7)", main.String())
	assert.Equal(t, model.TimeRange{Start: 1, End: 10}, main.Capture)

	names := make([]string, 0, len(main.Events))
	kinds := make([]model.PayloadKind, 0, len(main.Events))
	for _, e := range main.Events {
		names = append(names, p.Strings.Lookup(e.Name))
		kinds = append(kinds, e.Kind())
	}
	assert.Equal(t, []string{"RunTask", "ParseHTML", "EvaluateScript", "Screenshot", "ParseHTML", "MarkLoad", "UpdateCounters"}, names)
	assert.Equal(t, []model.PayloadKind{
		model.PayloadComplete,
		model.PayloadTracingStart,
		model.PayloadComplete,
		model.PayloadScreenshot,
		model.PayloadTracingEnd,
		model.PayloadInstant,
		model.PayloadGeneric,
	}, kinds)
	assert.Equal(t, "0x1", main.Events[3].Payload.WindowID)
	assert.Equal(t, 12.0, main.Events[6].Payload.Fields["nodes"])

	start, end := main.Events[2].Span()
	assert.Equal(t, model.Timestamp(3), start)
	assert.Equal(t, model.Timestamp(5), end)

	gc := p.Threads[1]
	assert.Equal(t, "1:9", gc.String())
	assert.Len(t, gc.Events, 2)
}

func TestDecodeObject(t *testing.T) {
	events, err := Decode(bytes.NewReader([]byte(`{"traceEvents":[{"name":"a","ph":"i","ts":5,"pid":1,"tid":1}],"displayTimeUnit":"ms"}`)))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "a", events[0].Name)
}

func TestDecodeEmpty(t *testing.T) {
	events, err := Decode(bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte(`[{"name":]`)))
	require.Error(t, err)
}

func TestDecodeCompressed(t *testing.T) {
	raw, err := os.ReadFile("testdata/page-load.json")
	require.NoError(t, err)

	var gz bytes.Buffer
	gw := gzip.NewWriter(&gz)
	_, err = gw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	events, err := Decode(&gz)
	require.NoError(t, err)
	assert.Len(t, events, 10)

	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	compressed := enc.EncodeAll(raw, nil)
	require.NoError(t, enc.Close())

	events, err = Decode(bytes.NewReader(compressed))
	require.NoError(t, err)
	assert.Len(t, events, 10)
}

func TestConvertUnnamedEnd(t *testing.T) {
	events := []Event{
		{Name: "outer", Phase: PhaseBegin, Timestamp: 0},
		{Name: "inner", Phase: PhaseBegin, Timestamp: 1000},
		{Phase: PhaseEnd, Timestamp: 2000},
		{Phase: PhaseEnd, Timestamp: 3000},
		{Phase: PhaseEnd, Timestamp: 4000},
	}
	p := Convert(log.NewNopLogger(), events)
	require.Len(t, p.Threads, 1)
	evs := p.Threads[0].Events
	require.Len(t, evs, 4)
	assert.Equal(t, "inner", p.Strings.Lookup(evs[2].Name))
	assert.Equal(t, "outer", p.Strings.Lookup(evs[3].Name))
}

func TestConvertCaptureRange(t *testing.T) {
	var buf bytes.Buffer
	logger := level.NewFilter(log.NewLogfmtLogger(&buf), level.AllowInfo())
	dur := 9000.0
	events := []Event{
		{Name: "late", Phase: PhaseInstant, Timestamp: 5000, ThreadID: 1},
		{Name: "long", Phase: PhaseComplete, Timestamp: 2000, Duration: &dur, ThreadID: 1},
		{Name: "counter", Phase: "C", Timestamp: 3000, ThreadID: 1},
	}
	p := Convert(logger, events)
	require.Len(t, p.Threads, 1)
	assert.Equal(t, model.TimeRange{Start: 2, End: 11}, p.Threads[0].Capture)
	assert.Contains(t, buf.String(), "unsupported phase")
}
