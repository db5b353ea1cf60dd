package timeline

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	jsoniter "github.com/json-iterator/go"

	"github.com/grafana/tracetiming/pkg/model"
)

// fieldsEncoding writes map keys in sorted order, so equal fields always
// digest the same.
var fieldsEncoding = jsoniter.ConfigCompatibleWithStandardLibrary

// cacheKey digests everything a thread result depends on: the mode, the
// capture window and every event, names and payload fields included. It
// returns false when a payload cannot be encoded, in which case the result
// must not be cached.
func cacheKey(mode Mode, strings *model.StringTable, capture model.TimeRange, events []model.Event) (uint64, bool) {
	h := xxhash.New()
	buf := make([]byte, 0, 64)
	_, _ = h.WriteString(string(mode))
	buf = appendFloat(buf, float64(capture.Start))
	buf = appendFloat(buf, float64(capture.End))
	for i := range events {
		e := &events[i]
		buf = binary.LittleEndian.AppendUint32(buf, uint32(e.Name))
		buf = appendFloat(buf, float64(e.Time))
		buf = append(buf, byte(e.Kind()))
		if p := e.Payload; p != nil {
			buf = appendOptional(buf, p.StartTime)
			buf = appendOptional(buf, p.EndTime)
		}
		_, _ = h.Write(buf)
		buf = buf[:0]
		_, _ = h.WriteString(strings.Lookup(e.Name))
		if p := e.Payload; p != nil {
			_, _ = h.WriteString(p.Category)
			_, _ = h.WriteString(p.WindowID)
			if len(p.Fields) > 0 {
				b, err := fieldsEncoding.Marshal(p.Fields)
				if err != nil {
					return 0, false
				}
				_, _ = h.Write(b)
			}
		}
	}
	_, _ = h.Write(buf)
	return h.Sum64(), true
}

func appendFloat(b []byte, f float64) []byte {
	return binary.LittleEndian.AppendUint64(b, math.Float64bits(f))
}

func appendOptional(b []byte, t *model.Timestamp) []byte {
	if t == nil {
		return append(b, 0)
	}
	return appendFloat(append(b, 1), float64(*t))
}
