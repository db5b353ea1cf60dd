package chrometrace

import (
	"bufio"
	"bytes"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ReadFile decodes the trace stored at path.
func ReadFile(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	events, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return events, nil
}

// Decode reads a trace in either the array or the object form, optionally
// gzip or zstd compressed. Truncated arrays, as written by a tracer that was
// interrupted, are accepted.
func Decode(r io.Reader) ([]Event, error) {
	data, err := decompress(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '{' {
		var file File
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, errors.Wrap(err, "unmarshal trace object")
		}
		return file.TraceEvents, nil
	}

	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		if data[len(data)-1] == ']' {
			return nil, errors.Wrap(err, "unmarshal trace array")
		}
		// The closing bracket is optional in the array form.
		fixed := append(bytes.TrimRight(data, ", \t\r\n"), ']')
		if err := json.Unmarshal(fixed, &events); err != nil {
			return nil, errors.Wrap(err, "unmarshal truncated trace array")
		}
	}
	return events, nil
}

func decompress(r io.Reader) ([]byte, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(4)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, errors.Wrap(err, "peek header")
	}

	var src io.Reader = br
	switch {
	case len(header) >= 2 && header[0] == 0x1f && header[1] == 0x8b:
		gr, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "create gzip reader")
		}
		defer gr.Close()
		src = gr
	case len(header) >= 4 && header[0] == 0x28 && header[1] == 0xb5 && header[2] == 0x2f && header[3] == 0xfd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "create zstd reader")
		}
		defer zr.Close()
		src = zr
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(src); err != nil {
		return nil, errors.Wrap(err, "read trace")
	}
	return buf.Bytes(), nil
}
