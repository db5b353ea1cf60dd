package util

import (
	"bytes"
	"testing"

	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(LogConfig{Level: "warn", Format: "logfmt"}, &buf)
	require.NoError(t, err)

	level.Info(logger).Log("msg", "hidden")
	level.Warn(logger).Log("msg", "shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `msg=shown`)
	assert.Contains(t, buf.String(), `level=warn`)

	buf.Reset()
	logger, err = NewLogger(LogConfig{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)
	level.Debug(logger).Log("msg", "json")
	assert.Contains(t, buf.String(), `"msg":"json"`)

	_, err = NewLogger(LogConfig{Level: "trace"}, &buf)
	require.Error(t, err)
	_, err = NewLogger(LogConfig{Format: "xml"}, &buf)
	require.Error(t, err)
}

func TestRegisterOrGet(t *testing.T) {
	reg := prometheus.NewRegistry()
	opts := prometheus.CounterOpts{Name: "tracetiming_test_total", Help: "test"}
	a := RegisterOrGet(reg, prometheus.NewCounter(opts))
	b := RegisterOrGet(reg, prometheus.NewCounter(opts))
	assert.Same(t, a, b)

	c := prometheus.NewCounter(opts)
	assert.Same(t, c, RegisterOrGet[prometheus.Counter](nil, c))
}
