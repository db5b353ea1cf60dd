package appcontext

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	ctx := context.Background()
	assert.NotNil(t, Logger(ctx))
	assert.NotNil(t, Registry(ctx))
}

func TestWithValues(t *testing.T) {
	var buf bytes.Buffer
	reg := prometheus.NewRegistry()
	ctx := WithRegistry(WithLogger(context.Background(), log.NewLogfmtLogger(&buf)), reg)

	require.NoError(t, Logger(ctx).Log("msg", "hello"))
	assert.Equal(t, "msg=hello\n", buf.String())
	assert.Same(t, reg, Registry(ctx))
}
