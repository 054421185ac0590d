package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestInitTracer_DisabledWithoutCollector(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), ServiceName, "", zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	shutdown()

	_, span := GetTracer("easyapply/test").Start(context.Background(), "noop")
	defer span.End()
	assert.False(t, span.SpanContext().IsSampled())
}

func TestAttributes(t *testing.T) {
	assert.Equal(t, "job_id", string(String("job_id", "42").Key))
	assert.Equal(t, int64(3), Int("steps", 3).Value.AsInt64())
}
