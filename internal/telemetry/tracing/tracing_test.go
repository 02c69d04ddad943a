package tracing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHoneycombSetup_Disabled(t *testing.T) {
	shutdown, err := HoneycombSetup(false, "fittrack-test")
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	shutdown()
}

func TestEndSpanWithErrCheck(t *testing.T) {
	_, span := GlobalTracer.Start(context.Background(), "test.span")
	EndSpanWithErrCheck(span, errors.New("storage unavailable"))
	assert.False(t, span.IsRecording())

	_, span = GlobalTracer.Start(context.Background(), "test.span.ok")
	EndSpanWithErrCheck(span, nil)
	assert.False(t, span.IsRecording())
}
