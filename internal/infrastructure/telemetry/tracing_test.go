package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NoError(t, tp.Shutdown(context.Background()))
	assert.NoError(t, tp.ForceFlush(context.Background()))
	assert.NotNil(t, tp.Tracer("test"))
}

func TestStartSpan(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "posting.post",
		WithAttribute("currency", "DOP"))
	defer span.End()

	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
}

func TestStartServiceSpan(t *testing.T) {
	_, span := StartServiceSpan(context.Background(), "posting", "reverse")
	defer span.End()

	assert.NotNil(t, span)
}

func TestSetAttributes_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		SetAttributes(nil, "key", "value")
		SetAttribute(nil, "key", "value")
		RecordError(nil, errors.New("boom"))
		AddEvent(nil, "event")
	})
}

func TestSetAttributes_IgnoresOddPairs(t *testing.T) {
	_, span := StartSpan(context.Background(), "test")
	defer span.End()

	assert.NotPanics(t, func() {
		SetAttributes(span, "key", "value", "dangling")
		SetAttributes(span, 42, "not-a-string-key")
	})
}

func TestGetTraceID_NoSpan(t *testing.T) {
	assert.Equal(t, "", GetTraceID(context.Background()))
}
