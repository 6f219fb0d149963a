package telemetry

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/nadzzz/proagent/internal/config"
)

func TestSetupDisabled(t *testing.T) {
	otel.SetTracerProvider(noop.NewTracerProvider())

	shutdown, err := Setup(config.TracingConfig{}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.NoError(t, shutdown(t.Context()))
	assert.IsType(t, noop.TracerProvider{}, otel.GetTracerProvider())
}

func TestSetupExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Setup(config.TracingConfig{Enabled: true, ServiceName: "proagent-test"}, &buf)
	require.NoError(t, err)
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	_, span := otel.Tracer("test").Start(t.Context(), "unit.span")
	span.End()
	require.NoError(t, shutdown(t.Context()))

	assert.Contains(t, buf.String(), "unit.span")
	assert.Contains(t, buf.String(), "proagent-test")
}
