package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/driveagent/internal/instrumentation"
)

func newProvider(t *testing.T, cfg instrumentation.Config) *instrumentation.Provider {
	t.Helper()
	p, err := instrumentation.NewProvider(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(context.Background()) })
	return p
}

func TestNewMetricsServer(t *testing.T) {
	_, err := NewMetricsServer(MetricsServerConfig{})
	assert.ErrorContains(t, err, "instrumentation provider is required")

	_, err = NewMetricsServer(MetricsServerConfig{InstrumentationProvider: newProvider(t, instrumentation.Config{})})
	assert.ErrorContains(t, err, "not enabled")

	stdout := newProvider(t, instrumentation.Config{Enabled: true, MetricsExporter: instrumentation.ExporterStdout, TracingExporter: instrumentation.ExporterNone})
	_, err = NewMetricsServer(MetricsServerConfig{InstrumentationProvider: stdout})
	assert.ErrorContains(t, err, "prometheus")

	prom := newProvider(t, instrumentation.Config{Enabled: true, MetricsExporter: instrumentation.ExporterPrometheus, TracingExporter: instrumentation.ExporterNone})
	srv, err := NewMetricsServer(MetricsServerConfig{InstrumentationProvider: prom})
	require.NoError(t, err)
	assert.Equal(t, DefaultMetricsAddr, srv.Addr())
}

func TestMetricsServer_Serve(t *testing.T) {
	prom := newProvider(t, instrumentation.Config{Enabled: true, MetricsExporter: instrumentation.ExporterPrometheus, TracingExporter: instrumentation.ExporterNone})
	prom.Metrics().RecordTransferChunk(context.Background(), 42)

	srv, err := NewMetricsServer(MetricsServerConfig{Addr: "127.0.0.1:0", InstrumentationProvider: prom})
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "transfer_chunks_total")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-done)
}
