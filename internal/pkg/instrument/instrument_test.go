package instrument

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DisabledInstallsLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	ins, err := New(context.Background(), &Config{ServiceName: "gotp", MaskFields: []string{"secret"}, Output: &buf})
	require.NoError(t, err)

	slog.Info("account added", "secret", "JBSWY3DPEHPK3PXP")
	line := decodeLine(t, &buf)
	assert.Equal(t, "***", line["secret"])
	assert.Equal(t, "gotp", line["service"])

	_, span := ins.Tracer("test").Start(context.Background(), "noop")
	span.End()
	assert.False(t, span.SpanContext().IsValid())
	assert.NoError(t, ins.Shutdown(context.Background()))
}

func TestNew_EnabledRequiresEndpoint(t *testing.T) {
	ins, err := New(context.Background(), &Config{Enabled: true})
	assert.ErrorIs(t, err, ErrEndpointRequired)
	assert.Nil(t, ins)
}

func TestConfig_Normalization(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		ratio    float64
		interval time.Duration
	}{
		{name: "zero values", cfg: Config{}, ratio: 0, interval: defaultMetricsInterval},
		{name: "ratio above one", cfg: Config{TraceSampleRatio: 3, MetricsInterval: time.Second}, ratio: 1, interval: time.Second},
		{name: "negative ratio", cfg: Config{TraceSampleRatio: -1, MetricsInterval: -time.Second}, ratio: 0, interval: defaultMetricsInterval},
		{name: "in range", cfg: Config{TraceSampleRatio: 0.25}, ratio: 0.25, interval: defaultMetricsInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.ratio, tt.cfg.sampleRatio(), 1e-9)
			assert.Equal(t, tt.interval, tt.cfg.metricsInterval())
		})
	}
}

func TestNewNoop(t *testing.T) {
	ins := NewNoop()

	counter, err := ins.Meter("test").Int64Counter("gotp.test")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)
	assert.NoError(t, ins.Shutdown(context.Background()))
}
