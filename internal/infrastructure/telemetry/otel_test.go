package telemetry

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_MetricsScrapableWithoutOTLP(t *testing.T) {
	ctx := context.Background()
	p, err := Init(ctx, Config{
		ServiceName:    "bidjudge",
		ServiceVersion: "test",
		Environment:    "test",
		Enabled:        false,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Shutdown(ctx) })

	counter, err := p.MeterProvider.Meter("bidjudge-test").Int64Counter("bidjudge.test.judgments")
	require.NoError(t, err)
	counter.Add(ctx, 3)

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	found := false
	for _, mf := range families {
		if strings.HasPrefix(mf.GetName(), "bidjudge_test_judgments") {
			found = true
		}
	}
	assert.True(t, found, "instrument should surface on the default prometheus registry")
}
