package metrics_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/carta/core"
	"github.com/katalvlaran/carta/internal/graphtest"
	"github.com/katalvlaran/carta/metrics"
	"github.com/katalvlaran/carta/selector"
)

func newTestMetrics(t *testing.T) (*metrics.Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg, "")
	require.NoError(t, err)

	return m, reg
}

func TestLookupsAreCounted(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMetrics(t)
	g, err := metrics.Instrument(graphtest.Diamond(t), m)
	require.NoError(t, err)

	_, found, err := g.Vertex(ctx, core.ID(graphtest.A))
	require.NoError(t, err)
	require.True(t, found)
	_, found, err = g.Vertex(ctx, core.ID("missing"))
	require.NoError(t, err)
	require.False(t, found)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.VertexFetches.WithLabelValues("dynamic", metrics.ResultFound)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VertexFetches.WithLabelValues("dynamic", metrics.ResultAbsent)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.FetchDuration))
}

func TestEnumerationCountsYieldedVertices(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMetrics(t)
	g, err := metrics.Instrument(graphtest.Diamond(t), m)
	require.NoError(t, err)

	assert.Len(t, graphtest.Entire(t, g), 5)
	assert.Equal(t, []string{"B", "C"}, graphtest.IDs(t, g.ChildVertices(ctx, core.ID(graphtest.A))))

	assert.Equal(t, 5.0, testutil.ToFloat64(m.VertexFetches.WithLabelValues("entire", metrics.ResultFound)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.VertexFetches.WithLabelValues("dynamic_out", metrics.ResultFound)))
}

func TestCapabilityRequests(t *testing.T) {
	m, _ := newTestMetrics(t)
	g, err := metrics.Instrument(graphtest.Diamond(t, core.WithoutCapability(core.CapRooted)), m)
	require.NoError(t, err)

	assert.True(t, core.Supports(g, core.CapDynamic))
	assert.False(t, core.Supports(g, core.CapRooted))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CapabilityRequests.WithLabelValues("dynamic", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CapabilityRequests.WithLabelValues("rooted", "false")))
}

func TestSelectorThroughInstrumentedGraph(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMetrics(t)
	g, err := metrics.Instrument(graphtest.Diamond(t), m)
	require.NoError(t, err)

	sel, err := selector.Descendants(g, core.IDs(graphtest.C))
	require.NoError(t, err)
	vs, err := selector.Select(ctx, sel)
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "E"}, graphtest.IDs(t, core.VerticesOf(vs...)))
	assert.Positive(t, testutil.ToFloat64(m.CapabilityRequests.WithLabelValues("dynamic_out", "true")))
}

func TestErrorsAreCounted(t *testing.T) {
	m, _ := newTestMetrics(t)
	g, err := metrics.Instrument(graphtest.Diamond(t), m)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = g.OutVertex(ctx, core.ID(graphtest.A))
	require.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VertexFetches.WithLabelValues("dynamic_out", metrics.ResultError)))
}

func TestDirectCallsWithoutCapabilityFail(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMetrics(t)
	inner := graphtest.Diamond(t, core.WithoutCapability(
		core.CapEntire, core.CapDynamic, core.CapDynamicIn, core.CapDynamicOut, core.CapRooted))
	g, err := metrics.Instrument(inner, m)
	require.NoError(t, err)

	_, err = core.CollectVertices(g.Vertices(ctx))
	assert.ErrorIs(t, err, core.ErrUnsupportedCapability)
	_, err = core.CollectVertices(g.ParentVertices(ctx, core.ID(graphtest.A)))
	assert.ErrorIs(t, err, core.ErrUnsupportedCapability)
	_, err = core.CollectVertices(g.ChildVertices(ctx, core.ID(graphtest.A)))
	assert.ErrorIs(t, err, core.ErrUnsupportedCapability)
	_, err = core.CollectIdentities(g.Roots(ctx))
	assert.ErrorIs(t, err, core.ErrUnsupportedCapability)

	for _, lookup := range []func(context.Context, core.Identity) (*core.Vertex, bool, error){
		g.Vertex, g.InVertex, g.OutVertex,
	} {
		v, found, err := lookup(ctx, core.ID(graphtest.A))
		assert.ErrorIs(t, err, core.ErrUnsupportedCapability)
		assert.False(t, found)
		assert.Nil(t, v)
	}
	assert.Equal(t, 0, testutil.CollectAndCount(m.FetchDuration))
}

func TestNewReusesRegisteredCollectors(t *testing.T) {
	m1, reg := newTestMetrics(t)
	m2, err := metrics.New(reg, "")
	require.NoError(t, err)
	assert.Same(t, m1.VertexFetches, m2.VertexFetches)

	m1.VertexFetches.WithLabelValues("dynamic", metrics.ResultFound).Inc()
	n, err := testutil.GatherAndCount(reg, "carta_vertex_fetches_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestInstrumentNil(t *testing.T) {
	_, err := metrics.Instrument(nil, nil)
	assert.ErrorIs(t, err, core.ErrNilGraph)

	g, err := metrics.Instrument(graphtest.Cyclic(t), nil)
	require.NoError(t, err)
	assert.Equal(t, core.AllCapabilities, core.SupportedCapabilities(g))
}
