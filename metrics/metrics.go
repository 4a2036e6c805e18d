// Package metrics instruments graphs with Prometheus collectors.
//
// Instrument wraps a graph so that capability negotiation and vertex fetches
// are counted and lookups are timed:
//
//	<ns>_capability_requests_total{capability,supported}
//	<ns>_vertex_fetches_total{capability,result}   result: found|absent|error
//	<ns>_fetch_duration_seconds{capability}
//
// The wrapper offers exactly the capabilities of the inner graph.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/carta/core"
)

// DefaultNamespace prefixes every metric when New is given an empty namespace.
const DefaultNamespace = "carta"

// Fetch results used as the "result" label.
const (
	ResultFound  = "found"
	ResultAbsent = "absent"
	ResultError  = "error"
)

// Metrics holds the collectors shared by every instrumented graph.
type Metrics struct {
	// CapabilityRequests counts Provide calls.
	// Labels: capability, supported ("true"|"false").
	CapabilityRequests *prometheus.CounterVec

	// VertexFetches counts lookups by outcome and every vertex yielded by an
	// enumeration. Labels: capability, result.
	VertexFetches *prometheus.CounterVec

	// FetchDuration observes single-vertex lookup latency.
	// Labels: capability.
	FetchDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg. Collectors that are
// already registered under the same description are reused, so several
// components may call New with one registry.
func New(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	m := &Metrics{
		CapabilityRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "capability_requests_total",
				Help:      "Capability negotiations by capability and outcome",
			},
			[]string{"capability", "supported"},
		),
		VertexFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "vertex_fetches_total",
				Help:      "Vertices fetched or enumerated by capability and result",
			},
			[]string{"capability", "result"},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "fetch_duration_seconds",
				Help:      "Single vertex lookup latency in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
			},
			[]string{"capability"},
		),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.CapabilityRequests, err = register(reg, m.CapabilityRequests); err != nil {
		return nil, err
	}
	if m.VertexFetches, err = register(reg, m.VertexFetches); err != nil {
		return nil, err
	}
	if m.FetchDuration, err = register(reg, m.FetchDuration); err != nil {
		return nil, err
	}

	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}

		return c, err
	}

	return c, nil
}

// Graph is an instrumented view of another graph.
type Graph struct {
	*core.Wrapper
	m *Metrics
}

// Instrument wraps inner so that its use is recorded in m.
func Instrument(inner core.Graph, m *Metrics) (*Graph, error) {
	if inner == nil {
		return nil, core.ErrNilGraph
	}
	if m == nil {
		var err error
		if m, err = New(nil, ""); err != nil {
			return nil, err
		}
	}
	g := &Graph{m: m}
	g.Wrapper = core.NewWrapper(inner, func(inner core.Graph, c core.Capability) core.Policy {
		return core.OverrideIfInner(inner, c)
	}, core.Discover(g))

	return g, nil
}

// Metrics returns the collectors the graph records into.
func (g *Graph) Metrics() *Metrics { return g.m }

// Provide counts the negotiation and answers from the wrapper table.
func (g *Graph) Provide(c core.Capability) (any, bool) {
	impl, ok := g.Wrapper.Provide(c)
	g.m.CapabilityRequests.WithLabelValues(c.String(), strconv.FormatBool(ok)).Inc()

	return impl, ok
}

// Vertices counts every vertex the inner EntireGraph yields. Without that
// capability the sequence fails with core.ErrUnsupportedCapability.
func (g *Graph) Vertices(ctx context.Context) core.VertexSeq {
	entire, ok := core.Entire(g.Inner())
	if !ok {
		return core.FailVertices(unsupported(core.CapEntire))
	}
	return g.count(core.CapEntire, entire.Vertices(ctx))
}

// Vertex times a full lookup on the inner graph.
func (g *Graph) Vertex(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	dyn, ok := core.Dynamic(g.Inner())
	if !ok {
		return nil, false, unsupported(core.CapDynamic)
	}
	return g.timed(core.CapDynamic, func() (*core.Vertex, bool, error) { return dyn.Vertex(ctx, id) })
}

// InVertex times an in-edge lookup on the inner graph.
func (g *Graph) InVertex(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	in, ok := core.DynamicIn(g.Inner())
	if !ok {
		return nil, false, unsupported(core.CapDynamicIn)
	}
	return g.timed(core.CapDynamicIn, func() (*core.Vertex, bool, error) { return in.InVertex(ctx, id) })
}

// ParentVertices counts the parents the inner graph yields for id.
func (g *Graph) ParentVertices(ctx context.Context, id core.Identity) core.VertexSeq {
	in, ok := core.DynamicIn(g.Inner())
	if !ok {
		return core.FailVertices(unsupported(core.CapDynamicIn))
	}
	return g.count(core.CapDynamicIn, in.ParentVertices(ctx, id))
}

// OutVertex times an out-edge lookup on the inner graph.
func (g *Graph) OutVertex(ctx context.Context, id core.Identity) (*core.Vertex, bool, error) {
	out, ok := core.DynamicOut(g.Inner())
	if !ok {
		return nil, false, unsupported(core.CapDynamicOut)
	}
	return g.timed(core.CapDynamicOut, func() (*core.Vertex, bool, error) { return out.OutVertex(ctx, id) })
}

// ChildVertices counts the children the inner graph yields for id.
func (g *Graph) ChildVertices(ctx context.Context, id core.Identity) core.VertexSeq {
	out, ok := core.DynamicOut(g.Inner())
	if !ok {
		return core.FailVertices(unsupported(core.CapDynamicOut))
	}
	return g.count(core.CapDynamicOut, out.ChildVertices(ctx, id))
}

// Roots forwards the inner graph's roots uncounted.
func (g *Graph) Roots(ctx context.Context) core.IdentitySeq {
	rooted, ok := core.Rooted(g.Inner())
	if !ok {
		err := unsupported(core.CapRooted)
		return func(yield func(core.Identity, error) bool) { yield(core.Identity{}, err) }
	}
	return rooted.Roots(ctx)
}

func unsupported(c core.Capability) error {
	return fmt.Errorf("%w: %s", core.ErrUnsupportedCapability, c)
}

func (g *Graph) timed(c core.Capability, fetch func() (*core.Vertex, bool, error)) (*core.Vertex, bool, error) {
	start := time.Now()
	v, found, err := fetch()
	g.m.FetchDuration.WithLabelValues(c.String()).Observe(time.Since(start).Seconds())

	result := ResultFound
	switch {
	case err != nil:
		result = ResultError
	case !found:
		result = ResultAbsent
	}
	g.m.VertexFetches.WithLabelValues(c.String(), result).Inc()

	return v, found, err
}

func (g *Graph) count(c core.Capability, seq core.VertexSeq) core.VertexSeq {
	found := g.m.VertexFetches.WithLabelValues(c.String(), ResultFound)
	failed := g.m.VertexFetches.WithLabelValues(c.String(), ResultError)

	return func(yield func(*core.Vertex, error) bool) {
		for v, err := range seq {
			if err != nil {
				failed.Inc()
			} else {
				found.Inc()
			}
			if !yield(v, err) {
				return
			}
		}
	}
}
