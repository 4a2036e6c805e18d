package actor_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/carta/actor"
	"github.com/katalvlaran/carta/core"
	"github.com/katalvlaran/carta/internal/graphtest"
	"github.com/katalvlaran/carta/selector"
)

type ActorSuite struct {
	suite.Suite
	ctx context.Context
	g   *core.MemoryGraph
}

func (s *ActorSuite) SetupTest() {
	s.ctx = context.Background()
	s.g = graphtest.Diamond(s.T())
}

func (s *ActorSuite) include(ids ...string) selector.Selector {
	sel, err := selector.Include(s.g, core.IDs(ids...)...)
	s.Require().NoError(err)

	return sel
}

func (s *ActorSuite) weight(g core.Graph, id string) []any {
	p, ok := graphtest.Fetch(s.T(), g, id).Property(graphtest.PropWeight)
	s.Require().True(ok)

	return p.Values
}

func (s *ActorSuite) TestNoneIsPassThrough() {
	a, err := actor.Decrement(s.g, selector.None(s.g))
	s.Require().NoError(err)

	v := graphtest.Fetch(s.T(), s.g, "B")
	rv, err := a.ReconstructVertex(s.ctx, v)
	s.Require().NoError(err)
	s.Same(v, rv)

	s.Equal(graphtest.Entire(s.T(), s.g), graphtest.Entire(s.T(), a))
}

func (s *ActorSuite) TestAllWithIdentityTransformKeepsGraph() {
	a, err := actor.New(s.g, selector.All(s.g), nil)
	s.Require().NoError(err)

	s.Equal(graphtest.Entire(s.T(), s.g), graphtest.Entire(s.T(), a))
	s.Equal(s.g.ID(), a.ID())
	s.True(core.Supports(a, core.CapRooted))
	s.Equal(core.Forward, a.Policy(core.CapRooted))
	s.Equal(core.Override, a.Policy(core.CapDynamic))
}

func (s *ActorSuite) TestDecrementOnlySelected() {
	a, err := actor.Decrement(s.g, s.include("B"))
	s.Require().NoError(err)

	s.Equal([]any{1.0}, s.weight(a, "A"))
	s.Equal([]any{1.0}, s.weight(a, "B"))
	s.Equal([]any{3.0}, s.weight(a, "C"))

	name, ok := graphtest.Fetch(s.T(), a, "B").Property(graphtest.PropName)
	s.Require().True(ok)
	s.Equal([]any{"vB"}, name.Values)

	// The inner graph is untouched.
	s.Equal([]any{2.0}, s.weight(s.g, "B"))
}

func (s *ActorSuite) TestDecrementThroughLookups() {
	a, err := actor.Decrement(s.g, selector.All(s.g))
	s.Require().NoError(err)

	out, ok := core.DynamicOut(a)
	s.Require().True(ok)
	children, err := core.CollectVertices(out.ChildVertices(s.ctx, core.ID("A")))
	s.Require().NoError(err)
	s.Require().Len(children, 2)
	for _, c := range children {
		p, _ := c.Property(graphtest.PropWeight)
		s.Contains([]any{1.0, 2.0}, p.Value())
	}
}

func (s *ActorSuite) TestPropertySelectorLimitsTransform() {
	g := core.NewMemoryGraph(core.ID("g"))
	_, err := g.AddVertex(core.NewVertex(core.ID("x"),
		core.NewProperty(core.ID("keep"), 10),
		core.NewProperty(core.ID("dec"), 10),
	))
	s.Require().NoError(err)
	sel, err := selector.HasProperty(g, core.ID("dec"))
	s.Require().NoError(err)

	a, err := actor.Decrement(g, sel)
	s.Require().NoError(err)
	v := graphtest.Fetch(s.T(), a, "x")
	keep, _ := v.Property(core.ID("keep"))
	dec, _ := v.Property(core.ID("dec"))
	s.Equal([]any{10}, keep.Values)
	s.Equal([]any{9}, dec.Values)
}

func (s *ActorSuite) TestAggregate() {
	a, err := actor.Aggregate(s.g, s.include("A"))
	s.Require().NoError(err)

	s.Equal([]any{1.0, 2.0, 3.0, 4.0, 5.0}, s.weight(a, "A"))
	s.Equal([]any{4.0}, s.weight(a, "D"))

	v := graphtest.Fetch(s.T(), a, "A")
	s.Equal([]string{"A->B", "A->C"}, graphtest.EdgePairs(v.OutEdges))
}

func (s *ActorSuite) TestPropagate() {
	a, err := actor.Propagate(s.g, s.include("E"))
	s.Require().NoError(err)

	s.Equal([]any{5.0, 4.0, 2.0, 3.0, 1.0}, s.weight(a, "E"))
	s.Equal([]any{1.0}, s.weight(a, "A"))
}

func (s *ActorSuite) TestAggregateOnCycleCountsOnce() {
	g := core.NewMemoryGraph(core.ID("cycle"))
	for _, id := range []string{"A", "B", "C"} {
		_, err := g.AddVertex(core.NewVertex(core.ID(id), core.NewProperty(core.ID("n"), id)))
		s.Require().NoError(err)
	}
	s.Require().NoError(g.AddEdges(
		core.NewEdge(core.ID("A"), core.ID("B")),
		core.NewEdge(core.ID("B"), core.ID("C")),
		core.NewEdge(core.ID("C"), core.ID("A")),
		core.NewEdge(core.ID("A"), core.ID("C")),
	))
	sel, err := selector.Include(g, core.ID("A"))
	s.Require().NoError(err)
	a, err := actor.Aggregate(g, sel)
	s.Require().NoError(err)

	p, ok := graphtest.Fetch(s.T(), a, "A").Property(core.ID("n"))
	s.Require().True(ok)
	s.Equal([]any{"A", "B", "C"}, p.Values)
}

func (s *ActorSuite) TestAggregateWithoutOutLookup() {
	g := graphtest.Diamond(s.T(), core.WithoutCapability(core.CapDynamicOut))
	sel, err := selector.Include(g, core.ID("A"))
	s.Require().NoError(err)
	a, err := actor.Aggregate(g, sel)
	s.Require().NoError(err)

	s.Equal([]any{1.0}, s.weight(a, "A"))
}

func (s *ActorSuite) TestReverseEdges() {
	r, err := actor.ReverseEdges(s.g, selector.All(s.g))
	s.Require().NoError(err)

	s.False(core.Supports(r, core.CapRooted))
	b := graphtest.Fetch(s.T(), r, "B")
	s.Equal([]string{"D->B"}, graphtest.EdgePairs(b.InEdges))
	s.Equal([]string{"B->A"}, graphtest.EdgePairs(b.OutEdges))

	in, ok := core.DynamicIn(r)
	s.Require().True(ok)
	s.Equal([]string{"B", "C"}, graphtest.IDs(s.T(), in.ParentVertices(s.ctx, core.ID("A"))))
	out, ok := core.DynamicOut(r)
	s.Require().True(ok)
	s.Equal([]string{"B", "C"}, graphtest.IDs(s.T(), out.ChildVertices(s.ctx, core.ID("D"))))
}

func (s *ActorSuite) TestReverseEdgesFromVertexFetch() {
	g := graphtest.Diamond(s.T(), core.WithoutCapability(core.CapDynamicIn, core.CapDynamicOut))
	r, err := actor.ReverseEdges(g, selector.All(g))
	s.Require().NoError(err)

	in, ok := core.DynamicIn(r)
	s.Require().True(ok)
	s.Equal([]string{"B", "C"}, graphtest.IDs(s.T(), in.ParentVertices(s.ctx, core.ID("A"))))
	out, ok := core.DynamicOut(r)
	s.Require().True(ok)
	s.Equal([]string{"D"}, graphtest.IDs(s.T(), out.ChildVertices(s.ctx, core.ID("E"))))
}

func (s *ActorSuite) TestReverseEdgesNoneIsPassThrough() {
	r, err := actor.ReverseEdges(s.g, selector.None(s.g))
	s.Require().NoError(err)

	s.Equal(graphtest.Entire(s.T(), s.g), graphtest.Entire(s.T(), r))
	d := graphtest.Fetch(s.T(), r, "D")
	s.Equal([]string{"B->D", "C->D"}, graphtest.EdgePairs(d.InEdges))
	s.Equal([]string{"D->E"}, graphtest.EdgePairs(d.OutEdges))
	s.Equal([]string{"B", "C"}, graphtest.IDs(s.T(), r.ParentVertices(s.ctx, core.ID("D"))))
	s.Equal([]string{"E"}, graphtest.IDs(s.T(), r.ChildVertices(s.ctx, core.ID("D"))))
}

// TestReverseEdgesIncludeIsConsistent reverses only B->D, the one edge with
// both endpoints selected, and checks every vertex agrees on orientation.
func (s *ActorSuite) TestReverseEdgesIncludeIsConsistent() {
	r, err := actor.ReverseEdges(s.g, s.include("B", "D"))
	s.Require().NoError(err)

	d := graphtest.Fetch(s.T(), r, "D")
	s.ElementsMatch([]string{"C->D"}, graphtest.EdgePairs(d.InEdges))
	s.ElementsMatch([]string{"D->B", "D->E"}, graphtest.EdgePairs(d.OutEdges))
	b := graphtest.Fetch(s.T(), r, "B")
	s.ElementsMatch([]string{"A->B", "D->B"}, graphtest.EdgePairs(b.InEdges))
	s.Empty(b.OutEdges)
	s.ElementsMatch([]string{"C"}, graphtest.IDs(s.T(), r.ParentVertices(s.ctx, core.ID("D"))))
	s.ElementsMatch([]string{"B", "E"}, graphtest.IDs(s.T(), r.ChildVertices(s.ctx, core.ID("D"))))

	for _, v := range graphtest.Entire(s.T(), r) {
		for _, e := range v.OutEdges {
			target := graphtest.Fetch(s.T(), r, e.Target.String())
			s.Contains(graphtest.EdgePairs(target.InEdges), e.Source.String()+"->"+e.Target.String())
		}
		var parents []string
		for _, e := range v.InEdges {
			parents = append(parents, e.Source.String())
		}
		s.ElementsMatch(parents, graphtest.IDs(s.T(), r.ParentVertices(s.ctx, v.ID)), v.ID.String())
	}
}

func (s *ActorSuite) TestReverseEdgesNeedsCompleteLookup() {
	g := graphtest.Diamond(s.T(), core.WithoutCapability(core.CapDynamic, core.CapDynamicIn))
	r, err := actor.ReverseEdges(g, selector.All(g))
	s.Require().NoError(err)

	s.False(core.Supports(r, core.CapDynamicIn))
	s.False(core.Supports(r, core.CapDynamicOut))
	s.False(core.Supports(r, core.CapDynamic))
	vs := graphtest.Entire(s.T(), r)
	s.Require().Len(vs, 5)
	s.Equal("B", vs[1].ID.String())
	s.Equal([]string{"B->A"}, graphtest.EdgePairs(vs[1].OutEdges))
}

func (s *ActorSuite) TestDoubleReverseIsIdentity() {
	once, err := actor.ReverseEdges(s.g, selector.All(s.g))
	s.Require().NoError(err)
	twice, err := actor.ReverseEdges(once, selector.All(once))
	s.Require().NoError(err)

	s.False(core.Supports(once, core.CapRooted))
	s.False(core.Supports(twice, core.CapRooted))
	s.Equal(graphtest.Entire(s.T(), s.g), graphtest.Entire(s.T(), twice))
}

func (s *ActorSuite) TestReverseEdgesVetoSurvivesPolicyOption() {
	r, err := actor.ReverseEdges(s.g, selector.All(s.g), actor.WithPolicy(core.ForwardAll))
	s.Require().NoError(err)

	s.False(core.Supports(r, core.CapRooted))
}

func (s *ActorSuite) TestToNumberAndStringReplace() {
	g := core.NewMemoryGraph(core.ID("g"))
	_, err := g.AddVertex(core.NewVertex(core.ID("x"),
		core.NewProperty(core.ID("p"), " 1.5 ", "abc", 2, float32(0.5), true),
	))
	s.Require().NoError(err)

	num, err := actor.ToNumber(g, selector.All(g))
	s.Require().NoError(err)
	p, _ := graphtest.Fetch(s.T(), num, "x").Property(core.ID("p"))
	s.Equal([]any{1.5, "abc", 2.0, 0.5, true}, p.Values)

	rep, err := actor.StringReplace(g, selector.All(g), `b(c)`, "[$1]")
	s.Require().NoError(err)
	p, _ = graphtest.Fetch(s.T(), rep, "x").Property(core.ID("p"))
	s.Equal([]any{" 1.5 ", "a[c]", 2, float32(0.5), true}, p.Values)

	_, err = actor.StringReplace(g, selector.All(g), `(`, "")
	s.ErrorIs(err, core.ErrInvalidSelection)
}

func (s *ActorSuite) TestStatistics() {
	g := core.NewMemoryGraph(core.ID("g"))
	_, err := g.AddVertex(core.NewVertex(core.ID("x"),
		core.NewProperty(core.ID("obs"), 2, 4, 4, 4, 5, 5, 7, 9),
		core.NewProperty(core.ID("one"), 3.0),
		core.NewProperty(core.ID("text"), "a", 1),
	))
	s.Require().NoError(err)

	stat := func(g core.Graph, prop string, id core.Identity) (float64, bool) {
		p, ok := graphtest.Fetch(s.T(), g, "x").Property(core.ID(prop))
		s.Require().True(ok)
		sp, ok := p.Subproperty(id)
		if !ok {
			return 0, false
		}
		return sp.Value().(float64), true
	}

	pop, err := actor.Variance(g, selector.All(g), false)
	s.Require().NoError(err)
	v, ok := stat(pop, "obs", actor.VarianceID)
	s.Require().True(ok)
	s.InDelta(4.0, v, 1e-12)
	v, ok = stat(pop, "one", actor.VarianceID)
	s.Require().True(ok)
	s.Zero(v)
	_, ok = stat(pop, "text", actor.VarianceID)
	s.False(ok)

	sample, err := actor.Variance(g, selector.All(g), true)
	s.Require().NoError(err)
	v, _ = stat(sample, "obs", actor.VarianceID)
	s.InDelta(32.0/7.0, v, 1e-12)
	v, _ = stat(sample, "one", actor.VarianceID)
	s.Equal(math.MaxFloat64, v)

	sd, err := actor.StandardDeviation(g, selector.All(g), false)
	s.Require().NoError(err)
	v, _ = stat(sd, "obs", actor.StandardDeviationID)
	s.InDelta(2.0, v, 1e-12)
}

func (s *ActorSuite) TestStatisticReplacesEarlierResult() {
	g := core.NewMemoryGraph(core.ID("g"))
	_, err := g.AddVertex(core.NewVertex(core.ID("x"),
		core.NewProperty(core.ID("obs"), 2, 4, 4, 4, 5, 5, 7, 9),
	))
	s.Require().NoError(err)

	once, err := actor.Variance(g, selector.All(g), false)
	s.Require().NoError(err)
	twice, err := actor.Variance(once, selector.All(once), false)
	s.Require().NoError(err)
	sd, err := actor.StandardDeviation(twice, selector.All(twice), false)
	s.Require().NoError(err)

	p, ok := graphtest.Fetch(s.T(), sd, "x").Property(core.ID("obs"))
	s.Require().True(ok)
	var ids []string
	for _, sub := range p.Subproperties {
		ids = append(ids, sub.ID.String())
	}
	s.Equal([]string{actor.VarianceID.String(), actor.StandardDeviationID.String()}, ids)

	v, ok := p.Subproperty(actor.VarianceID)
	s.Require().True(ok)
	s.InDelta(4.0, v.Value().(float64), 1e-12)
}

func (s *ActorSuite) TestConstructorErrors() {
	_, err := actor.New(nil, selector.All(s.g), nil)
	s.ErrorIs(err, core.ErrNilGraph)
	_, err = actor.New(s.g, nil, nil)
	s.ErrorIs(err, core.ErrInvalidSelection)
	_, err = actor.CombineVertices(s.g, selector.All(s.g), core.Identity{}, "x")
	s.ErrorIs(err, core.ErrEmptyIdentity)
}

func (s *ActorSuite) TestCapabilitiesFollowInner() {
	g := graphtest.Diamond(s.T(), core.WithoutCapability(core.CapEntire, core.CapDynamicIn))
	a, err := actor.Decrement(g, selector.All(g))
	s.Require().NoError(err)

	s.False(core.Supports(a, core.CapEntire))
	s.False(core.Supports(a, core.CapDynamicIn))
	s.True(core.Supports(a, core.CapDynamic))
	s.True(core.Supports(a, core.CapDynamicOut))

	named, err := actor.Decrement(g, selector.All(g), actor.WithID(core.ID("renamed")))
	s.Require().NoError(err)
	s.Equal(core.ID("renamed"), named.ID())
}

func TestActorSuite(t *testing.T) {
	suite.Run(t, new(ActorSuite))
}

func TestCombineVertices(t *testing.T) {
	ctx := context.Background()
	g := graphtest.Cyclic(t)
	sel, err := selector.Include(g, core.IDs("B", "C")...)
	require.NoError(t, err)

	c, err := actor.CombineVertices(g, sel, core.ID("BC"), "combined")
	require.NoError(t, err)
	assert.False(t, core.Supports(c, core.CapRooted))

	vs := graphtest.Entire(t, c)
	require.Len(t, vs, 2)
	assert.Equal(t, "A", vs[0].ID.String())
	assert.Equal(t, []string{"A->BC"}, graphtest.EdgePairs(vs[0].OutEdges))
	assert.Equal(t, []string{"BC->A"}, graphtest.EdgePairs(vs[0].InEdges))

	bc := vs[1]
	assert.Equal(t, "BC", bc.ID.String())
	assert.Equal(t, "combined", bc.Label)
	assert.Equal(t, []string{"A->BC"}, graphtest.EdgePairs(bc.InEdges))
	assert.Equal(t, []string{"BC->A"}, graphtest.EdgePairs(bc.OutEdges))
	for _, e := range bc.Edges() {
		assert.NotEqual(t, core.ID("B::C"), e.ID, "internal edge must be dropped")
	}

	dyn, ok := core.Dynamic(c)
	require.True(t, ok)
	_, found, err := dyn.Vertex(ctx, core.ID("B"))
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, bc, graphtest.Fetch(t, c, "BC"))

	out, ok := core.DynamicOut(c)
	require.True(t, ok)
	assert.Equal(t, []string{"BC"}, graphtest.IDs(t, out.ChildVertices(ctx, core.ID("A"))))
	assert.Equal(t, []string{"A"}, graphtest.IDs(t, out.ChildVertices(ctx, core.ID("BC"))))
}

func TestCombineVerticesMergesProperties(t *testing.T) {
	g := graphtest.Diamond(t)
	sel, err := selector.Include(g, core.IDs("C", "B")...)
	require.NoError(t, err)
	c, err := actor.CombineVertices(g, sel, core.ID("BC"), "")
	require.NoError(t, err)

	vs := graphtest.Entire(t, c)
	ids := make([]string, len(vs))
	for i, v := range vs {
		ids[i] = v.ID.String()
	}
	assert.Equal(t, []string{"A", "BC", "D", "E"}, ids)

	bc := vs[1]
	w, ok := bc.Property(graphtest.PropWeight)
	require.True(t, ok)
	assert.Equal(t, []any{3.0, 2.0}, w.Values)
	assert.Equal(t, []string{"A->BC", "A->BC"}, graphtest.EdgePairs(bc.InEdges))
	assert.Equal(t, []string{"BC->D", "BC->D"}, graphtest.EdgePairs(bc.OutEdges))
}

func TestCombineVerticesEmptySelection(t *testing.T) {
	g := graphtest.Cyclic(t)
	c, err := actor.CombineVertices(g, selector.None(g), core.ID("X"), "")
	require.NoError(t, err)

	assert.Equal(t, graphtest.Entire(t, g), graphtest.Entire(t, c))
	dyn, _ := core.Dynamic(c)
	_, found, err := dyn.Vertex(context.Background(), core.ID("X"))
	require.NoError(t, err)
	assert.False(t, found)
}
