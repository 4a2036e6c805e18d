package core_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/katalvlaran/carta/core"
	"github.com/katalvlaran/carta/internal/graphtest"
)

type MemoryGraphSuite struct {
	suite.Suite
	ctx context.Context
	g   *core.MemoryGraph
}

func (s *MemoryGraphSuite) SetupTest() {
	s.ctx = context.Background()
	s.g = graphtest.Diamond(s.T())
}

func (s *MemoryGraphSuite) TestAttributesAndCapabilities() {
	s.Equal(core.Attributes{Finite: true, Dynamic: true}, s.g.Attributes())
	s.Equal(core.AllCapabilities, core.SupportedCapabilities(s.g))
}

func (s *MemoryGraphSuite) TestVerticesOrderedWithEdges() {
	vs := graphtest.Entire(s.T(), s.g)
	s.Require().Len(vs, 5)
	s.Equal([]string{"A", "B", "C", "D", "E"}, graphtest.IDs(s.T(), core.VerticesOf(vs...)))
	s.Equal([]string{"A->B", "A->C"}, graphtest.EdgePairs(vs[0].OutEdges))
	s.Empty(vs[0].InEdges)
	s.Equal([]string{"B->D", "C->D"}, graphtest.EdgePairs(vs[3].InEdges))
}

func (s *MemoryGraphSuite) TestVertexAbsentIsNotAnError() {
	v, found, err := s.g.Vertex(s.ctx, core.ID("missing"))
	s.NoError(err)
	s.False(found)
	s.Nil(v)
}

func (s *MemoryGraphSuite) TestParentsAndChildren() {
	s.Equal([]string{"B", "C"}, graphtest.IDs(s.T(), s.g.ParentVertices(s.ctx, core.ID("D"))))
	s.Equal([]string{"B", "C"}, graphtest.IDs(s.T(), s.g.ChildVertices(s.ctx, core.ID("A"))))
	s.Empty(graphtest.IDs(s.T(), s.g.ChildVertices(s.ctx, core.ID("E"))))
}

func (s *MemoryGraphSuite) TestRoots() {
	roots, err := core.CollectIdentities(s.g.Roots(s.ctx))
	s.Require().NoError(err)
	s.Equal([]string{"A"}, graphtest.Strings(roots))
}

func (s *MemoryGraphSuite) TestReturnedVerticesAreCopies() {
	v := graphtest.Fetch(s.T(), s.g, "A")
	v.Properties[0].Values[0] = "mutated"
	again := graphtest.Fetch(s.T(), s.g, "A")
	s.Equal(1.0, again.Properties[0].Values[0])
}

func (s *MemoryGraphSuite) TestRemoveVertexDropsIncidentEdges() {
	s.Require().NoError(s.g.RemoveVertex(core.ID("D")))
	s.Equal(2, s.g.EdgeCount())
	s.Empty(graphtest.Fetch(s.T(), s.g, "B").OutEdges)
	s.ErrorIs(s.g.RemoveVertex(core.ID("D")), core.ErrVertexNotFound)
}

func (s *MemoryGraphSuite) TestRemoveEdge() {
	s.Require().NoError(s.g.RemoveEdge(core.ID("A::B")))
	s.Equal([]string{"A->C"}, graphtest.EdgePairs(graphtest.Fetch(s.T(), s.g, "A").OutEdges))
	s.ErrorIs(s.g.RemoveEdge(core.ID("A::B")), core.ErrEdgeNotFound)
}

func (s *MemoryGraphSuite) TestEarlyBreakStopsEnumeration() {
	n := 0
	for range s.g.Vertices(s.ctx) {
		n++
		if n == 2 {
			break
		}
	}
	s.Equal(2, n)
}

func (s *MemoryGraphSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := core.CollectVertices(s.g.Vertices(ctx))
	s.ErrorIs(err, context.Canceled)
}

func (s *MemoryGraphSuite) TestMutationWhileRanging() {
	for v, err := range s.g.Vertices(s.ctx) {
		s.Require().NoError(err)
		_, err = s.g.AddVertex(core.NewVertex(core.ID(v.ID.String() + "'")))
		s.Require().NoError(err)
	}
	s.Equal(10, s.g.VertexCount())
}

func TestMemoryGraphSuite(t *testing.T) {
	suite.Run(t, new(MemoryGraphSuite))
}

func TestMemoryGraph_UndirectedEdgeInBothLists(t *testing.T) {
	g := core.NewMemoryGraph(core.ID("u"))
	_, err := g.AddEdge(core.NewUndirectedEdge(core.ID("A"), core.ID("B")))
	require.NoError(t, err)

	for _, id := range []string{"A", "B"} {
		v := graphtest.Fetch(t, g, id)
		require.Len(t, v.InEdges, 1, id)
		require.Len(t, v.OutEdges, 1, id)
	}
	roots, err := core.CollectIdentities(g.Roots(context.Background()))
	require.NoError(t, err)
	require.Empty(t, roots)
}

func TestMemoryGraph_AddValidation(t *testing.T) {
	g := core.NewMemoryGraph(core.ID("g"))
	_, err := g.AddVertex(nil)
	require.ErrorIs(t, err, core.ErrEmptyIdentity)
	_, err = g.AddEdge(core.Edge{Source: core.ID("A")})
	require.ErrorIs(t, err, core.ErrEmptyIdentity)

	added, err := g.AddVertex(core.NewVertex(core.ID("A")))
	require.NoError(t, err)
	require.True(t, added)
	added, err = g.AddVertex(core.NewVertex(core.ID("A")))
	require.NoError(t, err)
	require.False(t, added)

	id, err := g.AddEdge(core.Edge{Source: core.ID("A"), Target: core.ID("B"), Directed: true})
	require.NoError(t, err)
	require.Equal(t, "A::B", id.String())
	require.True(t, g.HasVertex(core.ID("B")))

	g.Clear()
	require.Zero(t, g.VertexCount())
	require.Zero(t, g.EdgeCount())
}

func TestMemoryGraph_WithoutCapability(t *testing.T) {
	g := core.NewMemoryGraph(core.ID("partial"), core.WithoutCapability(core.CapEntire, core.CapRooted))
	require.False(t, core.Supports(g, core.CapEntire))
	require.False(t, core.Supports(g, core.CapRooted))
	require.True(t, core.Supports(g, core.CapDynamic))

	_, err := core.GetEntire(context.Background(), g)
	require.ErrorIs(t, err, core.ErrUnsupportedCapability)
}

func TestMemoryGraph_ConcurrentReadersAndWriters(t *testing.T) {
	const writers, perWriter = 8, 50
	g := core.NewMemoryGraph(core.ID("concurrent"))
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, writers*perWriter)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				src := core.ID(fmt.Sprintf("w%d-%d", w, i))
				if _, err := g.AddEdge(core.NewEdge(src, core.ID("hub"))); err != nil {
					errs <- err
				}
				if _, err := core.CollectVertices(g.ParentVertices(ctx, core.ID("hub"))); err != nil {
					errs <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, writers*perWriter+1, g.VertexCount())
	require.Equal(t, writers*perWriter, g.EdgeCount())
}
