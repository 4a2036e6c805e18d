package selector

import (
	"context"
	"fmt"

	"github.com/katalvlaran/carta/core"
)

// DegreeSelector selects vertices by in- and out-degree.
type DegreeSelector struct {
	bound
	in, out *int
}

// Degree selects vertices whose in-degree equals *in and out-degree equals
// *out; a nil bound is not checked.
// Errors: core.ErrInvalidSelection for a negative degree.
func Degree(g core.Graph, in, out *int) (*DegreeSelector, error) {
	for _, d := range []*int{in, out} {
		if d != nil && *d < 0 {
			return nil, fmt.Errorf("%w: negative degree %d", core.ErrInvalidSelection, *d)
		}
	}

	return &DegreeSelector{bound: bound{g}, in: in, out: out}, nil
}

// Roots selects vertices without in-edges.
func Roots(g core.Graph) *DegreeSelector {
	zero := 0

	return &DegreeSelector{bound: bound{g}, in: &zero}
}

func (s *DegreeSelector) ContainsVertex(_ context.Context, v *core.Vertex) (bool, error) {
	if s.in != nil && v.InDegree() != *s.in {
		return false, nil
	}
	if s.out != nil && v.OutDegree() != *s.out {
		return false, nil
	}

	return true, nil
}

// Vertices uses RootedLookup for the roots pattern (in-degree 0, any
// out-degree) when the graph can also fetch vertices; otherwise it filters
// the whole graph.
func (s *DegreeSelector) Vertices(ctx context.Context) core.VertexSeq {
	if s.isRoots() {
		rooted, okRooted := core.Rooted(s.graph)
		dyn, okDyn := core.Dynamic(s.graph)
		if okRooted && okDyn {
			return core.FetchVertices(ctx, dyn, rooted.Roots(ctx))
		}
	}

	return filterEntire(ctx, s.graph, s.ContainsVertex)
}

func (s *DegreeSelector) isRoots() bool {
	return s.in != nil && *s.in == 0 && s.out == nil
}
