package actor

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/katalvlaran/carta/core"
	"github.com/katalvlaran/carta/selector"
)

// Subproperty identities attached by the statistical actors.
var (
	VarianceID          = core.ID("variance")
	StandardDeviationID = core.ID("standard_deviation")
)

// StatisticActor attaches a summary statistic of a property's values as a
// subproperty. Properties with no values, or with any non-numeric value, are
// left unchanged.
type StatisticActor struct {
	*Actor
	PassThrough
	id      core.Identity
	measure func(xs []float64) float64
}

// Variance attaches the variance of each selected property's values under
// the "variance" subproperty. With bessel set the sample variance (n-1
// denominator) is computed, and a single observation yields math.MaxFloat64;
// otherwise the population variance is computed.
func Variance(inner core.Graph, sel selector.Selector, bessel bool, opts ...Option) (*StatisticActor, error) {
	measure := func(xs []float64) float64 { return stat.PopVariance(xs, nil) }
	if bessel {
		measure = func(xs []float64) float64 {
			if len(xs) < 2 {
				return math.MaxFloat64
			}
			return stat.Variance(xs, nil)
		}
	}

	return newStatistic(inner, sel, VarianceID, measure, opts)
}

// StandardDeviation attaches the standard deviation of each selected
// property's values under the "standard_deviation" subproperty. bessel has the
// same meaning as in Variance.
func StandardDeviation(inner core.Graph, sel selector.Selector, bessel bool, opts ...Option) (*StatisticActor, error) {
	measure := func(xs []float64) float64 { return stat.PopStdDev(xs, nil) }
	if bessel {
		measure = func(xs []float64) float64 {
			if len(xs) < 2 {
				return math.MaxFloat64
			}
			return stat.StdDev(xs, nil)
		}
	}

	return newStatistic(inner, sel, StandardDeviationID, measure, opts)
}

func newStatistic(inner core.Graph, sel selector.Selector, id core.Identity, measure func([]float64) float64, opts []Option) (*StatisticActor, error) {
	a := &StatisticActor{Actor: &Actor{}, id: id, measure: measure}
	if err := a.bind(inner, sel, a, a, opts); err != nil {
		return nil, err
	}

	return a, nil
}

// TransformProperty appends the statistic to p's subproperties, replacing
// an earlier one of the same kind. The statistic's own subproperty is not
// measured again.
func (a *StatisticActor) TransformProperty(_ context.Context, p core.Property) (core.Property, error) {
	if len(p.Values) == 0 || p.ID == a.id {
		return p, nil
	}
	xs := make([]float64, len(p.Values))
	for i, x := range p.Values {
		f, ok := toFloat(x)
		if !ok {
			return p, nil
		}
		xs[i] = f
	}

	out := p.Clone()
	stat := core.NewProperty(a.id, a.measure(xs))
	for i, sub := range out.Subproperties {
		if sub.ID == a.id {
			out.Subproperties[i] = stat
			return out, nil
		}
	}
	out.Subproperties = append(out.Subproperties, stat)

	return out, nil
}
