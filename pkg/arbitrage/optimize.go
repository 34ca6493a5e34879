package arbitrage

import (
	"github.com/johnayoung/go-clmm-sim/pkg/clmm"
	"github.com/johnayoung/go-clmm-sim/pkg/primitives"
)

// maxOptimizeSteps bounds the range walk the same way maxSwapSteps bounds
// clmm.Pool.Swap: a backstop against a malformed position set, not an
// expected limit in ordinary use.
const maxOptimizeSteps = 1000

// optimizeTrade inverts the pool's swap curve to find the cumulative input
// that would land the pool exactly at idealPriceLinear, without mutating
// pool state. It walks the same range structure Pool.Swap does, but against
// a hypothetical price that only exists locally in this walk.
//
// The two return values are ordered by direction convention, matching the
// source this is ported from: for ZtoO they are (deltaX, deltaY); for OtoZ
// they are (deltaY, deltaX).
func (a *Arbitrage) optimizeTrade(idealPriceLinear primitives.Decimal, direction clmm.Direction) (primitives.Decimal, primitives.Decimal, error) {
	idealSqrtP, err := primitives.PriceToSqrtP(idealPriceLinear)
	if err != nil {
		return primitives.Decimal{}, primitives.Decimal{}, err
	}

	s := a.Pool.SqrtP
	sumFirst := primitives.Zero()
	sumSecond := primitives.Zero()
	one := primitives.One()
	onePlusFee := one.Add(a.Pool.Fee)

	for steps := 0; !s.Equal(idealSqrtP); steps++ {
		if steps >= maxOptimizeSteps {
			return primitives.Decimal{}, primitives.Decimal{}, ErrInfeasible
		}

		rng := clmm.FindActiveRange(a.Pool.Positions, s, direction)
		if rng.TotalL.IsZero() {
			return primitives.Decimal{}, primitives.Decimal{}, ErrInfeasible
		}

		reachesTarget := (direction == clmm.ZtoO && rng.Boundary.LessThanOrEqual(idealSqrtP)) ||
			(direction == clmm.OtoZ && rng.Boundary.GreaterThanOrEqual(idealSqrtP))

		stepEnd := rng.Boundary
		if reachesTarget {
			stepEnd = idealSqrtP
		}

		invStepEnd, err := one.Div(stepEnd)
		if err != nil {
			return primitives.Decimal{}, primitives.Decimal{}, err
		}
		invS, err := one.Div(s)
		if err != nil {
			return primitives.Decimal{}, primitives.Decimal{}, err
		}
		deltaPriceYX := stepEnd.Sub(s)
		deltaPriceXY := invStepEnd.Sub(invS)

		var deltaY, deltaX primitives.Decimal
		if direction == clmm.ZtoO {
			var err error
			deltaY, err = deltaPriceYX.Mul(rng.TotalL).Div(primitives.Q96)
			if err != nil {
				return primitives.Decimal{}, primitives.Decimal{}, err
			}
			deltaX = deltaPriceXY.Mul(rng.TotalL).Mul(onePlusFee).Mul(primitives.Q96)
		} else {
			var err error
			deltaY, err = deltaPriceYX.Mul(rng.TotalL).Mul(onePlusFee).Div(primitives.Q96)
			if err != nil {
				return primitives.Decimal{}, primitives.Decimal{}, err
			}
			deltaX = deltaPriceXY.Mul(rng.TotalL).Mul(primitives.Q96)
		}

		if direction == clmm.ZtoO {
			sumFirst = sumFirst.Add(deltaX)
			sumSecond = sumSecond.Add(deltaY)
		} else {
			sumFirst = sumFirst.Add(deltaY)
			sumSecond = sumSecond.Add(deltaX)
		}

		if reachesTarget {
			first, err := sumFirst.Div(primitives.E18)
			if err != nil {
				return primitives.Decimal{}, primitives.Decimal{}, err
			}
			second, err := sumSecond.Div(primitives.E18)
			if err != nil {
				return primitives.Decimal{}, primitives.Decimal{}, err
			}
			return first, second, nil
		}

		s = rng.Boundary
	}

	// s already equals idealSqrtP (zero-step case): no trade needed.
	first, err := sumFirst.Div(primitives.E18)
	if err != nil {
		return primitives.Decimal{}, primitives.Decimal{}, err
	}
	second, err := sumSecond.Div(primitives.E18)
	if err != nil {
		return primitives.Decimal{}, primitives.Decimal{}, err
	}
	return first, second, nil
}
