package clmm

import "github.com/johnayoung/go-clmm-sim/pkg/primitives"

// maxSwapSteps bounds the number of range-crossing sub-steps a single swap
// may take. A well-formed position set converges in a handful of steps;
// this is a backstop against a malformed one spinning the loop forever,
// mirroring the loop-safety counter used by comparable Go ports of this
// mechanism.
const maxSwapSteps = 1000

// SwapOutcomeKind distinguishes the three ways a Swap call can end, per the
// sum-typed return recommended for this engine: a committed swap, a
// simulated (non-committing) probe, or a failure that left pool state
// untouched.
type SwapOutcomeKind int

const (
	SwapCommitted SwapOutcomeKind = iota
	SwapSimulated
	SwapFailed
)

// SwapOutcome is the result of a Swap call. Output and SqrtPAfter are
// Q/E-scaled internal values, populated for SwapCommitted and SwapSimulated;
// Reason is populated for SwapFailed.
type SwapOutcome struct {
	Kind       SwapOutcomeKind
	Output     primitives.Decimal
	SqrtPAfter primitives.Decimal
	Reason     error
}

// IsFailed reports whether the swap did not execute.
func (o SwapOutcome) IsFailed() bool { return o.Kind == SwapFailed }

// Swap pays amount (human units) of the token identified by direction into
// the pool, walking the price curve across any range boundaries the trade
// crosses. If simulate is true, pool state is restored to its pre-call
// value before returning and the caller receives only the would-be output
// and final price. A zero-size amount, or running out of active liquidity
// mid-trade, fails benignly: pool state is left exactly as it was on entry.
func (p *Pool) Swap(amount primitives.Decimal, direction Direction, simulate bool) SwapOutcome {
	if !amount.IsPositive() {
		return SwapOutcome{Kind: SwapFailed, Reason: ErrInvalidSwapAmount}
	}

	snap := p.snapshot()

	p.SavedFee = p.Fee
	effectiveFee := p.Hooks.BeforeSwap(p, amount, direction)
	p.Fee = effectiveFee
	p.LastFee = effectiveFee

	var output primitives.Decimal
	var err error
	if direction == ZtoO {
		output, err = p.swapZtoO(amount.Mul(primitives.E18))
	} else {
		output, err = p.swapOtoZ(amount.Mul(primitives.E18))
	}

	if err != nil {
		p.restore(snap)
		return SwapOutcome{Kind: SwapFailed, Reason: err}
	}

	sqrtPAfter := p.SqrtP

	if simulate {
		p.restore(snap)
		return SwapOutcome{Kind: SwapSimulated, Output: output, SqrtPAfter: sqrtPAfter}
	}

	p.Hooks.AfterSwap(p, amount, direction)
	// Restore the pre-swap fee on commit regardless of direction: the
	// source only did this for OtoZ, an asymmetry treated here as a bug.
	p.Fee = p.SavedFee
	return SwapOutcome{Kind: SwapCommitted, Output: output, SqrtPAfter: sqrtPAfter}
}

func (p *Pool) swapZtoO(deltaXTotal primitives.Decimal) (primitives.Decimal, error) {
	remaining := deltaXTotal
	sumDeltaY := primitives.Zero()
	rng := FindActiveRange(p.Positions, p.SqrtP, ZtoO)
	one := primitives.One()

	for steps := 0; !remaining.IsZero(); steps++ {
		if steps >= maxSwapSteps {
			return primitives.Decimal{}, ErrStepLimitExceeded
		}
		if rng.TotalL.IsZero() {
			return primitives.Decimal{}, ErrInsufficientLiquidity
		}

		onePlusFee := one.Add(p.Fee)

		deltaPriceXY, err := remaining.Div(onePlusFee)
		if err != nil {
			return primitives.Decimal{}, err
		}
		deltaPriceXY, err = deltaPriceXY.Div(rng.TotalL)
		if err != nil {
			return primitives.Decimal{}, err
		}
		deltaPriceXY, err = deltaPriceXY.Div(primitives.Q96)
		if err != nil {
			return primitives.Decimal{}, err
		}

		invSqrtP, err := one.Div(p.SqrtP)
		if err != nil {
			return primitives.Decimal{}, err
		}
		newPriceXY := invSqrtP.Add(deltaPriceXY)
		newSqrtP, err := one.Div(newPriceXY)
		if err != nil {
			return primitives.Decimal{}, err
		}

		if newSqrtP.GreaterThan(rng.Boundary) {
			deltaY, err := rng.TotalL.Mul(newSqrtP.Sub(p.SqrtP)).Div(primitives.Q96)
			if err != nil {
				return primitives.Decimal{}, err
			}
			p.updateState(remaining, deltaY, rng.TotalL, newSqrtP, rng.Active, ZtoO)
			sumDeltaY = sumDeltaY.Add(deltaY)
			remaining = primitives.Zero()
			continue
		}

		invBoundary, err := one.Div(rng.Boundary)
		if err != nil {
			return primitives.Decimal{}, err
		}
		deltaX := rng.TotalL.Mul(invBoundary.Sub(invSqrtP)).Mul(onePlusFee).Mul(primitives.Q96)
		deltaY, err := rng.TotalL.Mul(rng.Boundary.Sub(p.SqrtP)).Div(primitives.Q96)
		if err != nil {
			return primitives.Decimal{}, err
		}

		p.updateState(deltaX, deltaY, rng.TotalL, rng.Boundary, rng.Active, ZtoO)
		remaining = remaining.Sub(deltaX)
		sumDeltaY = sumDeltaY.Add(deltaY)
		rng = FindActiveRange(p.Positions, p.SqrtP, ZtoO)
	}

	return sumDeltaY, nil
}

func (p *Pool) swapOtoZ(deltaYTotal primitives.Decimal) (primitives.Decimal, error) {
	remaining := deltaYTotal
	sumDeltaX := primitives.Zero()
	rng := FindActiveRange(p.Positions, p.SqrtP, OtoZ)
	one := primitives.One()

	for steps := 0; !remaining.IsZero(); steps++ {
		if steps >= maxSwapSteps {
			return primitives.Decimal{}, ErrStepLimitExceeded
		}
		if rng.TotalL.IsZero() {
			return primitives.Decimal{}, ErrInsufficientLiquidity
		}

		onePlusFee := one.Add(p.Fee)

		deltaPriceYX, err := remaining.Div(onePlusFee)
		if err != nil {
			return primitives.Decimal{}, err
		}
		deltaPriceYX, err = deltaPriceYX.Div(rng.TotalL)
		if err != nil {
			return primitives.Decimal{}, err
		}
		deltaPriceYX = deltaPriceYX.Mul(primitives.Q96)

		newSqrtP := p.SqrtP.Add(deltaPriceYX)

		if newSqrtP.LessThan(rng.Boundary) {
			invNew, err := one.Div(newSqrtP)
			if err != nil {
				return primitives.Decimal{}, err
			}
			invCurrent, err := one.Div(p.SqrtP)
			if err != nil {
				return primitives.Decimal{}, err
			}
			deltaX := invNew.Sub(invCurrent).Mul(rng.TotalL).Mul(primitives.Q96)

			p.updateState(deltaX, remaining, rng.TotalL, newSqrtP, rng.Active, OtoZ)
			sumDeltaX = sumDeltaX.Add(deltaX)
			remaining = primitives.Zero()
			continue
		}

		deltaY, err := rng.TotalL.Mul(rng.Boundary.Sub(p.SqrtP)).Div(primitives.Q96)
		if err != nil {
			return primitives.Decimal{}, err
		}
		deltaY = deltaY.Mul(onePlusFee)

		invBoundary, err := one.Div(rng.Boundary)
		if err != nil {
			return primitives.Decimal{}, err
		}
		invCurrent, err := one.Div(p.SqrtP)
		if err != nil {
			return primitives.Decimal{}, err
		}
		deltaX := invBoundary.Sub(invCurrent).Mul(rng.TotalL).Mul(primitives.Q96)

		p.updateState(deltaX, deltaY, rng.TotalL, rng.Boundary, rng.Active, OtoZ)
		remaining = remaining.Sub(deltaY)
		sumDeltaX = sumDeltaX.Add(deltaX)
		rng = FindActiveRange(p.Positions, p.SqrtP, OtoZ)
	}

	return sumDeltaX, nil
}

// updateState credits every active position its share of this step's
// deltas and fees, then commits the new square-root price and its
// human-units square.
func (p *Pool) updateState(deltaX, deltaY, totalL, newSqrtP primitives.Decimal, active []*Position, direction Direction) {
	p.SqrtP = newSqrtP
	ratio, _ := newSqrtP.Div(primitives.Q96)
	p.CurrentPrice = ratio.Mul(ratio)

	one := primitives.One()
	for _, pos := range active {
		share, err := pos.L.Div(totalL)
		if err != nil {
			continue
		}

		if direction == ZtoO {
			pos.XReal = pos.XReal.Add(deltaX.Mul(share).Mul(one.Sub(p.Fee)))
			pos.YReal = pos.YReal.Add(deltaY.Mul(share))

			feesXBase, err := deltaX.Div(primitives.E18)
			if err != nil {
				continue
			}
			feesX := feesXBase.Mul(share).Mul(p.Fee)
			pos.FeeX = pos.FeeX.Add(feesX)
			pos.FeeInY = pos.FeeInY.Add(feesX.Mul(p.CurrentPrice))
		} else {
			pos.XReal = pos.XReal.Add(deltaX.Mul(share))
			pos.YReal = pos.YReal.Add(deltaY.Mul(share).Mul(one.Sub(p.Fee)))

			feesYBase, err := deltaY.Div(primitives.E18)
			if err != nil {
				continue
			}
			feesY := feesYBase.Mul(share).Mul(p.Fee)
			pos.FeeY = pos.FeeY.Add(feesY)
			pos.FeeInY = pos.FeeInY.Add(feesY)
		}
	}
}
