// Package arbitrage implements an agent that closes the gap between a
// clmm.Pool's price and an external price feed: it computes a no-trade
// band, inverts the pool's swap curve to size a trade that lands on a
// fee-adjusted target price, and commits that trade only if it clears a
// gas-cost floor.
package arbitrage

import (
	"math/rand"

	"github.com/johnayoung/go-clmm-sim/pkg/clmm"
	"github.com/johnayoung/go-clmm-sim/pkg/primitives"
)

// Reason distinguishes why deal did not execute a swap. None of these are
// errors: they are expected, benign outcomes of evaluating the current
// price against the pool.
type Reason int

const (
	// Executed indicates a swap was committed against the pool.
	Executed Reason = iota
	// Skipped indicates the Bernoulli skip fired for this block.
	Skipped
	// NoChange indicates neither the pool price nor the external price
	// moved since the last call.
	NoChange
	// InBand indicates the external price is inside the no-trade band.
	InBand
	// BelowGasFloor indicates the trade would be profitable but not enough
	// to clear minGasPrice.
	BelowGasFloor
	// Infeasible indicates the optimizer could not converge on a target
	// price (insufficient liquidity to reach it).
	Infeasible
)

// Outcome is the result of a single Deal call.
type Outcome struct {
	Reason Reason
	// Profit is the realized (post-gas) profit in token Y, populated only
	// when Reason == Executed.
	Profit primitives.Decimal
}

// Arbitrage holds the configuration and cumulative statistics of an
// arbitrage agent watching a single pool.
type Arbitrage struct {
	Pool *clmm.Pool

	MinGasPrice      primitives.Decimal
	ProfitToGasRatio primitives.Decimal
	FeeOutside       primitives.Decimal
	Skip             primitives.Decimal

	lastPriceInPool  *primitives.Decimal
	lastPriceOutside *primitives.Decimal

	CumulativeProfit primitives.Decimal
	CumulativeVolume primitives.Decimal
	CumulativeBurn   primitives.Decimal
	NumDeals         int

	// rand is a seam for deterministic tests of the Bernoulli skip; nil
	// means use the package-level math/rand source.
	rand *rand.Rand
}

// New constructs an arbitrage agent watching pool, with the given gas
// floor, profit/gas split, external-venue fee, and per-block skip
// probability.
func New(pool *clmm.Pool, minGasPrice, profitToGasRatio, feeOutside, skip primitives.Decimal) *Arbitrage {
	return &Arbitrage{
		Pool:             pool,
		MinGasPrice:      minGasPrice,
		ProfitToGasRatio: profitToGasRatio,
		FeeOutside:       feeOutside,
		Skip:             skip,
		CumulativeProfit: primitives.Zero(),
		CumulativeVolume: primitives.Zero(),
		CumulativeBurn:   primitives.Zero(),
	}
}

func (a *Arbitrage) roll() float64 {
	if a.rand != nil {
		return a.rand.Float64()
	}
	return rand.Float64()
}

// Deal evaluates the current external price against the pool and, if
// profitable after gas, commits a swap that moves the pool toward it.
func (a *Arbitrage) Deal(externalPrice primitives.Decimal) Outcome {
	if a.roll() < a.Skip.Float64() {
		return Outcome{Reason: Skipped}
	}

	poolPrice := a.Pool.CurrentPrice
	fee := a.Pool.Fee

	spread := fee.Add(a.FeeOutside)
	left := poolPrice.Mul(primitives.One().Sub(spread))
	right := poolPrice.Mul(primitives.One().Add(spread))

	if a.lastPriceInPool != nil && a.lastPriceOutside != nil &&
		a.lastPriceInPool.Equal(poolPrice) && a.lastPriceOutside.Equal(externalPrice) {
		return Outcome{Reason: NoChange}
	}
	a.lastPriceInPool = &poolPrice
	a.lastPriceOutside = &externalPrice

	switch {
	case externalPrice.LessThan(left):
		return a.dealOverpriced(externalPrice, poolPrice, spread)
	case externalPrice.GreaterThan(right):
		return a.dealUnderpriced(externalPrice, poolPrice, spread)
	default:
		return Outcome{Reason: InBand}
	}
}

// dealOverpriced handles externalPrice < left: the pool is overpriced
// relative to the outside venue, so we sell token X into the pool (ZtoO)
// and buy X back outside with the Y received.
func (a *Arbitrage) dealOverpriced(externalPrice, poolPrice, spread primitives.Decimal) Outcome {
	idealPrice, err := externalPrice.Div(primitives.One().Sub(spread))
	if err != nil {
		return Outcome{Reason: Infeasible}
	}

	deltaX, deltaY, err := a.optimizeTrade(idealPrice, clmm.ZtoO)
	if err != nil {
		return Outcome{Reason: Infeasible}
	}

	xReturn, err := deltaY.Neg().Div(externalPrice)
	if err != nil {
		return Outcome{Reason: Infeasible}
	}
	xReturn = xReturn.Mul(primitives.One().Sub(a.FeeOutside))

	arbProfit := xReturn.Sub(deltaX).Mul(externalPrice)

	return a.gateAndExecute(arbProfit, deltaX, clmm.ZtoO, deltaX.Mul(poolPrice))
}

// dealUnderpriced handles externalPrice > right: the pool is underpriced,
// so we buy token X from the pool (OtoZ) and sell it outside.
func (a *Arbitrage) dealUnderpriced(externalPrice, poolPrice, spread primitives.Decimal) Outcome {
	idealPrice, err := externalPrice.Div(primitives.One().Add(spread))
	if err != nil {
		return Outcome{Reason: Infeasible}
	}

	deltaY, deltaX, err := a.optimizeTrade(idealPrice, clmm.OtoZ)
	if err != nil {
		return Outcome{Reason: Infeasible}
	}

	yReturn := deltaX.Neg().Mul(externalPrice).Mul(primitives.One().Sub(a.FeeOutside))
	arbProfit := yReturn.Sub(deltaY)

	return a.gateAndExecute(arbProfit, deltaY, clmm.OtoZ, deltaY)
}

// gateAndExecute splits arbProfit into the realized and burned portions,
// aborts if the burned portion doesn't clear the gas floor, and otherwise
// commits the swap and updates cumulative stats.
func (a *Arbitrage) gateAndExecute(arbProfit, inputAmount primitives.Decimal, direction clmm.Direction, volume primitives.Decimal) Outcome {
	realProfit := arbProfit.Mul(primitives.One().Sub(a.ProfitToGasRatio))
	burnedProfit := arbProfit.Mul(a.ProfitToGasRatio)

	if burnedProfit.LessThan(a.MinGasPrice) {
		return Outcome{Reason: BelowGasFloor}
	}

	outcome := a.Pool.Swap(inputAmount, direction, false)
	if outcome.IsFailed() {
		return Outcome{Reason: Infeasible}
	}

	a.CumulativeProfit = a.CumulativeProfit.Add(realProfit)
	a.CumulativeVolume = a.CumulativeVolume.Add(volume)
	a.CumulativeBurn = a.CumulativeBurn.Add(burnedProfit)
	a.NumDeals++

	return Outcome{Reason: Executed, Profit: realProfit}
}
