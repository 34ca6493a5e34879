package clmm

import (
	"fmt"

	core "github.com/daoleno/uniswap-sdk-core/entities"
	"github.com/daoleno/uniswapv3-sdk/constants"
	"github.com/ethereum/go-ethereum/common"
	"github.com/johnayoung/go-clmm-sim/pkg/primitives"
)

// Pool owns a set of concentrated-liquidity positions and the current
// square-root price. Positions are created by AddLiquidity, mutated only by
// swap accounting, and destroyed by BurnLiquidity; price state is mutated
// only by Swap in commit mode.
type Pool struct {
	// SqrtP is the current square-root price in Q64.96 form; CurrentPrice
	// is its human-units square, kept in lockstep by swap accounting.
	SqrtP        primitives.Decimal
	CurrentPrice primitives.Decimal

	// Fee is the proportional swap fee (e.g. 0.003 for 30bps). LastFee
	// records the fee used by the most recent swap; SavedFee is the
	// transient value FeeHooks.BeforeSwap displaces for the duration of a
	// single Swap call.
	Fee, LastFee, SavedFee primitives.Decimal

	// Positions is keyed by the position's opaque owner id. Iteration
	// order must never affect results; callers must not rely on it.
	Positions map[common.Address]*Position

	// Token0, Token1 describe the two sides of the pool. FeeTier validates
	// against github.com/daoleno/uniswapv3-sdk's recognized fee tiers; the
	// swap engine itself uses Fee, not FeeTier, for its arithmetic.
	Token0, Token1 *core.Token
	FeeTier        constants.FeeAmount

	// Hooks lets callers override fee behavior around swaps; defaults to
	// DefaultFeeHooks (identity).
	Hooks FeeHooks
}

// NewPool constructs a pool at the given initial human-units price and
// proportional fee, covering two tokens identified the way the rest of this
// codebase identifies on-chain entities.
func NewPool(
	token0Address common.Address, token0Decimals uint,
	token1Address common.Address, token1Decimals uint,
	feeTier constants.FeeAmount,
	firstPrice primitives.Decimal,
	fee primitives.Decimal,
) (*Pool, error) {
	if _, ok := constants.TickSpacings[feeTier]; !ok {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFeeTier, feeTier)
	}
	if firstPrice.IsNegative() || fee.IsNegative() {
		return nil, primitives.ErrNegativePrice
	}

	sqrtP, err := primitives.PriceToSqrtP(firstPrice)
	if err != nil {
		return nil, fmt.Errorf("clmm: initial price: %w", err)
	}

	return &Pool{
		SqrtP:        sqrtP,
		CurrentPrice: firstPrice,
		Fee:          fee,
		LastFee:      fee,
		Positions:    make(map[common.Address]*Position),
		Token0:       core.NewToken(1, token0Address, token0Decimals, "", ""),
		Token1:       core.NewToken(1, token1Address, token1Decimals, "", ""),
		FeeTier:      feeTier,
		Hooks:        DefaultFeeHooks{},
	}, nil
}

// AddLiquidity adds a new position over human-units range [pa, pb] funded
// with x units of token0 and y units of token1, sizing its liquidity per the
// three-way split on where the pool's current price falls relative to the
// range.
func (p *Pool) AddLiquidity(id common.Address, x, y, pa, pb primitives.Decimal) (*Position, error) {
	paSqrt, err := primitives.PriceToSqrtP(pa)
	if err != nil {
		return nil, fmt.Errorf("clmm: lower bound: %w", err)
	}
	pbSqrt, err := primitives.PriceToSqrtP(pb)
	if err != nil {
		return nil, fmt.Errorf("clmm: upper bound: %w", err)
	}
	if paSqrt.GreaterThan(pbSqrt) {
		paSqrt, pbSqrt = pbSqrt, paSqrt
	}
	if paSqrt.Equal(pbSqrt) {
		return nil, ErrInvalidRange
	}

	xE := x.Mul(primitives.E18)
	yE := y.Mul(primitives.E18)

	var l primitives.Decimal
	switch {
	case paSqrt.LessThan(p.SqrtP) && p.SqrtP.LessThan(pbSqrt):
		l0, err := primitives.Liquidity0(xE, pbSqrt, p.SqrtP)
		if err != nil {
			return nil, err
		}
		l1, err := primitives.Liquidity1(yE, p.SqrtP, paSqrt)
		if err != nil {
			return nil, err
		}
		if l0.LessThan(l1) {
			l = l0
		} else {
			l = l1
		}
	case p.SqrtP.LessThanOrEqual(paSqrt):
		l, err = primitives.Liquidity0(xE, pbSqrt, paSqrt)
		if err != nil {
			return nil, err
		}
	default: // p.SqrtP >= pbSqrt
		l, err = primitives.Liquidity1(yE, pbSqrt, paSqrt)
		if err != nil {
			return nil, err
		}
	}

	pos := &Position{
		ID:         id,
		Pa:         paSqrt,
		Pb:         pbSqrt,
		L:          l,
		XReal:      xE,
		YReal:      yE,
		FeeX:       primitives.Zero(),
		FeeY:       primitives.Zero(),
		FeeInY:     primitives.Zero(),
		FirstPrice: p.CurrentPrice,
		XRealStart: xE,
		YRealStart: yE,
	}
	p.Positions[id] = pos
	return pos, nil
}

// BurnLiquidity removes and returns the position owned by id. An unknown id
// is reported as ErrPositionNotFound and leaves pool state unchanged; this
// is a recoverable condition, not a program-fatal one.
func (p *Pool) BurnLiquidity(id common.Address) (*Position, error) {
	pos, ok := p.Positions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPositionNotFound, id.Hex())
	}
	delete(p.Positions, id)
	return pos, nil
}

// snapshot deep-copies every field a swap's step loop can mutate: the
// positions map and the pool's scalar price state. Lifetime of the returned
// snapshot is the call stack of the Swap invocation that took it.
func (p *Pool) snapshot() *poolSnapshot {
	positions := make(map[common.Address]*Position, len(p.Positions))
	for id, pos := range p.Positions {
		positions[id] = pos.clone()
	}
	return &poolSnapshot{
		positions:    positions,
		sqrtP:        p.SqrtP,
		currentPrice: p.CurrentPrice,
		fee:          p.Fee,
	}
}

// restore replaces live state with a previously taken snapshot.
func (p *Pool) restore(s *poolSnapshot) {
	p.Positions = s.positions
	p.SqrtP = s.sqrtP
	p.CurrentPrice = s.currentPrice
	p.Fee = s.fee
}

type poolSnapshot struct {
	positions    map[common.Address]*Position
	sqrtP        primitives.Decimal
	currentPrice primitives.Decimal
	fee          primitives.Decimal
}
