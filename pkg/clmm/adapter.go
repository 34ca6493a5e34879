package clmm

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/johnayoung/go-clmm-sim/pkg/mechanisms"
	"github.com/johnayoung/go-clmm-sim/pkg/primitives"
)

// ErrMetadataMissing is returned by the Adapter when a required metadata key
// (the owner "id") is absent from a mechanisms.PoolPosition passed to it.
var ErrMetadataMissing = errors.New("clmm: required metadata field missing")

// Adapter bridges a live *Pool to this repository's mechanism-agnostic
// mechanisms.LiquidityPool contract, so a Pool can sit behind the same
// Strategy/Portfolio machinery as any other AMM implementation without that
// machinery knowing concentrated liquidity exists.
//
// The native Pool API (AddLiquidity, BurnLiquidity, Swap) stays the primary
// way to drive a pool directly; Adapter exists for callers that only know
// the mechanisms.LiquidityPool shape.
type Adapter struct {
	Pool *Pool
}

// NewAdapter wraps pool for use through mechanisms.LiquidityPool.
func NewAdapter(pool *Pool) *Adapter {
	return &Adapter{Pool: pool}
}

// Mechanism identifies this as a liquidity pool mechanism.
func (a *Adapter) Mechanism() mechanisms.MechanismType {
	return mechanisms.MechanismTypeLiquidityPool
}

// Venue identifies the pool's fee tier alongside the generic venue name,
// since a single venue string otherwise can't distinguish fee tiers.
func (a *Adapter) Venue() string {
	return fmt.Sprintf("clmm-%d", a.Pool.FeeTier)
}

// Calculate reports the pool's current state. It reads live Pool fields and
// never mutates them, satisfying the interface's purity requirement; params
// is accepted for interface conformance but unused, since a Pool already
// carries everything needed to answer "what is the state right now".
func (a *Adapter) Calculate(ctx context.Context, params mechanisms.PoolParams) (mechanisms.PoolState, error) {
	if err := ctx.Err(); err != nil {
		return mechanisms.PoolState{}, err
	}

	spotPrice, err := primitives.NewPrice(a.Pool.CurrentPrice)
	if err != nil {
		return mechanisms.PoolState{}, fmt.Errorf("clmm: adapter: %w", err)
	}

	totalL := primitives.Zero()
	feesX := primitives.Zero()
	feesY := primitives.Zero()
	for _, pos := range a.Pool.Positions {
		totalL = totalL.Add(pos.L)
		feesX = feesX.Add(pos.FeeX)
		feesY = feesY.Add(pos.FeeY)
	}

	active := FindActiveRange(a.Pool.Positions, a.Pool.SqrtP, ZtoO)

	liquidity, err := primitives.NewAmount(totalL)
	if err != nil {
		return mechanisms.PoolState{}, fmt.Errorf("clmm: adapter: %w", err)
	}
	effective, err := primitives.NewAmount(active.TotalL)
	if err != nil {
		return mechanisms.PoolState{}, fmt.Errorf("clmm: adapter: %w", err)
	}
	feeA, err := primitives.NewAmount(feesX)
	if err != nil {
		return mechanisms.PoolState{}, fmt.Errorf("clmm: adapter: %w", err)
	}
	feeB, err := primitives.NewAmount(feesY)
	if err != nil {
		return mechanisms.PoolState{}, fmt.Errorf("clmm: adapter: %w", err)
	}

	return mechanisms.PoolState{
		SpotPrice:          spotPrice,
		Liquidity:          liquidity,
		EffectiveLiquidity: effective,
		AccumulatedFeesA:   feeA,
		AccumulatedFeesB:   feeB,
		Metadata: map[string]interface{}{
			"fee_tier":      a.Pool.FeeTier,
			"num_positions": len(a.Pool.Positions),
		},
	}, nil
}

// AddLiquidity always returns an error and creates no position:
// mechanisms.TokenAmounts has no room for an owner id or a price range.
// Use AddLiquidityRange below, or Pool.AddLiquidity directly.
func (a *Adapter) AddLiquidity(ctx context.Context, amounts mechanisms.TokenAmounts) (mechanisms.PoolPosition, error) {
	return mechanisms.PoolPosition{}, errors.New("clmm: adapter: AddLiquidity requires a price range; use AddLiquidityRange")
}

// AddLiquidityRange is the adapter's real entry point: it adds liquidity
// over [priceLower, priceUpper] under owner id, then wraps the resulting
// Position as a mechanisms.PoolPosition. Prefer this over AddLiquidity,
// which the mechanisms.LiquidityPool interface shape cannot express a price
// range through.
func (a *Adapter) AddLiquidityRange(ctx context.Context, id common.Address, amounts mechanisms.TokenAmounts, priceLower, priceUpper primitives.Decimal) (mechanisms.PoolPosition, error) {
	if err := ctx.Err(); err != nil {
		return mechanisms.PoolPosition{}, err
	}

	pos, err := a.Pool.AddLiquidity(id, amounts.AmountA.Decimal(), amounts.AmountB.Decimal(), priceLower, priceUpper)
	if err != nil {
		return mechanisms.PoolPosition{}, err
	}

	return positionToPoolPosition(pos), nil
}

// RemoveLiquidity burns the position identified by position.Metadata["id"]
// (a common.Address hex string set by AddLiquidityRange) and returns the
// token amounts it held at the time of removal.
func (a *Adapter) RemoveLiquidity(ctx context.Context, position mechanisms.PoolPosition) (mechanisms.TokenAmounts, error) {
	if err := ctx.Err(); err != nil {
		return mechanisms.TokenAmounts{}, err
	}

	idHex, ok := position.Metadata["id"].(string)
	if !ok {
		return mechanisms.TokenAmounts{}, fmt.Errorf("%w: id", ErrMetadataMissing)
	}
	pos, err := a.Pool.BurnLiquidity(common.HexToAddress(idHex))
	if err != nil {
		return mechanisms.TokenAmounts{}, err
	}

	amountA, err := primitives.NewAmount(pos.XReal)
	if err != nil {
		return mechanisms.TokenAmounts{}, err
	}
	amountB, err := primitives.NewAmount(pos.YReal)
	if err != nil {
		return mechanisms.TokenAmounts{}, err
	}

	return mechanisms.TokenAmounts{AmountA: amountA, AmountB: amountB}, nil
}

func positionToPoolPosition(pos *Position) mechanisms.PoolPosition {
	amountA, _ := primitives.NewAmount(pos.XReal)
	amountB, _ := primitives.NewAmount(pos.YReal)
	liquidity, _ := primitives.NewAmount(pos.L)

	return mechanisms.PoolPosition{
		PoolID:    pos.ID.Hex(),
		Liquidity: liquidity,
		TokensDeposited: mechanisms.TokenAmounts{
			AmountA: amountA,
			AmountB: amountB,
		},
		Metadata: map[string]interface{}{
			"id":          pos.ID.Hex(),
			"price_lower": pos.Pa.String(),
			"price_upper": pos.Pb.String(),
		},
	}
}
