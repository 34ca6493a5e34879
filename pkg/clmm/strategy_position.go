package clmm

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/johnayoung/go-clmm-sim/pkg/primitives"
	"github.com/johnayoung/go-clmm-sim/pkg/strategy"
)

// StrategyPosition wraps a live Position so it can sit in a strategy.Portfolio
// alongside positions from other mechanisms. It reads the position fresh
// from Pool on every Value call, since swap accounting mutates XReal/YReal/
// FeeX/FeeY in place rather than producing new Position values.
type StrategyPosition struct {
	Pool  *Pool
	Owner common.Address

	// PriceToken0, PriceToken1 are the MarketSnapshot pair keys used to
	// price this position's two token balances, e.g. "WETH/USD", "USDC/USD".
	PriceToken0, PriceToken1 string
}

// NewStrategyPosition wraps the position owned by id in pool for use as a
// strategy.Position, priced against the given snapshot pair keys.
func NewStrategyPosition(pool *Pool, id common.Address, priceToken0, priceToken1 string) *StrategyPosition {
	return &StrategyPosition{Pool: pool, Owner: id, PriceToken0: priceToken0, PriceToken1: priceToken1}
}

// ID returns a stable identifier combining the pool's fee tier and the
// position owner's address.
func (s *StrategyPosition) ID() string {
	return fmt.Sprintf("clmm:%d:%s", s.Pool.FeeTier, s.Owner.Hex())
}

// Type classifies this as a liquidity pool position.
func (s *StrategyPosition) Type() strategy.PositionType {
	return strategy.PositionTypeLiquidityPool
}

// Value prices the position's current token balances plus accumulated,
// not-yet-withdrawn fees, at snapshot's prices for PriceToken0/PriceToken1.
func (s *StrategyPosition) Value(snapshot strategy.MarketSnapshot) (primitives.Amount, error) {
	pos, ok := s.Pool.Positions[s.Owner]
	if !ok {
		return primitives.ZeroAmount(), fmt.Errorf("%w: %s", ErrPositionNotFound, s.Owner.Hex())
	}

	x, err := pos.XReal.Div(primitives.E18)
	if err != nil {
		return primitives.ZeroAmount(), err
	}
	y, err := pos.YReal.Div(primitives.E18)
	if err != nil {
		return primitives.ZeroAmount(), err
	}
	x = x.Add(pos.FeeX)
	y = y.Add(pos.FeeY)

	price0, err := snapshot.Price(s.PriceToken0)
	if err != nil {
		return primitives.ZeroAmount(), fmt.Errorf("clmm: position value: %w", err)
	}
	price1, err := snapshot.Price(s.PriceToken1)
	if err != nil {
		return primitives.ZeroAmount(), fmt.Errorf("clmm: position value: %w", err)
	}

	amountX, err := primitives.NewAmount(x)
	if err != nil {
		return primitives.ZeroAmount(), err
	}
	amountY, err := primitives.NewAmount(y)
	if err != nil {
		return primitives.ZeroAmount(), err
	}

	valueX := amountX.MulPrice(price0)
	valueY := amountY.MulPrice(price1)
	return valueX.Add(valueY), nil
}

// Description implements strategy.PositionMetadata.
func (s *StrategyPosition) Description() string {
	pos, ok := s.Pool.Positions[s.Owner]
	if !ok {
		return fmt.Sprintf("clmm position %s (burned)", s.Owner.Hex())
	}
	return fmt.Sprintf("clmm %s-%s range [%s, %s]", s.PriceToken0, s.PriceToken1, pos.Pa.String(), pos.Pb.String())
}

// Venue implements strategy.PositionMetadata.
func (s *StrategyPosition) Venue() string {
	return fmt.Sprintf("clmm-%d", s.Pool.FeeTier)
}
