package backtest_test

import (
	"context"
	"testing"
	"time"

	"github.com/daoleno/uniswapv3-sdk/constants"
	"github.com/ethereum/go-ethereum/common"
	"github.com/johnayoung/go-clmm-sim/pkg/arbitrage"
	"github.com/johnayoung/go-clmm-sim/pkg/backtest"
	"github.com/johnayoung/go-clmm-sim/pkg/clmm"
	"github.com/johnayoung/go-clmm-sim/pkg/primitives"
	"github.com/johnayoung/go-clmm-sim/pkg/strategy"
)

// Integration tests exercising the backtest engine against the real clmm.Pool
// domain rather than mocks, validating that the mechanism-agnostic
// Portfolio/Strategy machinery composes a CLMM position alongside a spot cash
// holding without the engine knowing clmm.Pool exists.

var (
	integrationWETH = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	integrationUSDC = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	integrationLP   = common.HexToAddress("0x0000000000000000000000000000000000000B")
)

// spotPosition is a minimal strategy.Position tracking a fixed quantity of a
// single asset, used here to give the LP position something to be composed
// alongside in the same portfolio.
type spotPosition struct {
	id       string
	pair     string
	quantity primitives.Decimal
}

func (s *spotPosition) ID() string                 { return s.id }
func (s *spotPosition) Type() strategy.PositionType { return strategy.PositionTypeSpot }

func (s *spotPosition) Value(snapshot strategy.MarketSnapshot) (primitives.Amount, error) {
	price, err := snapshot.Price(s.pair)
	if err != nil {
		return primitives.ZeroAmount(), err
	}
	return primitives.MustAmount(s.quantity).MulPrice(price), nil
}

func integrationSnapshotAt(t time.Time, wethPrice float64) strategy.MarketSnapshot {
	timestamp := primitives.NewTime(t)
	prices := map[string]primitives.Price{
		"WETH/USD": primitives.MustPrice(primitives.NewDecimalFromFloat(wethPrice)),
		"USDC/USD": primitives.MustPrice(primitives.One()),
	}
	return strategy.NewSimpleSnapshot(timestamp, prices)
}

func newIntegrationPool(t *testing.T) *clmm.Pool {
	t.Helper()
	pool, err := clmm.NewPool(
		integrationWETH, 18,
		integrationUSDC, 6,
		constants.FeeMedium,
		primitives.NewDecimal(2000),
		primitives.NewDecimalFromFloat(0.003),
	)
	if err != nil {
		t.Fatalf("creating pool: %v", err)
	}
	if _, err := pool.AddLiquidity(
		integrationLP,
		primitives.NewDecimal(5), primitives.NewDecimal(10000),
		primitives.NewDecimal(1500), primitives.NewDecimal(2500),
	); err != nil {
		t.Fatalf("adding liquidity: %v", err)
	}
	return pool
}

// multiPositionStrategy adds a CLMM position and a spot holding on its first
// rebalance, and nudges the pool toward each snapshot's external price via
// an arbitrage.Arbitrage agent on every call.
type multiPositionStrategy struct {
	pool  *clmm.Pool
	arb   *arbitrage.Arbitrage
	added bool
}

func (s *multiPositionStrategy) Rebalance(ctx context.Context, portfolio *strategy.Portfolio, snapshot strategy.MarketSnapshot) ([]strategy.Action, error) {
	wethPrice, err := snapshot.Price("WETH/USD")
	if err != nil {
		return nil, err
	}
	s.arb.Deal(wethPrice.Decimal())

	if s.added {
		return nil, nil
	}
	s.added = true

	lpPos := clmm.NewStrategyPosition(s.pool, integrationLP, "WETH/USD", "USDC/USD")
	cashPos := &spotPosition{id: "spot:usdc-reserve", pair: "USDC/USD", quantity: primitives.NewDecimal(5000)}

	return []strategy.Action{
		strategy.NewAddPositionAction(lpPos),
		strategy.NewAddPositionAction(cashPos),
	}, nil
}

// TestMultiPositionIntegration validates that a portfolio can compose a CLMM
// position (pkg/clmm, via the strategy.Position bridge) alongside a plain
// spot holding, and that the engine values both without any mechanism-
// specific code of its own.
func TestMultiPositionIntegration(t *testing.T) {
	pool := newIntegrationPool(t)
	arb := arbitrage.New(
		pool,
		primitives.NewDecimalFromFloat(0.001),
		primitives.NewDecimalFromFloat(0.5),
		primitives.NewDecimalFromFloat(0.001),
		primitives.Zero(),
	)
	strat := &multiPositionStrategy{pool: pool, arb: arb}

	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	snapshots := []strategy.MarketSnapshot{
		integrationSnapshotAt(baseTime, 2000),
		integrationSnapshotAt(baseTime.Add(15*24*time.Hour), 2100),
		integrationSnapshotAt(baseTime.Add(30*24*time.Hour), 1950),
	}

	config := backtest.DefaultConfig()
	engine := backtest.NewEngine(config)

	result, err := engine.Run(context.Background(), strat, snapshots)
	if err != nil {
		t.Fatalf("multi-position backtest failed: %v", err)
	}

	positions := result.Portfolio.Positions()
	if len(positions) != 2 {
		t.Fatalf("expected 2 positions, got %d", len(positions))
	}

	posTypes := make(map[strategy.PositionType]bool)
	for _, pos := range positions {
		posTypes[pos.Type()] = true
	}
	for _, want := range []strategy.PositionType{strategy.PositionTypeLiquidityPool, strategy.PositionTypeSpot} {
		if !posTypes[want] {
			t.Errorf("expected position type %s not found", want)
		}
	}

	totalValue, err := result.Portfolio.Value(snapshots[len(snapshots)-1])
	if err != nil {
		t.Fatalf("failed to calculate total value: %v", err)
	}
	if totalValue.IsZero() {
		t.Error("expected non-zero total value from the multi-position portfolio")
	}
}

// TestMechanismAgnosticBacktest proves the backtest engine never needs to
// know which concrete type implements strategy.Position, by running the
// same engine code against a CLMM position and an unrelated spot position.
func TestMechanismAgnosticBacktest(t *testing.T) {
	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	snapshots := []strategy.MarketSnapshot{
		integrationSnapshotAt(baseTime, 2000),
		integrationSnapshotAt(baseTime.Add(30*24*time.Hour), 2000),
	}

	pool := newIntegrationPool(t)
	testCases := []struct {
		name     string
		position strategy.Position
	}{
		{name: "ConcentratedLiquidityPosition", position: clmm.NewStrategyPosition(pool, integrationLP, "WETH/USD", "USDC/USD")},
		{name: "SpotPosition", position: &spotPosition{id: "spot:usdc", pair: "USDC/USD", quantity: primitives.NewDecimal(1000)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			strat := &singlePositionStrategy{position: tc.position}

			engine := backtest.NewEngine(backtest.DefaultConfig())
			result, err := engine.Run(context.Background(), strat, snapshots)
			if err != nil {
				t.Fatalf("backtest failed for %s: %v", tc.name, err)
			}

			positions := result.Portfolio.Positions()
			if len(positions) != 1 {
				t.Fatalf("expected 1 position, got %d", len(positions))
			}
			if positions[0].Type() != tc.position.Type() {
				t.Errorf("expected position type %s, got %s", tc.position.Type(), positions[0].Type())
			}
		})
	}
}

// singlePositionStrategy adds one position on its first rebalance.
type singlePositionStrategy struct {
	position strategy.Position
	added    bool
}

func (s *singlePositionStrategy) Rebalance(ctx context.Context, portfolio *strategy.Portfolio, snapshot strategy.MarketSnapshot) ([]strategy.Action, error) {
	if s.added {
		return nil, nil
	}
	s.added = true
	return []strategy.Action{strategy.NewAddPositionAction(s.position)}, nil
}
