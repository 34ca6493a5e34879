package strategy

import (
	"github.com/johnayoung/go-clmm-sim/pkg/primitives"
)

// PositionType classifies the type of position held in a portfolio.
// This allows for type-specific logic and reporting without coupling
// to concrete position implementations.
type PositionType string

const (
	// PositionTypeSpot represents a spot holding of a single asset, used
	// here for the cash leg of a portfolio rather than any LP exposure.
	PositionTypeSpot PositionType = "spot"

	// PositionTypeLiquidityPool represents a liquidity pool position (LP),
	// the only position type a clmm.Pool ever produces in this repository.
	PositionTypeLiquidityPool PositionType = "liquidity_pool"

	// Additional position types (options, perpetuals, order books, ...) can
	// be defined as needed; none are implemented here since this repository
	// only models concentrated-liquidity pools.
)

// Position represents any tradeable position in a portfolio.
// This interface is intentionally minimal to support diverse position types
// while providing the essential methods needed for portfolio management.
//
// Implementations should be immutable snapshots of position state at a point
// in time. Position modifications should create new Position instances rather
// than mutating existing ones.
//
// Thread Safety: Position implementations should be safe for concurrent reads.
type Position interface {
	// Value returns the current value of the position in the portfolio's
	// denomination currency, using prices from the provided market snapshot.
	//
	// For spot positions: quantity * price
	// For LP positions: current value of tokens + fees, valued at spot
	//
	// Returns error if required prices are not available in the snapshot
	// or if position state is invalid.
	Value(snapshot MarketSnapshot) (primitives.Amount, error)

	// Type returns the classification of this position.
	// Used for reporting, risk analysis, and type-specific logic.
	Type() PositionType

	// ID returns a unique identifier for this position within the portfolio.
	// The ID format is implementation-specific but must be unique and stable.
	//
	// Example formats:
	//   - "spot:WETH"
	//   - "clmm:3000:0x123..."
	ID() string
}

// RiskMetrics contains position-specific risk measures. Implementations may
// leave fields that don't apply to their position type at zero.
//
// All monetary risk values should use the portfolio's denomination currency.
type RiskMetrics struct {
	// Delta measures the position's price sensitivity to the underlying asset.
	// For spot: always 1.0. For LP: effective delta considering both tokens.
	Delta primitives.Decimal

	// Leverage indicates the position's leverage ratio.
	// 1.0 for spot, >1.0 for leveraged positions.
	Leverage primitives.Decimal

	// LiquidationPrice indicates the price level at which position would be liquidated.
	// Zero if position has no liquidation risk (e.g., spot with no borrowed funds).
	LiquidationPrice primitives.Price
}

// PositionWithRisk is an optional interface positions can implement to provide
// risk metrics. If a position doesn't implement this interface, default risk
// metrics should be assumed by the portfolio or strategy.
type PositionWithRisk interface {
	Position

	// Risk returns position-specific risk metrics using current market data.
	// Returns error if required data is unavailable or calculation fails.
	Risk(snapshot MarketSnapshot) (RiskMetrics, error)
}

// PositionMetadata provides optional descriptive information about a position.
// Useful for logging, debugging, and user interfaces.
type PositionMetadata interface {
	Position

	// Description returns a human-readable description of the position.
	// Example: "100 ETH spot", "ETH/USDC LP 1.5-2.0x range", "ETH Call $2500 exp 2024-12-31"
	Description() string

	// Venue returns the venue/protocol where this position exists.
	// Example: "uniswap-v3", "gmx", "deribit", "binance"
	Venue() string
}
