// Package mechanisms provides the extensible interface contract the
// concentrated-liquidity pool is bridged through (pkg/clmm.Adapter), so the
// strategy/backtest machinery never needs to know a CLMM pool exists behind
// it. Only the liquidity-pool mechanism category is implemented here.
package mechanisms

// MechanismType identifies the category of market mechanism.
type MechanismType string

const (
	// MechanismTypeLiquidityPool represents AMM-style liquidity pools
	// (e.g., Uniswap, Curve, Balancer). The only mechanism type this
	// repository implements.
	MechanismTypeLiquidityPool MechanismType = "liquidity_pool"

	// Additional types (derivative, orderbook, ...) can be defined as
	// needed; none are implemented here.
)

// MarketMechanism is the base interface that all market mechanisms must implement.
// It provides identification and context about where the mechanism exists.
//
// Implementations should embed this interface when defining specific mechanism
// categories (e.g., LiquidityPool, Derivative, OrderBook).
//
// Thread Safety: Implementations are not required to be thread-safe by default.
// Concurrent access should be protected by the caller if needed.
type MarketMechanism interface {
	// Mechanism returns the type of market mechanism this implements.
	// This allows type-safe casting and routing logic based on mechanism category.
	Mechanism() MechanismType

	// Venue returns an identifier for where this mechanism exists.
	// Examples: "uniswap-v3", "gmx", "dydx", "binance"
	//
	// Optional: can return empty string if venue identification is not relevant.
	// Useful for strategies that interact with multiple venues or need
	// venue-specific logic.
	Venue() string
}
