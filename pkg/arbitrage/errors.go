package arbitrage

import "errors"

// ErrInfeasible is returned by optimizeTrade when the range walk cannot
// converge on the target price (e.g. the pool runs out of liquidity before
// reaching it). Callers treat this the same as any other no-deal outcome.
var ErrInfeasible = errors.New("arbitrage: optimizer could not reach target price")
