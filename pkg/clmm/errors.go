package clmm

import "errors"

var (
	// ErrInvalidRange indicates a position's bounds collapse to a single
	// point after canonicalization (pa == pb), which has no well-defined
	// liquidity.
	ErrInvalidRange = errors.New("clmm: invalid price range")

	// ErrPositionNotFound is returned by BurnLiquidity for an unknown id.
	// Callers should log this as a critical event; it is not fatal.
	ErrPositionNotFound = errors.New("clmm: position not found")

	// ErrInsufficientLiquidity is returned by Swap when a step runs out of
	// active liquidity before the input amount is exhausted. The pool is
	// rolled back to its pre-swap snapshot before this is returned.
	ErrInsufficientLiquidity = errors.New("clmm: insufficient liquidity")

	// ErrInvalidSwapAmount is returned for a zero or negative swap amount.
	ErrInvalidSwapAmount = errors.New("clmm: invalid swap amount")

	// ErrInvalidFeeTier is returned when constructing a pool with a fee
	// tier github.com/daoleno/uniswapv3-sdk does not recognize.
	ErrInvalidFeeTier = errors.New("clmm: invalid fee tier")

	// ErrStepLimitExceeded guards against a malformed position set causing
	// the swap step loop to run unboundedly.
	ErrStepLimitExceeded = errors.New("clmm: swap exceeded maximum step count")
)
