package clmm

import "github.com/johnayoung/go-clmm-sim/pkg/primitives"

// FeeHooks are extension points around Swap that let callers implement
// dynamic-fee policies without modifying Pool itself. BeforeSwap returns the
// effective fee to use for the swap about to run; AfterSwap performs
// post-swap bookkeeping once the swap has committed. Both are identities by
// default (DefaultFeeHooks).
type FeeHooks interface {
	BeforeSwap(pool *Pool, amount primitives.Decimal, direction Direction) primitives.Decimal
	AfterSwap(pool *Pool, amount primitives.Decimal, direction Direction)
}

// DefaultFeeHooks implements FeeHooks as identities: the configured pool fee
// is used unchanged, and no post-swap bookkeeping occurs.
type DefaultFeeHooks struct{}

// BeforeSwap returns the pool's currently configured fee, unchanged.
func (DefaultFeeHooks) BeforeSwap(pool *Pool, _ primitives.Decimal, _ Direction) primitives.Decimal {
	return pool.Fee
}

// AfterSwap does nothing.
func (DefaultFeeHooks) AfterSwap(*Pool, primitives.Decimal, Direction) {}
