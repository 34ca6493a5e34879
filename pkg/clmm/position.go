package clmm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/johnayoung/go-clmm-sim/pkg/primitives"
)

// Position is a liquidity position spanning a square-root-price range,
// owned by an opaque external id. Represented as common.Address since this
// codebase's domain identifies both tokens and position owners the same
// way other Ethereum-style addresses are identified elsewhere in the stack.
type Position struct {
	ID common.Address

	// Pa, Pb are square-root-price range endpoints, canonicalized so Pa < Pb.
	Pa, Pb primitives.Decimal

	// L is the position's liquidity, constant across its lifetime.
	L primitives.Decimal

	// XReal, YReal are running token balances attributable to this position.
	XReal, YReal primitives.Decimal

	// FeeX, FeeY are accumulated fees in native token X and Y; FeeInY is a
	// running total of all fees denominated in token Y.
	FeeX, FeeY, FeeInY primitives.Decimal

	// FirstPrice, XRealStart, YRealStart snapshot the position's state at
	// creation, for later profit/loss analysis against current state.
	FirstPrice, XRealStart, YRealStart primitives.Decimal
}

// Active reports whether this position contributes to active liquidity at
// square-root price s, for the given swap direction. The boundary rule is
// asymmetric by direction so a position cannot be double-counted at a price
// that is simultaneously one position's upper bound and another's lower
// bound.
func (p *Position) Active(s primitives.Decimal, direction Direction) bool {
	switch direction {
	case ZtoO:
		return p.Pa.LessThan(s) && s.LessThanOrEqual(p.Pb)
	default:
		return p.Pa.LessThanOrEqual(s) && s.LessThan(p.Pb)
	}
}

// clone returns a deep copy of the position, used when snapshotting pool
// state before a swap.
func (p *Position) clone() *Position {
	cp := *p
	return &cp
}
