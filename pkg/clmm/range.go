package clmm

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/johnayoung/go-clmm-sim/pkg/primitives"
)

// ActiveRange is the result of a single range scan: the nearest initialized
// boundary beyond the current price in the scan's direction, the positions
// active at the current price, and their summed liquidity.
type ActiveRange struct {
	Boundary primitives.Decimal
	Active   []*Position
	TotalL   primitives.Decimal
}

// findActiveRange scans every position once to determine, relative to
// square-root price s and a swap direction, which positions are currently
// active and how far price can move before the next position boundary is
// reached. The scan is associative over endpoint comparisons and
// commutative over the active-set sum, so iteration order over Positions
// never affects the result.
func FindActiveRange(positions map[common.Address]*Position, s primitives.Decimal, direction Direction) ActiveRange {
	var boundary primitives.Decimal
	var active []*Position
	totalL := primitives.Zero()

	if direction == ZtoO {
		boundary = primitives.Zero()
	} else {
		// Sentinel "infinity": no real sqrtP in this simulation reaches it.
		boundary = primitives.NewDecimal(1).Mul(primitives.E18).Mul(primitives.E18).Mul(primitives.Q96)
	}

	for _, pos := range positions {
		if direction == ZtoO {
			if pos.Pb.LessThan(s) && pos.Pb.GreaterThan(boundary) {
				boundary = pos.Pb
			}
			if pos.Pa.LessThan(s) && pos.Pa.GreaterThan(boundary) {
				boundary = pos.Pa
			}
		} else {
			if pos.Pb.GreaterThan(s) && pos.Pb.LessThan(boundary) {
				boundary = pos.Pb
			}
			if pos.Pa.GreaterThan(s) && pos.Pa.LessThan(boundary) {
				boundary = pos.Pa
			}
		}

		if pos.Active(s, direction) {
			active = append(active, pos)
			totalL = totalL.Add(pos.L)
		}
	}

	// Exact-boundary degenerate case: a single active position whose
	// trailing edge (in the scan direction) sits exactly at s would
	// otherwise produce a zero-width step. Treat it as no liquidity so the
	// swap loop fails cleanly instead of dividing by zero.
	if len(active) == 1 {
		pos := active[0]
		if (direction == ZtoO && pos.Pa.Equal(s)) || (direction == OtoZ && pos.Pb.Equal(s)) {
			active = nil
			totalL = primitives.Zero()
		}
	}

	return ActiveRange{Boundary: boundary, Active: active, TotalL: totalL}
}
