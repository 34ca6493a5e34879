package clmm_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/johnayoung/go-clmm-sim/pkg/clmm"
	"github.com/johnayoung/go-clmm-sim/pkg/primitives"
)

func TestFindActiveRangeEmptyPositionsHasNoLiquidity(t *testing.T) {
	rng := clmm.FindActiveRange(map[common.Address]*clmm.Position{}, primitives.NewDecimal(100), clmm.ZtoO)
	if !rng.TotalL.IsZero() {
		t.Fatalf("expected zero liquidity on an empty position set, got %s", rng.TotalL.String())
	}
	if len(rng.Active) != 0 {
		t.Fatalf("expected no active positions, got %d", len(rng.Active))
	}
}

func TestFindActiveRangeSingleExactBoundaryClearsActiveSet(t *testing.T) {
	pool := newTestPool(t, "0.003", "2000")
	pos, err := pool.AddLiquidity(
		aliceID,
		primitives.NewDecimal(10), primitives.NewDecimal(20000),
		primitives.NewDecimal(1800), primitives.NewDecimal(2200),
	)
	if err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}

	rngZtoO := clmm.FindActiveRange(pool.Positions, pos.Pa, clmm.ZtoO)
	if len(rngZtoO.Active) != 0 || !rngZtoO.TotalL.IsZero() {
		t.Fatal("expected exact-lower-boundary ZtoO scan to clear the active set")
	}

	rngOtoZ := clmm.FindActiveRange(pool.Positions, pos.Pb, clmm.OtoZ)
	if len(rngOtoZ.Active) != 0 || !rngOtoZ.TotalL.IsZero() {
		t.Fatal("expected exact-upper-boundary OtoZ scan to clear the active set")
	}
}

func TestFindActiveRangeSumsLiquidityAcrossOverlappingPositions(t *testing.T) {
	pool := newTestPool(t, "0.003", "2000")
	if _, err := pool.AddLiquidity(
		aliceID,
		primitives.NewDecimal(10), primitives.NewDecimal(20000),
		primitives.NewDecimal(1800), primitives.NewDecimal(2200),
	); err != nil {
		t.Fatalf("AddLiquidity alice: %v", err)
	}
	if _, err := pool.AddLiquidity(
		bobID,
		primitives.NewDecimal(5), primitives.NewDecimal(10000),
		primitives.NewDecimal(1900), primitives.NewDecimal(2100),
	); err != nil {
		t.Fatalf("AddLiquidity bob: %v", err)
	}

	rng := clmm.FindActiveRange(pool.Positions, pool.SqrtP, clmm.ZtoO)
	if len(rng.Active) != 2 {
		t.Fatalf("expected both positions active at the pool's current price, got %d", len(rng.Active))
	}
	expected := pool.Positions[aliceID].L.Add(pool.Positions[bobID].L)
	if !rng.TotalL.Equal(expected) {
		t.Fatalf("expected summed liquidity %s, got %s", expected.String(), rng.TotalL.String())
	}
}

func TestFindActiveRangeNearestBoundaryDirectional(t *testing.T) {
	pool := newTestPool(t, "0.003", "2000")
	if _, err := pool.AddLiquidity(
		aliceID,
		primitives.NewDecimal(10), primitives.NewDecimal(20000),
		primitives.NewDecimal(1800), primitives.NewDecimal(2200),
	); err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}

	rngDown := clmm.FindActiveRange(pool.Positions, pool.SqrtP, clmm.ZtoO)
	if !rngDown.Boundary.Equal(pool.Positions[aliceID].Pa) {
		t.Fatalf("expected ZtoO boundary at Pa, got %s", rngDown.Boundary.String())
	}

	rngUp := clmm.FindActiveRange(pool.Positions, pool.SqrtP, clmm.OtoZ)
	if !rngUp.Boundary.Equal(pool.Positions[aliceID].Pb) {
		t.Fatalf("expected OtoZ boundary at Pb, got %s", rngUp.Boundary.String())
	}
}
