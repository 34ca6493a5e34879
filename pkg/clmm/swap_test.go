package clmm_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/johnayoung/go-clmm-sim/pkg/clmm"
	"github.com/johnayoung/go-clmm-sim/pkg/primitives"
)

var bobID = common.HexToAddress("0x000000000000000000000000000000000000B0")

func poolWithLiquidity(t *testing.T) *clmm.Pool {
	t.Helper()
	pool := newTestPool(t, "0.003", "2000")
	if _, err := pool.AddLiquidity(
		aliceID,
		primitives.NewDecimal(100), primitives.NewDecimal(200000),
		primitives.NewDecimal(1000), primitives.NewDecimal(4000),
	); err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}
	return pool
}

func TestSwapRejectsNonPositiveAmount(t *testing.T) {
	pool := poolWithLiquidity(t)
	outcome := pool.Swap(primitives.Zero(), clmm.ZtoO, false)
	if !outcome.IsFailed() {
		t.Fatal("expected zero-amount swap to fail")
	}
}

func TestSwapSimulateLeavesPoolUnchanged(t *testing.T) {
	pool := poolWithLiquidity(t)
	before := pool.SqrtP
	beforePos := *pool.Positions[aliceID]

	outcome := pool.Swap(primitives.NewDecimal(1), clmm.ZtoO, true)
	if outcome.IsFailed() {
		t.Fatalf("simulated swap failed: %v", outcome.Reason)
	}
	if outcome.Kind != clmm.SwapSimulated {
		t.Fatalf("expected SwapSimulated, got %v", outcome.Kind)
	}
	if !pool.SqrtP.Equal(before) {
		t.Fatal("simulate mutated SqrtP")
	}
	after := *pool.Positions[aliceID]
	if !after.XReal.Equal(beforePos.XReal) || !after.YReal.Equal(beforePos.YReal) {
		t.Fatal("simulate mutated position balances")
	}
}

func TestSwapCommitMovesPriceAndCreditsFees(t *testing.T) {
	pool := poolWithLiquidity(t)
	startPrice := pool.CurrentPrice

	outcome := pool.Swap(primitives.NewDecimal(1), clmm.ZtoO, false)
	if outcome.IsFailed() {
		t.Fatalf("commit swap failed: %v", outcome.Reason)
	}
	if outcome.Kind != clmm.SwapCommitted {
		t.Fatalf("expected SwapCommitted, got %v", outcome.Kind)
	}
	if !pool.CurrentPrice.LessThan(startPrice) {
		t.Fatalf("expected price to fall after ZtoO swap, start=%s end=%s", startPrice.String(), pool.CurrentPrice.String())
	}

	pos := pool.Positions[aliceID]
	if !pos.FeeX.IsPositive() {
		t.Fatal("expected position to accrue token0 fees")
	}
}

func TestSwapFeeRestoredSymmetricallyAfterCommit(t *testing.T) {
	for _, dir := range []clmm.Direction{clmm.ZtoO, clmm.OtoZ} {
		pool := poolWithLiquidity(t)
		originalFee := pool.Fee

		amount := primitives.NewDecimal(1)
		if dir == clmm.OtoZ {
			amount = primitives.NewDecimal(1000)
		}

		outcome := pool.Swap(amount, dir, false)
		if outcome.IsFailed() {
			t.Fatalf("swap failed for direction %s: %v", dir, outcome.Reason)
		}
		if !pool.Fee.Equal(originalFee) {
			t.Fatalf("direction %s: fee not restored after commit, got %s want %s", dir, pool.Fee.String(), originalFee.String())
		}
	}
}

func TestSwapOtoZMovesPriceUp(t *testing.T) {
	pool := poolWithLiquidity(t)
	startPrice := pool.CurrentPrice

	outcome := pool.Swap(primitives.NewDecimal(1000), clmm.OtoZ, false)
	if outcome.IsFailed() {
		t.Fatalf("commit swap failed: %v", outcome.Reason)
	}
	if !pool.CurrentPrice.GreaterThan(startPrice) {
		t.Fatalf("expected price to rise after OtoZ swap, start=%s end=%s", startPrice.String(), pool.CurrentPrice.String())
	}
}

func TestSwapInsufficientLiquidityRollsBack(t *testing.T) {
	pool := newTestPool(t, "0.003", "2000")
	if _, err := pool.AddLiquidity(
		aliceID,
		primitives.NewDecimal(1), primitives.NewDecimal(2000),
		primitives.NewDecimal(1900), primitives.NewDecimal(2100),
	); err != nil {
		t.Fatalf("AddLiquidity: %v", err)
	}

	before := pool.SqrtP
	outcome := pool.Swap(primitives.NewDecimal(1000000), clmm.ZtoO, false)
	if !outcome.IsFailed() {
		t.Fatal("expected swap exhausting all liquidity to fail")
	}
	if !pool.SqrtP.Equal(before) {
		t.Fatal("pool state not rolled back after failed swap")
	}
}

func TestSwapCrossesRangeBoundaryBetweenTwoPositions(t *testing.T) {
	pool := newTestPool(t, "0.003", "2000")
	if _, err := pool.AddLiquidity(
		aliceID,
		primitives.NewDecimal(10), primitives.NewDecimal(20000),
		primitives.NewDecimal(1800), primitives.NewDecimal(2000),
	); err != nil {
		t.Fatalf("AddLiquidity alice: %v", err)
	}
	if _, err := pool.AddLiquidity(
		bobID,
		primitives.NewDecimal(10), primitives.NewDecimal(20000),
		primitives.NewDecimal(1500), primitives.NewDecimal(1800),
	); err != nil {
		t.Fatalf("AddLiquidity bob: %v", err)
	}

	outcome := pool.Swap(primitives.NewDecimal(15), clmm.ZtoO, false)
	if outcome.IsFailed() {
		t.Fatalf("swap across boundary failed: %v", outcome.Reason)
	}
	if !pool.Positions[bobID].FeeX.IsPositive() {
		t.Fatal("expected the range-crossing trade to reach bob's position")
	}
}
