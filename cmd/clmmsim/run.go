package main

import (
	"context"
	"fmt"

	"github.com/daoleno/uniswapv3-sdk/constants"
	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/johnayoung/go-clmm-sim/pkg/arbitrage"
	"github.com/johnayoung/go-clmm-sim/pkg/clmm"
	"github.com/johnayoung/go-clmm-sim/pkg/primitives"
	"github.com/johnayoung/go-clmm-sim/pkg/simulation"
)

var (
	token0Address = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	token1Address = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	lpOwner       = common.HexToAddress("0x0000000000000000000000000000000000000A")
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single pool + arbitrage simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd)
		},
	}

	bindRunFlags(cmd)
	return cmd
}

func runSimulation(cmd *cobra.Command) error {
	cfg, err := loadConfig(cfgFile)
	if err != nil {
		return err
	}

	logger := logrus.StandardLogger()
	if cfg.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	feeTier := constants.FeeAmount(cfg.FeeTier)
	firstPrice := primitives.NewDecimalFromFloat(cfg.FirstPrice)
	fee := primitives.NewDecimalFromFloat(cfg.Fee)

	pool, err := clmm.NewPool(token0Address, 18, token1Address, 6, feeTier, firstPrice, fee)
	if err != nil {
		return fmt.Errorf("creating pool: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"first_price": cfg.FirstPrice,
		"fee":         cfg.Fee,
		"fee_tier":    cfg.FeeTier,
	}).Info("pool created")

	rangeWidth := firstPrice.Mul(primitives.NewDecimalFromFloat(0.25))
	lower := firstPrice.Sub(rangeWidth)
	upper := firstPrice.Add(rangeWidth)

	if _, err := pool.AddLiquidity(
		lpOwner,
		primitives.NewDecimal(1000), primitives.NewDecimal(2_000_000),
		lower, upper,
	); err != nil {
		return fmt.Errorf("seeding liquidity: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"lower": lower.String(),
		"upper": upper.String(),
	}).Info("liquidity seeded")

	arb := arbitrage.New(
		pool,
		primitives.NewDecimalFromFloat(cfg.MinGasPrice),
		primitives.NewDecimalFromFloat(cfg.ProfitToGasRatio),
		primitives.NewDecimalFromFloat(cfg.FeeOutside),
		primitives.NewDecimalFromFloat(cfg.Skip),
	)

	driver, err := simulation.NewDriver(arb, simulation.Config{
		BlocksPerSecond: cfg.BlocksPerSecond,
		SecondsPerBlock: cfg.SecondsPerBlock,
		SaveBlockInfo:   cfg.SaveBlockInfo,
		Filename:        cfg.TraceFile,
	})
	if err != nil {
		return fmt.Errorf("creating driver: %w", err)
	}
	defer driver.Close()

	var prices []primitives.Decimal
	if cfg.PriceFile != "" {
		prices, err = loadPriceSeries(cfg.PriceFile)
		if err != nil {
			return err
		}
		logger.WithField("rows", len(prices)).Info("loaded external price series from file")
	} else {
		prices = syntheticPriceSeries(cfg.FirstPrice, cfg.NumTicks)
		logger.WithField("ticks", len(prices)).Debug("generated synthetic price series")
	}

	ticks := make([]simulation.Tick, len(prices))
	for i, p := range prices {
		ticks[i] = simulation.Tick{Timestamp: primitives.Unix(int64(i), 0), ExternalPrice: p}
	}

	if err := driver.Run(context.Background(), ticks); err != nil {
		return fmt.Errorf("running simulation: %w", err)
	}

	pos, ok := pool.Positions[lpOwner]
	if !ok {
		logger.WithError(clmm.ErrPositionNotFound).Error("seeded position missing after run")
	} else {
		logger.WithFields(logrus.Fields{
			"fee_x":    pos.FeeX.String(),
			"fee_y":    pos.FeeY.String(),
			"fee_in_y": pos.FeeInY.String(),
		}).Info("final position fees")
	}

	logger.WithFields(logrus.Fields{
		"deals":             arb.NumDeals,
		"cumulative_volume": arb.CumulativeVolume.String(),
		"cumulative_profit": arb.CumulativeProfit.String(),
		"cumulative_burn":   arb.CumulativeBurn.String(),
		"final_pool_price":  pool.CurrentPrice.String(),
	}).Info("simulation complete")

	return nil
}
