package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// simConfig is the fully resolved set of §6 configuration options, after
// viper has merged command-line flags over an optional config file over
// built-in defaults.
type simConfig struct {
	FirstPrice       float64
	Fee              float64
	MinGasPrice      float64
	ProfitToGasRatio float64
	FeeOutside       float64
	Skip             float64
	FeeTier          int

	BlocksPerSecond int
	SecondsPerBlock int

	PriceFile string
	NumTicks  int

	SaveBlockInfo bool
	TraceFile     string

	Verbose bool
}

func bindRunFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Float64("first-price", 2000, "initial pool price, token1 per token0")
	flags.Float64("fee", 0.003, "pool swap fee as a fraction (e.g. 0.003 = 0.3%)")
	flags.Float64("min-gas-price", 0.01, "minimum burned profit required to execute a deal")
	flags.Float64("profit-to-gas-ratio", 0.5, "fraction of arbitrage profit burned to gas")
	flags.Float64("fee-outside", 0.001, "taker fee charged on the external venue")
	flags.Float64("skip", 0.0, "per-block probability the arbitrageur sits out")
	flags.Int("fee-tier", 3000, "pool fee tier in hundredths of a bip (500, 3000, 10000)")
	flags.Int("blocks-per-second", 0, "blocks fired per second of simulated time (0 disables)")
	flags.Int("seconds-per-block", 1, "seconds of simulated time between blocks, if blocks-per-second is 0")
	flags.String("price-file", "", "CSV file of external prices to replay (one 'price' column); empty uses a synthetic series")
	flags.Int("num-ticks", 200, "number of synthetic ticks to generate when price-file is empty")
	flags.Bool("save-block-info", false, "write a per-block CSV trace")
	flags.String("trace-file", "clmmsim_trace.csv", "path for the per-block CSV trace")
	flags.Bool("verbose", false, "enable debug-level logging")

	for _, name := range []string{
		"first-price", "fee", "min-gas-price", "profit-to-gas-ratio", "fee-outside",
		"skip", "fee-tier", "blocks-per-second", "seconds-per-block", "price-file",
		"num-ticks", "save-block-info", "trace-file", "verbose",
	} {
		key := strings.ReplaceAll(name, "-", "_")
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("binding flag %q: %v", name, err))
		}
	}
}

// loadConfig resolves the simConfig from viper's merged view: flags take
// precedence over a --config file, which takes precedence over the
// defaults registered on the flag set itself.
func loadConfig(configFile string) (simConfig, error) {
	viper.SetConfigType("yaml")
	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return simConfig{}, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	return simConfig{
		FirstPrice:       viper.GetFloat64("first_price"),
		Fee:              viper.GetFloat64("fee"),
		MinGasPrice:      viper.GetFloat64("min_gas_price"),
		ProfitToGasRatio: viper.GetFloat64("profit_to_gas_ratio"),
		FeeOutside:       viper.GetFloat64("fee_outside"),
		Skip:             viper.GetFloat64("skip"),
		FeeTier:          viper.GetInt("fee_tier"),
		BlocksPerSecond:  viper.GetInt("blocks_per_second"),
		SecondsPerBlock:  viper.GetInt("seconds_per_block"),
		PriceFile:        viper.GetString("price_file"),
		NumTicks:         viper.GetInt("num_ticks"),
		SaveBlockInfo:    viper.GetBool("save_block_info"),
		TraceFile:        viper.GetString("trace_file"),
		Verbose:          viper.GetBool("verbose"),
	}, nil
}
