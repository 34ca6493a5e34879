package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "clmmsim",
		Short: "Simulate a concentrated-liquidity pool under arbitrage pressure",
		Long: "clmmsim drives a concentrated-liquidity AMM pool with an arbitrage agent " +
			"reacting to an external price feed, either synthetic or replayed from a CSV file.",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a YAML config file (overridden by flags)")

	root.AddCommand(newRunCmd())

	return root
}

func init() {
	viper.SetEnvPrefix("clmmsim")
	viper.AutomaticEnv()
}
