// Command clmmsim runs a concentrated-liquidity pool under continuous
// arbitrage pressure from an external price series, tracing block-level
// state to CSV if configured.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("clmmsim failed")
		os.Exit(1)
	}
}
