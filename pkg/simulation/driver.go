// Package simulation implements the ambient time-stepping driver around
// pkg/clmm and pkg/arbitrage: it owns the block-cadence counter, invokes the
// arbitrage agent once per block, and optionally appends a CSV trace row.
// It holds no pricing logic of its own.
package simulation

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/johnayoung/go-clmm-sim/pkg/arbitrage"
	"github.com/johnayoung/go-clmm-sim/pkg/primitives"
)

// Config enumerates the simulation's external configuration options.
type Config struct {
	// BlocksPerSecond, if non-zero, means this many blocks fire per Step
	// call (each Step call represents one second of simulated time
	// elapsing), all against that Step's externalPrice. SecondsPerBlock is
	// ignored when this is set.
	BlocksPerSecond int

	// SecondsPerBlock, when BlocksPerSecond is unset, means one block fires
	// once every this many Step calls.
	SecondsPerBlock int

	// SaveBlockInfo enables the CSV trace writer at Filename.
	SaveBlockInfo bool
	Filename      string
}

// resolve splits the configured cadence into blocksPerTick (how many times
// a single Step call fires, for BlocksPerSecond>1) and ticksPerBlock (how
// many Step calls must accumulate before one fires, for SecondsPerBlock>1).
// Exactly one of the two can be greater than 1 at a time.
func (c Config) resolve() (blocksPerTick, ticksPerBlock int) {
	if c.BlocksPerSecond > 0 {
		return c.BlocksPerSecond, 1
	}
	if c.SecondsPerBlock > 0 {
		return 1, c.SecondsPerBlock
	}
	return 1, 1
}

// Driver advances an arbitrage agent at a fixed block cadence and, if
// configured, records one CSV row per block.
type Driver struct {
	Arb *arbitrage.Arbitrage

	blocksPerTick int
	ticksPerBlock int
	counter       int
	block         int

	file   *os.File
	writer *csv.Writer
}

// NewDriver constructs a driver around arb using the given configuration.
// If cfg.SaveBlockInfo is set, the trace file is created (truncating any
// existing file at cfg.Filename) and its header row is written immediately.
func NewDriver(arb *arbitrage.Arbitrage, cfg Config) (*Driver, error) {
	blocksPerTick, ticksPerBlock := cfg.resolve()
	d := &Driver{
		Arb:           arb,
		blocksPerTick: blocksPerTick,
		ticksPerBlock: ticksPerBlock,
		counter:       ticksPerBlock - 1,
	}

	if cfg.SaveBlockInfo {
		f, err := os.Create(cfg.Filename)
		if err != nil {
			return nil, fmt.Errorf("simulation: opening trace file: %w", err)
		}
		d.file = f
		d.writer = csv.NewWriter(f)
		if err := d.writer.Write([]string{"timestamp", "externalPrice", "poolPrice", "cumulativeVolume"}); err != nil {
			f.Close()
			return nil, fmt.Errorf("simulation: writing trace header: %w", err)
		}
	}

	return d, nil
}

// Close flushes and closes the trace file, if one is open. Safe to call on
// a driver that was never configured to save a trace.
func (d *Driver) Close() error {
	if d.writer != nil {
		d.writer.Flush()
	}
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// Step advances the block counter by one tick. When the counter reaches the
// configured ticksPerBlock, one or more blocks fire against externalPrice:
// blocksPerTick blocks when BlocksPerSecond>1 was configured, otherwise
// exactly one. Each fired block evaluates the arbitrage agent and, if
// tracing is enabled, appends a CSV row.
func (d *Driver) Step(timestamp primitives.Time, externalPrice primitives.Decimal) ([]arbitrage.Outcome, bool, error) {
	d.counter++
	if d.counter < d.ticksPerBlock {
		return nil, false, nil
	}
	d.counter = 0

	outcomes := make([]arbitrage.Outcome, 0, d.blocksPerTick)
	for i := 0; i < d.blocksPerTick; i++ {
		d.block++
		outcome := d.Arb.Deal(externalPrice)
		outcomes = append(outcomes, outcome)

		if d.writer != nil {
			row := []string{
				timestamp.String(),
				externalPrice.String(),
				d.Arb.Pool.CurrentPrice.String(),
				d.Arb.CumulativeVolume.String(),
			}
			if err := d.writer.Write(row); err != nil {
				return outcomes, true, fmt.Errorf("simulation: writing trace row: %w", err)
			}
		}
	}

	return outcomes, true, nil
}

// Run feeds a price series through Step until either the series is
// exhausted or ctx is cancelled. Cancellation is only checked between
// ticks: the core's own operations remain synchronous.
func (d *Driver) Run(ctx context.Context, ticks []Tick) error {
	defer d.Close()
	for _, tick := range ticks {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, _, err := d.Step(tick.Timestamp, tick.ExternalPrice); err != nil {
			return err
		}
	}
	return nil
}

// Tick is one external-price observation fed to Run.
type Tick struct {
	Timestamp     primitives.Time
	ExternalPrice primitives.Decimal
}
