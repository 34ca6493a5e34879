package main

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"

	"github.com/johnayoung/go-clmm-sim/pkg/primitives"
)

// loadPriceSeries reads a single "price" column from a CSV file, one
// external-price observation per row (header required).
func loadPriceSeries(path string) ([]primitives.Decimal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening price file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading price file: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("price file %s: no data rows after header", path)
	}

	col := 0
	for i, name := range rows[0] {
		if name == "price" {
			col = i
			break
		}
	}

	prices := make([]primitives.Decimal, 0, len(rows)-1)
	for _, row := range rows[1:] {
		d, err := primitives.NewDecimalFromString(row[col])
		if err != nil {
			return nil, fmt.Errorf("parsing price %q: %w", row[col], err)
		}
		prices = append(prices, d)
	}
	return prices, nil
}

// syntheticPriceSeries generates a sine-wave price series oscillating
// around firstPrice, for demo runs with no --price-file.
func syntheticPriceSeries(firstPrice float64, n int) []primitives.Decimal {
	prices := make([]primitives.Decimal, n)
	amplitude := firstPrice * 0.1
	for i := 0; i < n; i++ {
		wobble := amplitude * math.Sin(float64(i)/6)
		prices[i] = primitives.NewDecimalFromFloat(firstPrice + wobble)
	}
	return prices
}
