package primitives

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// Q96 is the fixed-point scale for square-root prices: 2^96.
// E is the fixed-point scale for human token amounts: 10^18.
// Both are part of the external numeric contract: changing either changes
// every observable number this package produces.
var (
	Q96 = Decimal{value: mustBigDecimal(new(big.Int).Lsh(big.NewInt(1), 96))}
	E18 = Decimal{value: decimal.New(1, 18)}
)

// bigPrecision is the working precision (in bits) for the one operation in
// this package that needs an actual square root: priceToSqrtP. 200 bits is
// comfortably above the ~160 bits of precision a Q64.96 value occupies.
const bigPrecision = 200

var (
	// ErrNegativeInput indicates a negative value was supplied where only
	// non-negative quantities are meaningful (a price, an amount).
	ErrNegativeInput = errors.New("fixedmath: negative input")
	// ErrDegenerateRange indicates pa == pb after canonicalization, which
	// would divide by zero in the liquidity formulas.
	ErrDegenerateRange = errors.New("fixedmath: degenerate price range")
)

func mustBigDecimal(i *big.Int) decimal.Decimal {
	return decimal.NewFromBigInt(i, 0)
}

func init() {
	// Q96-scaled divisions carry ~29 decimal digits before the division even
	// starts; the shopspring default of 16 digits of division precision is
	// not enough headroom for the swap engine's chained divisions.
	decimal.DivisionPrecision = 60
}

// NewDecimalFromBigInt wraps an exact big.Int as a Decimal, used at the
// boundary with github.com/daoleno/uniswapv3-sdk, whose helpers operate on
// *big.Int directly.
func NewDecimalFromBigInt(i *big.Int) Decimal {
	return Decimal{value: decimal.NewFromBigInt(i, 0)}
}

// BigInt truncates the Decimal to a *big.Int, used when handing a Q96 value
// to github.com/daoleno/uniswapv3-sdk helpers that expect *big.Int.
func (d Decimal) BigInt() *big.Int {
	return d.value.BigInt()
}

// GreaterThanOrEqual returns true if d >= other.
func (d Decimal) GreaterThanOrEqual(other Decimal) bool {
	return d.value.GreaterThanOrEqual(other.value)
}

// LessThanOrEqual returns true if d <= other.
func (d Decimal) LessThanOrEqual(other Decimal) bool {
	return d.value.LessThanOrEqual(other.value)
}

// PriceToSqrtP converts a human-units price into the integer square-root
// price sqrtP = floor(sqrt(p) * 2^96), per the Q64.96 fixed-point contract
// shared with the swap engine. Deterministic for a given precision: the
// square root is taken at elevated big.Float precision and the result
// truncated to an integer before being wrapped back into a Decimal.
func PriceToSqrtP(price Decimal) (Decimal, error) {
	if price.IsNegative() {
		return Decimal{}, ErrNegativeInput
	}

	priceFloat := new(big.Float).SetPrec(bigPrecision)
	if _, ok := priceFloat.SetString(price.value.String()); !ok {
		return Decimal{}, ErrInvalidDecimal
	}

	sqrtFloat := new(big.Float).SetPrec(bigPrecision).Sqrt(priceFloat)

	q96Float := new(big.Float).SetPrec(bigPrecision).SetInt(new(big.Int).Lsh(big.NewInt(1), 96))
	scaled := new(big.Float).SetPrec(bigPrecision).Mul(sqrtFloat, q96Float)

	sqrtPInt, _ := scaled.Int(nil)
	return Decimal{value: decimal.NewFromBigInt(sqrtPInt, 0)}, nil
}

// SqrtPToPrice converts an integer square-root price back to a human-units
// price: currentPrice = (sqrtP / 2^96)^2.
func SqrtPToPrice(sqrtP Decimal) (Decimal, error) {
	if sqrtP.IsNegative() {
		return Decimal{}, ErrNegativeInput
	}
	ratio, err := sqrtP.Div(Q96)
	if err != nil {
		return Decimal{}, err
	}
	return ratio.Mul(ratio), nil
}

// Liquidity0 computes L = amount * (pa * pb / Q96) / (pb - pa), canonicalizing
// pa and pb so that pa < pb regardless of the order the caller supplies them.
func Liquidity0(amount, pa, pb Decimal) (Decimal, error) {
	pa, pb = canonicalRange(pa, pb)
	width := pb.Sub(pa)
	if width.IsZero() {
		return Decimal{}, ErrDegenerateRange
	}
	numerator, err := pa.Mul(pb).Div(Q96)
	if err != nil {
		return Decimal{}, err
	}
	numerator = amount.Mul(numerator)
	return numerator.Div(width)
}

// Liquidity1 computes L = amount * Q96 / (pb - pa), canonicalizing pa and pb.
func Liquidity1(amount, pa, pb Decimal) (Decimal, error) {
	pa, pb = canonicalRange(pa, pb)
	width := pb.Sub(pa)
	if width.IsZero() {
		return Decimal{}, ErrDegenerateRange
	}
	numerator := amount.Mul(Q96)
	return numerator.Div(width)
}

// canonicalRange swaps pa and pb if they are out of order, so callers never
// need to pre-sort range endpoints before sizing a position.
func canonicalRange(pa, pb Decimal) (Decimal, Decimal) {
	if pa.GreaterThan(pb) {
		return pb, pa
	}
	return pa, pb
}
