package amm

import "math/big"

// All reserve and fee arithmetic goes through big.Int: products of two
// 64-bit-scale reserves overflow uint64, and every division floors. Floating
// point never touches authoritative amounts; it is reserved for display-only
// derived metrics computed after the integer math.

const (
	// BpsDenominator is the basis-point scale (10000 bps = 100%).
	BpsDenominator = 10_000

	// PriceScale is the fixed-point scale for prices (1e6).
	PriceScale = 1_000_000
)

// ApplyFeeBps returns amount * (10000 - feeBps) / 10000 with truncating
// division. The floor direction matches on-chain arithmetic; rounding the
// other way would leak value to a grinding attacker.
func ApplyFeeBps(amount uint64, feeBps uint16) uint64 {
	if feeBps >= BpsDenominator {
		return 0
	}
	result := new(big.Int).SetUint64(amount)
	result.Mul(result, big.NewInt(int64(BpsDenominator-feeBps)))
	result.Div(result, big.NewInt(BpsDenominator))
	return result.Uint64()
}

// FeeAmount returns amount * feeBps / 10000, floored.
func FeeAmount(amount uint64, feeBps uint16) uint64 {
	return MulDiv(amount, uint64(feeBps), BpsDenominator)
}

// MulDiv returns a * b / den with a 128-bit-wide intermediate product and
// truncating division. den must be nonzero.
func MulDiv(a, b, den uint64) uint64 {
	result := new(big.Int).SetUint64(a)
	result.Mul(result, new(big.Int).SetUint64(b))
	result.Div(result, new(big.Int).SetUint64(den))
	return result.Uint64()
}

// Isqrt returns the floor integer square root of x via Newton's method.
// Used only for anchoring initial-liquidity LP minting.
func Isqrt(x *big.Int) *big.Int {
	if x.Sign() <= 0 {
		return big.NewInt(0)
	}
	if x.Cmp(big.NewInt(3)) <= 0 {
		return big.NewInt(1)
	}

	// Start from a power of two that is always >= the true root, so the
	// iteration decreases monotonically and the stop condition is exact.
	guess := new(big.Int).Lsh(big.NewInt(1), uint((x.BitLen()+1)/2))
	next := new(big.Int)
	for {
		// next = (guess + x/guess) / 2
		next.Div(x, guess)
		next.Add(next, guess)
		next.Rsh(next, 1)
		if next.Cmp(guess) >= 0 {
			return guess
		}
		guess.Set(next)
	}
}

// IsqrtUint64 is Isqrt over a uint64 product expressed as two factors, so the
// multiplication cannot overflow before the root is taken.
func IsqrtUint64(a, b uint64) uint64 {
	product := new(big.Int).SetUint64(a)
	product.Mul(product, new(big.Int).SetUint64(b))
	return Isqrt(product).Uint64()
}

// ScaledPrice returns numerator * PriceScale / denominator, floored.
// Returns 0 when the denominator is zero.
func ScaledPrice(numerator, denominator uint64) uint64 {
	if denominator == 0 {
		return 0
	}
	return MulDiv(numerator, PriceScale, denominator)
}

// PriceImpactBps returns |effective - spot| / spot in basis points, where both
// prices are computed at PriceScale from the pre-trade reserves and the traded
// amounts.
func PriceImpactBps(reserveIn, reserveOut, amountIn, amountOut uint64) uint64 {
	if reserveIn == 0 || amountIn == 0 {
		return 0
	}
	spot := ScaledPrice(reserveOut, reserveIn)
	if spot == 0 {
		return 0
	}
	effective := ScaledPrice(amountOut, amountIn)

	var diff uint64
	if effective > spot {
		diff = effective - spot
	} else {
		diff = spot - effective
	}
	return MulDiv(diff, BpsDenominator, spot)
}
