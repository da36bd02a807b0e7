package model

import "github.com/shopspring/decimal"

const (
	// RatioScale is the number of fractional digits stored for discount_ratio (NUMERIC(10, 6)).
	RatioScale = 6

	// maxRatioLiteral caps the length of a ratio literal before it is parsed.
	maxRatioLiteral = 32

	// maxRatioExponent bounds the decimal exponent of a parsed ratio.
	// Rounding, comparing or formatting a decimal expands 10^|exponent|.
	maxRatioExponent = 18
)

const (
	msgRatioNumber   = "must be a number"
	msgRatioLength   = "must be a number of at most 32 characters"
	msgRatioPositive = "must be greater than 0"
	msgRatioMax      = "must be at most 1"
	msgRatioScale    = "must have at most 6 decimal places"
)

// parseRatio parses s as a discount ratio literal.
// On failure it returns the message describing the problem; the returned
// decimal always has an exponent within ±maxRatioExponent.
func parseRatio(s string) (decimal.Decimal, string) {
	if len(s) > maxRatioLiteral {
		return decimal.Decimal{}, msgRatioLength
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, msgRatioNumber
	}

	exp := d.Exponent()
	switch {
	case exp > maxRatioExponent && d.Sign() > 0:
		return decimal.Decimal{}, msgRatioMax
	case exp > maxRatioExponent, exp < -maxRatioExponent && d.Sign() <= 0:
		return decimal.Decimal{}, msgRatioPositive
	case exp < -maxRatioExponent:
		return decimal.Decimal{}, msgRatioScale
	}
	return d, ""
}
