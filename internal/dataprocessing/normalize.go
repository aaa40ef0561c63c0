package dataprocessing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// parseNumber parses a numeric cell exactly. Scientific notation is accepted.
func parseNumber(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, fmt.Errorf("value is blank")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not numeric", s)
	}
	return d, nil
}

// toInteger casts a numeric cell to int, truncating toward zero
func toInteger(s string) (int, error) {
	d, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	return intValue(d.Truncate(0))
}

var (
	minInt = decimal.NewFromInt(int64(math.MinInt))
	maxInt = decimal.NewFromInt(int64(math.MaxInt))
)

// intValue converts an integral decimal to int, rejecting values that would wrap
func intValue(d decimal.Decimal) (int, error) {
	if d.LessThan(minInt) || d.GreaterThan(maxInt) {
		return 0, fmt.Errorf("value %s out of integer range", d.String())
	}
	return int(d.IntPart()), nil
}

// normalizeMonth casts a month cell and checks it is a calendar month
func normalizeMonth(s string) (int, error) {
	m, err := toInteger(s)
	if err != nil {
		return 0, err
	}
	if m < 1 || m > 12 {
		return 0, fmt.Errorf("month %d out of range [1,12]", m)
	}
	return m, nil
}

// normalizeYear casts a year cell and checks it is a plausible year
func normalizeYear(s string) (int, error) {
	y, err := toInteger(s)
	if err != nil {
		return 0, err
	}
	if y < 1 || y > 9999 {
		return 0, fmt.Errorf("year %d out of range [1,9999]", y)
	}
	return y, nil
}

// normalizeQuantity converts a quantity cell according to rule. Negative
// quantities are rejected before conversion.
func normalizeQuantity(s string, rule QuantityRule) (int, error) {
	d, err := parseNumber(s)
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("quantity %s is negative", d.String())
	}

	switch rule {
	case QuantityRoundHalfEven:
		d = d.RoundBank(0)
	default:
		d = d.Truncate(0)
	}
	return intValue(d)
}

// normalizeFruit returns the fruit identifier, rejecting blanks
func normalizeFruit(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("fruit type is blank")
	}
	return s, nil
}
