package importer

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred  = decimal.NewFromInt(100)
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// ParseAmount reads a Brazilian formatted amount into cents.
// "1.234,56" -> 123456, "R$ 10,00" -> 1000, "" -> 0.
func ParseAmount(s string) (int64, error) {
	clean := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if clean == "" {
		return 0, nil
	}

	clean = strings.ReplaceAll(clean, ".", "")
	clean = strings.ReplaceAll(clean, ",", ".")

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	cents := d.Mul(hundred)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, errors.New("more than two decimal places")
	}

	if cents.GreaterThan(maxCents) || cents.LessThan(minCents) {
		return 0, errors.New("amount out of range")
	}

	return cents.IntPart(), nil
}
