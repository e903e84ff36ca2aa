// Package core provides the ledger records shown by the console and the
// money helpers used to parse and display amounts.
package core

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/dustin/go-humanize"
)

// ParseDecimalToCents converts a dollar amount typed into a form to cents.
//
// A leading "$" and comma thousands separators are accepted; the decimal
// separator is a dot. The third fractional digit is rounded half-up.
// Zero, negative and malformed amounts return ErrInvalidAmount.
//
// Examples:
//
//	ParseDecimalToCents("12.34")     -> 1234, nil
//	ParseDecimalToCents("$1,250")    -> 125000, nil
//	ParseDecimalToCents("12.345")    -> 1235, nil
//	ParseDecimalToCents("1,2")       -> 0, ErrInvalidAmount
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return 0, ErrInvalidAmount
	}

	intPart, ok := stripThousands(intPart)
	if !ok {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}

	var fracCents int64
	for i := 0; i < len(fracPart) && i < 2; i++ {
		d := int64(fracPart[i] - '0')
		if i == 0 {
			fracCents += d * 10
		} else {
			fracCents += d
		}
	}
	if len(fracPart) > 2 && fracPart[2] >= '5' {
		fracCents++
	}

	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// stripThousands removes comma separators, requiring groups of three digits.
func stripThousands(s string) (string, bool) {
	if !strings.Contains(s, ",") {
		return s, true
	}
	groups := strings.Split(s, ",")
	if len(groups[0]) == 0 || len(groups[0]) > 3 {
		return "", false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return "", false
		}
	}
	return strings.Join(groups, ""), true
}

// Dollars returns the amount as a float for display and charting only.
func (m Money) Dollars() float64 {
	return float64(m.Cents) / 100.0
}

// FormatUSD renders cents as "$1,234.50".
func FormatUSD(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", float64(cents)/100)
}

// FormatUSDWhole renders cents rounded down to whole dollars, e.g. "$89,200".
func FormatUSDWhole(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return sign + "$" + humanize.Comma(cents/100)
}

func (m Money) String() string {
	return FormatUSD(m.Cents)
}
