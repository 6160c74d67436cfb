package common

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// dateLayouts are tried in order; month/day/year wins over day/month/year
// whenever both would parse.
var dateLayouts = []string{
	"1/2/2006",
	"2006-1-2",
	"2/1/2006",
}

const isoDate = "2006-01-02"

var amountNoise = strings.NewReplacer("$", "", ",", "")

// StrOrEmpty trims value and maps the "nan" placeholder written by
// spreadsheet exports to an empty string.
func StrOrEmpty(value string) string {
	s := strings.TrimSpace(value)
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}

// ParseAmount parses a loosely formatted money value such as "$1,234.50" or
// "-40.00". Anything it cannot read comes back invalid, never as an error.
func ParseAmount(value string) decimal.NullDecimal {
	s := StrOrEmpty(value)
	if s == "" {
		return decimal.NullDecimal{}
	}

	s = strings.TrimSpace(amountNoise.Replace(s))
	if s == "" || s == "-" {
		return decimal.NullDecimal{}
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(amount)
}

// ParseDate returns value as YYYY-MM-DD, or nil when no known layout fits.
func ParseDate(value string) *string {
	s := StrOrEmpty(value)
	if s == "" {
		return nil
	}

	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		iso := t.Format(isoDate)
		return &iso
	}
	return nil
}

// Unsigned drops the sign of a parsed amount, keeping unknown as unknown.
func Unsigned(amount decimal.NullDecimal) decimal.NullDecimal {
	if !amount.Valid {
		return amount
	}
	return decimal.NewNullDecimal(amount.Decimal.Abs())
}

// SplitSigned routes a single signed amount to one side. Amounts above zero
// go to positive, the rest to other; the unused side stays unknown.
func SplitSigned(amount decimal.NullDecimal) (positive, other decimal.NullDecimal) {
	if !amount.Valid {
		return decimal.NullDecimal{}, decimal.NullDecimal{}
	}
	if amount.Decimal.IsPositive() {
		return Unsigned(amount), decimal.NullDecimal{}
	}
	return decimal.NullDecimal{}, Unsigned(amount)
}
