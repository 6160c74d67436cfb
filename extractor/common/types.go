package common

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RawRow maps a source column name to the cell text of one CSV record.
// A column missing from the header and an empty cell read the same.
type RawRow map[string]string

// Get returns the trimmed value of the first column in keys holding
// something other than blanks or a "nan" placeholder.
func (r RawRow) Get(keys ...string) string {
	for _, k := range keys {
		if v := StrOrEmpty(r[k]); v != "" {
			return v
		}
	}
	return ""
}

// Transaction is the canonical, institution independent record.
type Transaction struct {
	Bank          *string             `json:"bank"`
	AccountType   *string             `json:"account_type"`
	AccountNumber *string             `json:"account_number"`
	Name          *string             `json:"name"`
	Date          *string             `json:"date"`
	Category      *string             `json:"category"`
	Description   *string             `json:"description"`
	DebitAmount   decimal.NullDecimal `json:"debit_amount"`
	CreditAmount  decimal.NullDecimal `json:"credit_amount"`

	// Stamped by the pipeline before the record leaves it.
	Source      string `json:"source,omitempty"`
	Sequence    int    `json:"sequence,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Text returns nil for a blank value so absent fields stay NULL downstream.
func Text(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// JoinText joins the non-blank parts with a single space, nil if none remain.
func JoinText(parts ...string) *string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = StrOrEmpty(p); p != "" {
			kept = append(kept, p)
		}
	}
	return Text(strings.Join(kept, " "))
}

// Deref is a nil safe read used when formatting optional fields.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
