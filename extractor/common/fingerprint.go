package common

import (
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/shopspring/decimal"
)

// Fingerprint identifies a transaction by content: bank, date, description
// and both amounts. occurrence counts earlier rows of the same file with the
// same content, so two identical coffees on one day stay distinct while a
// re-import of the file reproduces the same fingerprints. Account number is
// not part of it.
func Fingerprint(tx Transaction, occurrence int) string {
	digest := xxhash.New()
	for _, part := range []string{
		Deref(tx.Bank),
		Deref(tx.Date),
		Deref(tx.Description),
		amountKey(tx.DebitAmount),
		amountKey(tx.CreditAmount),
		strconv.Itoa(occurrence),
	} {
		digest.WriteString(part)
		digest.Write([]byte{0x1f})
	}
	return fmt.Sprintf("%016x", digest.Sum64())
}

// ContentKey is the fingerprint without an occurrence, used to count repeats.
func ContentKey(tx Transaction) string {
	return Fingerprint(tx, 0)
}

func amountKey(amount decimal.NullDecimal) string {
	if !amount.Valid {
		return "null"
	}
	return amount.Decimal.StringFixed(2)
}
