// Package cibc maps CIBC credit card exports.
package cibc

import (
	"github.com/budget-finance/budget/extractor/common"
)

const (
	Bank        = "CIBC"
	AccountType = "Credit Card"
)

// Column spellings vary between export settings; first non-blank wins.
var (
	accountNumberColumns = []string{"Account Number", "account_number"}
	dateColumns          = []string{"Date", "date"}
	descriptionColumns   = []string{"Description", "description"}
	debitColumns         = []string{"Debit", "Debit Amount", "Amount"}
	creditColumns        = []string{"Credit", "Credit Amount", "Amount"}
)

// Map converts one CIBC row. Debit and credit come from their own columns.
func Map(row common.RawRow) common.Transaction {
	return common.Transaction{
		Bank:          common.Text(Bank),
		AccountType:   common.Text(AccountType),
		AccountNumber: common.Text(row.Get(accountNumberColumns...)),
		Date:          common.ParseDate(row.Get(dateColumns...)),
		Description:   common.Text(row.Get(descriptionColumns...)),
		DebitAmount:   common.Unsigned(common.ParseAmount(row.Get(debitColumns...))),
		CreditAmount:  common.Unsigned(common.ParseAmount(row.Get(creditColumns...))),
	}
}
