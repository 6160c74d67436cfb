// Package walmart maps Walmart Rewards Mastercard exports.
package walmart

import (
	"github.com/budget-finance/budget/extractor/common"
)

const (
	Bank        = "Walmart"
	AccountType = "Credit Card"
)

const (
	colCardNumber = "Transaction Card Number"
	colCardholder = "Name on Card"
	colCategory   = "Merchant Category"
	colMerchant   = "Merchant Name"
	colAmount     = "Amount"
)

var dateColumns = []string{"Date", "date"}

// Map converts one Walmart row. The card export reports spending as a
// positive Amount, so the sign reads the opposite way to RBC and Scotia:
// positive is a debit, zero or negative (refunds, payments) a credit.
func Map(row common.RawRow) common.Transaction {
	debit, credit := common.SplitSigned(common.ParseAmount(row.Get(colAmount)))

	return common.Transaction{
		Bank:          common.Text(Bank),
		AccountType:   common.Text(AccountType),
		AccountNumber: common.Text(row.Get(colCardNumber)),
		Name:          common.Text(row.Get(colCardholder)),
		Date:          common.ParseDate(row.Get(dateColumns...)),
		Category:      common.Text(row.Get(colCategory)),
		Description:   common.Text(row.Get(colMerchant)),
		DebitAmount:   debit,
		CreditAmount:  credit,
	}
}
