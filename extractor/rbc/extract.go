// Package rbc maps Royal Bank exports, which cover every account type in a
// single file and report one signed AmountCAD column.
package rbc

import (
	"github.com/budget-finance/budget/extractor/common"
)

const Bank = "RBC"

const (
	colAccountType   = "Account Type"
	colAccountNumber = "Account Number"
	colDate          = "Transaction Date"
	colDescription1  = "Description 1"
	colDescription2  = "Description 2"
	colAmount        = "AmountCAD"
)

// Map converts one RBC row. A positive AmountCAD is money in (credit),
// zero or negative is money out (debit).
func Map(row common.RawRow) common.Transaction {
	credit, debit := common.SplitSigned(common.ParseAmount(row.Get(colAmount)))

	return common.Transaction{
		Bank:          common.Text(Bank),
		AccountType:   common.Text(row.Get(colAccountType)),
		AccountNumber: common.Text(row.Get(colAccountNumber)),
		Date:          common.ParseDate(row.Get(colDate)),
		Description:   common.JoinText(row[colDescription1], row[colDescription2]),
		DebitAmount:   debit,
		CreditAmount:  credit,
	}
}
