package nbc

import (
	"github.com/budget-finance/budget/extractor/common"
)

const (
	Bank        = "NBC"
	AccountType = "Chequing"
)

var (
	dateColumns        = []string{"Date", "date"}
	categoryColumns    = []string{"Category", "category"}
	descriptionColumns = []string{"Description", "description"}
	debitColumns       = []string{"Debit", "Debit Amount", "Amount"}
	creditColumns      = []string{"Credit", "Credit Amount", "Amount"}
)

// Map converts one National Bank chequing row. NBC is the only
// two-column dialect that carries a category.
func Map(row common.RawRow) common.Transaction {
	return common.Transaction{
		Bank:         common.Text(Bank),
		AccountType:  common.Text(AccountType),
		Date:         common.ParseDate(row.Get(dateColumns...)),
		Category:     common.Text(row.Get(categoryColumns...)),
		Description:  common.Text(row.Get(descriptionColumns...)),
		DebitAmount:  common.Unsigned(common.ParseAmount(row.Get(debitColumns...))),
		CreditAmount: common.Unsigned(common.ParseAmount(row.Get(creditColumns...))),
	}
}
