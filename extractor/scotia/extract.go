package scotia

import (
	"github.com/budget-finance/budget/extractor/common"
)

const (
	Bank        = "Scotia"
	AccountType = "Chequing"
)

var dateColumns = []string{"Date", "date"}

// Map converts one Scotiabank chequing row. Amount is signed: positive is a
// deposit (credit), anything else a withdrawal (debit).
func Map(row common.RawRow) common.Transaction {
	credit, debit := common.SplitSigned(common.ParseAmount(row.Get("Amount")))

	return common.Transaction{
		Bank:         common.Text(Bank),
		AccountType:  common.Text(AccountType),
		Date:         common.ParseDate(row.Get(dateColumns...)),
		Description:  common.JoinText(row["Description"], row["Sub-description"]),
		DebitAmount:  debit,
		CreditAmount: credit,
	}
}
