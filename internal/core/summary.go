package core

import "github.com/shopspring/decimal"

// Summary holds the aggregates derived from the full transaction list.
type Summary struct {
	TotalIncome   float64
	TotalExpenses float64
	Balance       float64
}

// Summarize recomputes the aggregates from scratch on every live-query
// emission. Sums run on decimals so repeated float amounts cannot drift
// before they reach the UI.
func Summarize(transactions []Transaction) Summary {
	income := decimal.Zero
	expenses := decimal.Zero
	for _, t := range transactions {
		switch t.Type {
		case Income:
			income = income.Add(decimal.NewFromFloat(t.Amount))
		case Expense:
			expenses = expenses.Add(decimal.NewFromFloat(t.Amount))
		}
	}
	return Summary{
		TotalIncome:   income.InexactFloat64(),
		TotalExpenses: expenses.InexactFloat64(),
		Balance:       income.Sub(expenses).InexactFloat64(),
	}
}
