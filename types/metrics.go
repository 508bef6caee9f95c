package types

import "time"

// FinancialMetrics is the normalized view of a business's document corpus.
// It is derived in full from the document set on every scoring run and has
// no identity or lifecycle of its own.
type FinancialMetrics struct {
	TotalRevenue  float64 `json:"totalRevenue"`
	TotalExpenses float64 `json:"totalExpenses"`
	VATCollected  float64 `json:"vatCollected"`

	// MonthlyData is chronologically ordered and capped to the most recent
	// 8 periods.
	MonthlyData []MonthlyEntry `json:"monthlyData"`

	// Categories are sorted descending by amount and capped to the top 6.
	ExpenseCategories []CategoryAmount `json:"expenseCategories"`
	RevenueCategories []CategoryAmount `json:"revenueCategories"`

	RecentTransactions   []Transaction `json:"recentTransactions"`
	FinancialHealthScore int           `json:"financialHealthScore"`
	DocumentCount        int           `json:"documentCount"`
}

// MonthlyEntry aggregates income and expenses for one calendar month.
type MonthlyEntry struct {
	Month    string  `json:"month"` // "YYYY-MM"
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Profit   float64 `json:"profit"`
}

// CategoryAmount is a named revenue or expense bucket.
type CategoryAmount struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Transaction is a single classified movement derived from a document.
type Transaction struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	IsExpense   bool      `json:"isExpense"`
}
