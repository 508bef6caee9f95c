package credibility

import (
	"sort"
	"strings"
	"time"

	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

// transactionCategories maps case-insensitive description keywords to
// revenue/expense buckets for bank-statement classification.
var (
	revenueKeywords = []struct{ keyword, category string }{
		{"sale", "Sales"},
		{"payment received", "Sales"},
		{"invoice", "Sales"},
		{"interest", "Interest"},
		{"refund", "Refunds"},
	}
	expenseKeywords = []struct{ keyword, category string }{
		{"rent", "Rent"},
		{"lease", "Rent"},
		{"salary", "Payroll"},
		{"wage", "Payroll"},
		{"electricity", "Utilities"},
		{"water", "Utilities"},
		{"internet", "Utilities"},
		{"fuel", "Transport"},
		{"transport", "Transport"},
		{"supplier", "Supplies"},
		{"purchase", "Supplies"},
		{"tax", "Taxes"},
	}
)

func classifyTransaction(description string, isExpense bool) string {
	desc := strings.ToLower(description)
	table := revenueKeywords
	if isExpense {
		table = expenseKeywords
	}
	for _, entry := range table {
		if strings.Contains(desc, entry.keyword) {
			return entry.category
		}
	}
	return "Other"
}

// monthKey formats a date as the "YYYY-MM" aggregation bucket.
func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

// AggregateFinancials reduces the document corpus into normalized financial
// metrics. Only processed documents with extracted data contribute. The
// function is total: malformed extractions degrade to zero contributions,
// never to an error.
func AggregateFinancials(docs []types.Document, now time.Time) types.FinancialMetrics {
	metrics := types.FinancialMetrics{DocumentCount: len(docs)}

	monthly := make(map[string]*types.MonthlyEntry)
	revenueCats := make(map[string]float64)
	expenseCats := make(map[string]float64)
	var transactions []types.Transaction

	addMonthly := func(key string, income, expenses float64) {
		entry, ok := monthly[key]
		if !ok {
			entry = &types.MonthlyEntry{Month: key}
			monthly[key] = entry
		}
		entry.Income += income
		entry.Expenses += expenses
	}

	processedCount := 0
	for i := range docs {
		doc := &docs[i]
		if doc.Status == types.DocumentStatusProcessed {
			processedCount++
		}
		if !doc.IsScorable() {
			continue
		}

		ext := types.DecodeExtraction(doc.ExtractedData, doc.DocumentType)
		switch {
		case ext.BankStatement != nil:
			for _, txn := range ext.BankStatement.Transactions {
				date := txn.Date
				if date.IsZero() {
					date = doc.CreatedAt
				}
				key := monthKey(date)
				if txn.Credit > 0 {
					amount := sanitize(txn.Credit)
					metrics.TotalRevenue += amount
					category := classifyTransaction(txn.Description, false)
					revenueCats[category] += amount
					addMonthly(key, amount, 0)
					transactions = append(transactions, types.Transaction{
						Date: date, Description: txn.Description,
						Category: category, Amount: amount,
					})
				}
				if txn.Debit > 0 {
					amount := sanitize(txn.Debit)
					metrics.TotalExpenses += amount
					category := classifyTransaction(txn.Description, true)
					expenseCats[category] += amount
					addMonthly(key, 0, amount)
					transactions = append(transactions, types.Transaction{
						Date: date, Description: txn.Description,
						Category: category, Amount: amount, IsExpense: true,
					})
				}
			}

		case ext.Invoice != nil:
			amount := sanitize(ext.Invoice.TotalAmount)
			metrics.TotalRevenue += amount
			metrics.VATCollected += sanitize(ext.Invoice.VATAmount)
			category := ext.Invoice.Category
			if category == "" {
				category = "Invoices"
			}
			revenueCats[category] += amount
			date := ext.PrimaryDate(doc.CreatedAt)
			addMonthly(monthKey(date), amount, 0)
			transactions = append(transactions, types.Transaction{
				Date: date, Description: doc.FileName,
				Category: category, Amount: amount,
			})

		case ext.Receipt != nil:
			amount := sanitize(ext.Receipt.TotalAmount)
			metrics.TotalExpenses += amount
			category := ext.Receipt.Category
			if category == "" {
				category = ext.Receipt.MerchantName
			}
			if category == "" {
				category = "Purchases"
			}
			expenseCats[category] += amount
			date := ext.PrimaryDate(doc.CreatedAt)
			addMonthly(monthKey(date), 0, amount)
			transactions = append(transactions, types.Transaction{
				Date: date, Description: doc.FileName,
				Category: category, Amount: amount, IsExpense: true,
			})

		case ext.ProfitLoss != nil:
			metrics.TotalRevenue += sanitize(ext.ProfitLoss.TotalRevenue)
			metrics.TotalExpenses += sanitize(ext.ProfitLoss.TotalExpenses)
			for _, item := range ext.ProfitLoss.RevenueItems {
				name := item.Description
				if name == "" {
					name = "Other"
				}
				revenueCats[name] += sanitize(item.Amount)
			}
			for _, item := range ext.ProfitLoss.ExpenseItems {
				name := item.Description
				if name == "" {
					name = "Other"
				}
				expenseCats[name] += sanitize(item.Amount)
			}

		case ext.BalanceSheet != nil:
			// Balance sheets never move revenue or expense totals; they
			// only surface an asset bucket for display.
			if total := sanitize(ext.BalanceSheet.TotalAssets); total > 0 {
				revenueCats["Assets"] += total
			}
		}
	}

	metrics.MonthlyData = collapseMonthly(monthly)
	metrics.RevenueCategories = rankCategories(revenueCats)
	metrics.ExpenseCategories = rankCategories(expenseCats)
	metrics.RecentTransactions = recentTransactions(transactions)
	metrics.FinancialHealthScore = healthScore(metrics.TotalRevenue, metrics.TotalExpenses, processedCount, len(docs))
	return metrics
}

// collapseMonthly orders month buckets chronologically and keeps the most
// recent MaxMonthlyPeriods.
func collapseMonthly(monthly map[string]*types.MonthlyEntry) []types.MonthlyEntry {
	entries := make([]types.MonthlyEntry, 0, len(monthly))
	for _, entry := range monthly {
		entry.Income = sanitize(entry.Income)
		entry.Expenses = sanitize(entry.Expenses)
		entry.Profit = entry.Income - entry.Expenses
		entries = append(entries, *entry)
	}
	// "YYYY-MM" keys sort correctly as strings.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Month < entries[j].Month })
	if len(entries) > MaxMonthlyPeriods {
		entries = entries[len(entries)-MaxMonthlyPeriods:]
	}
	return entries
}

// rankCategories sorts buckets descending by amount and keeps the top
// MaxCategories. Ties break alphabetically for determinism.
func rankCategories(cats map[string]float64) []types.CategoryAmount {
	ranked := make([]types.CategoryAmount, 0, len(cats))
	for name, amount := range cats {
		ranked = append(ranked, types.CategoryAmount{Name: name, Amount: sanitize(amount)})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Amount != ranked[j].Amount {
			return ranked[i].Amount > ranked[j].Amount
		}
		return ranked[i].Name < ranked[j].Name
	})
	if len(ranked) > MaxCategories {
		ranked = ranked[:MaxCategories]
	}
	return ranked
}

func recentTransactions(transactions []types.Transaction) []types.Transaction {
	sort.SliceStable(transactions, func(i, j int) bool {
		return transactions[i].Date.After(transactions[j].Date)
	})
	if len(transactions) > MaxRecentTransactions {
		transactions = transactions[:MaxRecentTransactions]
	}
	return transactions
}

// healthScore blends profit margin with document processing coverage.
func healthScore(revenue, expenses float64, processed, total int) int {
	profitMargin := safeDiv(revenue-expenses, revenue) * 100
	coverage := safeDiv(float64(processed), float64(total)) * 100
	return clampScore(profitMargin*HealthWeightProfitMargin + coverage*HealthWeightCoverage)
}
