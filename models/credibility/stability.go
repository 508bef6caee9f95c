package credibility

import (
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

// Stability flag codes.
const (
	FlagRevenueVolatile  = "REVENUE_VOLATILE"
	FlagNegativeCashflow = "NEGATIVE_CASHFLOW"
	FlagHealthyCashflow  = "HEALTHY_CASHFLOW"
	FlagHighExpenseRatio = "HIGH_EXPENSE_RATIO"
	FlagStrongGrowth     = "STRONG_GROWTH"
	FlagDecliningRevenue = "DECLINING_REVENUE"
)

// ScoreStabilityGrowth rates financial health trends from the aggregated
// metrics alone. With no monthly data the score short-circuits to 0 with a
// neutral seasonality placeholder.
func ScoreStabilityGrowth(metrics types.FinancialMetrics) types.StabilityGrowth {
	if len(metrics.MonthlyData) == 0 {
		return types.StabilityGrowth{
			Score:               0,
			SeasonalityHandling: NeutralScore,
		}
	}

	var flags []types.ScoreFlag

	incomes := make([]float64, len(metrics.MonthlyData))
	for i, entry := range metrics.MonthlyData {
		incomes[i] = entry.Income
	}

	// Revenue stability: low coefficient of variation scores high.
	cov := safeDiv(stddev(incomes), mean(incomes))
	revenueStability := 100 - cov*100
	if revenueStability < 0 {
		revenueStability = 0
	}
	if cov > RevenueVariationThreshold {
		flags = append(flags, types.ScoreFlag{
			Code:           FlagRevenueVolatile,
			Severity:       types.FlagWarning,
			Message:        "Monthly revenue varies widely",
			Recommendation: "Smooth revenue by diversifying customers or adding recurring income",
		})
	}

	// Cashflow health: centred at 50, shifted by net margin.
	netCashflow := metrics.TotalRevenue - metrics.TotalExpenses
	margin := safeDiv(netCashflow, metrics.TotalRevenue)
	cashflowHealth := float64(NeutralScore) + margin*100
	if netCashflow < 0 {
		flags = append(flags, types.ScoreFlag{
			Code:           FlagNegativeCashflow,
			Severity:       types.FlagCritical,
			Message:        "Expenses exceed revenue over the documented period",
			Recommendation: "Reduce costs or document additional income sources",
		})
	} else if margin > HealthyCashflowMargin {
		flags = append(flags, types.ScoreFlag{
			Code:     FlagHealthyCashflow,
			Severity: types.FlagPositive,
			Message:  "Net cashflow margin exceeds 20%",
		})
	}

	// Expense discipline: every point of expense ratio costs score.
	expenseRatio := safeDiv(metrics.TotalExpenses, metrics.TotalRevenue)
	expenseDiscipline := 100 - expenseRatio*ExpenseDisciplineSlope
	if expenseDiscipline < 0 {
		expenseDiscipline = 0
	}
	if expenseRatio > ExpenseRatioWarning {
		flags = append(flags, types.ScoreFlag{
			Code:           FlagHighExpenseRatio,
			Severity:       types.FlagWarning,
			Message:        "Expenses consume over 90% of revenue",
			Recommendation: "Review the largest expense categories for savings",
		})
	}

	// Growth trend: recent window against all prior months.
	growthTrend := float64(NeutralScore)
	if len(incomes) >= GrowthWindowMonths+1 {
		recent := mean(incomes[len(incomes)-GrowthWindowMonths:])
		prior := mean(incomes[:len(incomes)-GrowthWindowMonths])
		if prior > 0 {
			growthRate := (recent - prior) / prior
			growthTrend = float64(NeutralScore) + growthRate*100
			if growthRate > GrowthFlagThreshold {
				flags = append(flags, types.ScoreFlag{
					Code:     FlagStrongGrowth,
					Severity: types.FlagPositive,
					Message:  "Recent revenue is growing strongly against the prior period",
				})
			} else if growthRate < -GrowthFlagThreshold {
				flags = append(flags, types.ScoreFlag{
					Code:           FlagDecliningRevenue,
					Severity:       types.FlagWarning,
					Message:        "Recent revenue is declining against the prior period",
					Recommendation: "Document the cause of the decline, e.g. seasonality or one-off events",
				})
			}
		}
	}

	seasonality := float64(seasonalityHandling())

	score := clampScore(revenueStability*StabilityWeightRevenue +
		clampFloat(cashflowHealth)*StabilityWeightCashflow +
		expenseDiscipline*StabilityWeightExpense +
		clampFloat(growthTrend)*StabilityWeightGrowth +
		seasonality*StabilityWeightSeasonality)

	return types.StabilityGrowth{
		Score:               score,
		RevenueStability:    clampScore(revenueStability),
		CashflowHealth:      clampScore(cashflowHealth),
		ExpenseDiscipline:   clampScore(expenseDiscipline),
		GrowthTrend:         clampScore(growthTrend),
		SeasonalityHandling: seasonalityHandling(),
		Flags:               flags,
	}
}

// clampFloat bounds a raw component into [0,100] without rounding, for use
// inside weighted sums.
func clampFloat(f float64) float64 {
	f = sanitize(f)
	if f < 0 {
		return 0
	}
	if f > 100 {
		return 100
	}
	return f
}
