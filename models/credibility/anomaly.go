package credibility

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

// DetectAnomalies runs every heuristic independently over the document set
// and aggregated metrics. Alerts are purely additive; no heuristic suppresses
// another. Ordering follows the heuristic order, so identical inputs always
// produce an identical alert list.
func DetectAnomalies(docs []types.Document, metrics types.FinancialMetrics, now time.Time) []types.AnomalyAlert {
	// Heuristics reading extracted values only see processed documents;
	// velocity and file-size clustering inspect upload metadata and run
	// over the whole corpus.
	scorable := scorableDocuments(docs)

	alerts := []types.AnomalyAlert{}
	alerts = appendAlert(alerts, detectRevenueSpike(metrics))
	alerts = appendAlert(alerts, detectRoundNumbers(scorable))
	alerts = append(alerts, detectRepeatedAmounts(scorable)...)
	alerts = appendAlert(alerts, detectFutureDates(scorable, now))
	alerts = appendAlert(alerts, detectUploadVelocity(docs))
	alerts = appendAlert(alerts, detectMonthEndClustering(scorable))
	alerts = appendAlert(alerts, detectFileSizeClustering(docs))
	alerts = append(alerts, detectMarginPatterns(metrics)...)
	return alerts
}

func scorableDocuments(docs []types.Document) []types.Document {
	out := make([]types.Document, 0, len(docs))
	for i := range docs {
		if docs[i].IsScorable() {
			out = append(out, docs[i])
		}
	}
	return out
}

func appendAlert(alerts []types.AnomalyAlert, a *types.AnomalyAlert) []types.AnomalyAlert {
	if a == nil {
		return alerts
	}
	return append(alerts, *a)
}

// TotalConfidenceReduction sums the reductions applied to the final score.
func TotalConfidenceReduction(alerts []types.AnomalyAlert) int {
	total := 0
	for i := range alerts {
		total += alerts[i].ConfidenceReduction
	}
	return total
}

func detectRevenueSpike(metrics types.FinancialMetrics) *types.AnomalyAlert {
	monthly := metrics.MonthlyData
	if len(monthly) < RevenueSpikeMinMonths {
		return nil
	}
	last := monthly[len(monthly)-1]
	prior := 0.0
	for _, m := range monthly[:len(monthly)-1] {
		prior += m.Income
	}
	priorMean := prior / float64(len(monthly)-1)
	if priorMean <= 0 || last.Income <= priorMean*RevenueSpikeMultiplier {
		return nil
	}
	return &types.AnomalyAlert{
		Severity:            types.SeverityHigh,
		Type:                types.AnomalyRevenueSpike,
		Category:            "revenue",
		Description:         fmt.Sprintf("Income for %s is more than %.0fx the average of prior months", last.Month, RevenueSpikeMultiplier),
		DataPoints:          []string{fmt.Sprintf("%s: %.2f", last.Month, last.Income), fmt.Sprintf("prior average: %.2f", priorMean)},
		ConfidenceReduction: RevenueSpikeReduction,
		Recommendation:      "Provide supporting documents for the unusually high month",
		DetectionMethod:     "monthly income vs trailing mean",
	}
}

func detectRoundNumbers(docs []types.Document) *types.AnomalyAlert {
	if len(docs) <= RoundNumberMinDocs {
		return nil
	}
	round := 0
	for i := range docs {
		ext := types.DecodeExtraction(docs[i].ExtractedData, docs[i].DocumentType)
		amount := ext.PrimaryAmount()
		if amount > 0 && math.Mod(amount, RoundNumberUnit) == 0 {
			round++
		}
	}
	ratio := float64(round) / float64(len(docs))
	if ratio <= RoundNumberRatio {
		return nil
	}
	return &types.AnomalyAlert{
		Severity:            types.SeverityMedium,
		Type:                types.AnomalyRoundNumbers,
		Category:            "amounts",
		Description:         fmt.Sprintf("%d of %d documents carry amounts in exact multiples of %.0f", round, len(docs), RoundNumberUnit),
		DataPoints:          []string{fmt.Sprintf("round ratio: %.2f", ratio)},
		ConfidenceReduction: RoundNumberReduction,
		Recommendation:      "Round figures suggest estimates; upload source documents with exact amounts",
		DetectionMethod:     "modulo check over primary amounts",
	}
}

func detectRepeatedAmounts(docs []types.Document) []types.AnomalyAlert {
	if len(docs) <= RepeatedAmountMinDocs {
		return nil
	}
	counts := make(map[float64]int)
	for i := range docs {
		ext := types.DecodeExtraction(docs[i].ExtractedData, docs[i].DocumentType)
		amount := ext.PrimaryAmount()
		if amount > 0 {
			counts[amount]++
		}
	}
	var repeated []float64
	for amount, n := range counts {
		if n > RepeatedAmountMinRepeats {
			repeated = append(repeated, amount)
		}
	}
	if len(repeated) == 0 {
		return nil
	}
	sort.Float64s(repeated)
	points := make([]string, 0, len(repeated))
	for _, amount := range repeated {
		points = append(points, fmt.Sprintf("%.2f x%d", amount, counts[amount]))
	}
	return []types.AnomalyAlert{{
		Severity:            types.SeverityLow,
		Type:                types.AnomalyRepeatedAmounts,
		Category:            "amounts",
		Description:         fmt.Sprintf("%d amount value(s) repeat across documents, possible template reuse", len(repeated)),
		DataPoints:          points,
		ConfidenceReduction: RepeatedAmountReduction,
		Recommendation:      "Verify that repeated documents reflect distinct transactions",
		DetectionMethod:     "exact amount frequency count",
	}}
}

func detectFutureDates(docs []types.Document, now time.Time) *types.AnomalyAlert {
	var future []string
	for i := range docs {
		ext := types.DecodeExtraction(docs[i].ExtractedData, docs[i].DocumentType)
		d := ext.PrimaryDate(time.Time{})
		if !d.IsZero() && d.After(now) {
			future = append(future, fmt.Sprintf("%s dated %s", docs[i].FileName, d.Format("2006-01-02")))
		}
	}
	if len(future) == 0 {
		return nil
	}
	return &types.AnomalyAlert{
		Severity:            types.SeverityCritical,
		Type:                types.AnomalyDateInconsistency,
		Category:            "dates",
		Description:         fmt.Sprintf("%d document(s) are dated in the future", len(future)),
		DataPoints:          future,
		ConfidenceReduction: FutureDateReduction,
		Recommendation:      "Correct or remove documents with future dates",
		DetectionMethod:     "extracted date vs current time",
	}
}

func detectUploadVelocity(docs []types.Document) *types.AnomalyAlert {
	if len(docs) < VelocityMinDocsToEvaluate {
		return nil
	}
	min, max := docs[0].CreatedAt, docs[0].CreatedAt
	for i := range docs {
		if docs[i].CreatedAt.Before(min) {
			min = docs[i].CreatedAt
		}
		if docs[i].CreatedAt.After(max) {
			max = docs[i].CreatedAt
		}
	}
	if len(docs) < VelocityDocThreshold || max.Sub(min) > VelocityWindowHours*time.Hour {
		return nil
	}
	return &types.AnomalyAlert{
		Severity:            types.SeverityMedium,
		Type:                types.AnomalyVelocity,
		Category:            "uploads",
		Description:         fmt.Sprintf("%d documents uploaded within %s", len(docs), max.Sub(min).Round(time.Minute)),
		DataPoints:          []string{fmt.Sprintf("window: %s to %s", min.Format(time.RFC3339), max.Format(time.RFC3339))},
		ConfidenceReduction: VelocityReduction,
		Recommendation:      "Bulk uploads are reviewed more strictly; stagger genuine backfills",
		DetectionMethod:     "created_at spread over all documents",
	}
}

func detectMonthEndClustering(docs []types.Document) *types.AnomalyAlert {
	invoiceDates := make([]time.Time, 0)
	bankStatements := 0
	for i := range docs {
		switch docs[i].DocumentType {
		case types.DocumentTypeInvoice:
			ext := types.DecodeExtraction(docs[i].ExtractedData, docs[i].DocumentType)
			d := ext.PrimaryDate(time.Time{})
			if !d.IsZero() {
				invoiceDates = append(invoiceDates, d)
			}
		case types.DocumentTypeBankStatement:
			bankStatements++
		}
	}
	if len(invoiceDates) <= TimingMinInvoices || bankStatements < 1 {
		return nil
	}
	monthEnd := 0
	for _, d := range invoiceDates {
		if d.Day() >= TimingMonthEndDay {
			monthEnd++
		}
	}
	ratio := float64(monthEnd) / float64(len(invoiceDates))
	if ratio <= TimingMonthEndRatio {
		return nil
	}
	return &types.AnomalyAlert{
		Severity:            types.SeverityLow,
		Type:                types.AnomalyTimingMismatch,
		Category:            "dates",
		Description:         fmt.Sprintf("%d of %d invoices are dated on day %d or later of the month", monthEnd, len(invoiceDates), TimingMonthEndDay),
		DataPoints:          []string{fmt.Sprintf("month-end ratio: %.2f", ratio)},
		ConfidenceReduction: TimingMismatchReduction,
		Recommendation:      "Invoices clustered at month end may indicate backdating",
		DetectionMethod:     "day-of-month distribution over invoice dates",
	}
}

func detectFileSizeClustering(docs []types.Document) *types.AnomalyAlert {
	if len(docs) <= MetadataMinDocs {
		return nil
	}
	buckets := make(map[int64]int)
	for i := range docs {
		if docs[i].FileSize > 0 {
			buckets[docs[i].FileSize/MetadataBucketBytes]++
		}
	}
	crowded := 0
	for _, n := range buckets {
		if n > MetadataBucketMembers {
			crowded++
		}
	}
	if crowded <= MetadataBucketCount {
		return nil
	}
	return &types.AnomalyAlert{
		Severity:            types.SeverityLow,
		Type:                types.AnomalyMetadataSuspicious,
		Category:            "metadata",
		Description:         fmt.Sprintf("%d file-size clusters of near-identical documents detected", crowded),
		DataPoints:          []string{fmt.Sprintf("bucket width: %d bytes", MetadataBucketBytes)},
		ConfidenceReduction: MetadataReduction,
		Recommendation:      "Near-identical file sizes can indicate generated documents",
		DetectionMethod:     "file size bucketing",
	}
}

func detectMarginPatterns(metrics types.FinancialMetrics) []types.AnomalyAlert {
	var alerts []types.AnomalyAlert
	if metrics.TotalRevenue > UnrealisticMarginRevenue &&
		metrics.TotalExpenses/metrics.TotalRevenue < UnrealisticMarginRatio {
		alerts = append(alerts, types.AnomalyAlert{
			Severity:            types.SeverityMedium,
			Type:                types.AnomalyPattern,
			Category:            "margins",
			Description:         "Expense ratio is unrealistically low for the declared revenue",
			DataPoints:          []string{fmt.Sprintf("expense ratio: %.2f", metrics.TotalExpenses/metrics.TotalRevenue)},
			ConfidenceReduction: UnrealisticMarginReduction,
			Recommendation:      "Upload expense documents to substantiate the margin",
			DetectionMethod:     "expense to revenue ratio",
		})
	}
	if metrics.TotalRevenue > UnrealisticLossRevenue &&
		metrics.TotalExpenses/metrics.TotalRevenue > UnrealisticLossRatio {
		alerts = append(alerts, types.AnomalyAlert{
			Severity:            types.SeverityHigh,
			Type:                types.AnomalyPattern,
			Category:            "margins",
			Description:         "Expenses are implausibly high relative to declared revenue",
			DataPoints:          []string{fmt.Sprintf("expense ratio: %.2f", metrics.TotalExpenses/metrics.TotalRevenue)},
			ConfidenceReduction: UnrealisticLossReduction,
			Recommendation:      "Check for missing revenue documents or duplicated expenses",
			DetectionMethod:     "expense to revenue ratio",
		})
	}
	return alerts
}
