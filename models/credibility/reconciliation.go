package credibility

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

// Reconcile cross-checks totals derived from independent sources: invoice
// totals against bank statement credits, receipt totals against bank
// statement debits. Only processed documents with extracted data are summed.
// A pair is only compared when both sides are positive;
// a relative discrepancy beyond the threshold records a mismatch. Sums use
// decimal arithmetic so large NPR totals do not accumulate float error.
func Reconcile(docs []types.Document) types.ReconciliationResult {
	invoiceTotal := decimal.Zero
	receiptTotal := decimal.Zero
	bankCredits := decimal.Zero
	bankDebits := decimal.Zero

	for i := range docs {
		if !docs[i].IsScorable() {
			continue
		}
		ext := types.DecodeExtraction(docs[i].ExtractedData, docs[i].DocumentType)
		switch {
		case ext.Invoice != nil:
			invoiceTotal = invoiceTotal.Add(decimal.NewFromFloat(ext.Invoice.TotalAmount))
		case ext.Receipt != nil:
			receiptTotal = receiptTotal.Add(decimal.NewFromFloat(ext.Receipt.TotalAmount))
		case ext.BankStatement != nil:
			bankCredits = bankCredits.Add(decimal.NewFromFloat(ext.BankStatement.TotalCredits))
			bankDebits = bankDebits.Add(decimal.NewFromFloat(ext.BankStatement.TotalDebits))
		}
	}

	var mismatches []string
	if msg := compareTotals("invoiced revenue", invoiceTotal, "bank credits", bankCredits); msg != "" {
		mismatches = append(mismatches, msg)
	}
	if msg := compareTotals("receipted expenses", receiptTotal, "bank debits", bankDebits); msg != "" {
		mismatches = append(mismatches, msg)
	}

	score := 100 - len(mismatches)*ReconciliationMismatchPenalty
	if score < 0 {
		score = 0
	}
	return types.ReconciliationResult{
		Passed:              len(mismatches) == 0,
		Mismatches:          mismatches,
		ReconciliationScore: score,
	}
}

// compareTotals returns a mismatch message when both totals are positive and
// their relative discrepancy exceeds the threshold, otherwise "".
func compareTotals(aLabel string, a decimal.Decimal, bLabel string, b decimal.Decimal) string {
	if !a.IsPositive() || !b.IsPositive() {
		return ""
	}
	max := decimal.Max(a, b)
	discrepancy, _ := a.Sub(b).Abs().Div(max).Float64()
	if discrepancy <= ReconciliationDiscrepancyThreshold {
		return ""
	}
	return fmt.Sprintf("%s (%s) and %s (%s) diverge by %.0f%%",
		aLabel, a.StringFixed(2), bLabel, b.StringFixed(2), discrepancy*100)
}
