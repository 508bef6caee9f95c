package credibility

import (
	"time"

	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

// Compliance flag codes.
const (
	FlagMissingInvoices       = "MISSING_INVOICES"
	FlagMissingBankStatements = "MISSING_BANK_STATEMENTS"
	FlagVATComplianceRisk     = "VAT_COMPLIANCE_RISK"
	FlagExcessiveExpenses     = "EXCESSIVE_EXPENSES"
)

// requiredDocTypes must be present for a lender-ready file; recommendedDocTypes
// strengthen it.
var (
	requiredDocTypes    = []types.DocumentType{types.DocumentTypeInvoice, types.DocumentTypeBankStatement, types.DocumentTypeReceipt}
	recommendedDocTypes = []types.DocumentType{types.DocumentTypeProfitLoss, types.DocumentTypeBalanceSheet, types.DocumentTypeTaxDocument}
)

// ScoreComplianceReadiness rates regulatory posture: document coverage by
// type, statutory risk patterns, filing recency and advisory completion.
func ScoreComplianceReadiness(docs []types.Document, metrics types.FinancialMetrics, now time.Time) types.ComplianceReadiness {
	var flags []types.ScoreFlag

	// Document completeness across required and recommended type sets.
	present := make(map[types.DocumentType]bool)
	for i := range docs {
		if docs[i].Status == types.DocumentStatusProcessed {
			present[docs[i].DocumentType] = true
		}
	}
	requiredPresent := 0
	for _, dt := range requiredDocTypes {
		if present[dt] {
			requiredPresent++
		}
	}
	recommendedPresent := 0
	for _, dt := range recommendedDocTypes {
		if present[dt] {
			recommendedPresent++
		}
	}
	completeness := float64(requiredPresent)/float64(len(requiredDocTypes))*RequiredDocsWeight +
		float64(recommendedPresent)/float64(len(recommendedDocTypes))*RecommendedDocsWeight

	if !present[types.DocumentTypeInvoice] {
		flags = append(flags, types.ScoreFlag{
			Code:           FlagMissingInvoices,
			Severity:       types.FlagWarning,
			Message:        "No processed invoices on file",
			Recommendation: "Upload recent sales invoices to evidence revenue",
		})
	}
	if !present[types.DocumentTypeBankStatement] {
		flags = append(flags, types.ScoreFlag{
			Code:           FlagMissingBankStatements,
			Severity:       types.FlagWarning,
			Message:        "No processed bank statements on file",
			Recommendation: "Upload bank statements to independently support declared income",
		})
	}

	// Risk patterns against statutory thresholds.
	risk := float64(RiskPatternsBase)
	if metrics.TotalRevenue > VATRegistrationThreshold && metrics.VATCollected == 0 {
		risk -= VATRiskPenalty
		flags = append(flags, types.ScoreFlag{
			Code:           FlagVATComplianceRisk,
			Severity:       types.FlagCritical,
			Message:        "Turnover exceeds the VAT registration threshold but no VAT is recorded",
			Recommendation: "Register for VAT and upload VAT-bearing invoices",
		})
	}
	if metrics.TotalExpenses > metrics.TotalRevenue*ExcessiveExpenseMultiplier {
		risk -= ExcessiveExpensePenalty
		flags = append(flags, types.ScoreFlag{
			Code:           FlagExcessiveExpenses,
			Severity:       types.FlagWarning,
			Message:        "Documented expenses far exceed documented revenue",
			Recommendation: "Check for missing revenue documents or misclassified expenses",
		})
	}
	if risk < 0 {
		risk = 0
	}

	// Timeliness: share of documents from the recency window.
	timeliness := 0.0
	if len(docs) > 0 {
		cutoff := now.AddDate(0, -TimelinessWindowMonths, 0)
		recent := 0
		for i := range docs {
			if docs[i].CreatedAt.After(cutoff) {
				recent++
			}
		}
		timeliness = float64(recent) / float64(len(docs)) * TimelinessMultiplier
		if timeliness > 100 {
			timeliness = 100
		}
	}

	advisory := float64(advisoryCompletion())

	score := clampScore(completeness*ComplianceWeightCompleteness +
		risk*ComplianceWeightRisk +
		timeliness*ComplianceWeightTimeliness +
		advisory*ComplianceWeightAdvisory)

	return types.ComplianceReadiness{
		Score:                score,
		DocumentCompleteness: clampScore(completeness),
		RiskPatterns:         clampScore(risk),
		TimelinessScore:      clampScore(timeliness),
		AdvisoryCompletion:   advisoryCompletion(),
		Flags:                flags,
	}
}
