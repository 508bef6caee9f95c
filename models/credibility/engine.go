package credibility

import (
	"time"

	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

// Score is the engine entry point: a pure function of the document and proof
// snapshots plus the evaluation time. It performs no I/O, keeps no state
// between runs and never fails — empty or malformed inputs degrade to a
// low score with explanatory flags. Identical inputs always produce an
// identical result apart from LastCalculated.
func Score(docs []types.Document, proofs []types.VerificationProof, now time.Time) types.CredibilityScore {
	metrics := AggregateFinancials(docs, now)
	evidence := ScoreEvidenceQuality(docs)
	stability := ScoreStabilityGrowth(metrics)
	compliance := ScoreComplianceReadiness(docs, metrics, now)
	alerts := DetectAnomalies(docs, metrics, now)
	reconciliation := Reconcile(docs)
	tier := ResolveTrustTier(docs, proofs, evidence, reconciliation, alerts, now)

	reduction := TotalConfidenceReduction(alerts)

	// Evidence quality acts as a multiplicative cap on the stability and
	// compliance average; anomalies are a flat penalty applied after it.
	base := float64(stability.Score+compliance.Score) / 2
	total := clampScore(base*float64(evidence.Score)/100 - float64(reduction))

	return types.CredibilityScore{
		TotalScore:                total,
		ConfidenceLevel:           confidenceLevel(reduction, evidence, reconciliation),
		TrustTier:                 tier,
		EvidenceQuality:           evidence,
		StabilityGrowth:           stability,
		ComplianceReadiness:       compliance,
		Anomalies:                 alerts,
		CrossSourceReconciliation: reconciliation,
		FinancialMetrics:          metrics,
		ImprovementActions:        BuildImprovementActions(evidence, stability, compliance, reconciliation, alerts),
		LastCalculated:            now,
		DataPoints:                len(docs),
	}
}

// confidenceLevel grades how much the composite score can be trusted, from
// the anomaly reductions, concerning evidence flags and reconciliation gap.
func confidenceLevel(reduction int, evidence types.EvidenceQuality, reconciliation types.ReconciliationResult) types.ConfidenceLevel {
	concerning := 0
	for _, f := range evidence.Flags {
		if f.Severity == types.FlagCritical || f.Severity == types.FlagWarning {
			concerning++
		}
	}
	score := 100 - float64(reduction) -
		float64(concerning*ConfidenceEvidenceFlagPenalty) -
		float64(100-reconciliation.ReconciliationScore)*ConfidenceReconciliationFactor
	switch {
	case score >= ConfidenceHighMin:
		return types.ConfidenceHigh
	case score >= ConfidenceMediumMin:
		return types.ConfidenceMedium
	default:
		return types.ConfidenceLow
	}
}
