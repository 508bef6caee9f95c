package credibility

import (
	"fmt"
	"math"
	"time"

	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

// ResolveTrustTier classifies a business into the four-state verification
// progression. States are evaluated top-down and the first satisfied state
// wins; a tier is never additive with the ones below it.
func ResolveTrustTier(
	docs []types.Document,
	proofs []types.VerificationProof,
	evidence types.EvidenceQuality,
	reconciliation types.ReconciliationResult,
	alerts []types.AnomalyAlert,
	now time.Time,
) types.TrustTierInfo {
	anchored := 0
	for i := range proofs {
		if proofs[i].IsAnchored(now) {
			anchored++
		}
	}
	processedNonManual := 0
	processedBankStatements := 0
	for i := range docs {
		if docs[i].Status != types.DocumentStatusProcessed {
			continue
		}
		if docs[i].DocumentType != types.DocumentTypeManualEntry {
			processedNonManual++
		}
		if docs[i].DocumentType == types.DocumentTypeBankStatement {
			processedBankStatements++
		}
	}
	months := DistinctDocumentMonths(docs)

	var tier types.TrustTier
	switch {
	case anchored >= 1:
		tier = types.TierVerified
	case processedBankStatements >= 1 &&
		evidence.Score >= TierBankEvidenceMin &&
		reconciliation.ReconciliationScore >= TierBankReconciliationMin:
		tier = types.TierBankSupported
	case processedNonManual >= 1 && evidence.Score >= TierDocumentEvidenceMin:
		tier = types.TierDocumentBacked
	default:
		tier = types.TierSelfDeclared
	}

	detailed := tierChecklist(tier, processedNonManual, processedBankStatements,
		anchored, months, evidence, reconciliation, alerts)

	antifraud := antifraudScore(alerts)
	return types.TrustTierInfo{
		Tier:                 tier,
		Label:                tier.Label(),
		Requirements:         tierRequirementLabels(tier),
		NextTierRequirements: nextTierLabels(tier),
		DetailedRequirements: detailed,
		TierProgress:         tierProgress(detailed),
		AntifraudScore:       antifraud,
		VerificationStrength: verificationStrength(tier, antifraud),
	}
}

// tierChecklist builds the requirement checklist toward the NEXT tier; at
// tier 3 it shows the tier-3 checklist fully completed.
func tierChecklist(
	tier types.TrustTier,
	processedNonManual, processedBankStatements, anchored, months int,
	evidence types.EvidenceQuality,
	reconciliation types.ReconciliationResult,
	alerts []types.AnomalyAlert,
) []types.TierRequirement {
	switch tier {
	case types.TierSelfDeclared:
		return []types.TierRequirement{
			requirement("processed_document", "Upload and process at least one document", 40,
				processedNonManual >= 1, boolProgress(processedNonManual >= 1)),
			requirement("evidence_quality_40", fmt.Sprintf("Reach evidence quality %d", TierDocumentEvidenceMin), 30,
				evidence.Score >= TierDocumentEvidenceMin, ratioProgress(evidence.Score, TierDocumentEvidenceMin)),
			requirement("three_months_data", fmt.Sprintf("Provide %d months of financial history", TierDataMonthsTarget), 30,
				months >= TierDataMonthsTarget, ratioProgress(months, TierDataMonthsTarget)),
		}
	case types.TierDocumentBacked:
		return []types.TierRequirement{
			requirement("bank_statement", "Upload a processed bank statement", 40,
				processedBankStatements >= 1, boolProgress(processedBankStatements >= 1)),
			requirement("evidence_quality_60", fmt.Sprintf("Reach evidence quality %d", TierBankEvidenceMin), 30,
				evidence.Score >= TierBankEvidenceMin, ratioProgress(evidence.Score, TierBankEvidenceMin)),
			requirement("reconciliation_70", fmt.Sprintf("Reach reconciliation score %d", TierBankReconciliationMin), 30,
				reconciliation.ReconciliationScore >= TierBankReconciliationMin,
				ratioProgress(reconciliation.ReconciliationScore, TierBankReconciliationMin)),
		}
	default:
		// TierBankSupported and TierVerified share the tier-3 checklist. A
		// verified business has every item marked complete regardless of the
		// live values, so its tierProgress is pinned at 100.
		verified := tier == types.TierVerified
		antifraud := antifraudScore(alerts)
		return []types.TierRequirement{
			requirement("verification_proof", "Issue a blockchain-anchored verification proof", 60,
				verified || anchored >= 1, boolProgress(anchored >= 1)),
			requirement("antifraud_80", fmt.Sprintf("Keep antifraud score at or above %d", StrengthStrongAntifraudMin), 40,
				verified || antifraud >= StrengthStrongAntifraudMin, ratioProgress(antifraud, StrengthStrongAntifraudMin)),
		}
	}
}

func requirement(key, label string, weight int, completed bool, progress int) types.TierRequirement {
	if completed {
		progress = 100
	}
	return types.TierRequirement{Key: key, Label: label, Weight: weight, Completed: completed, Progress: progress}
}

func boolProgress(done bool) int {
	if done {
		return 100
	}
	return 0
}

// ratioProgress is the partial progress toward a numeric target, capped at 100.
func ratioProgress(value, target int) int {
	if target <= 0 {
		return 100
	}
	p := int(math.Round(float64(value) / float64(target) * 100))
	if p > 100 {
		p = 100
	}
	if p < 0 {
		p = 0
	}
	return p
}

// tierProgress is the weighted completion percentage of a checklist.
func tierProgress(reqs []types.TierRequirement) int {
	totalWeight := 0
	earned := 0.0
	for _, r := range reqs {
		totalWeight += r.Weight
		progress := r.Progress
		if r.Completed {
			progress = 100
		}
		earned += float64(r.Weight) * float64(progress) / 100
	}
	if totalWeight == 0 {
		return 0
	}
	return clampScore(earned / float64(totalWeight) * 100)
}

func antifraudScore(alerts []types.AnomalyAlert) int {
	score := 100
	for i := range alerts {
		switch alerts[i].Severity {
		case types.SeverityCritical:
			score -= AntifraudCriticalPenalty
		case types.SeverityHigh:
			score -= AntifraudHighPenalty
		case types.SeverityMedium:
			score -= AntifraudMediumPenalty
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

func verificationStrength(tier types.TrustTier, antifraud int) types.VerificationStrength {
	switch {
	case tier == types.TierVerified:
		return types.StrengthVerified
	case tier == types.TierBankSupported && antifraud >= StrengthStrongAntifraudMin:
		return types.StrengthStrong
	case tier >= types.TierDocumentBacked && antifraud >= StrengthModerateAntifraudMin:
		return types.StrengthModerate
	default:
		return types.StrengthWeak
	}
}

func tierRequirementLabels(tier types.TrustTier) []string {
	switch tier {
	case types.TierVerified:
		return []string{"Active blockchain-anchored verification proof"}
	case types.TierBankSupported:
		return []string{"Processed bank statement", "Evidence quality 60 or above", "Reconciliation score 70 or above"}
	case types.TierDocumentBacked:
		return []string{"At least one processed document", "Evidence quality 40 or above"}
	default:
		return []string{"Self-declared data only"}
	}
}

func nextTierLabels(tier types.TrustTier) []string {
	switch tier {
	case types.TierSelfDeclared:
		return []string{"Upload and process at least one document", "Reach evidence quality 40"}
	case types.TierDocumentBacked:
		return []string{"Upload a processed bank statement", "Reach evidence quality 60", "Reach reconciliation score 70"}
	case types.TierBankSupported:
		return []string{"Issue a blockchain-anchored verification proof"}
	default:
		return nil
	}
}
