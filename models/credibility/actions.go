package credibility

import (
	"sort"

	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

// priorityRank orders improvement actions for display.
var priorityRank = map[types.ActionPriority]int{
	types.PriorityImmediate:  0,
	types.PriorityShortTerm:  1,
	types.PriorityMediumTerm: 2,
}

// BuildImprovementActions turns scorer flags and sub-score gaps into a ranked
// action list: urgency first, then descending potential point gain.
func BuildImprovementActions(
	evidence types.EvidenceQuality,
	stability types.StabilityGrowth,
	compliance types.ComplianceReadiness,
	reconciliation types.ReconciliationResult,
	alerts []types.AnomalyAlert,
) []types.ImprovementAction {
	var actions []types.ImprovementAction

	add := func(priority types.ActionPriority, action, category string, gain int) {
		if gain < 1 {
			gain = 1
		}
		actions = append(actions, types.ImprovementAction{
			Priority:      priority,
			Action:        action,
			Category:      category,
			PotentialGain: gain,
		})
	}

	// Critical flags demand immediate attention; their gain is the weight
	// the flag's sub-score is losing.
	for _, f := range evidence.Flags {
		if f.Severity == types.FlagCritical && f.Recommendation != "" {
			add(types.PriorityImmediate, f.Recommendation, "evidence", 100-evidence.Score)
		}
	}
	for _, f := range compliance.Flags {
		if f.Severity == types.FlagCritical && f.Recommendation != "" {
			add(types.PriorityImmediate, f.Recommendation, "compliance", VATRiskPenalty)
		}
	}
	for i := range alerts {
		if alerts[i].Severity == types.SeverityCritical || alerts[i].Severity == types.SeverityHigh {
			add(types.PriorityImmediate, alerts[i].Recommendation, "antifraud", alerts[i].ConfidenceReduction)
		}
	}

	// Warning flags and failed reconciliation are short-term work.
	for _, f := range evidence.Flags {
		if f.Severity == types.FlagWarning && f.Recommendation != "" {
			add(types.PriorityShortTerm, f.Recommendation, "evidence", (100-evidence.Score)/2)
		}
	}
	for _, f := range compliance.Flags {
		if f.Severity == types.FlagWarning && f.Recommendation != "" {
			add(types.PriorityShortTerm, f.Recommendation, "compliance", (100-compliance.Score)/2)
		}
	}
	if !reconciliation.Passed {
		add(types.PriorityShortTerm,
			"Resolve discrepancies between invoices, receipts and bank statements",
			"reconciliation", 100-reconciliation.ReconciliationScore)
	}
	for i := range alerts {
		if alerts[i].Severity == types.SeverityMedium {
			add(types.PriorityShortTerm, alerts[i].Recommendation, "antifraud", alerts[i].ConfidenceReduction)
		}
	}

	// Sub-score gaps without a flag are gradual, medium-term improvements.
	for _, f := range stability.Flags {
		if (f.Severity == types.FlagWarning || f.Severity == types.FlagCritical) && f.Recommendation != "" {
			add(types.PriorityMediumTerm, f.Recommendation, "stability", (100-stability.Score)/2)
		}
	}
	if evidence.ContinuityScore < 100 {
		add(types.PriorityMediumTerm,
			"Upload documents every month to build a continuous history",
			"evidence", (100-evidence.ContinuityScore)/4)
	}

	sort.SliceStable(actions, func(i, j int) bool {
		if priorityRank[actions[i].Priority] != priorityRank[actions[j].Priority] {
			return priorityRank[actions[i].Priority] < priorityRank[actions[j].Priority]
		}
		return actions[i].PotentialGain > actions[j].PotentialGain
	})
	return actions
}
