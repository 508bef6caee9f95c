package types

import "time"

// ConfidenceLevel expresses how much the composite score can be trusted.
type ConfidenceLevel string

const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// FlagSeverity grades scorer flags.
type FlagSeverity string

const (
	FlagInfo     FlagSeverity = "info"
	FlagPositive FlagSeverity = "positive"
	FlagWarning  FlagSeverity = "warning"
	FlagCritical FlagSeverity = "critical"
)

// ScoreFlag is an explanatory finding attached to a sub-score.
type ScoreFlag struct {
	Code           string       `json:"code"`
	Severity       FlagSeverity `json:"severity"`
	Message        string       `json:"message"`
	Recommendation string       `json:"recommendation,omitempty"`
}

// EvidenceQuality rates how well-substantiated the financial data is.
type EvidenceQuality struct {
	Score               int         `json:"score"`
	DocumentBackedRatio int         `json:"documentBackedRatio"`
	ConsistencyScore    int         `json:"consistencyScore"`
	ContinuityScore     int         `json:"continuityScore"`
	MetadataScore       int         `json:"metadataScore"`
	Flags               []ScoreFlag `json:"flags"`
}

// StabilityGrowth rates financial health trends.
type StabilityGrowth struct {
	Score               int         `json:"score"`
	RevenueStability    int         `json:"revenueStability"`
	CashflowHealth      int         `json:"cashflowHealth"`
	ExpenseDiscipline   int         `json:"expenseDiscipline"`
	GrowthTrend         int         `json:"growthTrend"`
	SeasonalityHandling int         `json:"seasonalityHandling"`
	Flags               []ScoreFlag `json:"flags"`
}

// ComplianceReadiness rates regulatory posture.
type ComplianceReadiness struct {
	Score                int         `json:"score"`
	DocumentCompleteness int         `json:"documentCompleteness"`
	RiskPatterns         int         `json:"riskPatterns"`
	TimelinessScore      int         `json:"timelinessScore"`
	AdvisoryCompletion   int         `json:"advisoryCompletion"`
	Flags                []ScoreFlag `json:"flags"`
}

// ReconciliationResult compares independently derived ledger totals.
type ReconciliationResult struct {
	Passed              bool     `json:"passed"`
	Mismatches          []string `json:"mismatches"`
	ReconciliationScore int      `json:"reconciliationScore"`
}

// ActionPriority orders improvement actions.
type ActionPriority string

const (
	PriorityImmediate  ActionPriority = "immediate"
	PriorityShortTerm  ActionPriority = "short_term"
	PriorityMediumTerm ActionPriority = "medium_term"
)

// ImprovementAction is one ranked suggestion for raising the score.
type ImprovementAction struct {
	Priority      ActionPriority `json:"priority"`
	Action        string         `json:"action"`
	Category      string         `json:"category"`
	PotentialGain int            `json:"potentialGain"`
}

// CredibilityScore is the engine's sole output: a fresh snapshot recomputed
// on every invocation, with no persisted identity.
type CredibilityScore struct {
	TotalScore                int                  `json:"totalScore"`
	ConfidenceLevel           ConfidenceLevel      `json:"confidenceLevel"`
	TrustTier                 TrustTierInfo        `json:"trustTier"`
	EvidenceQuality           EvidenceQuality      `json:"evidenceQuality"`
	StabilityGrowth           StabilityGrowth      `json:"stabilityGrowth"`
	ComplianceReadiness       ComplianceReadiness  `json:"complianceReadiness"`
	Anomalies                 []AnomalyAlert       `json:"anomalies"`
	CrossSourceReconciliation ReconciliationResult `json:"crossSourceReconciliation"`
	FinancialMetrics          FinancialMetrics     `json:"financialMetrics"`
	ImprovementActions        []ImprovementAction  `json:"improvementActions"`
	LastCalculated            time.Time            `json:"lastCalculated"`
	DataPoints                int                  `json:"dataPoints"`
}
