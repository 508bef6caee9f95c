package credibility

// Scoring weights and thresholds. These values are product policy agreed
// with lending partners, not incidental implementation detail — tests assert
// against them directly and changes require sign-off.

// Evidence quality component weights.
const (
	EvidenceWeightDocumentBacked = 0.60
	EvidenceWeightConsistency    = 0.20
	EvidenceWeightContinuity     = 0.15
	EvidenceWeightMetadata       = 0.05
)

// Per-type evidence weights for the document-backed ratio. Bank statements
// are third-party records, invoices and receipts are self-issued but
// verifiable, manual entries are unverifiable.
const (
	DocWeightBankStatement = 3.0
	DocWeightInvoice       = 2.0
	DocWeightReceipt       = 2.0
	DocWeightManualEntry   = 0.5
	DocWeightDefault       = 1.0
	DocWeightMax           = 3.0
)

const (
	// ManualRatioThreshold flags corpora that are mostly hand-keyed.
	ManualRatioThreshold = 0.5
	// ConsistencyBase is the starting consistency score.
	ConsistencyBase = 80
	// DuplicateFileRatio is the tolerated share of colliding filenames.
	DuplicateFileRatio = 0.10
	// DuplicateFilePenalty is subtracted when the ratio is exceeded.
	DuplicateFilePenalty = 20
	// ContinuityTargetMonths is the history length that earns full marks.
	ContinuityTargetMonths = 6
	// LimitedHistoryMonths triggers the LIMITED_HISTORY flag below it.
	LimitedHistoryMonths = 3
)

// Stability & growth component weights.
const (
	StabilityWeightRevenue     = 0.25
	StabilityWeightCashflow    = 0.25
	StabilityWeightExpense     = 0.20
	StabilityWeightGrowth      = 0.20
	StabilityWeightSeasonality = 0.10
)

const (
	// RevenueVariationThreshold is the coefficient of variation above which
	// revenue is flagged unstable.
	RevenueVariationThreshold = 0.5
	// HealthyCashflowMargin earns a positive flag.
	HealthyCashflowMargin = 0.2
	// ExpenseRatioWarning flags near-total revenue consumption.
	ExpenseRatioWarning = 0.9
	// ExpenseDisciplineSlope converts expense ratio into score deduction.
	ExpenseDisciplineSlope = 80
	// GrowthFlagThreshold bounds the neutral growth band.
	GrowthFlagThreshold = 0.2
	// GrowthWindowMonths is the recent window compared against prior months.
	GrowthWindowMonths = 3
	// NeutralScore is used when a component cannot be computed.
	NeutralScore = 50
	// SeasonalityPlaceholder stands in until Nepali fiscal-calendar
	// seasonality modelling lands. See seasonalityHandling.
	SeasonalityPlaceholder = 70
)

// Compliance readiness component weights.
const (
	ComplianceWeightCompleteness = 0.40
	ComplianceWeightRisk         = 0.30
	ComplianceWeightTimeliness   = 0.20
	ComplianceWeightAdvisory     = 0.10
)

const (
	// RequiredDocsWeight / RecommendedDocsWeight split document completeness.
	RequiredDocsWeight    = 70
	RecommendedDocsWeight = 30
	// VATRegistrationThreshold is the statutory NPR turnover above which VAT
	// registration is mandatory.
	VATRegistrationThreshold = 5_000_000
	// VATRiskPenalty is subtracted when turnover exceeds the threshold with
	// zero VAT collected.
	VATRiskPenalty = 30
	// ExcessiveExpenseMultiplier flags expenses far beyond revenue.
	ExcessiveExpenseMultiplier = 1.5
	// ExcessiveExpensePenalty is subtracted for the above.
	ExcessiveExpensePenalty = 20
	// RiskPatternsBase is the starting risk-patterns score.
	RiskPatternsBase = 80
	// TimelinessMultiplier scales the recent-documents share.
	TimelinessMultiplier = 150
	// TimelinessWindowMonths is the recency window.
	TimelinessWindowMonths = 3
	// AdvisoryCompletionPlaceholder stands in until advisory-action tracking
	// is wired. See advisoryCompletion.
	AdvisoryCompletionPlaceholder = 50
)

// Anomaly detector thresholds and confidence reductions.
const (
	RevenueSpikeMultiplier = 3.0
	RevenueSpikeMinMonths  = 3
	RevenueSpikeReduction  = 15

	RoundNumberUnit      = 10_000.0
	RoundNumberRatio     = 0.5
	RoundNumberMinDocs   = 3 // strictly more than this many documents
	RoundNumberReduction = 10

	RepeatedAmountMinRepeats = 2 // strictly more than this many occurrences
	RepeatedAmountMinDocs    = 5 // strictly more than this many documents
	RepeatedAmountReduction  = 5

	FutureDateReduction = 25

	VelocityMinDocsToEvaluate = 10
	VelocityDocThreshold      = 20
	VelocityWindowHours       = 1
	VelocityReduction         = 8

	TimingMinInvoices       = 5 // strictly more than this many invoices
	TimingMonthEndDay       = 28
	TimingMonthEndRatio     = 0.7
	TimingMismatchReduction = 5

	MetadataBucketBytes   = 100
	MetadataBucketMembers = 3 // strictly more than this many per bucket
	MetadataBucketCount   = 2 // strictly more than this many dense buckets
	MetadataMinDocs       = 10
	MetadataReduction     = 5

	UnrealisticMarginRatio     = 0.3
	UnrealisticMarginRevenue   = 500_000
	UnrealisticMarginReduction = 8
	UnrealisticLossRatio       = 1.5
	UnrealisticLossRevenue     = 100_000
	UnrealisticLossReduction   = 12
)

// Cross-source reconciliation thresholds.
const (
	ReconciliationDiscrepancyThreshold = 0.3
	ReconciliationMismatchPenalty      = 25
)

// Trust tier gates.
const (
	TierBankEvidenceMin       = 60
	TierBankReconciliationMin = 70
	TierDocumentEvidenceMin   = 40
	TierDataMonthsTarget      = 3
)

// Antifraud score deductions per anomaly severity.
const (
	AntifraudCriticalPenalty = 30
	AntifraudHighPenalty     = 15
	AntifraudMediumPenalty   = 5
)

// Verification strength gates.
const (
	StrengthStrongAntifraudMin   = 80
	StrengthModerateAntifraudMin = 60
)

// Composite score and confidence thresholds.
const (
	ConfidenceHighMin   = 70
	ConfidenceMediumMin = 40
	// ConfidenceEvidenceFlagPenalty per critical/warning evidence flag.
	ConfidenceEvidenceFlagPenalty = 10
	// ConfidenceReconciliationFactor scales the reconciliation deficit.
	ConfidenceReconciliationFactor = 0.2
)

// Financial health score blend.
const (
	HealthWeightProfitMargin = 0.6
	HealthWeightCoverage     = 0.4
)

// Aggregation display caps.
const (
	MaxMonthlyPeriods     = 8
	MaxCategories         = 6
	MaxRecentTransactions = 10
)

// seasonalityHandling returns the seasonality sub-score. It is a declared
// placeholder: Nepali fiscal-year seasonality (Dashain/Tihar trading spikes,
// fiscal close in Ashadh) is not modelled yet, and callers must treat this
// as a constant until it is.
func seasonalityHandling() int {
	return SeasonalityPlaceholder
}

// advisoryCompletion returns the advisory-completion sub-score. Placeholder:
// not wired to advisory-action tracking.
func advisoryCompletion() int {
	return AdvisoryCompletionPlaceholder
}
