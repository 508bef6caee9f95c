package types

// AnomalySeverity ranks how strongly a detected pattern suggests fraud.
type AnomalySeverity string

const (
	SeverityLow      AnomalySeverity = "low"
	SeverityMedium   AnomalySeverity = "medium"
	SeverityHigh     AnomalySeverity = "high"
	SeverityCritical AnomalySeverity = "critical"
)

// AnomalyType identifies which heuristic produced an alert.
type AnomalyType string

const (
	AnomalyRevenueSpike       AnomalyType = "REVENUE_SPIKE"
	AnomalyRoundNumbers       AnomalyType = "ROUND_NUMBERS"
	AnomalyRepeatedAmounts    AnomalyType = "REPEATED_AMOUNTS"
	AnomalyDateInconsistency  AnomalyType = "DATE_INCONSISTENCY"
	AnomalyVelocity           AnomalyType = "VELOCITY_ANOMALY"
	AnomalyTimingMismatch     AnomalyType = "TIMING_MISMATCH"
	AnomalyMetadataSuspicious AnomalyType = "METADATA_SUSPICIOUS"
	AnomalyPattern            AnomalyType = "PATTERN_ANOMALY"
)

// AnomalyAlert is one fraud-pattern finding. Alerts are purely additive:
// each heuristic runs independently and no alert suppresses another.
type AnomalyAlert struct {
	Severity            AnomalySeverity `json:"severity"`
	Type                AnomalyType     `json:"type"`
	Category            string          `json:"category"`
	Description         string          `json:"description"`
	DataPoints          []string        `json:"dataPoints,omitempty"`
	ConfidenceReduction int             `json:"confidenceReduction"`
	Recommendation      string          `json:"recommendation"`
	DetectionMethod     string          `json:"detectionMethod"`
}
