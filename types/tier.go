package types

// TrustTier is the 4-state verification progression for a business.
type TrustTier int

const (
	TierSelfDeclared   TrustTier = 0 // No externally verifiable evidence
	TierDocumentBacked TrustTier = 1 // At least one processed non-manual document
	TierBankSupported  TrustTier = 2 // Bank statement evidence that reconciles
	TierVerified       TrustTier = 3 // Blockchain-anchored verification proof
)

// Label returns the user-facing tier name.
func (t TrustTier) Label() string {
	switch t {
	case TierVerified:
		return "Verified"
	case TierBankSupported:
		return "Bank-Supported"
	case TierDocumentBacked:
		return "Document-Backed"
	default:
		return "Self-Declared"
	}
}

// VerificationStrength summarises tier plus antifraud posture.
type VerificationStrength string

const (
	StrengthWeak     VerificationStrength = "weak"
	StrengthModerate VerificationStrength = "moderate"
	StrengthStrong   VerificationStrength = "strong"
	StrengthVerified VerificationStrength = "verified"
)

// TierRequirement is one checklist item towards a tier.
type TierRequirement struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Weight    int    `json:"weight"`
	Completed bool   `json:"completed"`
	// Progress is the partial completion percentage [0,100]; 100 when
	// Completed.
	Progress int `json:"progress"`
}

// TrustTierInfo is the tier classification plus its presentation-level
// requirement checklists. It is recomputed on every scoring run; the engine
// does not enforce historical monotonicity, so a tier can drop between runs
// if the underlying data changes.
type TrustTierInfo struct {
	Tier                 TrustTier            `json:"tier"`
	Label                string               `json:"label"`
	Requirements         []string             `json:"requirements"`
	NextTierRequirements []string             `json:"nextTierRequirements,omitempty"`
	DetailedRequirements []TierRequirement    `json:"detailedRequirements"`
	TierProgress         int                  `json:"tierProgress"`
	AntifraudScore       int                  `json:"antifraudScore"`
	VerificationStrength VerificationStrength `json:"verificationStrength"`
}
