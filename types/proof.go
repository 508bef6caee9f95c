package types

import "time"

// ProofStatus is the lifecycle state of a verification proof. Expiry is
// derived from ExpiresAt rather than stored.
type ProofStatus string

const (
	ProofStatusActive  ProofStatus = "active"
	ProofStatusRevoked ProofStatus = "revoked"
	ProofStatusExpired ProofStatus = "expired"
)

// VerificationProof is a blockchain-anchored attestation of a business's
// credibility snapshot. The scoring engine reads these but never mutates
// them; issuance and revocation live elsewhere.
type VerificationProof struct {
	ID           string      `json:"id"`
	BusinessID   string      `json:"businessId"`
	ProofHash    string      `json:"proof_hash"`
	TxHash       *string     `json:"tx_hash,omitempty"`
	Status       ProofStatus `json:"status"`
	IncludedData []string    `json:"included_data"`
	ExpiresAt    time.Time   `json:"expires_at"`
	CreatedAt    time.Time   `json:"createdAt"`
}

// EffectiveStatus resolves the stored status against the expiry date.
func (p *VerificationProof) EffectiveStatus(now time.Time) ProofStatus {
	if p.Status == ProofStatusActive && !p.ExpiresAt.IsZero() && now.After(p.ExpiresAt) {
		return ProofStatusExpired
	}
	return p.Status
}

// IsAnchored reports whether the proof is active (at now) and committed to
// chain. Tier 3 requires at least one anchored proof.
func (p *VerificationProof) IsAnchored(now time.Time) bool {
	return p.EffectiveStatus(now) == ProofStatusActive && p.TxHash != nil && *p.TxHash != ""
}
