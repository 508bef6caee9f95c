package credibility

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

func evidenceScore(score int) types.EvidenceQuality {
	return types.EvidenceQuality{Score: score}
}

func reconScore(score int) types.ReconciliationResult {
	return types.ReconciliationResult{ReconciliationScore: score, Passed: score == 100}
}

func TestResolveTrustTierCascade(t *testing.T) {
	bankDoc := bankStatementDoc(t, "stmt-1", 100_000, 50_000, testNow)
	invDoc := invoiceDoc(t, "inv-1", 100_000, "2026-01-05", testNow)
	manualDoc := types.Document{
		ID: "man-1", DocumentType: types.DocumentTypeManualEntry,
		Status: types.DocumentStatusProcessed, FileName: "manual", CreatedAt: testNow,
	}

	tests := []struct {
		name     string
		docs     []types.Document
		proofs   []types.VerificationProof
		evidence types.EvidenceQuality
		recon    types.ReconciliationResult
		want     types.TrustTier
	}{
		{
			name:   "anchored proof wins over everything",
			proofs: []types.VerificationProof{activeAnchoredProof(testNow.AddDate(1, 0, 0))},
			want:   types.TierVerified,
		},
		{
			name:     "bank statement with strong evidence and reconciliation",
			docs:     []types.Document{bankDoc, invDoc},
			evidence: evidenceScore(65),
			recon:    reconScore(75),
			want:     types.TierBankSupported,
		},
		{
			name:     "bank statement with weak reconciliation stays document-backed",
			docs:     []types.Document{bankDoc, invDoc},
			evidence: evidenceScore(65),
			recon:    reconScore(50),
			want:     types.TierDocumentBacked,
		},
		{
			name:     "evidence below bank gate stays document-backed",
			docs:     []types.Document{bankDoc, invDoc},
			evidence: evidenceScore(55),
			recon:    reconScore(100),
			want:     types.TierDocumentBacked,
		},
		{
			name:     "processed document with modest evidence",
			docs:     []types.Document{invDoc},
			evidence: evidenceScore(45),
			recon:    reconScore(100),
			want:     types.TierDocumentBacked,
		},
		{
			name:     "manual entries alone stay self-declared",
			docs:     []types.Document{manualDoc},
			evidence: evidenceScore(90),
			recon:    reconScore(100),
			want:     types.TierSelfDeclared,
		},
		{
			name:     "revoked proof does not verify",
			proofs:   []types.VerificationProof{func() types.VerificationProof { p := activeAnchoredProof(testNow.AddDate(1, 0, 0)); p.Status = types.ProofStatusRevoked; return p }()},
			evidence: evidenceScore(0),
			want:     types.TierSelfDeclared,
		},
		{
			name:     "expired proof does not verify",
			proofs:   []types.VerificationProof{activeAnchoredProof(testNow.AddDate(0, 0, -1))},
			evidence: evidenceScore(0),
			want:     types.TierSelfDeclared,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			info := ResolveTrustTier(tc.docs, tc.proofs, tc.evidence, tc.recon, nil, testNow)
			assert.Equal(t, tc.want, info.Tier)
			assert.Equal(t, tc.want.Label(), info.Label)
		})
	}
}

func TestResolveTrustTierVerifiedChecklist(t *testing.T) {
	proofs := []types.VerificationProof{activeAnchoredProof(testNow.AddDate(1, 0, 0))}

	// Even with anomalies dragging antifraud below 80, tier 3 shows a fully
	// completed checklist.
	alerts := []types.AnomalyAlert{
		{Severity: types.SeverityCritical, ConfidenceReduction: 25},
		{Severity: types.SeverityCritical, ConfidenceReduction: 25},
	}
	info := ResolveTrustTier(nil, proofs, evidenceScore(0), reconScore(0), alerts, testNow)

	assert.Equal(t, types.TierVerified, info.Tier)
	assert.Equal(t, 100, info.TierProgress)
	for _, r := range info.DetailedRequirements {
		assert.True(t, r.Completed, r.Key)
	}
	assert.Equal(t, types.StrengthVerified, info.VerificationStrength)
}

func TestResolveTrustTierProgress(t *testing.T) {
	// Tier 0 with one distinct month and evidence 20: the checklist shows
	// partial progress toward tier 1.
	docs := []types.Document{invoiceDoc(t, "inv-1", 10_000, "2026-01-05", testNow)}
	info := ResolveTrustTier(docs, nil, evidenceScore(20), reconScore(100), nil, testNow)

	require.Equal(t, types.TierSelfDeclared, info.Tier)
	require.Len(t, info.DetailedRequirements, 3)

	byKey := make(map[string]types.TierRequirement)
	for _, r := range info.DetailedRequirements {
		byKey[r.Key] = r
	}
	assert.True(t, byKey["processed_document"].Completed)
	assert.Equal(t, 100, byKey["processed_document"].Progress)
	assert.False(t, byKey["evidence_quality_40"].Completed)
	assert.Equal(t, 50, byKey["evidence_quality_40"].Progress)
	assert.False(t, byKey["three_months_data"].Completed)
	assert.Equal(t, 33, byKey["three_months_data"].Progress)

	// 40*1.00 + 30*0.50 + 30*0.33 ≈ 65.
	assert.Equal(t, 65, info.TierProgress)
}

func TestAntifraudScore(t *testing.T) {
	tests := []struct {
		name   string
		alerts []types.AnomalyAlert
		want   int
	}{
		{name: "clean", alerts: nil, want: 100},
		{
			name: "mixed severities",
			alerts: []types.AnomalyAlert{
				{Severity: types.SeverityCritical},
				{Severity: types.SeverityHigh},
				{Severity: types.SeverityMedium},
				{Severity: types.SeverityLow},
			},
			want: 50, // 100 - 30 - 15 - 5, low is free
		},
		{
			name: "floors at zero",
			alerts: []types.AnomalyAlert{
				{Severity: types.SeverityCritical},
				{Severity: types.SeverityCritical},
				{Severity: types.SeverityCritical},
				{Severity: types.SeverityCritical},
			},
			want: 0,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, antifraudScore(tc.alerts))
		})
	}
}

func TestVerificationStrength(t *testing.T) {
	tests := []struct {
		name      string
		tier      types.TrustTier
		antifraud int
		want      types.VerificationStrength
	}{
		{"verified regardless of antifraud", types.TierVerified, 10, types.StrengthVerified},
		{"bank supported with clean record", types.TierBankSupported, 85, types.StrengthStrong},
		{"bank supported with findings", types.TierBankSupported, 70, types.StrengthModerate},
		{"document backed with findings", types.TierDocumentBacked, 65, types.StrengthModerate},
		{"document backed with bad record", types.TierDocumentBacked, 40, types.StrengthWeak},
		{"self declared is weak", types.TierSelfDeclared, 100, types.StrengthWeak},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, verificationStrength(tc.tier, tc.antifraud))
		})
	}
}
