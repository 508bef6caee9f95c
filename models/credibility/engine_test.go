package credibility

import (
	"encoding/json"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func rawJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func invoiceDoc(t *testing.T, id string, amount float64, date string, created time.Time) types.Document {
	t.Helper()
	return types.Document{
		ID:           id,
		BusinessID:   "biz-1",
		DocumentType: types.DocumentTypeInvoice,
		Status:       types.DocumentStatusProcessed,
		FileName:     fmt.Sprintf("invoice-%s.pdf", id),
		FileSize:     int64(10_000 + len(id)*1_000),
		CreatedAt:    created,
		ExtractedData: rawJSON(t, map[string]interface{}{
			"type":         "invoice",
			"total_amount": amount,
			"invoice_date": date,
		}),
	}
}

func receiptDoc(t *testing.T, id string, amount float64, date string, created time.Time) types.Document {
	t.Helper()
	return types.Document{
		ID:           id,
		BusinessID:   "biz-1",
		DocumentType: types.DocumentTypeReceipt,
		Status:       types.DocumentStatusProcessed,
		FileName:     fmt.Sprintf("receipt-%s.jpg", id),
		FileSize:     int64(20_000 + len(id)*1_000),
		CreatedAt:    created,
		ExtractedData: rawJSON(t, map[string]interface{}{
			"type":         "receipt",
			"total_amount": amount,
			"receipt_date": date,
		}),
	}
}

func bankStatementDoc(t *testing.T, id string, credits, debits float64, created time.Time) types.Document {
	t.Helper()
	return types.Document{
		ID:           id,
		BusinessID:   "biz-1",
		DocumentType: types.DocumentTypeBankStatement,
		Status:       types.DocumentStatusProcessed,
		FileName:     fmt.Sprintf("statement-%s.pdf", id),
		FileSize:     int64(50_000 + len(id)*1_000),
		CreatedAt:    created,
		ExtractedData: rawJSON(t, map[string]interface{}{
			"type":          "bank_statement",
			"total_credits": credits,
			"total_debits":  debits,
		}),
	}
}

func activeAnchoredProof(expires time.Time) types.VerificationProof {
	tx := "0xabc123"
	return types.VerificationProof{
		ID:        "proof-1",
		ProofHash: "hash-1",
		TxHash:    &tx,
		Status:    types.ProofStatusActive,
		ExpiresAt: expires,
	}
}

func TestScoreZeroDocuments(t *testing.T) {
	result := Score(nil, nil, testNow)

	assert.Equal(t, 0, result.TotalScore)
	assert.Equal(t, types.TierSelfDeclared, result.TrustTier.Tier)
	assert.Equal(t, 0, result.EvidenceQuality.Score)
	assert.Empty(t, result.Anomalies)
	assert.Equal(t, 0, result.DataPoints)
	require.Len(t, result.EvidenceQuality.Flags, 1)
	assert.Equal(t, FlagNoDocuments, result.EvidenceQuality.Flags[0].Code)
}

func TestScoreIdenticalDocumentTemplates(t *testing.T) {
	// 11 identical invoices: round amounts, repeated totals and an
	// implausible margin must all be flagged at once.
	docs := make([]types.Document, 0, 11)
	for i := 0; i < 11; i++ {
		doc := invoiceDoc(t, fmt.Sprintf("inv-%02d", i), 50_000, "2026-02-10", testNow.AddDate(0, 0, -30+i))
		doc.FileSize = int64(100_000 + i*5_000)
		docs = append(docs, doc)
	}

	result := Score(docs, nil, testNow)

	seen := make(map[types.AnomalyType]bool)
	for _, a := range result.Anomalies {
		seen[a.Type] = true
	}
	assert.True(t, seen[types.AnomalyRoundNumbers], "expected ROUND_NUMBERS")
	assert.True(t, seen[types.AnomalyRepeatedAmounts], "expected REPEATED_AMOUNTS")
	assert.True(t, seen[types.AnomalyPattern], "expected PATTERN_ANOMALY for the margin")
	assert.Greater(t, result.FinancialMetrics.TotalRevenue, float64(UnrealisticMarginRevenue))
}

func TestScoreFutureDatedDocument(t *testing.T) {
	future := testNow.AddDate(0, 0, 30).Format("2006-01-02")
	docs := []types.Document{invoiceDoc(t, "inv-f", 12_345, future, testNow)}

	result := Score(docs, nil, testNow)

	var alert *types.AnomalyAlert
	for i := range result.Anomalies {
		if result.Anomalies[i].Type == types.AnomalyDateInconsistency {
			alert = &result.Anomalies[i]
		}
	}
	require.NotNil(t, alert, "DATE_INCONSISTENCY must fire regardless of document count")
	assert.Equal(t, types.SeverityCritical, alert.Severity)
	assert.Equal(t, FutureDateReduction, alert.ConfidenceReduction)
}

func TestScoreIdempotent(t *testing.T) {
	docs := []types.Document{
		invoiceDoc(t, "inv-1", 120_000, "2026-01-05", testNow.AddDate(0, -2, 0)),
		receiptDoc(t, "rcp-1", 80_000, "2026-02-06", testNow.AddDate(0, -1, 0)),
		bankStatementDoc(t, "stmt-1", 120_000, 80_000, testNow.AddDate(0, 0, -5)),
	}
	proofs := []types.VerificationProof{activeAnchoredProof(testNow.AddDate(1, 0, 0))}

	first := Score(docs, proofs, testNow)
	second := Score(docs, proofs, testNow)
	assert.Equal(t, first, second)
}

func TestScoreAggregationFormula(t *testing.T) {
	docs := []types.Document{
		invoiceDoc(t, "inv-1", 200_000, "2026-01-05", testNow.AddDate(0, -2, 0)),
		invoiceDoc(t, "inv-2", 210_000, "2026-02-05", testNow.AddDate(0, -1, 0)),
		receiptDoc(t, "rcp-1", 150_000, "2026-02-06", testNow.AddDate(0, -1, 0)),
		bankStatementDoc(t, "stmt-1", 410_000, 150_000, testNow.AddDate(0, 0, -5)),
	}

	result := Score(docs, nil, testNow)

	base := float64(result.StabilityGrowth.Score+result.ComplianceReadiness.Score) / 2
	expected := base*float64(result.EvidenceQuality.Score)/100 -
		float64(TotalConfidenceReduction(result.Anomalies))
	assert.Equal(t, clampScore(expected), result.TotalScore)
}

func TestScoreBoundsInvariant(t *testing.T) {
	corpora := map[string][]types.Document{
		"malformed extraction": {
			{
				ID: "bad-1", DocumentType: types.DocumentTypeInvoice,
				Status: types.DocumentStatusProcessed, FileName: "bad.pdf",
				ExtractedData: json.RawMessage(`{"total_amount":"not a number","invoice_date":12}`),
				CreatedAt:     testNow,
			},
			{
				ID: "bad-2", DocumentType: types.DocumentTypeOther,
				Status: types.DocumentStatusProcessed, FileName: "junk.bin",
				ExtractedData: json.RawMessage(`not json at all`),
				CreatedAt:     testNow,
			},
		},
		"negative amounts": {
			invoiceDoc(t, "neg-1", -500_000, "2026-01-05", testNow),
			receiptDoc(t, "neg-2", -80_000, "2026-01-06", testNow),
		},
		"huge values": {
			invoiceDoc(t, "big-1", 9e15, "2026-01-05", testNow),
			receiptDoc(t, "big-2", 8e15, "2026-02-06", testNow),
			bankStatementDoc(t, "big-3", 9e15, 8e15, testNow),
		},
	}

	for name, docs := range corpora {
		t.Run(name, func(t *testing.T) {
			result := Score(docs, nil, testNow)
			assertWithinScoreBounds(t, result)
		})
	}
}

func assertWithinScoreBounds(t *testing.T, result types.CredibilityScore) {
	t.Helper()
	inBounds := func(name string, v int) {
		assert.GreaterOrEqual(t, v, 0, name)
		assert.LessOrEqual(t, v, 100, name)
	}
	inBounds("totalScore", result.TotalScore)
	inBounds("evidenceQuality.score", result.EvidenceQuality.Score)
	inBounds("stabilityGrowth.score", result.StabilityGrowth.Score)
	inBounds("complianceReadiness.score", result.ComplianceReadiness.Score)
	inBounds("reconciliationScore", result.CrossSourceReconciliation.ReconciliationScore)
	inBounds("tierProgress", result.TrustTier.TierProgress)
	inBounds("antifraudScore", result.TrustTier.AntifraudScore)
	assert.False(t, math.IsNaN(float64(result.TotalScore)))
}

func TestScoreEvidenceMultiplier(t *testing.T) {
	// Two corpora with identical financial content; the second reuses one
	// filename so only the evidence consistency component degrades. The
	// total must follow evidence downward, never the other way.
	dates := []string{"2026-01-10", "2026-01-20", "2026-02-10", "2026-02-20", "2026-03-05", "2026-03-10"}
	clean := make([]types.Document, 0, len(dates))
	for i, date := range dates {
		clean = append(clean, invoiceDoc(t, fmt.Sprintf("inv-%d", i), 42_500, date, testNow.AddDate(0, 0, -40+i)))
	}

	duped := make([]types.Document, len(clean))
	copy(duped, clean)
	for i := 0; i < 3; i++ {
		duped[i].FileName = "invoice-copy.pdf"
	}

	cleanScore := Score(clean, nil, testNow)
	dupedScore := Score(duped, nil, testNow)

	assert.Greater(t, cleanScore.EvidenceQuality.Score, dupedScore.EvidenceQuality.Score)
	assert.Equal(t, cleanScore.StabilityGrowth.Score, dupedScore.StabilityGrowth.Score)
	assert.Equal(t, cleanScore.ComplianceReadiness.Score, dupedScore.ComplianceReadiness.Score)
	assert.Equal(t, cleanScore.CrossSourceReconciliation, dupedScore.CrossSourceReconciliation)
	assert.GreaterOrEqual(t, cleanScore.TotalScore, dupedScore.TotalScore)
}

func TestScoreAnomalyMonotonicity(t *testing.T) {
	docs := make([]types.Document, 0, 11)
	for i := 0; i < 11; i++ {
		doc := invoiceDoc(t, fmt.Sprintf("inv-%02d", i), 50_000, "2026-02-10", testNow.AddDate(0, 0, -30+i))
		doc.FileSize = int64(100_000 + i*5_000)
		docs = append(docs, doc)
	}

	full := Score(docs, nil, testNow)
	reduced := Score(docs[:len(docs)-1], nil, testNow)

	fullTypes := make(map[types.AnomalyType]bool)
	for _, a := range full.Anomalies {
		fullTypes[a.Type] = true
	}
	for _, a := range reduced.Anomalies {
		assert.True(t, fullTypes[a.Type],
			"removing a document must not surface new anomaly type %s", a.Type)
	}
}

func TestScoreTierGating(t *testing.T) {
	t.Run("no processed documents is always tier 0", func(t *testing.T) {
		pending := invoiceDoc(t, "inv-p", 100_000, "2026-01-05", testNow)
		pending.Status = types.DocumentStatusPending
		pending.ExtractedData = nil

		result := Score([]types.Document{pending}, nil, testNow)
		assert.Equal(t, types.TierSelfDeclared, result.TrustTier.Tier)
	})

	t.Run("anchored proof is always tier 3", func(t *testing.T) {
		proofs := []types.VerificationProof{activeAnchoredProof(testNow.AddDate(1, 0, 0))}

		result := Score(nil, proofs, testNow)
		assert.Equal(t, types.TierVerified, result.TrustTier.Tier)
		assert.Equal(t, 100, result.TrustTier.TierProgress)
		assert.Equal(t, types.StrengthVerified, result.TrustTier.VerificationStrength)
	})
}

func TestScoreImprovementActionsOrdered(t *testing.T) {
	docs := []types.Document{
		invoiceDoc(t, "inv-1", 6_000_000, "2026-02-05", testNow.AddDate(0, -1, 0)),
		receiptDoc(t, "rcp-1", 100_000, "2026-02-06", testNow.AddDate(0, -1, 0)),
	}

	result := Score(docs, nil, testNow)
	require.NotEmpty(t, result.ImprovementActions)
	for i := 1; i < len(result.ImprovementActions); i++ {
		prev := result.ImprovementActions[i-1]
		curr := result.ImprovementActions[i]
		if prev.Priority == curr.Priority {
			assert.GreaterOrEqual(t, prev.PotentialGain, curr.PotentialGain)
		} else {
			assert.Less(t, priorityRank[prev.Priority], priorityRank[curr.Priority])
		}
	}
}
