package credibility

import (
	"strings"

	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

// Evidence flag codes.
const (
	FlagNoDocuments     = "NO_DOCUMENTS"
	FlagHighManualRatio = "HIGH_MANUAL_RATIO"
	FlagDuplicateFiles  = "DUPLICATE_FILES"
	FlagLimitedHistory  = "LIMITED_HISTORY"
)

// ScoreEvidenceQuality rates how well-substantiated the financial data is:
// document-backed vs manual, filename collisions, history continuity and
// extraction completeness.
func ScoreEvidenceQuality(docs []types.Document) types.EvidenceQuality {
	if len(docs) == 0 {
		return types.EvidenceQuality{
			Score: 0,
			Flags: []types.ScoreFlag{{
				Code:           FlagNoDocuments,
				Severity:       types.FlagCritical,
				Message:        "No documents uploaded",
				Recommendation: "Upload invoices, receipts or bank statements to substantiate your business data",
			}},
		}
	}

	var flags []types.ScoreFlag
	total := float64(len(docs))

	// Document-backed ratio: bank statements weigh most, manual entries least.
	var weightedSum float64
	manualCount := 0
	processedCount := 0
	for i := range docs {
		doc := &docs[i]
		if doc.Status == types.DocumentStatusProcessed {
			processedCount++
		}
		switch doc.DocumentType {
		case types.DocumentTypeBankStatement:
			weightedSum += DocWeightBankStatement
		case types.DocumentTypeInvoice:
			weightedSum += DocWeightInvoice
		case types.DocumentTypeReceipt:
			weightedSum += DocWeightReceipt
		case types.DocumentTypeManualEntry:
			weightedSum += DocWeightManualEntry
			manualCount++
		default:
			weightedSum += DocWeightDefault
		}
	}
	backedRatio := weightedSum / (total * DocWeightMax) * 100
	if backedRatio > 100 {
		backedRatio = 100
	}
	if float64(manualCount)/total > ManualRatioThreshold {
		flags = append(flags, types.ScoreFlag{
			Code:           FlagHighManualRatio,
			Severity:       types.FlagWarning,
			Message:        "More than half of the records are manual entries",
			Recommendation: "Replace manual entries with uploaded source documents",
		})
	}

	// Consistency: penalize filename collisions beyond the tolerated share.
	consistency := float64(ConsistencyBase)
	seen := make(map[string]bool, len(docs))
	duplicates := 0
	for i := range docs {
		name := strings.ToLower(docs[i].FileName)
		if seen[name] {
			duplicates++
		}
		seen[name] = true
	}
	if float64(duplicates)/total > DuplicateFileRatio {
		consistency -= DuplicateFilePenalty
		flags = append(flags, types.ScoreFlag{
			Code:           FlagDuplicateFiles,
			Severity:       types.FlagWarning,
			Message:        "A significant share of uploaded files have identical names",
			Recommendation: "Remove duplicate uploads so each document is counted once",
		})
	}

	// Continuity: distinct months with documents against the target history.
	months := DistinctDocumentMonths(docs)
	continuity := float64(months) / ContinuityTargetMonths * 100
	if continuity > 100 {
		continuity = 100
	}
	if months < LimitedHistoryMonths {
		flags = append(flags, types.ScoreFlag{
			Code:           FlagLimitedHistory,
			Severity:       types.FlagInfo,
			Message:        "Documents cover fewer than three distinct months",
			Recommendation: "Keep uploading monthly records to build a track record",
		})
	}

	// Metadata: extraction processing completeness.
	metadata := float64(processedCount) / total * 100

	score := clampScore(backedRatio*EvidenceWeightDocumentBacked +
		consistency*EvidenceWeightConsistency +
		continuity*EvidenceWeightContinuity +
		metadata*EvidenceWeightMetadata)

	return types.EvidenceQuality{
		Score:               score,
		DocumentBackedRatio: clampScore(backedRatio),
		ConsistencyScore:    clampScore(consistency),
		ContinuityScore:     clampScore(continuity),
		MetadataScore:       clampScore(metadata),
		Flags:               flags,
	}
}

// DistinctDocumentMonths counts the distinct calendar months the corpus
// covers, preferring each document's extracted date over its upload date.
func DistinctDocumentMonths(docs []types.Document) int {
	months := make(map[string]bool)
	for i := range docs {
		doc := &docs[i]
		date := doc.CreatedAt
		if doc.IsScorable() {
			ext := types.DecodeExtraction(doc.ExtractedData, doc.DocumentType)
			date = ext.PrimaryDate(doc.CreatedAt)
		}
		if date.IsZero() {
			continue
		}
		months[monthKey(date)] = true
	}
	return len(months)
}
