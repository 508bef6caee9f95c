package types

import (
	"encoding/json"
	"time"
)

type DocumentType string

const (
	DocumentTypeInvoice       DocumentType = "invoice"
	DocumentTypeReceipt       DocumentType = "receipt"
	DocumentTypeBankStatement DocumentType = "bank_statement"
	DocumentTypeProfitLoss    DocumentType = "profit_loss"
	DocumentTypeBalanceSheet  DocumentType = "balance_sheet"
	DocumentTypeTaxDocument   DocumentType = "tax_document"
	DocumentTypeManualEntry   DocumentType = "manual_entry"
	DocumentTypeOther         DocumentType = "other"
)

// IsValid checks if the document type is one of the supported types.
func (dt DocumentType) IsValid() bool {
	switch dt {
	case DocumentTypeInvoice, DocumentTypeReceipt, DocumentTypeBankStatement,
		DocumentTypeProfitLoss, DocumentTypeBalanceSheet, DocumentTypeTaxDocument,
		DocumentTypeManualEntry, DocumentTypeOther:
		return true
	default:
		return false
	}
}

type DocumentStatus string

const (
	DocumentStatusPending    DocumentStatus = "pending"    // Uploaded, extraction not yet requested
	DocumentStatusProcessing DocumentStatus = "processing" // Extraction in flight
	DocumentStatusProcessed  DocumentStatus = "processed"  // Extraction complete, data available
	DocumentStatusError      DocumentStatus = "error"      // Extraction failed
)

// Document is a financial document uploaded by a business. Only documents
// with StatusProcessed and non-nil ExtractedData contribute to scoring.
type Document struct {
	ID            string          `json:"id"`
	BusinessID    string          `json:"businessId"`
	DocumentType  DocumentType    `json:"document_type"`
	Status        DocumentStatus  `json:"status"`
	ExtractedData json.RawMessage `json:"extracted_data,omitempty"`
	FileName      string          `json:"file_name"`
	FilePath      string          `json:"-"` // never expose internal storage path
	FileSize      int64           `json:"file_size"`
	MimeType      string          `json:"mimeType"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// IsScorable reports whether the document carries usable extracted data.
func (d *Document) IsScorable() bool {
	return d.Status == DocumentStatusProcessed && len(d.ExtractedData) > 0
}

// Request types

type DocumentCreate struct {
	DocumentType DocumentType `json:"documentType" binding:"required"`
	FileName     string       `json:"fileName" binding:"required,max=255"`
}

type DocumentUpdate struct {
	DocumentType *DocumentType `json:"documentType,omitempty"`
	FileName     *string       `json:"fileName,omitempty" binding:"omitempty,max=255"`
	// Status transitions are driven internally (extraction hand-off), never
	// bound from client JSON.
	Status *DocumentStatus `json:"-"`
}

// Response with a time-limited download URL for the stored file.
type DocumentResponse struct {
	Document
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// ExtractionResult is the payload the external extraction service posts back
// once a document has been processed.
type ExtractionResult struct {
	DocumentID    string          `json:"documentId" binding:"required"`
	Status        DocumentStatus  `json:"status" binding:"required,oneof=processed error"`
	ExtractedData json.RawMessage `json:"extractedData,omitempty"`
	Confidence    float64         `json:"confidence"`
	ErrorMessage  string          `json:"errorMessage,omitempty"`
}
