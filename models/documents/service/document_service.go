package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/VyaparSathi/vyapar-sathi-backend/errors"
	"github.com/VyaparSathi/vyapar-sathi-backend/internal/store"
	"github.com/VyaparSathi/vyapar-sathi-backend/logger"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
	"github.com/gabriel-vasile/mimetype"
)

// Allowed MIME types for financial document uploads.
var allowedMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"text/csv":        true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
}

// ExtractionSubmitter hands an uploaded document to the hosted extraction
// service. Extraction results come back asynchronously on the callback
// endpoint.
type ExtractionSubmitter interface {
	SubmitDocument(ctx context.Context, doc *types.Document, downloadURL string) error
}

// ScoreInvalidator drops a business's cached credibility snapshot. Every
// document mutation routes through it so stale scores never survive a
// corpus change.
type ScoreInvalidator interface {
	Invalidate(ctx context.Context, businessID string)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += int64(n)
	return n, err
}

// DocumentService handles the financial document lifecycle: upload to
// object storage, extraction hand-off, callback ingestion, and deletion.
type DocumentService struct {
	docStore      store.DocumentStore
	businessStore store.BusinessStore
	fileStorage   FileStorage
	extraction    ExtractionSubmitter
	events        types.EventPublisher
	invalidator   ScoreInvalidator
	maxUploadSize int64
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	docStore store.DocumentStore,
	businessStore store.BusinessStore,
	fileStorage FileStorage,
	extraction ExtractionSubmitter,
	events types.EventPublisher,
	invalidator ScoreInvalidator,
	maxUploadSize int64,
) *DocumentService {
	return &DocumentService{
		docStore:      docStore,
		businessStore: businessStore,
		fileStorage:   fileStorage,
		extraction:    extraction,
		events:        events,
		invalidator:   invalidator,
		maxUploadSize: maxUploadSize,
	}
}

// authorizeBusiness verifies the user owns the business.
func (s *DocumentService) authorizeBusiness(ctx context.Context, businessID, userID string) (*types.Business, error) {
	business, err := s.businessStore.GetBusiness(ctx, businessID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.BusinessNotFound(businessID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	if business.OwnerID != userID {
		return nil, apperrors.BusinessAccessDenied(userID, businessID)
	}
	return business, nil
}

// UploadDocument stores the file, creates the database record, and submits
// the document for extraction. The document starts out pending and moves to
// processing once the extraction service accepts it.
func (s *DocumentService) UploadDocument(ctx context.Context, userID, businessID string, file io.Reader, fileSize int64, create *types.DocumentCreate) (*types.DocumentResponse, error) {
	log := logger.GetLogger()

	if _, err := s.authorizeBusiness(ctx, businessID, userID); err != nil {
		return nil, err
	}
	if !create.DocumentType.IsValid() {
		return nil, apperrors.ValidationFailed("invalid_document_type", fmt.Sprintf("unsupported document type %q", create.DocumentType))
	}

	// Server-side MIME detection: sniff the first 512 bytes to verify
	// content type, ignoring whatever the client claimed.
	sniffBuf := make([]byte, 512)
	n, err := io.ReadFull(file, sniffBuf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("failed to read file header: %w", err)
	}
	detectedMIME := mimetype.Detect(sniffBuf[:n]).String()
	if base, _, found := strings.Cut(detectedMIME, ";"); found {
		detectedMIME = base
	}
	if !allowedMimeTypes[detectedMIME] {
		return nil, apperrors.ValidationFailed("invalid_mime_type", fmt.Sprintf("MIME type %s is not allowed. Allowed: pdf, jpeg, png, csv, xlsx", detectedMIME))
	}

	file = io.MultiReader(bytes.NewReader(sniffBuf[:n]), file)
	cr := &countingReader{r: file}

	// Storage key format: <businessID>/<timestamp>_<filename>
	storagePath := fmt.Sprintf("%s/%d_%s", businessID, time.Now().UnixNano(), sanitizeFilename(create.FileName))

	if err := s.fileStorage.Save(ctx, storagePath, cr, fileSize); err != nil {
		_ = s.fileStorage.Delete(ctx, storagePath)
		return nil, apperrors.StorageFailed(err, "failed to save document file")
	}

	// cr.n is authoritative; the client-reported size is ignored.
	if cr.n > s.maxUploadSize {
		_ = s.fileStorage.Delete(ctx, storagePath)
		return nil, apperrors.ValidationFailed("file_too_large", fmt.Sprintf("file size %d exceeds maximum of %d bytes", cr.n, s.maxUploadSize))
	}

	doc := &types.Document{
		BusinessID:   businessID,
		DocumentType: create.DocumentType,
		Status:       types.DocumentStatusPending,
		FileName:     sanitizeFilename(create.FileName),
		FilePath:     storagePath,
		FileSize:     cr.n,
		MimeType:     detectedMIME,
	}

	id, err := s.docStore.CreateDocument(ctx, doc)
	if err != nil {
		_ = s.fileStorage.Delete(ctx, storagePath)
		return nil, apperrors.NewDatabaseError(err)
	}
	doc.ID = id
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt

	downloadURL, err := s.fileStorage.GetURL(ctx, storagePath)
	if err != nil {
		log.Warnw("Failed to presign download URL after upload",
			"error", err, "documentID", id)
	}

	// Manual entries carry their data inline and never go through
	// extraction.
	if s.extraction != nil && create.DocumentType != types.DocumentTypeManualEntry {
		if err := s.extraction.SubmitDocument(ctx, doc, downloadURL); err != nil {
			log.Errorw("Extraction submission failed, document stays pending",
				"error", err, "documentID", id)
		} else {
			status := types.DocumentStatusProcessing
			if err := s.docStore.UpdateDocument(ctx, id, &types.DocumentUpdate{Status: &status}); err != nil {
				log.Warnw("Failed to mark document processing", "error", err, "documentID", id)
			} else {
				doc.Status = status
			}
		}
	}

	s.publishDocumentEvent(ctx, types.EventTypeDocumentUploaded, doc, userID)
	s.invalidator.Invalidate(ctx, businessID)

	return &types.DocumentResponse{Document: *doc, DownloadURL: downloadURL}, nil
}

// GetDocument retrieves a document with a presigned download URL.
func (s *DocumentService) GetDocument(ctx context.Context, id, userID string) (*types.DocumentResponse, error) {
	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.DocumentNotFound(id)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	if _, err := s.authorizeBusiness(ctx, doc.BusinessID, userID); err != nil {
		return nil, err
	}

	downloadURL, err := s.fileStorage.GetURL(ctx, doc.FilePath)
	if err != nil {
		logger.GetLogger().Warnw("Failed to presign download URL",
			"error", err, "documentID", id)
	}
	return &types.DocumentResponse{Document: *doc, DownloadURL: downloadURL}, nil
}

// ListDocuments returns all live documents for a business, newest first.
func (s *DocumentService) ListDocuments(ctx context.Context, businessID, userID string) ([]types.Document, error) {
	if _, err := s.authorizeBusiness(ctx, businessID, userID); err != nil {
		return nil, err
	}
	docs, err := s.docStore.ListDocuments(ctx, businessID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return docs, nil
}

// UpdateDocument updates a document's mutable metadata.
func (s *DocumentService) UpdateDocument(ctx context.Context, id, userID string, update *types.DocumentUpdate) (*types.Document, error) {
	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.DocumentNotFound(id)
		}
		return nil, apperrors.NewDatabaseError(err)
	}
	if _, err := s.authorizeBusiness(ctx, doc.BusinessID, userID); err != nil {
		return nil, err
	}

	if update.DocumentType != nil && !update.DocumentType.IsValid() {
		return nil, apperrors.ValidationFailed("invalid_document_type", fmt.Sprintf("unsupported document type %q", *update.DocumentType))
	}

	if err := s.docStore.UpdateDocument(ctx, id, update); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	updated, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	// A reclassified document changes scoring inputs.
	s.invalidator.Invalidate(ctx, doc.BusinessID)
	return updated, nil
}

// DeleteDocument soft-deletes the record and removes the stored file.
func (s *DocumentService) DeleteDocument(ctx context.Context, id, userID string) error {
	doc, err := s.docStore.GetDocument(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.DocumentNotFound(id)
		}
		return apperrors.NewDatabaseError(err)
	}
	if _, err := s.authorizeBusiness(ctx, doc.BusinessID, userID); err != nil {
		return err
	}

	if err := s.docStore.DeleteDocument(ctx, id); err != nil {
		return apperrors.NewDatabaseError(err)
	}

	// Best effort; the record is already gone.
	_ = s.fileStorage.Delete(ctx, doc.FilePath)

	s.publishDocumentEvent(ctx, types.EventTypeDocumentDeleted, doc, userID)
	s.invalidator.Invalidate(ctx, doc.BusinessID)
	return nil
}

// HandleExtractionResult ingests the callback from the extraction service
// and flips the document to processed or error.
func (s *DocumentService) HandleExtractionResult(ctx context.Context, result *types.ExtractionResult) error {
	log := logger.GetLogger()

	doc, err := s.docStore.GetDocument(ctx, result.DocumentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.DocumentNotFound(result.DocumentID)
		}
		return apperrors.NewDatabaseError(err)
	}

	if err := s.docStore.SetExtractionResult(ctx, result.DocumentID, result); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.DocumentNotFound(result.DocumentID)
		}
		return apperrors.NewDatabaseError(err)
	}

	doc.Status = result.Status
	doc.ExtractedData = result.ExtractedData

	eventType := types.EventTypeDocumentProcessed
	if result.Status == types.DocumentStatusError {
		eventType = types.EventTypeDocumentFailed
		log.Warnw("Document extraction failed",
			"documentID", result.DocumentID,
			"error", result.ErrorMessage)
	}
	s.publishDocumentEvent(ctx, eventType, doc, "")
	s.invalidator.Invalidate(ctx, doc.BusinessID)
	return nil
}

func (s *DocumentService) publishDocumentEvent(ctx context.Context, eventType types.EventType, doc *types.Document, userID string) {
	if s.events == nil {
		return
	}
	payload, err := json.Marshal(map[string]interface{}{
		"documentId":   doc.ID,
		"documentType": doc.DocumentType,
		"status":       doc.Status,
		"fileName":     doc.FileName,
	})
	if err != nil {
		logger.GetLogger().Errorw("Failed to marshal document event payload", "error", err)
		return
	}
	event := types.Event{
		BaseEvent: types.BaseEvent{
			Type:       eventType,
			BusinessID: doc.BusinessID,
			UserID:     userID,
			Timestamp:  time.Now().UTC(),
		},
		Metadata: types.EventMetadata{Source: "document_service"},
		Payload:  payload,
	}
	if err := s.events.Publish(ctx, doc.BusinessID, event); err != nil {
		logger.GetLogger().Errorw("Failed to publish document event",
			"error", err,
			"eventType", eventType,
			"documentID", doc.ID)
	}
}

var safeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9._\-]`)

// sanitizeFilename removes path separators and dangerous characters from a
// filename, preserving the extension when truncating long names.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = safeFilenameRe.ReplaceAllString(name, "_")
	if name == "" || name == "." || name == ".." {
		name = "upload"
	}
	if len(name) > 255 {
		ext := filepath.Ext(name)
		stem := strings.TrimSuffix(name, ext)
		maxStem := 255 - len(ext)
		if maxStem < 1 {
			maxStem = 1
		}
		if len(stem) > maxStem {
			stem = stem[:maxStem]
		}
		name = stem + ext
	}
	return name
}
