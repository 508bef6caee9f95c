package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/VyaparSathi/vyapar-sathi-backend/config"
	"github.com/VyaparSathi/vyapar-sathi-backend/logger"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
	"go.uber.org/zap"
)

// ExtractionService submits uploaded documents to the hosted AI extraction
// API. Results come back asynchronously on the extraction callback endpoint;
// this client only handles the outbound hand-off.
type ExtractionService struct {
	cfg    config.ExtractionConfig
	client *http.Client
	log    *zap.SugaredLogger
}

func NewExtractionService(cfg config.ExtractionConfig) *ExtractionService {
	return &ExtractionService{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		log: logger.GetLogger(),
	}
}

// extractionRequest is the wire format the extraction API accepts.
type extractionRequest struct {
	DocumentID   string `json:"documentId"`
	BusinessID   string `json:"businessId"`
	DocumentType string `json:"documentType"`
	FileName     string `json:"fileName"`
	MimeType     string `json:"mimeType"`
	DownloadURL  string `json:"downloadUrl"`
	CallbackURL  string `json:"callbackUrl"`
}

// SubmitDocument posts the document to the extraction API. The download URL
// is a presigned object-storage link the extractor fetches the file from.
func (s *ExtractionService) SubmitDocument(ctx context.Context, doc *types.Document, downloadURL string) error {
	if s.cfg.APIUrl == "" {
		s.log.Debugw("Extraction API not configured, skipping submission",
			"documentID", doc.ID)
		return nil
	}
	if downloadURL == "" {
		return fmt.Errorf("cannot submit document %s without a download URL", doc.ID)
	}

	reqBody := extractionRequest{
		DocumentID:   doc.ID,
		BusinessID:   doc.BusinessID,
		DocumentType: string(doc.DocumentType),
		FileName:     doc.FileName,
		MimeType:     doc.MimeType,
		DownloadURL:  downloadURL,
		CallbackURL:  s.cfg.CallbackURL,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal extraction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIUrl, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("extraction request failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("extraction API returned status %d for document %s", resp.StatusCode, doc.ID)
	}

	s.log.Infow("Document submitted for extraction",
		"documentID", doc.ID,
		"documentType", doc.DocumentType,
	)
	return nil
}
