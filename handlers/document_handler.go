package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/VyaparSathi/vyapar-sathi-backend/errors"
	"github.com/VyaparSathi/vyapar-sathi-backend/logger"
	docSvc "github.com/VyaparSathi/vyapar-sathi-backend/models/documents/service"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
	"github.com/gin-gonic/gin"
)

// DocumentServiceInterface defines the methods used by DocumentHandler,
// allowing the handler to be tested with mocks.
type DocumentServiceInterface interface {
	UploadDocument(ctx context.Context, userID, businessID string, file io.Reader, fileSize int64, create *types.DocumentCreate) (*types.DocumentResponse, error)
	GetDocument(ctx context.Context, id, userID string) (*types.DocumentResponse, error)
	ListDocuments(ctx context.Context, businessID, userID string) ([]types.Document, error)
	UpdateDocument(ctx context.Context, id, userID string, update *types.DocumentUpdate) (*types.Document, error)
	DeleteDocument(ctx context.Context, id, userID string) error
	HandleExtractionResult(ctx context.Context, result *types.ExtractionResult) error
}

// Ensure the concrete service satisfies the interface at compile time.
var _ DocumentServiceInterface = (*docSvc.DocumentService)(nil)

type DocumentHandler struct {
	documentService DocumentServiceInterface
	maxUploadBytes  int64
	callbackAPIKey  string
}

func NewDocumentHandler(documentService DocumentServiceInterface, maxUploadBytes int64, callbackAPIKey string) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		maxUploadBytes:  maxUploadBytes,
		callbackAPIKey:  callbackAPIKey,
	}
}

type multipartUpload struct {
	file     io.ReadCloser
	fileSize int64
	create   *types.DocumentCreate
}

// parseMultipartUpload parses a multipart form upload containing a file and
// JSON metadata. The caller MUST close the returned file when done.
func (h *DocumentHandler) parseMultipartUpload(c *gin.Context) (*multipartUpload, error) {
	// Reject oversized requests at the HTTP level; the service re-checks
	// actual bytes written to storage.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1024*1024)

	if err := c.Request.ParseMultipartForm(h.maxUploadBytes); err != nil {
		validationErr := apperrors.ValidationFailed("invalid_form", "failed to parse multipart form")
		_ = c.Error(validationErr)
		return nil, validationErr
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		validationErr := apperrors.ValidationFailed("missing_file", "file field is required")
		_ = c.Error(validationErr)
		return nil, validationErr
	}

	file, err := fileHeader.Open()
	if err != nil {
		validationErr := apperrors.ValidationFailed("invalid_file", "failed to open uploaded file")
		_ = c.Error(validationErr)
		return nil, validationErr
	}

	create := &types.DocumentCreate{}
	if metadataStr := c.PostForm("metadata"); metadataStr != "" {
		if err := json.Unmarshal([]byte(metadataStr), create); err != nil {
			file.Close()
			validationErr := apperrors.ValidationFailed("invalid_metadata", "metadata must be valid JSON")
			_ = c.Error(validationErr)
			return nil, validationErr
		}
	} else {
		// Fall back to plain form fields for simple clients.
		create.DocumentType = types.DocumentType(c.PostForm("document_type"))
	}
	if create.FileName == "" {
		create.FileName = fileHeader.Filename
	}

	return &multipartUpload{
		file:     file,
		fileSize: fileHeader.Size,
		create:   create,
	}, nil
}

// UploadDocumentHandler handles financial document uploads.
// POST /v1/businesses/:id/documents (multipart)
func (h *DocumentHandler) UploadDocumentHandler(c *gin.Context) {
	businessID := requireBusinessID(c)
	if businessID == "" {
		return
	}

	userID := getUserIDFromContext(c)
	if userID == "" {
		_ = c.Error(apperrors.Unauthorized("not_authenticated", "user not authenticated"))
		return
	}

	upload, err := h.parseMultipartUpload(c)
	if err != nil {
		return // error already set on context
	}
	defer upload.file.Close()

	resp, err := h.documentService.UploadDocument(c.Request.Context(), userID, businessID, upload.file, upload.fileSize, upload.create)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dataResponse(resp))
}

// ListDocumentsHandler lists all active documents for a business.
// GET /v1/businesses/:id/documents
func (h *DocumentHandler) ListDocumentsHandler(c *gin.Context) {
	businessID := requireBusinessID(c)
	if businessID == "" {
		return
	}

	userID := getUserIDFromContext(c)
	if userID == "" {
		_ = c.Error(apperrors.Unauthorized("not_authenticated", "user not authenticated"))
		return
	}

	docs, err := h.documentService.ListDocuments(c.Request.Context(), businessID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dataResponse(docs))
}

// GetDocumentHandler returns a document with a presigned download URL.
// GET /v1/documents/:docID
func (h *DocumentHandler) GetDocumentHandler(c *gin.Context) {
	docID := c.Param("docID")
	if docID == "" || !isValidUUID(docID) {
		_ = c.Error(apperrors.ValidationFailed("invalid_document_id", "valid document ID is required"))
		return
	}

	userID := getUserIDFromContext(c)
	if userID == "" {
		_ = c.Error(apperrors.Unauthorized("not_authenticated", "user not authenticated"))
		return
	}

	doc, err := h.documentService.GetDocument(c.Request.Context(), docID, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dataResponse(doc))
}

// UpdateDocumentHandler updates document metadata (type, display name).
// PATCH /v1/documents/:docID
func (h *DocumentHandler) UpdateDocumentHandler(c *gin.Context) {
	docID := c.Param("docID")
	if docID == "" || !isValidUUID(docID) {
		_ = c.Error(apperrors.ValidationFailed("invalid_document_id", "valid document ID is required"))
		return
	}

	userID := getUserIDFromContext(c)
	if userID == "" {
		_ = c.Error(apperrors.Unauthorized("not_authenticated", "user not authenticated"))
		return
	}

	var update types.DocumentUpdate
	if !bindJSONOrError(c, &update) {
		return
	}

	doc, err := h.documentService.UpdateDocument(c.Request.Context(), docID, userID, &update)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dataResponse(doc))
}

// DeleteDocumentHandler soft-deletes a document and removes the stored file.
// DELETE /v1/documents/:docID
func (h *DocumentHandler) DeleteDocumentHandler(c *gin.Context) {
	docID := c.Param("docID")
	if docID == "" || !isValidUUID(docID) {
		_ = c.Error(apperrors.ValidationFailed("invalid_document_id", "valid document ID is required"))
		return
	}

	userID := getUserIDFromContext(c)
	if userID == "" {
		_ = c.Error(apperrors.Unauthorized("not_authenticated", "user not authenticated"))
		return
	}

	if err := h.documentService.DeleteDocument(c.Request.Context(), docID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dataResponse(gin.H{"message": "Document deleted successfully"}))
}

// ExtractionCallbackHandler receives results from the external extraction
// service. It is not behind user auth; the shared API key guards it instead.
// POST /v1/internal/extraction/callback
func (h *DocumentHandler) ExtractionCallbackHandler(c *gin.Context) {
	log := logger.GetLogger()

	if !h.authorizeCallback(c) {
		log.Warnw("Extraction callback with bad credentials", "client_ip", c.ClientIP())
		_ = c.Error(apperrors.Unauthorized("invalid_callback_key", "invalid extraction callback credentials"))
		return
	}

	var result types.ExtractionResult
	if !bindJSONOrError(c, &result) {
		return
	}

	if err := h.documentService.HandleExtractionResult(c.Request.Context(), &result); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dataResponse(gin.H{"message": "Extraction result recorded"}))
}

func (h *DocumentHandler) authorizeCallback(c *gin.Context) bool {
	if h.callbackAPIKey == "" {
		return true
	}
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.callbackAPIKey)) == 1
}
