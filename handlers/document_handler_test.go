package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/VyaparSathi/vyapar-sathi-backend/errors"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const testMaxUploadBytes = 15 << 20

func setupDocumentHandler(callbackKey string) (*DocumentHandler, *MockDocumentService) {
	svc := new(MockDocumentService)
	h := NewDocumentHandler(svc, testMaxUploadBytes, callbackKey)
	return h, svc
}

// buildMultipartBody creates a multipart/form-data body with a "file" field
// and a "metadata" JSON field.
func buildMultipartBody(t *testing.T, filename, metadataJSON string, fileContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if filename != "" {
		fw, err := w.CreateFormFile("file", filename)
		assert.NoError(t, err)
		if fileContent != nil {
			_, _ = fw.Write(fileContent)
		}
	}

	if metadataJSON != "" {
		fw, err := w.CreateFormField("metadata")
		assert.NoError(t, err)
		_, _ = io.WriteString(fw, metadataJSON)
	}

	w.Close()
	return &buf, w.FormDataContentType()
}

func sampleDocResponse() *types.DocumentResponse {
	return &types.DocumentResponse{
		Document: types.Document{
			ID:           testDocID,
			BusinessID:   testBusinessID,
			DocumentType: types.DocumentTypeInvoice,
			Status:       types.DocumentStatusProcessing,
			FileName:     "invoice_march.pdf",
			FileSize:     1024,
			MimeType:     "application/pdf",
		},
		DownloadURL: "https://r2.example.com/presigned",
	}
}

func TestUploadDocumentHandler_Success(t *testing.T) {
	h, svc := setupDocumentHandler("")
	svc.On("UploadDocument", mock.Anything, testUserID, testBusinessID, mock.Anything, mock.AnythingOfType("int64"), mock.AnythingOfType("*types.DocumentCreate")).
		Return(sampleDocResponse(), nil)

	r := buildRouter("/v1/businesses/:id/documents", http.MethodPost, h.UploadDocumentHandler, testUserID)

	body, contentType := buildMultipartBody(t, "invoice_march.pdf",
		`{"documentType":"invoice","fileName":"invoice_march.pdf"}`,
		[]byte("%PDF-1.4\ncontent"))
	req := httptest.NewRequest(http.MethodPost, "/v1/businesses/"+testBusinessID+"/documents", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "invoice_march.pdf")
	svc.AssertExpectations(t)
}

func TestUploadDocumentHandler_MissingFile(t *testing.T) {
	h, svc := setupDocumentHandler("")
	r := buildRouter("/v1/businesses/:id/documents", http.MethodPost, h.UploadDocumentHandler, testUserID)

	body, contentType := buildMultipartBody(t, "", `{"documentType":"invoice","fileName":"x.pdf"}`, nil)
	req := httptest.NewRequest(http.MethodPost, "/v1/businesses/"+testBusinessID+"/documents", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "UploadDocument")
}

func TestUploadDocumentHandler_BadMetadataJSON(t *testing.T) {
	h, svc := setupDocumentHandler("")
	r := buildRouter("/v1/businesses/:id/documents", http.MethodPost, h.UploadDocumentHandler, testUserID)

	body, contentType := buildMultipartBody(t, "invoice.pdf", `{not json`, []byte("%PDF-1.4"))
	req := httptest.NewRequest(http.MethodPost, "/v1/businesses/"+testBusinessID+"/documents", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "UploadDocument")
}

func TestUploadDocumentHandler_ServiceValidationError(t *testing.T) {
	h, svc := setupDocumentHandler("")
	svc.On("UploadDocument", mock.Anything, testUserID, testBusinessID, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, apperrors.ValidationFailed("invalid_mime_type", "MIME type text/plain is not allowed"))

	r := buildRouter("/v1/businesses/:id/documents", http.MethodPost, h.UploadDocumentHandler, testUserID)

	body, contentType := buildMultipartBody(t, "notes.txt",
		`{"documentType":"invoice","fileName":"notes.txt"}`,
		[]byte("plain text"))
	req := httptest.NewRequest(http.MethodPost, "/v1/businesses/"+testBusinessID+"/documents", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "MIME type")
}

func TestListDocumentsHandler_Success(t *testing.T) {
	h, svc := setupDocumentHandler("")
	svc.On("ListDocuments", mock.Anything, testBusinessID, testUserID).
		Return([]types.Document{sampleDocResponse().Document}, nil)

	r := buildRouter("/v1/businesses/:id/documents", http.MethodGet, h.ListDocumentsHandler, testUserID)

	req := httptest.NewRequest(http.MethodGet, "/v1/businesses/"+testBusinessID+"/documents", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), testDocID)
}

func TestGetDocumentHandler_NotFound(t *testing.T) {
	h, svc := setupDocumentHandler("")
	svc.On("GetDocument", mock.Anything, testDocID, testUserID).
		Return(nil, apperrors.DocumentNotFound(testDocID))

	r := buildRouter("/v1/documents/:docID", http.MethodGet, h.GetDocumentHandler, testUserID)

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/"+testDocID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateDocumentHandler_Success(t *testing.T) {
	doc := sampleDocResponse().Document
	doc.DocumentType = types.DocumentTypeReceipt

	h, svc := setupDocumentHandler("")
	svc.On("UpdateDocument", mock.Anything, testDocID, testUserID, mock.AnythingOfType("*types.DocumentUpdate")).
		Return(&doc, nil)

	r := buildRouter("/v1/documents/:docID", http.MethodPatch, h.UpdateDocumentHandler, testUserID)

	req := httptest.NewRequest(http.MethodPatch, "/v1/documents/"+testDocID, bytes.NewBufferString(`{"documentType":"receipt"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "receipt")
}

func TestDeleteDocumentHandler_Success(t *testing.T) {
	h, svc := setupDocumentHandler("")
	svc.On("DeleteDocument", mock.Anything, testDocID, testUserID).Return(nil)

	r := buildRouter("/v1/documents/:docID", http.MethodDelete, h.DeleteDocumentHandler, testUserID)

	req := httptest.NewRequest(http.MethodDelete, "/v1/documents/"+testDocID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestExtractionCallbackHandler_Success(t *testing.T) {
	h, svc := setupDocumentHandler("callback-secret")
	svc.On("HandleExtractionResult", mock.Anything, mock.AnythingOfType("*types.ExtractionResult")).Return(nil)

	r := buildRouter("/v1/internal/extraction/callback", http.MethodPost, h.ExtractionCallbackHandler, "")

	body := bytes.NewBufferString(`{"documentId":"` + testDocID + `","status":"processed","extractedData":{"invoices":[]},"confidence":0.91}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/extraction/callback", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer callback-secret")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestExtractionCallbackHandler_BadKey(t *testing.T) {
	h, svc := setupDocumentHandler("callback-secret")
	r := buildRouter("/v1/internal/extraction/callback", http.MethodPost, h.ExtractionCallbackHandler, "")

	body := bytes.NewBufferString(`{"documentId":"` + testDocID + `","status":"processed"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/extraction/callback", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer wrong-key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	svc.AssertNotCalled(t, "HandleExtractionResult")
}

func TestExtractionCallbackHandler_InvalidStatus(t *testing.T) {
	h, svc := setupDocumentHandler("")
	r := buildRouter("/v1/internal/extraction/callback", http.MethodPost, h.ExtractionCallbackHandler, "")

	body := bytes.NewBufferString(`{"documentId":"` + testDocID + `","status":"half-done"}`)
	req := httptest.NewRequest(http.MethodPost, "/v1/internal/extraction/callback", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "HandleExtractionResult")
}
