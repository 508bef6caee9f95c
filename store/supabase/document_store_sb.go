package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/supabase-community/supabase-go"

	internalstore "github.com/VyaparSathi/vyapar-sathi-backend/internal/store"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

var _ internalstore.DocumentStore = (*sbDocumentStore)(nil)

type sbDocumentStore struct {
	client *supabase.Client
}

// documentRow mirrors the documents table in PostgREST's snake_case wire
// format.
type documentRow struct {
	ID            string          `json:"id,omitempty"`
	BusinessID    string          `json:"business_id"`
	DocumentType  string          `json:"document_type"`
	Status        string          `json:"status"`
	ExtractedData json.RawMessage `json:"extracted_data,omitempty"`
	FileName      string          `json:"file_name"`
	FilePath      string          `json:"file_path"`
	FileSize      int64           `json:"file_size"`
	MimeType      string          `json:"mime_type"`
	CreatedAt     time.Time       `json:"created_at,omitempty"`
	UpdatedAt     time.Time       `json:"updated_at,omitempty"`
	DeletedAt     *time.Time      `json:"deleted_at,omitempty"`
}

func (r *documentRow) toDocument() types.Document {
	return types.Document{
		ID:            r.ID,
		BusinessID:    r.BusinessID,
		DocumentType:  types.DocumentType(r.DocumentType),
		Status:        types.DocumentStatus(r.Status),
		ExtractedData: r.ExtractedData,
		FileName:      r.FileName,
		FilePath:      r.FilePath,
		FileSize:      r.FileSize,
		MimeType:      r.MimeType,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (s *sbDocumentStore) GetPool() *pgxpool.Pool { return noPool() }

func (s *sbDocumentStore) CreateDocument(_ context.Context, doc *types.Document) (string, error) {
	row := documentRow{
		BusinessID:   doc.BusinessID,
		DocumentType: string(doc.DocumentType),
		Status:       string(doc.Status),
		FileName:     doc.FileName,
		FilePath:     doc.FilePath,
		FileSize:     doc.FileSize,
		MimeType:     doc.MimeType,
	}
	data, _, err := s.client.From("documents").Insert(row, false, "", "representation", "").Execute()
	var created []documentRow
	if err := execInto(data, err, &created); err != nil {
		return "", err
	}
	if len(created) == 0 {
		return "", fmt.Errorf("postgrest insert returned no document row")
	}
	return created[0].ID, nil
}

func (s *sbDocumentStore) GetDocument(_ context.Context, id string) (*types.Document, error) {
	data, _, err := s.client.From("documents").
		Select("*", "", false).
		Eq("id", id).
		Is("deleted_at", "null").
		Execute()
	var rows []documentRow
	if err := execInto(data, err, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, internalstore.ErrNotFound
	}
	doc := rows[0].toDocument()
	return &doc, nil
}

func (s *sbDocumentStore) ListDocuments(_ context.Context, businessID string) ([]types.Document, error) {
	data, _, err := s.client.From("documents").
		Select("*", "", false).
		Eq("business_id", businessID).
		Is("deleted_at", "null").
		Execute()
	var rows []documentRow
	if err := execInto(data, err, &rows); err != nil {
		return nil, err
	}
	docs := make([]types.Document, 0, len(rows))
	for i := range rows {
		docs = append(docs, rows[i].toDocument())
	}
	sortDocumentsByCreatedAtDesc(docs)
	return docs, nil
}

func (s *sbDocumentStore) UpdateDocument(_ context.Context, id string, update *types.DocumentUpdate) error {
	patch := map[string]interface{}{"updated_at": time.Now().UTC()}
	if update.DocumentType != nil {
		patch["document_type"] = string(*update.DocumentType)
	}
	if update.FileName != nil {
		patch["file_name"] = *update.FileName
	}
	if update.Status != nil {
		patch["status"] = string(*update.Status)
	}
	if len(patch) == 1 {
		return nil
	}
	data, _, err := s.client.From("documents").
		Update(patch, "representation", "").
		Eq("id", id).
		Is("deleted_at", "null").
		Execute()
	return expectOneRow(data, err)
}

func (s *sbDocumentStore) SetExtractionResult(_ context.Context, id string, result *types.ExtractionResult) error {
	patch := map[string]interface{}{
		"status":         string(result.Status),
		"extracted_data": result.ExtractedData,
		"updated_at":     time.Now().UTC(),
	}
	data, _, err := s.client.From("documents").
		Update(patch, "representation", "").
		Eq("id", id).
		Is("deleted_at", "null").
		Execute()
	return expectOneRow(data, err)
}

func (s *sbDocumentStore) DeleteDocument(_ context.Context, id string) error {
	patch := map[string]interface{}{"deleted_at": time.Now().UTC()}
	data, _, err := s.client.From("documents").
		Update(patch, "representation", "").
		Eq("id", id).
		Is("deleted_at", "null").
		Execute()
	return expectOneRow(data, err)
}

// expectOneRow maps an empty PostgREST update result to ErrNotFound.
func expectOneRow(data []byte, execErr error) error {
	var rows []json.RawMessage
	if err := execInto(data, execErr, &rows); err != nil {
		return err
	}
	if len(rows) == 0 {
		return internalstore.ErrNotFound
	}
	return nil
}
