package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	internalstore "github.com/VyaparSathi/vyapar-sathi-backend/internal/store"
	"github.com/VyaparSathi/vyapar-sathi-backend/logger"
	"github.com/VyaparSathi/vyapar-sathi-backend/types"
)

// Ensure pgDocumentStore implements internalstore.DocumentStore.
var _ internalstore.DocumentStore = (*pgDocumentStore)(nil)

type pgDocumentStore struct {
	pool *pgxpool.Pool
	db   Querier
}

// NewPgDocumentStore creates a new PostgreSQL document store.
func NewPgDocumentStore(pool *pgxpool.Pool) internalstore.DocumentStore {
	return &pgDocumentStore{pool: pool, db: pool}
}

func (s *pgDocumentStore) GetPool() *pgxpool.Pool {
	return s.pool
}

const documentColumns = `id, business_id, document_type, status, extracted_data,
       file_name, file_path, file_size, mime_type, created_at, updated_at`

func scanDocument(row pgx.Row) (*types.Document, error) {
	var doc types.Document
	err := row.Scan(
		&doc.ID,
		&doc.BusinessID,
		&doc.DocumentType,
		&doc.Status,
		&doc.ExtractedData,
		&doc.FileName,
		&doc.FilePath,
		&doc.FileSize,
		&doc.MimeType,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *pgDocumentStore) CreateDocument(ctx context.Context, doc *types.Document) (string, error) {
	log := logger.GetLogger()
	var id string
	err := s.db.QueryRow(ctx, `
        INSERT INTO documents (
            business_id, document_type, status,
            file_name, file_path, file_size, mime_type
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`,
		doc.BusinessID,
		string(doc.DocumentType),
		string(doc.Status),
		doc.FileName,
		doc.FilePath,
		doc.FileSize,
		doc.MimeType,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			// Foreign key: the referenced business does not exist.
			return "", internalstore.ErrNotFound
		}
		log.Errorw("Failed to create document", "businessId", doc.BusinessID, "error", err)
		return "", fmt.Errorf("failed to insert document: %w", err)
	}
	return id, nil
}

func (s *pgDocumentStore) GetDocument(ctx context.Context, id string) (*types.Document, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1 AND deleted_at IS NULL`, id)
	doc, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internalstore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get document %s: %w", id, err)
	}
	return doc, nil
}

func (s *pgDocumentStore) ListDocuments(ctx context.Context, businessID string) ([]types.Document, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+documentColumns+`
         FROM documents
         WHERE business_id = $1 AND deleted_at IS NULL
         ORDER BY created_at DESC`, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents for business %s: %w", businessID, err)
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading document rows: %w", err)
	}
	return docs, nil
}

func (s *pgDocumentStore) UpdateDocument(ctx context.Context, id string, update *types.DocumentUpdate) error {
	setClauses := make([]string, 0, 3)
	args := make([]interface{}, 0, 3)
	i := 1
	if update.DocumentType != nil {
		setClauses = append(setClauses, fmt.Sprintf("document_type = $%d", i))
		args = append(args, string(*update.DocumentType))
		i++
	}
	if update.FileName != nil {
		setClauses = append(setClauses, fmt.Sprintf("file_name = $%d", i))
		args = append(args, *update.FileName)
		i++
	}
	if update.Status != nil {
		setClauses = append(setClauses, fmt.Sprintf("status = $%d", i))
		args = append(args, string(*update.Status))
		i++
	}
	if len(setClauses) == 0 {
		return nil
	}
	setClauses = append(setClauses, "updated_at = NOW()")
	args = append(args, id)

	tag, err := s.db.Exec(ctx, fmt.Sprintf(
		`UPDATE documents SET %s WHERE id = $%d AND deleted_at IS NULL`,
		strings.Join(setClauses, ", "), i), args...)
	if err != nil {
		return fmt.Errorf("failed to update document %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return internalstore.ErrNotFound
	}
	return nil
}

func (s *pgDocumentStore) SetExtractionResult(ctx context.Context, id string, result *types.ExtractionResult) error {
	log := logger.GetLogger()
	tag, err := s.db.Exec(ctx, `
        UPDATE documents
        SET status = $1, extracted_data = $2, updated_at = NOW()
        WHERE id = $3 AND deleted_at IS NULL`,
		string(result.Status),
		[]byte(result.ExtractedData),
		id,
	)
	if err != nil {
		log.Errorw("Failed to store extraction result", "documentId", id, "error", err)
		return fmt.Errorf("failed to store extraction result for %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return internalstore.ErrNotFound
	}
	return nil
}

func (s *pgDocumentStore) DeleteDocument(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE documents SET deleted_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return internalstore.ErrNotFound
	}
	return nil
}
