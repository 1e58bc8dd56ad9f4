package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"legisense/internal/models"
)

var ErrNotFound = errors.New("not found")

type DocumentRepo struct {
	db *DB
}

func NewDocumentRepo(db *DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Create(ctx context.Context, d models.Document) (string, error) {
	var id string
	err := r.db.Pool.QueryRow(ctx, `
INSERT INTO documents (file_name, object_key, status)
VALUES ($1, $2, $3)
RETURNING id::text`, d.FileName, d.ObjectKey, d.Status).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}
	return id, nil
}

// SetExtracted stores the parsed pages and full text after extraction.
func (r *DocumentRepo) SetExtracted(ctx context.Context, documentID string, pages []models.Page, fullText string) error {
	pagesJSON, err := json.Marshal(pages)
	if err != nil {
		return fmt.Errorf("marshal pages: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
UPDATE documents
SET pages=$2, num_pages=$3, full_text=$4, updated_at=NOW()
WHERE id=$1`, documentID, pagesJSON, len(pages), fullText)
	if err != nil {
		return fmt.Errorf("set extracted text: %w", err)
	}
	return nil
}

func (r *DocumentRepo) UpdateStatus(ctx context.Context, documentID, status, failReason string) error {
	_, err := r.db.Pool.Exec(ctx, `
UPDATE documents SET status=$2, fail_reason=$3, updated_at=NOW() WHERE id=$1`,
		documentID, status, failReason)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	return nil
}

func (r *DocumentRepo) GetByID(ctx context.Context, documentID string) (models.Document, error) {
	var (
		d         models.Document
		pagesJSON []byte
	)
	err := r.db.Pool.QueryRow(ctx, `
SELECT id::text, file_name, object_key, num_pages, pages, full_text, status, fail_reason, created_at, updated_at
FROM documents
WHERE id=$1`, documentID).
		Scan(&d.DocumentID, &d.FileName, &d.ObjectKey, &d.NumPages, &pagesJSON, &d.FullText, &d.Status, &d.FailReason, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Document{}, ErrNotFound
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("get document: %w", err)
	}
	if err := json.Unmarshal(pagesJSON, &d.Pages); err != nil {
		return models.Document{}, fmt.Errorf("decode document pages: %w", err)
	}
	return d, nil
}

// List returns document metadata without page bodies, newest first.
func (r *DocumentRepo) List(ctx context.Context) ([]models.Document, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT id::text, file_name, object_key, num_pages, status, fail_reason, created_at, updated_at
FROM documents
ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]models.Document, 0)
	for rows.Next() {
		var d models.Document
		if err := rows.Scan(&d.DocumentID, &d.FileName, &d.ObjectKey, &d.NumPages, &d.Status, &d.FailReason, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}
