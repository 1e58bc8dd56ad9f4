package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"legisense/internal/models"
)

type TranslationRepo struct {
	db *DB
}

func NewTranslationRepo(db *DB) *TranslationRepo {
	return &TranslationRepo{db: db}
}

// UpsertDocumentTranslation is idempotent on (document_id, language), so a
// re-run workflow or a concurrent on-demand request cannot create duplicates.
func (r *TranslationRepo) UpsertDocumentTranslation(ctx context.Context, t models.DocumentTranslation) error {
	pagesJSON, err := json.Marshal(t.Pages)
	if err != nil {
		return fmt.Errorf("marshal translated pages: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO document_translations (document_id, language, pages, full_text)
VALUES ($1, $2, $3, $4)
ON CONFLICT (document_id, language)
DO UPDATE SET
  pages = EXCLUDED.pages,
  full_text = EXCLUDED.full_text,
  updated_at = NOW()`,
		t.DocumentID, t.Language, pagesJSON, t.FullText)
	if err != nil {
		return fmt.Errorf("upsert document translation: %w", err)
	}
	return nil
}

func (r *TranslationRepo) GetDocumentTranslation(ctx context.Context, documentID, language string) (models.DocumentTranslation, error) {
	var (
		t         models.DocumentTranslation
		pagesJSON []byte
	)
	err := r.db.Pool.QueryRow(ctx, `
SELECT id::text, document_id::text, language, pages, full_text, created_at, updated_at
FROM document_translations
WHERE document_id=$1 AND language=$2`, documentID, language).
		Scan(&t.TranslationID, &t.DocumentID, &t.Language, &pagesJSON, &t.FullText, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DocumentTranslation{}, ErrNotFound
	}
	if err != nil {
		return models.DocumentTranslation{}, fmt.Errorf("get document translation: %w", err)
	}
	if err := json.Unmarshal(pagesJSON, &t.Pages); err != nil {
		return models.DocumentTranslation{}, fmt.Errorf("decode translated pages: %w", err)
	}
	return t, nil
}

func (r *TranslationRepo) ListDocumentTranslationLanguages(ctx context.Context, documentID string) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT language FROM document_translations WHERE document_id=$1 ORDER BY language`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list document translation languages: %w", err)
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		out = append(out, lang)
	}
	return out, rows.Err()
}

func (r *TranslationRepo) UpsertAnalysisTranslation(ctx context.Context, t models.AnalysisTranslation) error {
	outputJSON, err := json.Marshal(t.Output)
	if err != nil {
		return fmt.Errorf("marshal translated analysis: %w", err)
	}
	_, err = r.db.Pool.Exec(ctx, `
INSERT INTO analysis_translations (analysis_id, language, output)
VALUES ($1, $2, $3)
ON CONFLICT (analysis_id, language)
DO UPDATE SET
  output = EXCLUDED.output,
  updated_at = NOW()`,
		t.AnalysisID, t.Language, outputJSON)
	if err != nil {
		return fmt.Errorf("upsert analysis translation: %w", err)
	}
	return nil
}

func (r *TranslationRepo) GetAnalysisTranslation(ctx context.Context, analysisID, language string) (models.AnalysisTranslation, error) {
	var (
		t          models.AnalysisTranslation
		outputJSON []byte
	)
	err := r.db.Pool.QueryRow(ctx, `
SELECT id::text, analysis_id::text, language, output, created_at, updated_at
FROM analysis_translations
WHERE analysis_id=$1 AND language=$2`, analysisID, language).
		Scan(&t.TranslationID, &t.AnalysisID, &t.Language, &outputJSON, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.AnalysisTranslation{}, ErrNotFound
	}
	if err != nil {
		return models.AnalysisTranslation{}, fmt.Errorf("get analysis translation: %w", err)
	}
	if err := json.Unmarshal(outputJSON, &t.Output); err != nil {
		return models.AnalysisTranslation{}, fmt.Errorf("decode translated analysis: %w", err)
	}
	return t, nil
}

func (r *TranslationRepo) ListAnalysisTranslationLanguages(ctx context.Context, analysisID string) ([]string, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT language FROM analysis_translations WHERE analysis_id=$1 ORDER BY language`, analysisID)
	if err != nil {
		return nil, fmt.Errorf("list analysis translation languages: %w", err)
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var lang string
		if err := rows.Scan(&lang); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		out = append(out, lang)
	}
	return out, rows.Err()
}
