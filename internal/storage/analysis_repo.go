package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"legisense/internal/models"
)

type AnalysisRepo struct {
	db *DB
}

func NewAnalysisRepo(db *DB) *AnalysisRepo {
	return &AnalysisRepo{db: db}
}

// Upsert writes the analysis row for a document. Re-running analysis for the
// same document overwrites the previous result in place.
func (r *AnalysisRepo) Upsert(ctx context.Context, a models.DocumentAnalysis) (string, error) {
	var outputJSON []byte
	if a.Output != nil {
		var err error
		outputJSON, err = json.Marshal(a.Output)
		if err != nil {
			return "", fmt.Errorf("marshal analysis output: %w", err)
		}
	}
	var id string
	err := r.db.Pool.QueryRow(ctx, `
INSERT INTO document_analyses (document_id, status, model, prompt_version, output, error)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (document_id)
DO UPDATE SET
  status = EXCLUDED.status,
  model = EXCLUDED.model,
  prompt_version = EXCLUDED.prompt_version,
  output = EXCLUDED.output,
  error = EXCLUDED.error,
  updated_at = NOW()
RETURNING id::text`,
		a.DocumentID, a.Status, a.Model, a.PromptVersion, outputJSON, a.Error).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("upsert analysis: %w", err)
	}
	return id, nil
}

func (r *AnalysisRepo) GetByDocument(ctx context.Context, documentID string) (models.DocumentAnalysis, error) {
	var (
		a          models.DocumentAnalysis
		outputJSON []byte
	)
	err := r.db.Pool.QueryRow(ctx, `
SELECT id::text, document_id::text, status, model, prompt_version, output, error, created_at, updated_at
FROM document_analyses
WHERE document_id=$1`, documentID).
		Scan(&a.AnalysisID, &a.DocumentID, &a.Status, &a.Model, &a.PromptVersion, &outputJSON, &a.Error, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DocumentAnalysis{}, ErrNotFound
	}
	if err != nil {
		return models.DocumentAnalysis{}, fmt.Errorf("get analysis: %w", err)
	}
	if len(outputJSON) > 0 {
		if err := json.Unmarshal(outputJSON, &a.Output); err != nil {
			return models.DocumentAnalysis{}, fmt.Errorf("decode analysis output: %w", err)
		}
	}
	return a, nil
}

func (r *AnalysisRepo) GetByID(ctx context.Context, analysisID string) (models.DocumentAnalysis, error) {
	var (
		a          models.DocumentAnalysis
		outputJSON []byte
	)
	err := r.db.Pool.QueryRow(ctx, `
SELECT id::text, document_id::text, status, model, prompt_version, output, error, created_at, updated_at
FROM document_analyses
WHERE id=$1`, analysisID).
		Scan(&a.AnalysisID, &a.DocumentID, &a.Status, &a.Model, &a.PromptVersion, &outputJSON, &a.Error, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DocumentAnalysis{}, ErrNotFound
	}
	if err != nil {
		return models.DocumentAnalysis{}, fmt.Errorf("get analysis by id: %w", err)
	}
	if len(outputJSON) > 0 {
		if err := json.Unmarshal(outputJSON, &a.Output); err != nil {
			return models.DocumentAnalysis{}, fmt.Errorf("decode analysis output: %w", err)
		}
	}
	return a, nil
}
