package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ishro/aura-pipeline/internal/core/domain"
)

type StageResultRepository struct {
	db *sql.DB
}

func NewStageResultRepository(db *sql.DB) *StageResultRepository {
	return &StageResultRepository{db: db}
}

// Upsert writes the one row per (document, stage) and recomputes the parent
// document status from the full row set in the same transaction, so readers
// never observe a row/status mismatch.
func (r *StageResultRepository) Upsert(ctx context.Context, result *domain.StageResult) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin stage tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `
INSERT INTO stage_results (id, document_id, stage, status, payload, error_message, attempts, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (document_id, stage) DO UPDATE
SET status = EXCLUDED.status,
	payload = EXCLUDED.payload,
	error_message = EXCLUDED.error_message,
	attempts = EXCLUDED.attempts,
	updated_at = EXCLUDED.updated_at
`,
		result.ID, result.DocumentID, string(result.Stage), string(result.Status),
		nullableJSON(result.Payload), result.Error, result.Attempts, result.CreatedAt, result.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert stage result: %w", err)
	}

	if err := syncDocumentStatus(ctx, tx, result.DocumentID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit stage tx: %w", err)
	}
	return nil
}

func (r *StageResultRepository) Get(ctx context.Context, documentID string, stage domain.Stage) (*domain.StageResult, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, document_id, stage, status, payload, error_message, attempts, created_at, updated_at
FROM stage_results
WHERE document_id = $1 AND stage = $2
`, documentID, string(stage))

	result, err := scanStageResult(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get stage result",
				fmt.Errorf("document=%s stage=%s", documentID, stage))
		}
		return nil, fmt.Errorf("scan stage result: %w", err)
	}
	return result, nil
}

func (r *StageResultRepository) ListByDocument(ctx context.Context, documentID string) ([]domain.StageResult, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, document_id, stage, status, payload, error_message, attempts, created_at, updated_at
FROM stage_results
WHERE document_id = $1
ORDER BY updated_at ASC
`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list stage results: %w", err)
	}
	defer rows.Close()

	out := make([]domain.StageResult, 0)
	for rows.Next() {
		result, err := scanStageResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stage result: %w", err)
		}
		out = append(out, *result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stage results: %w", err)
	}
	return out, nil
}

func syncDocumentStatus(ctx context.Context, tx *sql.Tx, documentID string) error {
	rows, err := tx.QueryContext(ctx, `
SELECT id, document_id, stage, status, payload, error_message, attempts, created_at, updated_at
FROM stage_results
WHERE document_id = $1
`, documentID)
	if err != nil {
		return fmt.Errorf("load stage rows for status sync: %w", err)
	}
	defer rows.Close()

	results := make([]domain.StageResult, 0)
	for rows.Next() {
		result, err := scanStageResult(rows)
		if err != nil {
			return fmt.Errorf("scan stage row for status sync: %w", err)
		}
		results = append(results, *result)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate stage rows for status sync: %w", err)
	}

	status, errMessage := domain.DeriveStatus(results)
	_, err = tx.ExecContext(ctx, `
UPDATE documents
SET status = $2, error_message = $3, updated_at = $4
WHERE id = $1
`, documentID, string(status), errMessage, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("sync document status: %w", err)
	}
	return nil
}

func nullableJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

func scanStageResult(row rowScanner) (*domain.StageResult, error) {
	var result domain.StageResult
	var stage, status string
	var payload []byte
	var errMessage sql.NullString
	err := row.Scan(
		&result.ID, &result.DocumentID, &stage, &status, &payload,
		&errMessage, &result.Attempts, &result.CreatedAt, &result.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	result.Stage = domain.Stage(stage)
	result.Status = domain.StageStatus(status)
	result.Payload = payload
	result.Error = errMessage.String
	return &result, nil
}
