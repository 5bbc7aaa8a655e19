package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ishro/aura-pipeline/internal/core/domain"
)

type PredictionRepository struct {
	db *sql.DB
}

func NewPredictionRepository(db *sql.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Upsert(ctx context.Context, prediction *domain.Prediction) error {
	probsJSON, err := json.Marshal(prediction.Probabilities)
	if err != nil {
		return fmt.Errorf("marshal probabilities: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO predictions (
	id, document_id, predicted_birads, label_id, confidence, probabilities, risk_level,
	model_version, review_status, reviewer_notes, reviewed_by, reviewed_at, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (document_id) DO UPDATE
SET predicted_birads = EXCLUDED.predicted_birads,
	label_id = EXCLUDED.label_id,
	confidence = EXCLUDED.confidence,
	probabilities = EXCLUDED.probabilities,
	risk_level = EXCLUDED.risk_level,
	model_version = EXCLUDED.model_version,
	review_status = EXCLUDED.review_status,
	reviewer_notes = EXCLUDED.reviewer_notes,
	reviewed_by = EXCLUDED.reviewed_by,
	reviewed_at = EXCLUDED.reviewed_at,
	updated_at = EXCLUDED.updated_at
`,
		prediction.ID, prediction.DocumentID, prediction.PredictedBirads, prediction.LabelID,
		prediction.Confidence, probsJSON, string(prediction.RiskLevel), prediction.ModelVersion,
		string(prediction.ReviewStatus), prediction.ReviewerNotes, prediction.ReviewedBy,
		prediction.ReviewedAt, prediction.CreatedAt, prediction.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert prediction: %w", err)
	}
	return nil
}

func (r *PredictionRepository) GetByID(ctx context.Context, id string) (*domain.Prediction, error) {
	row := r.db.QueryRowContext(ctx, predictionSelect+` WHERE id = $1`, id)
	prediction, err := scanPrediction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get prediction", fmt.Errorf("id=%s", id))
		}
		return nil, fmt.Errorf("scan prediction: %w", err)
	}
	return prediction, nil
}

func (r *PredictionRepository) GetByDocumentID(ctx context.Context, documentID string) (*domain.Prediction, error) {
	row := r.db.QueryRowContext(ctx, predictionSelect+` WHERE document_id = $1`, documentID)
	prediction, err := scanPrediction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.WrapError(domain.ErrNotFound, "get prediction by document",
				fmt.Errorf("document=%s", documentID))
		}
		return nil, fmt.Errorf("scan prediction: %w", err)
	}
	return prediction, nil
}

func (r *PredictionRepository) List(ctx context.Context) ([]domain.Prediction, error) {
	rows, err := r.db.QueryContext(ctx, predictionSelect+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Prediction, 0)
	for rows.Next() {
		prediction, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		out = append(out, *prediction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate predictions: %w", err)
	}
	return out, nil
}

func (r *PredictionRepository) UpdateReview(ctx context.Context, prediction *domain.Prediction) error {
	result, err := r.db.ExecContext(ctx, `
UPDATE predictions
SET review_status = $2, reviewer_notes = $3, reviewed_by = $4, reviewed_at = $5, updated_at = $6
WHERE id = $1
`, prediction.ID, string(prediction.ReviewStatus), prediction.ReviewerNotes,
		prediction.ReviewedBy, prediction.ReviewedAt, prediction.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update review: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update review rows affected: %w", err)
	}
	if rows == 0 {
		return domain.WrapError(domain.ErrNotFound, "update review", fmt.Errorf("id=%s", prediction.ID))
	}
	return nil
}

const predictionSelect = `
SELECT id, document_id, predicted_birads, label_id, confidence, probabilities, risk_level,
	model_version, review_status, reviewer_notes, reviewed_by, reviewed_at, created_at, updated_at
FROM predictions`

func scanPrediction(row rowScanner) (*domain.Prediction, error) {
	var p domain.Prediction
	var probsRaw []byte
	var riskLevel, reviewStatus string
	var modelVersion, notes, reviewedBy sql.NullString
	var reviewedAt sql.NullTime
	err := row.Scan(
		&p.ID, &p.DocumentID, &p.PredictedBirads, &p.LabelID, &p.Confidence, &probsRaw,
		&riskLevel, &modelVersion, &reviewStatus, &notes, &reviewedBy, &reviewedAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(probsRaw) > 0 {
		if err := json.Unmarshal(probsRaw, &p.Probabilities); err != nil {
			return nil, fmt.Errorf("unmarshal probabilities: %w", err)
		}
	}
	p.RiskLevel = domain.RiskLevel(riskLevel)
	p.ReviewStatus = domain.ReviewStatus(reviewStatus)
	p.ModelVersion = modelVersion.String
	p.ReviewerNotes = notes.String
	p.ReviewedBy = reviewedBy.String
	if reviewedAt.Valid {
		t := reviewedAt.Time
		p.ReviewedAt = &t
	}
	return &p, nil
}
