package domain

import (
	"fmt"
	"time"
)

type RiskLevel string

const (
	RiskLow             RiskLevel = "low"
	RiskMedium          RiskLevel = "medium"
	RiskHigh            RiskLevel = "high"
	RiskNeedsAssessment RiskLevel = "needs_assessment"
)

// RiskLevelForBirads maps a BI-RADS category to the triage risk level.
// Category 0 means the exam was inconclusive and needs additional imaging.
func RiskLevelForBirads(birads string) RiskLevel {
	switch birads {
	case "4", "5", "6":
		return RiskHigh
	case "3":
		return RiskMedium
	case "1", "2":
		return RiskLow
	default:
		return RiskNeedsAssessment
	}
}

type ReviewStatus string

const (
	ReviewNew               ReviewStatus = "New"
	ReviewUnderReview       ReviewStatus = "Under Review"
	ReviewFollowupInitiated ReviewStatus = "Follow-up Initiated"
	ReviewComplete          ReviewStatus = "Review Complete"
)

func ParseReviewStatus(raw string) (ReviewStatus, error) {
	switch ReviewStatus(raw) {
	case ReviewNew, ReviewUnderReview, ReviewFollowupInitiated, ReviewComplete:
		return ReviewStatus(raw), nil
	}
	return "", WrapError(ErrInvalidInput, "parse review status", fmt.Errorf("unknown review status %q", raw))
}

type Prediction struct {
	ID              string             `json:"id"`
	DocumentID      string             `json:"document_id"`
	PredictedBirads string             `json:"predicted_birads"`
	LabelID         int                `json:"label_id"`
	Confidence      float64            `json:"confidence"`
	Probabilities   map[string]float64 `json:"probabilities,omitempty"`
	RiskLevel       RiskLevel          `json:"risk_level"`
	ModelVersion    string             `json:"model_version"`
	ReviewStatus    ReviewStatus       `json:"review_status"`
	ReviewerNotes   string             `json:"reviewer_notes,omitempty"`
	ReviewedBy      string             `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time         `json:"reviewed_at,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}
