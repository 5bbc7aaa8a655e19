package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Stage is the closed set of pipeline stages that run after ingestion.
type Stage string

const (
	StageParsing     Stage = "parsing"
	StageStructuring Stage = "structuring"
	StagePrediction  Stage = "prediction"
)

func AllStages() []Stage {
	return []Stage{StageParsing, StageStructuring, StagePrediction}
}

func ParseStage(raw string) (Stage, error) {
	switch Stage(raw) {
	case StageParsing, StageStructuring, StagePrediction:
		return Stage(raw), nil
	}
	return "", WrapError(ErrInvalidInput, "parse stage", fmt.Errorf("unknown stage %q", raw))
}

// Prerequisite returns the stage whose completed result must exist before
// this stage may run. Parsing only needs the uploaded document.
func (s Stage) Prerequisite() (Stage, bool) {
	switch s {
	case StageStructuring:
		return StageParsing, true
	case StagePrediction:
		return StageStructuring, true
	}
	return "", false
}

// Next returns the stage the worker chains to after this one completes.
func (s Stage) Next() (Stage, bool) {
	switch s {
	case StageParsing:
		return StageStructuring, true
	case StageStructuring:
		return StagePrediction, true
	}
	return "", false
}

// CompletionStatus is the document status a completed run of this stage
// advances the document to.
func (s Stage) CompletionStatus() DocumentStatus {
	switch s {
	case StageParsing:
		return StatusParsed
	case StageStructuring:
		return StatusStructured
	case StagePrediction:
		return StatusPredicted
	}
	return StatusUploaded
}

type StageStatus string

const (
	StagePending   StageStatus = "pending"
	StageCompleted StageStatus = "completed"
	StageFailed    StageStatus = "failed"
)

// StageResult is the single persisted row per (document, stage). Re-runs
// overwrite it in place.
type StageResult struct {
	ID         string          `json:"id"`
	DocumentID string          `json:"document_id"`
	Stage      Stage           `json:"stage"`
	Status     StageStatus     `json:"status"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	Error      string          `json:"error,omitempty"`
	Attempts   int             `json:"attempts"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// DeriveStatus recomputes the document status from its stage rows: the
// completion status of the furthest completed stage wins, a failure on the
// most recently updated row forces failed, and a pending row above the
// furthest completed rank means processing. An empty set means uploaded.
// The returned string carries the failing stage's error message, if any.
func DeriveStatus(results []StageResult) (DocumentStatus, string) {
	if len(results) == 0 {
		return StatusUploaded, ""
	}

	var latest *StageResult
	furthest := StatusUploaded
	for i := range results {
		r := &results[i]
		if latest == nil || r.UpdatedAt.After(latest.UpdatedAt) {
			latest = r
		}
		if r.Status == StageCompleted {
			if done := r.Stage.CompletionStatus(); done.Rank() > furthest.Rank() {
				furthest = done
			}
		}
	}

	if latest.Status == StageFailed {
		return StatusFailed, latest.Error
	}
	if latest.Status == StagePending && latest.Stage.CompletionStatus().Rank() > furthest.Rank() {
		return StatusProcessing, ""
	}
	return furthest, ""
}
