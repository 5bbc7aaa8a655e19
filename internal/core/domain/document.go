package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusParsed     DocumentStatus = "parsed"
	StatusStructured DocumentStatus = "structured"
	StatusPredicted  DocumentStatus = "predicted"
	StatusFailed     DocumentStatus = "failed"
)

// statusRank orders the pipeline statuses. failed sits outside the
// progression and never participates in rank comparisons.
var statusRank = map[DocumentStatus]int{
	StatusUploaded:   0,
	StatusProcessing: 1,
	StatusParsed:     2,
	StatusStructured: 3,
	StatusPredicted:  4,
}

func (s DocumentStatus) Rank() int {
	rank, ok := statusRank[s]
	if !ok {
		return -1
	}
	return rank
}

func (s DocumentStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok || s == StatusFailed
}

type Document struct {
	ID          string         `json:"id"`
	Filename    string         `json:"filename"`
	MimeType    string         `json:"mime_type"`
	StoragePath string         `json:"storage_path"`
	SizeBytes   int64          `json:"size_bytes"`
	ClinicID    string         `json:"clinic_id"`
	PatientID   string         `json:"patient_id,omitempty"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
