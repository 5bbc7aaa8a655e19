package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/ishro/aura-pipeline/internal/core/domain"
)

const sheetName = "Worklist"

// Renderer writes the prediction worklist coordinators triage from.
type Renderer struct{}

func New() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(predictions []domain.Prediction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	headers := []string{
		"Prediction ID", "Document ID", "BI-RADS", "Confidence", "Risk Level",
		"Review Status", "Reviewed By", "Reviewed At", "Notes", "Created At",
	}
	for col, header := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for rowIdx, p := range predictions {
		reviewedAt := ""
		if p.ReviewedAt != nil {
			reviewedAt = p.ReviewedAt.Format("2006-01-02 15:04:05")
		}
		values := []any{
			p.ID, p.DocumentID, p.PredictedBirads, p.Confidence, string(p.RiskLevel),
			string(p.ReviewStatus), p.ReviewedBy, reviewedAt, p.ReviewerNotes,
			p.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("write cell: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
