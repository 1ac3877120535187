package batch

import (
	"time"

	"github.com/google/uuid"

	"github.com/a3tai/draw-parser/internal/draw"
	"github.com/a3tai/draw-parser/internal/output"
)

// DocumentType labels the kind of document a skip entry refers to
type DocumentType string

// DocumentTypeDRAW is the only document type this driver parses
const DocumentTypeDRAW DocumentType = "DRAW"

// SkippedDocument is one document a batch could not convert
type SkippedDocument struct {
	Type   DocumentType `json:"type"`
	Path   string       `json:"path"`
	Reason string       `json:"reason"`
	draw.Provenance
}

// Report summarizes the documents a directory batch skipped
type Report struct {
	GeneratedAt               string            `json:"generated_at"`
	RunID                     string            `json:"run_id"`
	TotalDirectoriesProcessed int               `json:"total_directories_processed"`
	SkippedCount              int               `json:"skipped_count"`
	SkippedDocuments          []SkippedDocument `json:"skipped_documents"`
}

// NewReport stamps a report with the current UTC time and a fresh run id
func NewReport(directories int, skipped []SkippedDocument) *Report {
	if skipped == nil {
		skipped = []SkippedDocument{}
	}
	return &Report{
		GeneratedAt:               time.Now().UTC().Format(time.RFC3339Nano),
		RunID:                     uuid.NewString(),
		TotalDirectoriesProcessed: directories,
		SkippedCount:              len(skipped),
		SkippedDocuments:          skipped,
	}
}

// Write stores the report as JSON at path
func (r *Report) Write(path string) error {
	return output.WriteJSON(path, r)
}
