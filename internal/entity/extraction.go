package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ExtractionResult is the unified response schema for one document.
// The first four fields are always present in the JSON body; a null means
// "not confidently found", never an error. The remaining fields only
// appear when a matching label line was found in the document.
type ExtractionResult struct {
	Name       *string  `json:"name"`
	Phone      *string  `json:"phone"`
	BirthDate  *string  `json:"birth_date"`
	Experience []string `json:"experience"`

	Address         *string `json:"address,omitempty"`
	Profession      *string `json:"profession,omitempty"`
	Major           *string `json:"major,omitempty"`
	CulturalLevel   *string `json:"cultural_level,omitempty"`
	ForeignLanguage *string `json:"foreign_language,omitempty"`
}

// NewExtractionResult returns an empty result with the experience list
// initialized, so it marshals as [] rather than null.
func NewExtractionResult() ExtractionResult {
	return ExtractionResult{Experience: []string{}}
}

// ExtractionJob is one request's history record.
type ExtractionJob struct {
	ID           uuid.UUID       `json:"id"`
	Filename     string          `json:"filename"`
	Format       string          `json:"format"`
	Pages        int             `json:"pages"`
	Status       string          `json:"status"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	ResultJSON   json.RawMessage `json:"result_json,omitempty"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   *time.Time      `json:"finished_at,omitempty"`
	DurationMs   int64           `json:"duration_ms"`
}
