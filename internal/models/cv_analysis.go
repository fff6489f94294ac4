package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type CVAnalysisStatus string

const (
	StatusQueued     CVAnalysisStatus = "queued"
	StatusProcessing CVAnalysisStatus = "processing"
	StatusCompleted  CVAnalysisStatus = "completed"
	StatusFailed     CVAnalysisStatus = "failed"
)

// CVAnalysis is an asynchronous job turning an uploaded CV into canonical
// skills and a CV score.
type CVAnalysis struct {
	ID           uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	ApplicantID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"applicant_id"`
	DocumentID   uuid.UUID        `gorm:"type:uuid;not null" json:"document_id"`
	Status       CVAnalysisStatus `gorm:"type:text;not null;index" json:"status"`
	Skills       pq.StringArray   `gorm:"type:text[]" json:"skills,omitempty"`
	CVScore      *int             `json:"cv_score,omitempty"`
	ErrorMessage *string          `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	Document Document `gorm:"foreignKey:DocumentID" json:"-"`
}

func (CVAnalysis) TableName() string {
	return "cv_analyses"
}
