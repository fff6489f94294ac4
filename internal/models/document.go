package models

import (
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded file belonging to an applicant (currently only CVs).
type Document struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ApplicantID      uuid.UUID `gorm:"type:uuid;not null;index" json:"applicant_id"`
	Filename         string    `gorm:"type:text" json:"filename"`
	OriginalFileName string    `gorm:"type:text" json:"original_filename"`
	FileType         string    `gorm:"type:text" json:"file_type"`
	FilePath         string    `gorm:"type:text" json:"file_path"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (d *Document) TableName() string {
	return "documents"
}
