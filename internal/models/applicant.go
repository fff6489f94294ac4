package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
)

const (
	RoleApplicant = "applicant"
	RoleAdmin     = "admin"
)

// Applicant is a person progressing through the admission workflow together
// with the assessment signals derived from their CV, interview and surveys.
type Applicant struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Email              string         `gorm:"type:text;uniqueIndex;not null" json:"email"`
	FirstName          string         `gorm:"type:text" json:"first_name"`
	LastName           string         `gorm:"type:text" json:"last_name"`
	Skills             pq.StringArray `gorm:"type:text[]" json:"skills"`
	CVScore            int            `gorm:"not null" json:"cv_score"`
	InterviewScore     *int           `json:"interview_score,omitempty"`
	InterviewCompleted bool           `gorm:"not null" json:"interview_completed"`
	SoftSkills         datatypes.JSON `gorm:"type:jsonb" json:"soft_skills,omitempty"`
	Intelligences      datatypes.JSON `gorm:"type:jsonb" json:"multiple_intelligences,omitempty"`
	Role               string         `gorm:"type:text;not null" json:"role"`
	IsActive           bool           `gorm:"not null" json:"is_active"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func (Applicant) TableName() string {
	return "applicants"
}
