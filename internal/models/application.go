package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MaxStep is the last workflow step.
const MaxStep = 4

type InvoiceStatus string

const (
	InvoiceStatusNone     InvoiceStatus = "none"
	InvoiceStatusPending  InvoiceStatus = "pending"
	InvoiceStatusApproved InvoiceStatus = "approved"
)

// ProgramVariant selects the variant-specific fragments of the acceptance letter.
type ProgramVariant string

const (
	ProgramOnsite ProgramVariant = "onsite"
	ProgramHybrid ProgramVariant = "hybrid"
)

func (v ProgramVariant) Valid() bool {
	return v == ProgramOnsite || v == ProgramHybrid
}

// ApplicationRecord is the persisted 4-step progress of one applicant.
type ApplicationRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key"`
	ApplicantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	Step1Completed bool `gorm:"not null"`
	Step2Completed bool `gorm:"not null"`
	Step3Completed bool `gorm:"not null"`
	Step4Completed bool `gorm:"not null"`
	CurrentStep    int  `gorm:"not null"`

	IsDraft     bool           `gorm:"not null"`
	FormData    datatypes.JSON `gorm:"type:jsonb"`
	LastSavedAt *time.Time
	SubmittedAt *time.Time

	ScheduledMeeting datatypes.JSON `gorm:"type:jsonb"`

	InvoiceStartDate      *time.Time
	InvoiceEndDate        *time.Time
	InvoiceStatus         InvoiceStatus `gorm:"type:text;not null"`
	ScholarshipPercentage float64       `gorm:"not null"`
	InvoiceApprovedAt     *time.Time

	AcceptanceLetterGeneratedAt *time.Time
	ProgramVariant              ProgramVariant `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (ApplicationRecord) TableName() string {
	return "application_records"
}

// NewApplicationRecord returns the initial state of a record.
func NewApplicationRecord(applicantID uuid.UUID) *ApplicationRecord {
	return &ApplicationRecord{
		ID:            uuid.New(),
		ApplicantID:   applicantID,
		CurrentStep:   1,
		InvoiceStatus: InvoiceStatusNone,
	}
}

// AdvanceTo moves CurrentStep forward to step. It never moves backwards and
// never passes MaxStep.
func (r *ApplicationRecord) AdvanceTo(step int) {
	if step > MaxStep {
		step = MaxStep
	}
	if step > r.CurrentStep {
		r.CurrentStep = step
	}
}

// HasInvoiceRange reports whether both invoice dates are set.
func (r *ApplicationRecord) HasInvoiceRange() bool {
	return r.InvoiceStartDate != nil && r.InvoiceEndDate != nil
}

// MeetingInfo is the opaque payload returned by a scheduling collaborator.
type MeetingInfo map[string]interface{}

// ScheduledMeeting is stored verbatim on the record after screening is scheduled.
type ScheduledMeeting struct {
	DateTime        time.Time   `json:"dateTime"`
	DurationMinutes int         `json:"durationMinutes"`
	Timezone        string      `json:"timezone"`
	ZoomMeeting     MeetingInfo `json:"zoomMeeting"`
	CalendarEvent   MeetingInfo `json:"calendarEvent"`
	ScheduledAt     time.Time   `json:"scheduledAt"`
}

func (r *ApplicationRecord) SetScheduledMeeting(m *ScheduledMeeting) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal scheduled meeting: %w", err)
	}
	r.ScheduledMeeting = datatypes.JSON(raw)
	return nil
}

// Meeting decodes the stored meeting; it returns nil when none was scheduled.
func (r *ApplicationRecord) Meeting() (*ScheduledMeeting, error) {
	if len(r.ScheduledMeeting) == 0 || string(r.ScheduledMeeting) == "null" {
		return nil, nil
	}
	var m ScheduledMeeting
	if err := json.Unmarshal(r.ScheduledMeeting, &m); err != nil {
		return nil, fmt.Errorf("failed to decode scheduled meeting: %w", err)
	}
	return &m, nil
}
