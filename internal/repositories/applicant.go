package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"alfredoptarigan/admission-tracker/internal/apperror"
	"alfredoptarigan/admission-tracker/internal/models"
)

// surveyColumns maps an instrument name to the applicant column holding its result.
var surveyColumns = map[string]string{
	"soft-skills":            "soft_skills",
	"multiple-intelligences": "intelligences",
}

type ApplicantRepository interface {
	Create(ctx context.Context, applicant *models.Applicant) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Applicant, error)
	UpdateSkills(ctx context.Context, id uuid.UUID, skills []string, cvScore int) error
	UpdateInterview(ctx context.Context, id uuid.UUID, score int) error
	UpdateSurvey(ctx context.Context, id uuid.UUID, instrument string, result datatypes.JSON) error
}

type applicantRepository struct {
	db *gorm.DB
}

func NewApplicantRepository(db *gorm.DB) ApplicantRepository {
	return &applicantRepository{db: db}
}

func (r *applicantRepository) Create(ctx context.Context, applicant *models.Applicant) error {
	if err := r.db.WithContext(ctx).Create(applicant).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.StateConflict("create applicant", "an applicant with this email already exists")
		}
		return fmt.Errorf("failed to create applicant: %w", err)
	}
	return nil
}

func (r *applicantRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Applicant, error) {
	var applicant models.Applicant
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&applicant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("find applicant", "applicant not found")
		}
		return nil, fmt.Errorf("failed to find applicant: %w", err)
	}
	return &applicant, nil
}

func (r *applicantRepository) UpdateSkills(ctx context.Context, id uuid.UUID, skills []string, cvScore int) error {
	return r.update(ctx, "update applicant skills", id, map[string]interface{}{
		"skills":     pq.StringArray(skills),
		"cv_score":   cvScore,
		"updated_at": time.Now(),
	})
}

// UpdateInterview stores the interview score and marks the interview done.
func (r *applicantRepository) UpdateInterview(ctx context.Context, id uuid.UUID, score int) error {
	return r.update(ctx, "update applicant interview", id, map[string]interface{}{
		"interview_score":     score,
		"interview_completed": true,
		"updated_at":          time.Now(),
	})
}

func (r *applicantRepository) UpdateSurvey(ctx context.Context, id uuid.UUID, instrument string, result datatypes.JSON) error {
	column, ok := surveyColumns[instrument]
	if !ok {
		return apperror.Validation("update applicant survey", fmt.Sprintf("unknown instrument %q", instrument))
	}
	return r.update(ctx, "update applicant survey", id, map[string]interface{}{
		column:       result,
		"updated_at": time.Now(),
	})
}

func (r *applicantRepository) update(ctx context.Context, op string, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.Applicant{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to %s: %w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound(op, "applicant not found")
	}
	return nil
}
