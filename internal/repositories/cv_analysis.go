package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"alfredoptarigan/admission-tracker/internal/apperror"
	"alfredoptarigan/admission-tracker/internal/models"
)

type CVAnalysisRepository interface {
	Create(ctx context.Context, analysis *models.CVAnalysis) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CVAnalysis, error)
	Claim(ctx context.Context, id uuid.UUID) (bool, error)
	Complete(ctx context.Context, id uuid.UUID, skills []string, cvScore int) error
	Fail(ctx context.Context, id uuid.UUID, errorMsg string) error
	FindQueued(ctx context.Context, limit int) ([]models.CVAnalysis, error)
}

type cvAnalysisRepository struct {
	db *gorm.DB
}

func NewCVAnalysisRepository(db *gorm.DB) CVAnalysisRepository {
	return &cvAnalysisRepository{db: db}
}

func (r *cvAnalysisRepository) Create(ctx context.Context, analysis *models.CVAnalysis) error {
	if err := r.db.WithContext(ctx).Create(analysis).Error; err != nil {
		return fmt.Errorf("failed to create cv analysis: %w", err)
	}
	return nil
}

// FindByID loads the analysis together with its document.
func (r *cvAnalysisRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.CVAnalysis, error) {
	var analysis models.CVAnalysis
	if err := r.db.WithContext(ctx).Preload("Document").Where("id = ?", id).First(&analysis).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("find cv analysis", "cv analysis not found")
		}
		return nil, fmt.Errorf("failed to find cv analysis: %w", err)
	}
	return &analysis, nil
}

// Claim moves a queued analysis to processing. It reports false when another
// worker got there first.
func (r *cvAnalysisRepository) Claim(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CVAnalysis{}).
		Where("id = ? AND status = ?", id, models.StatusQueued).
		Updates(map[string]interface{}{
			"status":     models.StatusProcessing,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return false, fmt.Errorf("failed to claim cv analysis: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *cvAnalysisRepository) Complete(ctx context.Context, id uuid.UUID, skills []string, cvScore int) error {
	return r.update(ctx, "complete cv analysis", id, map[string]interface{}{
		"status":     models.StatusCompleted,
		"skills":     pq.StringArray(skills),
		"cv_score":   cvScore,
		"updated_at": time.Now(),
	})
}

func (r *cvAnalysisRepository) Fail(ctx context.Context, id uuid.UUID, errorMsg string) error {
	return r.update(ctx, "fail cv analysis", id, map[string]interface{}{
		"status":        models.StatusFailed,
		"error_message": errorMsg,
		"updated_at":    time.Now(),
	})
}

func (r *cvAnalysisRepository) FindQueued(ctx context.Context, limit int) ([]models.CVAnalysis, error) {
	var analyses []models.CVAnalysis
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusQueued).
		Order("created_at ASC").
		Limit(limit).
		Find(&analyses).Error

	if err != nil {
		return nil, fmt.Errorf("failed to find queued cv analyses: %w", err)
	}
	return analyses, nil
}

func (r *cvAnalysisRepository) update(ctx context.Context, op string, id uuid.UUID, updates map[string]interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&models.CVAnalysis{}).
		Where("id = ?", id).
		Updates(updates)

	if result.Error != nil {
		return fmt.Errorf("failed to %s: %w", op, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound(op, "cv analysis not found")
	}
	return nil
}
