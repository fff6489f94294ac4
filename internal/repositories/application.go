package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"alfredoptarigan/admission-tracker/internal/apperror"
	"alfredoptarigan/admission-tracker/internal/models"
)

// MutateFunc changes a locked record in place. Returning an error aborts the
// transaction and leaves the stored record untouched.
type MutateFunc func(record *models.ApplicationRecord) error

// ApplicationRepository persists one ApplicationRecord per applicant. Upsert
// and Update run the mutation under a row lock.
type ApplicationRepository interface {
	FindByApplicantID(ctx context.Context, applicantID uuid.UUID) (*models.ApplicationRecord, error)
	Exists(ctx context.Context, applicantID uuid.UUID) (bool, error)
	Upsert(ctx context.Context, applicantID uuid.UUID, mutate MutateFunc) (*models.ApplicationRecord, error)
	Update(ctx context.Context, applicantID uuid.UUID, mutate MutateFunc) (*models.ApplicationRecord, error)
}

type applicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) FindByApplicantID(ctx context.Context, applicantID uuid.UUID) (*models.ApplicationRecord, error) {
	var record models.ApplicationRecord
	if err := r.db.WithContext(ctx).Where("applicant_id = ?", applicantID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("find application", "no application record for this applicant")
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return &record, nil
}

func (r *applicationRepository) Exists(ctx context.Context, applicantID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ApplicationRecord{}).
		Where("applicant_id = ?", applicantID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check application: %w", err)
	}
	return count > 0, nil
}

// Upsert creates the record if it is missing, then applies mutate to the
// locked row. Concurrent first saves resolve to a single record.
func (r *applicationRepository) Upsert(ctx context.Context, applicantID uuid.UUID, mutate MutateFunc) (*models.ApplicationRecord, error) {
	var record models.ApplicationRecord

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh := models.NewApplicationRecord(applicantID)
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "applicant_id"}},
			DoNothing: true,
		}).Create(fresh).Error
		if err != nil {
			return fmt.Errorf("failed to insert application: %w", err)
		}

		return lockAndMutate(tx, applicantID, &record, mutate)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Update applies mutate to an existing record.
func (r *applicationRepository) Update(ctx context.Context, applicantID uuid.UUID, mutate MutateFunc) (*models.ApplicationRecord, error) {
	var record models.ApplicationRecord

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return lockAndMutate(tx, applicantID, &record, mutate)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func lockAndMutate(tx *gorm.DB, applicantID uuid.UUID, record *models.ApplicationRecord, mutate MutateFunc) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("applicant_id = ?", applicantID).
		First(record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("update application", "no application record for this applicant")
		}
		return fmt.Errorf("failed to lock application: %w", err)
	}

	if err := mutate(record); err != nil {
		return err
	}

	if err := tx.Save(record).Error; err != nil {
		return fmt.Errorf("failed to save application: %w", err)
	}
	return nil
}
