package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/admission-tracker/internal/apperror"
	"alfredoptarigan/admission-tracker/internal/models"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *models.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (d *documentRepository) Create(ctx context.Context, document *models.Document) error {
	if err := d.db.WithContext(ctx).Create(document).Error; err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (d *documentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var doc models.Document
	if err := d.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("find document", "document not found")
		}
		return nil, fmt.Errorf("failed to find document: %w", err)
	}
	return &doc, nil
}
