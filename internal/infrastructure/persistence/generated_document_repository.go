package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/docgen/backend/internal/domain/document"
	"github.com/docgen/backend/internal/domain/shared"
	"github.com/docgen/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormGeneratedDocumentRepository implements
// document.GeneratedDocumentRepository using GORM
type GormGeneratedDocumentRepository struct {
	db *gorm.DB
}

// NewGormGeneratedDocumentRepository creates a new repository instance
func NewGormGeneratedDocumentRepository(db *gorm.DB) *GormGeneratedDocumentRepository {
	return &GormGeneratedDocumentRepository{db: db}
}

// Save persists a generated document metadata record
func (r *GormGeneratedDocumentRepository) Save(ctx context.Context, doc *document.GeneratedDocument) error {
	model := models.GeneratedDocumentModelFromDomain(doc)
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return fmt.Errorf("failed to save generated document: %w", err)
	}
	return nil
}

// FindByID retrieves a generated document record by ID
func (r *GormGeneratedDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.GeneratedDocument, error) {
	var model models.GeneratedDocumentModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find generated document: %w", err)
	}
	return model.ToDomain(), nil
}

// FindByClient retrieves all generated document records for a client,
// newest first
func (r *GormGeneratedDocumentRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]document.GeneratedDocument, error) {
	var rows []models.GeneratedDocumentModel
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list generated documents: %w", err)
	}
	result := make([]document.GeneratedDocument, 0, len(rows))
	for i := range rows {
		result = append(result, *rows[i].ToDomain())
	}
	return result, nil
}

// Ensure GormGeneratedDocumentRepository implements the port
var _ document.GeneratedDocumentRepository = (*GormGeneratedDocumentRepository)(nil)
