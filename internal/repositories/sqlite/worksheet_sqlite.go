package sqlite

import (
	"context"
	"fmt"

	"github.com/sat-prep/question-bank-service/internal/models"
	"github.com/sat-prep/question-bank-service/internal/repositories"
	"gorm.io/gorm"
)

type WorksheetSQLite struct {
	db *gorm.DB
}

func NewWorksheetSQLite(db *gorm.DB) repositories.WorksheetRepository {
	return &WorksheetSQLite{db: db}
}

// Create persists a worksheet together with its question snapshot
func (w *WorksheetSQLite) Create(ctx context.Context, worksheet *models.Worksheet) error {
	if err := w.db.WithContext(ctx).Create(worksheet).Error; err != nil {
		return fmt.Errorf("failed to create worksheet: %w", err)
	}
	return nil
}

// GetByID retrieves a worksheet by ID
func (w *WorksheetSQLite) GetByID(ctx context.Context, id uint) (*models.Worksheet, error) {
	var worksheet models.Worksheet
	err := w.db.WithContext(ctx).First(&worksheet, id).Error
	if err != nil {
		return nil, err
	}
	return &worksheet, nil
}

// List retrieves all worksheets, newest first
func (w *WorksheetSQLite) List(ctx context.Context) ([]*models.Worksheet, error) {
	var worksheets []*models.Worksheet
	err := w.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&worksheets).Error
	if err != nil {
		return nil, err
	}
	return worksheets, nil
}

// AttachPDF records the rendered PDF path on a worksheet
func (w *WorksheetSQLite) AttachPDF(ctx context.Context, id uint, pdfPath string) error {
	result := w.db.WithContext(ctx).
		Model(&models.Worksheet{}).
		Where("id = ?", id).
		Update("pdf_path", pdfPath)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a worksheet and the responses recorded against it
func (w *WorksheetSQLite) Delete(ctx context.Context, id uint) error {
	return w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("worksheet_id = ?", id).Delete(&models.StudentResponse{}).Error; err != nil {
			return fmt.Errorf("failed to delete worksheet responses: %w", err)
		}
		result := tx.Delete(&models.Worksheet{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
