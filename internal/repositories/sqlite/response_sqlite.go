package sqlite

import (
	"context"
	"fmt"

	"github.com/sat-prep/question-bank-service/internal/models"
	"github.com/sat-prep/question-bank-service/internal/repositories"
	"gorm.io/gorm"
)

type ResponseSQLite struct {
	db *gorm.DB
}

func NewResponseSQLite(db *gorm.DB) repositories.ResponseRepository {
	return &ResponseSQLite{db: db}
}

// Create records a graded response. Repeats of the same question by the
// same student are kept as separate rows.
func (r *ResponseSQLite) Create(ctx context.Context, response *models.StudentResponse) error {
	if err := r.db.WithContext(ctx).Create(response).Error; err != nil {
		return fmt.Errorf("failed to record response: %w", err)
	}
	return nil
}

// GetByStudent retrieves all responses by a student, oldest first
func (r *ResponseSQLite) GetByStudent(ctx context.Context, studentID string) ([]*models.StudentResponse, error) {
	var responses []*models.StudentResponse
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at ASC").
		Find(&responses).Error
	return responses, err
}

// GetByWorksheet retrieves all responses recorded against a worksheet
func (r *ResponseSQLite) GetByWorksheet(ctx context.Context, worksheetID uint) ([]*models.StudentResponse, error) {
	var responses []*models.StudentResponse
	err := r.db.WithContext(ctx).
		Where("worksheet_id = ?", worksheetID).
		Order("created_at ASC").
		Find(&responses).Error
	return responses, err
}

// GetByQuestion retrieves all responses recorded against a question
func (r *ResponseSQLite) GetByQuestion(ctx context.Context, questionID uint) ([]*models.StudentResponse, error) {
	var responses []*models.StudentResponse
	err := r.db.WithContext(ctx).
		Where("question_id = ?", questionID).
		Order("created_at ASC").
		Find(&responses).Error
	return responses, err
}

// GetByStudentAndWorksheet retrieves one student's responses on one worksheet
func (r *ResponseSQLite) GetByStudentAndWorksheet(ctx context.Context, studentID string, worksheetID uint) ([]*models.StudentResponse, error) {
	var responses []*models.StudentResponse
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND worksheet_id = ?", studentID, worksheetID).
		Order("created_at ASC").
		Find(&responses).Error
	return responses, err
}

// ListAll retrieves every recorded response
func (r *ResponseSQLite) ListAll(ctx context.Context) ([]*models.StudentResponse, error) {
	var responses []*models.StudentResponse
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&responses).Error
	return responses, err
}

// DistinctStudents lists the IDs of students with at least one response
func (r *ResponseSQLite) DistinctStudents(ctx context.Context) ([]string, error) {
	var students []string
	err := r.db.WithContext(ctx).
		Model(&models.StudentResponse{}).
		Distinct("student_id").
		Order("student_id ASC").
		Pluck("student_id", &students).Error
	return students, err
}

// DeleteByStudentAndWorksheet clears one student's responses on one
// worksheet so the attempt can be retaken from scratch.
func (r *ResponseSQLite) DeleteByStudentAndWorksheet(ctx context.Context, studentID string, worksheetID uint) error {
	return r.db.WithContext(ctx).
		Where("student_id = ? AND worksheet_id = ?", studentID, worksheetID).
		Delete(&models.StudentResponse{}).Error
}
