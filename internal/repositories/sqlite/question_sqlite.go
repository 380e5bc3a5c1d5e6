package sqlite

import (
	"context"
	"fmt"

	"github.com/sat-prep/question-bank-service/internal/models"
	"github.com/sat-prep/question-bank-service/internal/repositories"
	"gorm.io/gorm"
)

type QuestionSQLite struct {
	db *gorm.DB
}

func NewQuestionSQLite(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionSQLite{db: db}
}

// Create creates a new question
func (q *QuestionSQLite) Create(ctx context.Context, question *models.Question) error {
	if err := q.db.WithContext(ctx).Create(question).Error; err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

// CreateBatch creates several questions in one transaction. Either all
// rows are persisted or none are.
func (q *QuestionSQLite) CreateBatch(ctx context.Context, questions []*models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, question := range questions {
			if err := tx.Create(question).Error; err != nil {
				return fmt.Errorf("failed to create question: %w", err)
			}
		}
		return nil
	})
}

// GetByID retrieves a question by ID
func (q *QuestionSQLite) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	var question models.Question
	err := q.db.WithContext(ctx).First(&question, id).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// GetByIDs retrieves the questions matching the given IDs. Missing IDs
// are silently absent from the result, callers compare lengths.
func (q *QuestionSQLite) GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var questions []*models.Question
	err := q.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}
	return questions, nil
}

// Update updates a question
func (q *QuestionSQLite) Update(ctx context.Context, question *models.Question) error {
	return q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.Question
		if err := tx.First(&current, question.ID).Error; err != nil {
			return fmt.Errorf("question not found: %w", err)
		}
		if err := tx.Save(question).Error; err != nil {
			return fmt.Errorf("failed to update question: %w", err)
		}
		return nil
	})
}

// Delete removes a question
func (q *QuestionSQLite) Delete(ctx context.Context, id uint) error {
	result := q.db.WithContext(ctx).Delete(&models.Question{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List retrieves questions with filters and pagination
func (q *QuestionSQLite) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	query := q.db.WithContext(ctx).Model(&models.Question{})
	query = q.applyFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var questions []*models.Question
	err := query.Order("created_at DESC").Find(&questions).Error
	if err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}

// Count returns how many questions match the filters
func (q *QuestionSQLite) Count(ctx context.Context, filters repositories.QuestionFilters) (int64, error) {
	query := q.db.WithContext(ctx).Model(&models.Question{})
	query = q.applyFilters(query, filters)

	var total int64
	err := query.Count(&total).Error
	return total, err
}

// applyFilters applies common filters to a query
func (q *QuestionSQLite) applyFilters(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	if filters.Search != "" {
		search := fmt.Sprintf("%%%s%%", filters.Search)
		query = query.Where("text LIKE ? OR explanation LIKE ?", search, search)
	}
	if filters.Difficulty != nil {
		query = query.Where("difficulty = ?", *filters.Difficulty)
	}
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if len(filters.ExcludeIDs) > 0 {
		query = query.Where("id NOT IN ?", filters.ExcludeIDs)
	}
	// Tags live in a JSON array column. SQLite stores it as text, so a
	// quoted substring match finds exact tag membership.
	for _, tag := range filters.Tags {
		query = query.Where("subject_tags LIKE ?", fmt.Sprintf(`%%"%s"%%`, tag))
	}
	return query
}
