package repositories

import (
	"context"

	"github.com/sat-prep/question-bank-service/internal/models"
)

// QuestionFilters narrows question queries. Zero values mean "no filter".
type QuestionFilters struct {
	Search     string
	Tags       []string
	Difficulty *models.DifficultyLevel
	Type       *models.QuestionType
	ExcludeIDs []uint

	Limit  int
	Offset int
}

// QuestionRepository interface for question persistence
type QuestionRepository interface {
	Create(ctx context.Context, question *models.Question) error
	CreateBatch(ctx context.Context, questions []*models.Question) error
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error)
	Update(ctx context.Context, question *models.Question) error
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filters QuestionFilters) ([]*models.Question, int64, error)
	Count(ctx context.Context, filters QuestionFilters) (int64, error)
}

// WorksheetRepository interface for worksheet persistence
type WorksheetRepository interface {
	Create(ctx context.Context, worksheet *models.Worksheet) error
	GetByID(ctx context.Context, id uint) (*models.Worksheet, error)
	List(ctx context.Context) ([]*models.Worksheet, error)
	// AttachPDF records the generated PDF path, the only post-creation
	// mutation a worksheet allows.
	AttachPDF(ctx context.Context, id uint, pdfPath string) error
	Delete(ctx context.Context, id uint) error
}

// ResponseRepository interface for recorded student responses
type ResponseRepository interface {
	Create(ctx context.Context, response *models.StudentResponse) error

	GetByStudent(ctx context.Context, studentID string) ([]*models.StudentResponse, error)
	GetByWorksheet(ctx context.Context, worksheetID uint) ([]*models.StudentResponse, error)
	GetByQuestion(ctx context.Context, questionID uint) ([]*models.StudentResponse, error)
	GetByStudentAndWorksheet(ctx context.Context, studentID string, worksheetID uint) ([]*models.StudentResponse, error)
	ListAll(ctx context.Context) ([]*models.StudentResponse, error)

	DistinctStudents(ctx context.Context) ([]string, error)
	DeleteByStudentAndWorksheet(ctx context.Context, studentID string, worksheetID uint) error
}

// Repository aggregates the per-entity repositories behind one handle.
type Repository interface {
	Question() QuestionRepository
	Worksheet() WorksheetRepository
	Response() ResponseRepository
}
