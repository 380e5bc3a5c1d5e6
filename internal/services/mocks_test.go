package services

import (
	"context"
	"io"
	"log/slog"

	"github.com/sat-prep/question-bank-service/internal/config"
	"github.com/sat-prep/question-bank-service/internal/models"
	"github.com/sat-prep/question-bank-service/internal/repositories"
	"github.com/stretchr/testify/mock"
)

// MockQuestionRepository is a mock implementation of QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) CreateBatch(ctx context.Context, questions []*models.Question) error {
	args := m.Called(ctx, questions)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) GetByIDs(ctx context.Context, ids []uint) ([]*models.Question, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Question), args.Error(1)
}

func (m *MockQuestionRepository) Update(ctx context.Context, question *models.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockQuestionRepository) List(ctx context.Context, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*models.Question), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuestionRepository) Count(ctx context.Context, filters repositories.QuestionFilters) (int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).(int64), args.Error(1)
}

// MockWorksheetRepository is a mock implementation of WorksheetRepository
type MockWorksheetRepository struct {
	mock.Mock
}

func (m *MockWorksheetRepository) Create(ctx context.Context, worksheet *models.Worksheet) error {
	args := m.Called(ctx, worksheet)
	return args.Error(0)
}

func (m *MockWorksheetRepository) GetByID(ctx context.Context, id uint) (*models.Worksheet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Worksheet), args.Error(1)
}

func (m *MockWorksheetRepository) List(ctx context.Context) ([]*models.Worksheet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Worksheet), args.Error(1)
}

func (m *MockWorksheetRepository) AttachPDF(ctx context.Context, id uint, pdfPath string) error {
	args := m.Called(ctx, id, pdfPath)
	return args.Error(0)
}

func (m *MockWorksheetRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockResponseRepository is a mock implementation of ResponseRepository
type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) Create(ctx context.Context, response *models.StudentResponse) error {
	args := m.Called(ctx, response)
	return args.Error(0)
}

func (m *MockResponseRepository) GetByStudent(ctx context.Context, studentID string) ([]*models.StudentResponse, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StudentResponse), args.Error(1)
}

func (m *MockResponseRepository) GetByWorksheet(ctx context.Context, worksheetID uint) ([]*models.StudentResponse, error) {
	args := m.Called(ctx, worksheetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StudentResponse), args.Error(1)
}

func (m *MockResponseRepository) GetByQuestion(ctx context.Context, questionID uint) ([]*models.StudentResponse, error) {
	args := m.Called(ctx, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StudentResponse), args.Error(1)
}

func (m *MockResponseRepository) GetByStudentAndWorksheet(ctx context.Context, studentID string, worksheetID uint) ([]*models.StudentResponse, error) {
	args := m.Called(ctx, studentID, worksheetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StudentResponse), args.Error(1)
}

func (m *MockResponseRepository) ListAll(ctx context.Context) ([]*models.StudentResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StudentResponse), args.Error(1)
}

func (m *MockResponseRepository) DistinctStudents(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockResponseRepository) DeleteByStudentAndWorksheet(ctx context.Context, studentID string, worksheetID uint) error {
	args := m.Called(ctx, studentID, worksheetID)
	return args.Error(0)
}

// mockRepository bundles the three mocks behind the Repository interface
type mockRepository struct {
	question  *MockQuestionRepository
	worksheet *MockWorksheetRepository
	response  *MockResponseRepository
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		question:  new(MockQuestionRepository),
		worksheet: new(MockWorksheetRepository),
		response:  new(MockResponseRepository),
	}
}

func (m *mockRepository) Question() repositories.QuestionRepository   { return m.question }
func (m *mockRepository) Worksheet() repositories.WorksheetRepository { return m.worksheet }
func (m *mockRepository) Response() repositories.ResponseRepository   { return m.response }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	cfg := config.Default()
	return cfg
}
