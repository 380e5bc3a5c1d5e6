package services

import (
	"context"
	"testing"

	apperrors "github.com/sat-prep/question-bank-service/internal/errors"
	"github.com/sat-prep/question-bank-service/internal/models"
	"github.com/sat-prep/question-bank-service/internal/repositories"
	"github.com/sat-prep/question-bank-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newQuestionService(repo *mockRepository) QuestionService {
	return NewQuestionService(repo, testLogger(), validator.New())
}

func createRequest() *CreateQuestionRequest {
	return &CreateQuestionRequest{
		Text:          "What is 7 times 8?",
		Type:          models.MultipleChoice,
		AnswerA:       "54",
		AnswerB:       "56",
		AnswerC:       "58",
		AnswerD:       "64",
		CorrectAnswer: "b",
		SubjectTags:   []string{"arithmetic"},
		Difficulty:    models.DifficultyEasy,
	}
}

func TestCreateQuestionNormalizesDesignator(t *testing.T) {
	repo := newMockRepository()
	var created *models.Question
	repo.question.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*models.Question)
		}).Return(nil)

	svc := newQuestionService(repo)
	question, err := svc.Create(context.Background(), createRequest())
	require.NoError(t, err)

	assert.Equal(t, "B", question.CorrectAnswer)
	assert.Equal(t, []string{"arithmetic"}, question.Tags())
	require.NotNil(t, created)
	assert.Equal(t, question, created)
}

func TestCreateQuestionMissingChoice(t *testing.T) {
	req := createRequest()
	req.AnswerC = ""

	repo := newMockRepository()
	svc := newQuestionService(repo)

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)

	var ve apperrors.ValidationErrors
	require.ErrorAs(t, err, &ve)
	repo.question.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateQuestionDanglingDesignator(t *testing.T) {
	req := createRequest()
	req.CorrectAnswer = "E"

	repo := newMockRepository()
	svc := newQuestionService(repo)

	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	repo.question.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateQuestionPartial(t *testing.T) {
	existing := mcQuestion(7, "A")

	repo := newMockRepository()
	repo.question.On("GetByID", mock.Anything, uint(7)).Return(existing, nil)
	repo.question.On("Update", mock.Anything, existing).Return(nil)

	newText := "Rephrased question?"
	newCorrect := "c"

	svc := newQuestionService(repo)
	updated, err := svc.Update(context.Background(), 7, &UpdateQuestionRequest{
		Text:          &newText,
		CorrectAnswer: &newCorrect,
	})
	require.NoError(t, err)

	assert.Equal(t, "Rephrased question?", updated.Text)
	assert.Equal(t, "C", updated.CorrectAnswer)
	// Untouched fields survive
	assert.Equal(t, "Alpha", updated.AnswerA)
	assert.Equal(t, models.DifficultyEasy, updated.Difficulty)
}

func TestUpdateQuestionNotFound(t *testing.T) {
	repo := newMockRepository()
	repo.question.On("GetByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

	svc := newQuestionService(repo)
	text := "anything"
	_, err := svc.Update(context.Background(), 99, &UpdateQuestionRequest{Text: &text})
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestDeleteQuestionNotFound(t *testing.T) {
	repo := newMockRepository()
	repo.question.On("GetByID", mock.Anything, uint(12)).Return(nil, gorm.ErrRecordNotFound)

	svc := newQuestionService(repo)
	err := svc.Delete(context.Background(), 12)
	assert.ErrorIs(t, err, ErrQuestionNotFound)
	repo.question.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestListQuestionsPassesFilters(t *testing.T) {
	filters := repositories.QuestionFilters{Tags: []string{"geometry"}, Limit: 10, Offset: 20}

	repo := newMockRepository()
	repo.question.On("List", mock.Anything, filters).
		Return([]*models.Question{mcQuestion(1, "A")}, int64(31), nil)

	svc := newQuestionService(repo)
	resp, err := svc.List(context.Background(), filters)
	require.NoError(t, err)

	assert.Equal(t, int64(31), resp.Total)
	assert.Equal(t, 10, resp.Limit)
	assert.Equal(t, 20, resp.Offset)
	assert.Len(t, resp.Questions, 1)
}

func TestTagsAreDeduplicated(t *testing.T) {
	first := mcQuestion(1, "A")
	first.SetTags([]string{"algebra", "linear equations"})
	second := mcQuestion(2, "B")
	second.SetTags([]string{"algebra", "geometry"})

	repo := newMockRepository()
	repo.question.On("List", mock.Anything, repositories.QuestionFilters{}).
		Return([]*models.Question{first, second}, int64(2), nil)

	svc := newQuestionService(repo)
	tags, err := svc.Tags(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"algebra", "linear equations", "geometry"}, tags)
}
