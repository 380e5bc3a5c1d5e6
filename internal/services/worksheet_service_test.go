package services

import (
	"context"
	"sort"
	"testing"

	apperrors "github.com/sat-prep/question-bank-service/internal/errors"
	"github.com/sat-prep/question-bank-service/internal/models"
	"github.com/sat-prep/question-bank-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newWorksheetService(repo *mockRepository) WorksheetService {
	return NewWorksheetService(repo, testLogger(), validator.New())
}

func mcQuestion(id uint, correct string) *models.Question {
	q := &models.Question{
		ID:            id,
		Text:          "What is 2 + 2?",
		Type:          models.MultipleChoice,
		AnswerA:       "Alpha",
		AnswerB:       "Bravo",
		AnswerC:       "Charlie",
		AnswerD:       "Delta",
		CorrectAnswer: correct,
		Difficulty:    models.DifficultyEasy,
	}
	q.SetTags([]string{"algebra"})
	return q
}

func frQuestion(id uint) *models.Question {
	return &models.Question{
		ID:            id,
		Text:          "Solve for x: x + 3 = 7",
		Type:          models.FreeResponse,
		CorrectAnswer: "4",
		Difficulty:    models.DifficultyMedium,
	}
}

func int64Ptr(v int64) *int64 { return &v }

func TestGenerateShufflesChoicesBijectively(t *testing.T) {
	repo := newMockRepository()
	question := mcQuestion(1, "C")
	repo.question.On("GetByIDs", mock.Anything, []uint{1}).Return([]*models.Question{question}, nil)
	repo.worksheet.On("Create", mock.Anything, mock.AnythingOfType("*models.Worksheet")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Worksheet).ID = 10
		}).Return(nil)

	svc := newWorksheetService(repo)
	result, err := svc.Generate(context.Background(), &GenerateWorksheetRequest{
		Title:          "Practice Set",
		QuestionIDs:    []uint{1},
		ShuffleChoices: true,
		Seed:           int64Ptr(42),
	})
	require.NoError(t, err)
	require.Len(t, result.Questions, 1)

	rendered := result.Questions[0]
	require.Len(t, rendered.Choices, 4)

	// Letters are consecutive and every original text appears exactly once
	var letters, texts []string
	for _, choice := range rendered.Choices {
		letters = append(letters, choice.Letter)
		texts = append(texts, choice.Text)
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, letters)
	sort.Strings(texts)
	assert.Equal(t, []string{"Alpha", "Bravo", "Charlie", "Delta"}, texts)

	// The designator still points at the originally correct text
	var correctText string
	for _, choice := range rendered.Choices {
		if choice.Letter == rendered.CorrectAnswer {
			correctText = choice.Text
		}
	}
	assert.Equal(t, "Charlie", correctText)
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	generate := func() *GeneratedWorksheet {
		repo := newMockRepository()
		repo.question.On("GetByIDs", mock.Anything, []uint{1}).
			Return([]*models.Question{mcQuestion(1, "B")}, nil)
		repo.worksheet.On("Create", mock.Anything, mock.Anything).Return(nil)

		svc := newWorksheetService(repo)
		result, err := svc.Generate(context.Background(), &GenerateWorksheetRequest{
			Title:          "Seeded",
			QuestionIDs:    []uint{1},
			ShuffleChoices: true,
			Seed:           int64Ptr(7),
		})
		require.NoError(t, err)
		return result
	}

	first := generate()
	second := generate()
	assert.Equal(t, first.Questions[0].Choices, second.Questions[0].Choices)
	assert.Equal(t, first.Questions[0].CorrectAnswer, second.Questions[0].CorrectAnswer)
}

func TestGenerateWithoutShuffleKeepsOrder(t *testing.T) {
	repo := newMockRepository()
	repo.question.On("GetByIDs", mock.Anything, []uint{1}).
		Return([]*models.Question{mcQuestion(1, "B")}, nil)
	repo.worksheet.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newWorksheetService(repo)
	result, err := svc.Generate(context.Background(), &GenerateWorksheetRequest{
		Title:       "Stable",
		QuestionIDs: []uint{1},
	})
	require.NoError(t, err)

	choices := result.Questions[0].Choices
	assert.Equal(t, "Alpha", choices[0].Text)
	assert.Equal(t, "Bravo", choices[1].Text)
	assert.Equal(t, "Charlie", choices[2].Text)
	assert.Equal(t, "Delta", choices[3].Text)
	assert.Equal(t, "B", result.Questions[0].CorrectAnswer)
}

func TestGenerateFreeResponseHasNoChoices(t *testing.T) {
	repo := newMockRepository()
	repo.question.On("GetByIDs", mock.Anything, []uint{2}).
		Return([]*models.Question{frQuestion(2)}, nil)
	repo.worksheet.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newWorksheetService(repo)
	result, err := svc.Generate(context.Background(), &GenerateWorksheetRequest{
		Title:          "Free Response",
		QuestionIDs:    []uint{2},
		ShuffleChoices: true,
		Seed:           int64Ptr(1),
	})
	require.NoError(t, err)

	rendered := result.Questions[0]
	assert.Empty(t, rendered.Choices)
	assert.Equal(t, "4", rendered.CorrectAnswer)
}

func TestGenerateSingleChoicePassesThrough(t *testing.T) {
	question := &models.Question{
		ID:            3,
		Text:          "Only one option",
		Type:          models.MultipleChoice,
		AnswerA:       "Lonely",
		CorrectAnswer: "A",
		Difficulty:    models.DifficultyEasy,
	}
	repo := newMockRepository()
	repo.question.On("GetByIDs", mock.Anything, []uint{3}).
		Return([]*models.Question{question}, nil)
	repo.worksheet.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := newWorksheetService(repo)
	result, err := svc.Generate(context.Background(), &GenerateWorksheetRequest{
		Title:          "Single",
		QuestionIDs:    []uint{3},
		ShuffleChoices: true,
		Seed:           int64Ptr(5),
	})
	require.NoError(t, err)

	rendered := result.Questions[0]
	require.Len(t, rendered.Choices, 1)
	assert.Equal(t, "A", rendered.Choices[0].Letter)
	assert.Equal(t, "A", rendered.CorrectAnswer)
}

func TestGenerateRejectsDanglingDesignator(t *testing.T) {
	// Correct answer designates choice D, but D has no content.
	question := &models.Question{
		ID:            4,
		Text:          "Broken record",
		Type:          models.MultipleChoice,
		AnswerA:       "One",
		AnswerB:       "Two",
		AnswerC:       "Three",
		CorrectAnswer: "D",
		Difficulty:    models.DifficultyHard,
	}
	repo := newMockRepository()
	repo.question.On("GetByIDs", mock.Anything, []uint{4}).
		Return([]*models.Question{question}, nil)

	svc := newWorksheetService(repo)
	_, err := svc.Generate(context.Background(), &GenerateWorksheetRequest{
		Title:          "Broken",
		QuestionIDs:    []uint{4},
		ShuffleChoices: true,
	})
	require.Error(t, err)

	var integrityErr *apperrors.IntegrityError
	require.ErrorAs(t, err, &integrityErr)
	assert.Equal(t, uint(4), integrityErr.ID)
	assert.Equal(t, "correct_answer", integrityErr.Field)
	repo.worksheet.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGeneratePersistsSnapshot(t *testing.T) {
	repo := newMockRepository()
	repo.question.On("GetByIDs", mock.Anything, []uint{1}).
		Return([]*models.Question{mcQuestion(1, "A")}, nil)

	var persisted *models.Worksheet
	repo.worksheet.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*models.Worksheet)
			persisted.ID = 99
		}).Return(nil)

	svc := newWorksheetService(repo)
	result, err := svc.Generate(context.Background(), &GenerateWorksheetRequest{
		Title:          "Persisted",
		QuestionIDs:    []uint{1},
		ShuffleChoices: true,
		Seed:           int64Ptr(3),
	})
	require.NoError(t, err)
	require.NotNil(t, persisted)

	assert.Equal(t, []uint{1}, persisted.QuestionIDList())
	snapshots := persisted.Snapshots()
	require.Len(t, snapshots, 1)
	assert.Equal(t, result.Questions[0].Choices, snapshots[0].Choices)
	assert.Equal(t, result.Questions[0].CorrectAnswer, snapshots[0].CorrectAnswer)
	assert.Equal(t, uint(99), result.ID)
}

func TestGenerateEmptySelection(t *testing.T) {
	repo := newMockRepository()
	repo.question.On("List", mock.Anything, mock.Anything).
		Return([]*models.Question{}, int64(0), nil)

	svc := newWorksheetService(repo)
	_, err := svc.Generate(context.Background(), &GenerateWorksheetRequest{
		Title: "Nothing Matches",
		Tags:  []string{"nonexistent"},
	})
	assert.ErrorIs(t, err, ErrWorksheetEmpty)
}

func TestGenerateMissingExplicitQuestion(t *testing.T) {
	repo := newMockRepository()
	repo.question.On("GetByIDs", mock.Anything, []uint{1, 2}).
		Return([]*models.Question{mcQuestion(1, "A")}, nil)

	svc := newWorksheetService(repo)
	_, err := svc.Generate(context.Background(), &GenerateWorksheetRequest{
		Title:       "Partial",
		QuestionIDs: []uint{1, 2},
	})
	assert.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestMaterializeUsesStoredSnapshot(t *testing.T) {
	// The snapshot deliberately disagrees with the canonical choice order
	// to prove materialization never re-derives it.
	worksheet := &models.Worksheet{ID: 10, Title: "Stored"}
	worksheet.SetQuestionIDs([]uint{1})
	worksheet.SetSnapshots([]models.QuestionSnapshot{{
		QuestionID: 1,
		Type:       models.MultipleChoice,
		Choices: []models.Choice{
			{Letter: "A", Text: "Delta"},
			{Letter: "B", Text: "Charlie"},
			{Letter: "C", Text: "Bravo"},
			{Letter: "D", Text: "Alpha"},
		},
		CorrectAnswer: "B",
	}})

	repo := newMockRepository()
	repo.worksheet.On("GetByID", mock.Anything, uint(10)).Return(worksheet, nil)
	repo.question.On("GetByIDs", mock.Anything, []uint{1}).
		Return([]*models.Question{mcQuestion(1, "C")}, nil)

	svc := newWorksheetService(repo)
	result, err := svc.Materialize(context.Background(), 10)
	require.NoError(t, err)

	rendered := result.Questions[0]
	assert.Equal(t, "Delta", rendered.Choices[0].Text)
	assert.Equal(t, "B", rendered.CorrectAnswer)
}

func TestAnswerKey(t *testing.T) {
	worksheet := &models.Worksheet{ID: 11}
	worksheet.SetSnapshots([]models.QuestionSnapshot{
		{QuestionID: 1, Type: models.MultipleChoice, CorrectAnswer: "C"},
		{QuestionID: 2, Type: models.FreeResponse, CorrectAnswer: "42"},
	})

	repo := newMockRepository()
	repo.worksheet.On("GetByID", mock.Anything, uint(11)).Return(worksheet, nil)

	svc := newWorksheetService(repo)
	key, err := svc.AnswerKey(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, map[uint]string{1: "C", 2: "42"}, key)
}
