package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	apperrors "github.com/sat-prep/question-bank-service/internal/errors"
	"github.com/sat-prep/question-bank-service/internal/models"
	"github.com/sat-prep/question-bank-service/internal/repositories"
	"github.com/sat-prep/question-bank-service/internal/validator"
	"gorm.io/gorm"
)

// WorksheetService generates worksheets from the question bank and
// materializes them for rendering and grading.
type WorksheetService interface {
	Generate(ctx context.Context, req *GenerateWorksheetRequest) (*GeneratedWorksheet, error)
	GetByID(ctx context.Context, id uint) (*models.Worksheet, error)
	// Materialize rebuilds the full presentation of a stored worksheet
	// from its snapshot, never by re-permuting the bank questions.
	Materialize(ctx context.Context, id uint) (*GeneratedWorksheet, error)
	List(ctx context.Context) ([]*models.Worksheet, error)
	AttachPDF(ctx context.Context, id uint, pdfPath string) error
	Delete(ctx context.Context, id uint) error
	AnswerKey(ctx context.Context, id uint) (map[uint]string, error)
}

type GenerateWorksheetRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description,omitempty"`

	// QuestionIDs selects questions explicitly, in the given order before
	// shuffling. When empty, the filter fields below select instead.
	QuestionIDs []uint                  `json:"question_ids,omitempty"`
	Tags        []string                `json:"tags,omitempty"`
	Difficulty  *models.DifficultyLevel `json:"difficulty,omitempty"`
	Type        *models.QuestionType    `json:"type,omitempty"`
	Count       int                     `json:"count,omitempty" validate:"omitempty,min=1"`

	ShuffleQuestions bool `json:"shuffle_questions"`
	ShuffleChoices   bool `json:"shuffle_choices"`

	// Seed pins the permutation, used to reproduce a worksheet exactly.
	Seed *int64 `json:"seed,omitempty"`
}

// GeneratedWorksheet is the fully materialized presentation of a
// worksheet: questions in their final order with their final choice order.
type GeneratedWorksheet struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	PDFPath     *string            `json:"pdf_path,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	Questions   []RenderedQuestion `json:"questions"`
}

// RenderedQuestion pairs the canonical question content with the
// worksheet-local choice order and designator.
type RenderedQuestion struct {
	Number     int                    `json:"number"`
	QuestionID uint                   `json:"question_id"`
	Type       models.QuestionType    `json:"type"`
	Text       string                 `json:"text"`
	ImagePath  *string                `json:"image_path,omitempty"`
	Choices    []models.Choice        `json:"choices,omitempty"`
	// CorrectAnswer is the worksheet-local designator, or the canonical
	// answer text for free response.
	CorrectAnswer string                 `json:"correct_answer"`
	Explanation   string                 `json:"explanation,omitempty"`
	Difficulty    models.DifficultyLevel `json:"difficulty"`
}

type worksheetService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewWorksheetService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) WorksheetService {
	return &worksheetService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== GENERATION =====

func (s *worksheetService) Generate(ctx context.Context, req *GenerateWorksheetRequest) (*GeneratedWorksheet, error) {
	s.logger.Info("Generating worksheet", "title", req.Title, "explicit_ids", len(req.QuestionIDs))

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	questions, err := s.selectQuestions(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrWorksheetEmpty
	}

	rng := newRand(req.Seed)
	if req.ShuffleQuestions {
		rng.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
	}

	snapshots := make([]models.QuestionSnapshot, 0, len(questions))
	ids := make([]uint, 0, len(questions))
	for _, question := range questions {
		snapshot, err := buildSnapshot(question, req.ShuffleChoices, rng)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
		ids = append(ids, question.ID)
	}

	worksheet := &models.Worksheet{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
	}
	worksheet.SetQuestionIDs(ids)
	worksheet.SetSnapshots(snapshots)

	if err := s.repo.Worksheet().Create(ctx, worksheet); err != nil {
		return nil, fmt.Errorf("failed to create worksheet: %w", err)
	}

	s.logger.Info("Generated worksheet", "worksheet_id", worksheet.ID, "questions", len(questions))
	return s.materialize(worksheet, questions)
}

// selectQuestions resolves the request to concrete bank questions, either
// by explicit IDs or by filter.
func (s *worksheetService) selectQuestions(ctx context.Context, req *GenerateWorksheetRequest) ([]*models.Question, error) {
	if len(req.QuestionIDs) > 0 {
		questions, err := s.repo.Question().GetByIDs(ctx, req.QuestionIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to load questions: %w", err)
		}
		byID := make(map[uint]*models.Question, len(questions))
		for _, q := range questions {
			byID[q.ID] = q
		}
		ordered := make([]*models.Question, 0, len(req.QuestionIDs))
		for _, id := range req.QuestionIDs {
			question, ok := byID[id]
			if !ok {
				return nil, fmt.Errorf("%w: id %d", ErrQuestionNotFound, id)
			}
			ordered = append(ordered, question)
		}
		return ordered, nil
	}

	filters := repositories.QuestionFilters{
		Tags:       req.Tags,
		Difficulty: req.Difficulty,
		Type:       req.Type,
	}
	questions, _, err := s.repo.Question().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to select questions: %w", err)
	}
	if req.Count > 0 && req.Count < len(questions) {
		// Sample without replacement so the cut is unbiased.
		rng := newRand(req.Seed)
		rng.Shuffle(len(questions), func(i, j int) {
			questions[i], questions[j] = questions[j], questions[i]
		})
		questions = questions[:req.Count]
	}
	return questions, nil
}

// buildSnapshot fixes a question's worksheet-local presentation. Choice
// permutation is a bijection over the present choices; the correct
// designator is tracked by position, not by looking the letter up again.
func buildSnapshot(question *models.Question, shuffle bool, rng *rand.Rand) (models.QuestionSnapshot, error) {
	snapshot := models.QuestionSnapshot{
		QuestionID: question.ID,
		Type:       question.Type,
	}

	if question.IsFreeResponse() {
		snapshot.CorrectAnswer = question.CorrectAnswer
		return snapshot, nil
	}

	choices := question.Choices()
	correct := strings.ToUpper(strings.TrimSpace(question.CorrectAnswer))
	correctIdx := -1
	for i, choice := range choices {
		if choice.Letter == correct {
			correctIdx = i
			break
		}
	}
	if correctIdx < 0 {
		return snapshot, apperrors.NewIntegrityError(
			"question", question.ID, "correct_answer",
			"designates a choice that is not present", question.CorrectAnswer)
	}

	order := make([]int, len(choices))
	for i := range order {
		order[i] = i
	}
	if shuffle && len(choices) > 1 {
		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	permuted := make([]models.Choice, len(choices))
	for newPos, oldPos := range order {
		choice := choices[oldPos]
		choice.Letter = models.AnswerLetters[newPos]
		permuted[newPos] = choice
		if oldPos == correctIdx {
			snapshot.CorrectAnswer = choice.Letter
		}
	}
	snapshot.Choices = permuted
	return snapshot, nil
}

// ===== LOOKUP =====

func (s *worksheetService) GetByID(ctx context.Context, id uint) (*models.Worksheet, error) {
	worksheet, err := s.repo.Worksheet().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorksheetNotFound
		}
		return nil, fmt.Errorf("failed to get worksheet: %w", err)
	}
	return worksheet, nil
}

func (s *worksheetService) Materialize(ctx context.Context, id uint) (*GeneratedWorksheet, error) {
	worksheet, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	questions, err := s.repo.Question().GetByIDs(ctx, worksheet.QuestionIDList())
	if err != nil {
		return nil, fmt.Errorf("failed to load worksheet questions: %w", err)
	}
	return s.materialize(worksheet, questions)
}

func (s *worksheetService) List(ctx context.Context) ([]*models.Worksheet, error) {
	worksheets, err := s.repo.Worksheet().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list worksheets: %w", err)
	}
	return worksheets, nil
}

func (s *worksheetService) AttachPDF(ctx context.Context, id uint, pdfPath string) error {
	if err := s.repo.Worksheet().AttachPDF(ctx, id, pdfPath); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorksheetNotFound
		}
		return fmt.Errorf("failed to attach PDF: %w", err)
	}
	return nil
}

func (s *worksheetService) Delete(ctx context.Context, id uint) error {
	if err := s.repo.Worksheet().Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorksheetNotFound
		}
		return fmt.Errorf("failed to delete worksheet: %w", err)
	}
	s.logger.Info("Deleted worksheet", "worksheet_id", id)
	return nil
}

// AnswerKey maps question IDs to the worksheet-local correct designator.
func (s *worksheetService) AnswerKey(ctx context.Context, id uint) (map[uint]string, error) {
	worksheet, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	snapshots := worksheet.Snapshots()
	key := make(map[uint]string, len(snapshots))
	for _, snapshot := range snapshots {
		key[snapshot.QuestionID] = snapshot.CorrectAnswer
	}
	return key, nil
}

// materialize joins the immutable snapshot with the canonical question
// rows for display content.
func (s *worksheetService) materialize(worksheet *models.Worksheet, questions []*models.Question) (*GeneratedWorksheet, error) {
	snapshots := worksheet.Snapshots()

	byID := make(map[uint]*models.Question, len(questions))
	for _, question := range questions {
		byID[question.ID] = question
	}

	rendered := make([]RenderedQuestion, 0, len(snapshots))
	for i, snapshot := range snapshots {
		question, ok := byID[snapshot.QuestionID]
		if !ok {
			return nil, fmt.Errorf("%w: id %d", ErrWorksheetQuestionGone, snapshot.QuestionID)
		}
		rendered = append(rendered, RenderedQuestion{
			Number:        i + 1,
			QuestionID:    question.ID,
			Type:          snapshot.Type,
			Text:          question.Text,
			ImagePath:     question.ImagePath,
			Choices:       snapshot.Choices,
			CorrectAnswer: snapshot.CorrectAnswer,
			Explanation:   question.Explanation,
			Difficulty:    question.Difficulty,
		})
	}

	return &GeneratedWorksheet{
		ID:          worksheet.ID,
		Title:       worksheet.Title,
		Description: worksheet.Description,
		PDFPath:     worksheet.PDFPath,
		CreatedAt:   worksheet.CreatedAt,
		Questions:   rendered,
	}, nil
}

func newRand(seed *int64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewSource(*seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
