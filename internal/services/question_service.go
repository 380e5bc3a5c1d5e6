package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sat-prep/question-bank-service/internal/models"
	"github.com/sat-prep/question-bank-service/internal/repositories"
	"github.com/sat-prep/question-bank-service/internal/validator"
	"gorm.io/gorm"
)

// QuestionService handles CRUD and lookup for bank questions
type QuestionService interface {
	Create(ctx context.Context, req *CreateQuestionRequest) (*models.Question, error)
	GetByID(ctx context.Context, id uint) (*models.Question, error)
	Update(ctx context.Context, id uint, req *UpdateQuestionRequest) (*models.Question, error)
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResponse, error)
	Tags(ctx context.Context) ([]string, error)
}

type CreateQuestionRequest struct {
	Text          string                 `json:"text" validate:"required"`
	Type          models.QuestionType    `json:"type" validate:"required,question_type"`
	ImagePath     *string                `json:"image_path,omitempty"`
	AnswerA       string                 `json:"answer_a,omitempty"`
	AnswerB       string                 `json:"answer_b,omitempty"`
	AnswerC       string                 `json:"answer_c,omitempty"`
	AnswerD       string                 `json:"answer_d,omitempty"`
	AnswerImageA  *string                `json:"answer_image_a,omitempty"`
	AnswerImageB  *string                `json:"answer_image_b,omitempty"`
	AnswerImageC  *string                `json:"answer_image_c,omitempty"`
	AnswerImageD  *string                `json:"answer_image_d,omitempty"`
	CorrectAnswer string                 `json:"correct_answer" validate:"required"`
	Explanation   string                 `json:"explanation,omitempty"`
	SubjectTags   []string               `json:"subject_tags,omitempty"`
	Difficulty    models.DifficultyLevel `json:"difficulty" validate:"required,difficulty_level"`
}

type UpdateQuestionRequest struct {
	Text          *string                 `json:"text,omitempty"`
	ImagePath     *string                 `json:"image_path,omitempty"`
	AnswerA       *string                 `json:"answer_a,omitempty"`
	AnswerB       *string                 `json:"answer_b,omitempty"`
	AnswerC       *string                 `json:"answer_c,omitempty"`
	AnswerD       *string                 `json:"answer_d,omitempty"`
	CorrectAnswer *string                 `json:"correct_answer,omitempty"`
	Explanation   *string                 `json:"explanation,omitempty"`
	SubjectTags   []string                `json:"subject_tags,omitempty"`
	Difficulty    *models.DifficultyLevel `json:"difficulty,omitempty"`
}

type QuestionListResponse struct {
	Questions []*models.Question `json:"questions"`
	Total     int64              `json:"total"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
}

type questionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
}

func NewQuestionService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator) QuestionService {
	return &questionService{
		repo:      repo,
		logger:    logger,
		validator: validator,
	}
}

// ===== CORE CRUD OPERATIONS =====

func (s *questionService) Create(ctx context.Context, req *CreateQuestionRequest) (*models.Question, error) {
	s.logger.Info("Creating question", "type", req.Type, "difficulty", req.Difficulty)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	question := s.buildQuestion(req)
	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		return nil, err
	}

	if err := s.repo.Question().Create(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}
	return question, nil
}

func (s *questionService) GetByID(ctx context.Context, id uint) (*models.Question, error) {
	question, err := s.repo.Question().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return question, nil
}

func (s *questionService) Update(ctx context.Context, id uint, req *UpdateQuestionRequest) (*models.Question, error) {
	question, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.applyUpdate(question, req)

	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		return nil, err
	}

	if err := s.repo.Question().Update(ctx, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}
	s.logger.Info("Updated question", "question_id", id)
	return question, nil
}

func (s *questionService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Question().Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}
	s.logger.Info("Deleted question", "question_id", id)
	return nil
}

func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters) (*QuestionListResponse, error) {
	questions, total, err := s.repo.Question().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	return &QuestionListResponse{
		Questions: questions,
		Total:     total,
		Limit:     filters.Limit,
		Offset:    filters.Offset,
	}, nil
}

// Tags collects the distinct subject tags in use across the bank
func (s *questionService) Tags(ctx context.Context) ([]string, error) {
	questions, _, err := s.repo.Question().List(ctx, repositories.QuestionFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	seen := make(map[string]bool)
	var tags []string
	for _, question := range questions {
		for _, tag := range question.Tags() {
			if !seen[tag] {
				seen[tag] = true
				tags = append(tags, tag)
			}
		}
	}
	return tags, nil
}

// ===== HELPERS =====

func (s *questionService) buildQuestion(req *CreateQuestionRequest) *models.Question {
	question := &models.Question{
		Text:          strings.TrimSpace(req.Text),
		Type:          req.Type,
		ImagePath:     req.ImagePath,
		AnswerA:       req.AnswerA,
		AnswerB:       req.AnswerB,
		AnswerC:       req.AnswerC,
		AnswerD:       req.AnswerD,
		AnswerImageA:  req.AnswerImageA,
		AnswerImageB:  req.AnswerImageB,
		AnswerImageC:  req.AnswerImageC,
		AnswerImageD:  req.AnswerImageD,
		CorrectAnswer: normalizeCorrectAnswer(req.Type, req.CorrectAnswer),
		Explanation:   req.Explanation,
		Difficulty:    req.Difficulty,
	}
	question.SetTags(req.SubjectTags)
	return question
}

func (s *questionService) applyUpdate(question *models.Question, req *UpdateQuestionRequest) {
	if req.Text != nil {
		question.Text = strings.TrimSpace(*req.Text)
	}
	if req.ImagePath != nil {
		question.ImagePath = req.ImagePath
	}
	if req.AnswerA != nil {
		question.AnswerA = *req.AnswerA
	}
	if req.AnswerB != nil {
		question.AnswerB = *req.AnswerB
	}
	if req.AnswerC != nil {
		question.AnswerC = *req.AnswerC
	}
	if req.AnswerD != nil {
		question.AnswerD = *req.AnswerD
	}
	if req.CorrectAnswer != nil {
		question.CorrectAnswer = normalizeCorrectAnswer(question.Type, *req.CorrectAnswer)
	}
	if req.Explanation != nil {
		question.Explanation = *req.Explanation
	}
	if req.SubjectTags != nil {
		question.SetTags(req.SubjectTags)
	}
	if req.Difficulty != nil {
		question.Difficulty = *req.Difficulty
	}
}

// normalizeCorrectAnswer upcases choice designators, leaves free-form
// canonical answers untouched apart from trimming.
func normalizeCorrectAnswer(questionType models.QuestionType, answer string) string {
	answer = strings.TrimSpace(answer)
	if questionType == models.MultipleChoice {
		return strings.ToUpper(answer)
	}
	return answer
}
