package validator

import (
	"fmt"
	"strings"

	"github.com/sat-prep/question-bank-service/internal/models"
)

// QuestionValidator handles question-specific validation
type QuestionValidator struct{}

// NewQuestionValidator creates a new question validator
func NewQuestionValidator() *QuestionValidator {
	return &QuestionValidator{}
}

// ValidateQuestion validates a complete question object
func (v *QuestionValidator) ValidateQuestion(question *models.Question) error {
	var errs ValidationErrors

	if strings.TrimSpace(question.Text) == "" {
		errs = append(errs, ValidationError{Field: "text", Message: "is required", Rule: "required"})
	}

	switch question.Type {
	case models.MultipleChoice:
		errs = append(errs, v.validateMultipleChoice(question)...)
	case models.FreeResponse:
		errs = append(errs, v.validateFreeResponse(question)...)
	default:
		errs = append(errs, ValidationError{
			Field:   "type",
			Message: "must be a valid question type (multiple_choice, free_response)",
			Value:   string(question.Type),
			Rule:    "question_type",
		})
	}

	switch question.Difficulty {
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
	default:
		errs = append(errs, ValidationError{
			Field:   "difficulty",
			Message: "must be Easy, Medium, or Hard",
			Value:   string(question.Difficulty),
			Rule:    "difficulty_level",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateBatch validates multiple questions
func (v *QuestionValidator) ValidateBatch(questions []*models.Question) error {
	if len(questions) == 0 {
		return fmt.Errorf("question batch cannot be empty")
	}

	for i, question := range questions {
		if err := v.ValidateQuestion(question); err != nil {
			return fmt.Errorf("validation failed for question %d: %w", i+1, err)
		}
	}

	return nil
}

// validateMultipleChoice requires every answer slot filled and the
// correct answer designating one of them.
func (v *QuestionValidator) validateMultipleChoice(question *models.Question) ValidationErrors {
	var errs ValidationErrors

	choices := question.Choices()
	present := make(map[string]bool, len(choices))
	for _, c := range choices {
		present[c.Letter] = true
	}
	for _, letter := range models.AnswerLetters {
		if !present[letter] {
			errs = append(errs, ValidationError{
				Field:   "answer_" + strings.ToLower(letter),
				Message: "is required for multiple choice questions",
				Rule:    "required",
			})
		}
	}

	correct := strings.ToUpper(strings.TrimSpace(question.CorrectAnswer))
	if correct == "" {
		errs = append(errs, ValidationError{Field: "correct_answer", Message: "is required", Rule: "required"})
	} else if !present[correct] {
		errs = append(errs, ValidationError{
			Field:   "correct_answer",
			Message: "must designate one of the provided choices",
			Value:   question.CorrectAnswer,
			Rule:    "answer_letter",
		})
	}

	return errs
}

// validateFreeResponse requires a canonical answer to grade against.
func (v *QuestionValidator) validateFreeResponse(question *models.Question) ValidationErrors {
	var errs ValidationErrors
	if strings.TrimSpace(question.CorrectAnswer) == "" {
		errs = append(errs, ValidationError{Field: "correct_answer", Message: "is required", Rule: "required"})
	}
	return errs
}
