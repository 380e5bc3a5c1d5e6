package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	FreeResponse   QuestionType = "free_response"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "Easy"
	DifficultyMedium DifficultyLevel = "Medium"
	DifficultyHard   DifficultyLevel = "Hard"
)

// AnswerLetters are the choice designators in presentation order.
var AnswerLetters = []string{"A", "B", "C", "D"}

type Question struct {
	ID   uint         `json:"id" gorm:"primaryKey"`
	Text string       `json:"question_text" gorm:"not null;type:text" validate:"required"`
	Type QuestionType `json:"question_type" gorm:"not null;default:multiple_choice;index" validate:"omitempty,question_type"`

	ImagePath *string `json:"question_image_path,omitempty" gorm:"size:500"`

	AnswerA string `json:"answer_a" gorm:"type:text"`
	AnswerB string `json:"answer_b" gorm:"type:text"`
	AnswerC string `json:"answer_c" gorm:"type:text"`
	AnswerD string `json:"answer_d" gorm:"type:text"`

	AnswerImageA *string `json:"answer_image_a,omitempty" gorm:"size:500"`
	AnswerImageB *string `json:"answer_image_b,omitempty" gorm:"size:500"`
	AnswerImageC *string `json:"answer_image_c,omitempty" gorm:"size:500"`
	AnswerImageD *string `json:"answer_image_d,omitempty" gorm:"size:500"`

	// CorrectAnswer is the correct-answer designator: a choice letter for
	// multiple choice, the canonical answer text for free response.
	CorrectAnswer string `json:"correct_answer" gorm:"not null;size:500"`

	Explanation string          `json:"answer_explanation" gorm:"type:text"`
	SubjectTags datatypes.JSON  `json:"subject_tags" gorm:"type:json"`
	Difficulty  DifficultyLevel `json:"difficulty_label" gorm:"size:32;index" validate:"omitempty,difficulty_level"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Question) TableName() string {
	return "questions"
}

// Choice is one presented answer option.
type Choice struct {
	Letter    string  `json:"letter"`
	Text      string  `json:"text"`
	ImagePath *string `json:"image_path,omitempty"`
}

// Choices returns the present (non-empty) answer options in stored order.
// A choice counts as present when it has either text or an image.
func (q *Question) Choices() []Choice {
	all := []Choice{
		{Letter: "A", Text: q.AnswerA, ImagePath: q.AnswerImageA},
		{Letter: "B", Text: q.AnswerB, ImagePath: q.AnswerImageB},
		{Letter: "C", Text: q.AnswerC, ImagePath: q.AnswerImageC},
		{Letter: "D", Text: q.AnswerD, ImagePath: q.AnswerImageD},
	}
	choices := make([]Choice, 0, len(all))
	for _, c := range all {
		if c.Text != "" || c.ImagePath != nil {
			choices = append(choices, c)
		}
	}
	return choices
}

func (q *Question) IsFreeResponse() bool {
	return q.Type == FreeResponse
}

// Tags decodes the subject-tag JSON column.
func (q *Question) Tags() []string {
	if len(q.SubjectTags) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(q.SubjectTags, &tags); err != nil {
		return nil
	}
	return tags
}

func (q *Question) SetTags(tags []string) {
	if tags == nil {
		tags = []string{}
	}
	data, _ := json.Marshal(tags)
	q.SubjectTags = data
}

func (q *Question) HasImages() bool {
	for _, p := range []*string{q.ImagePath, q.AnswerImageA, q.AnswerImageB, q.AnswerImageC, q.AnswerImageD} {
		if p != nil && *p != "" {
			return true
		}
	}
	return false
}
