package models

import "time"

// StudentResponse is one recorded submission. Rows are append-only: a
// student may answer the same worksheet question any number of times and
// every attempt is retained.
type StudentResponse struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	StudentID   string `json:"student_id" gorm:"not null;size:255;index" validate:"required"`
	WorksheetID uint   `json:"worksheet_id" gorm:"not null;index"`
	QuestionID  uint   `json:"question_id" gorm:"not null;index"`

	Answer  string `json:"answer" gorm:"type:text"`
	Correct bool   `json:"correct"`

	CreatedAt time.Time `json:"created_at"`
}

func (StudentResponse) TableName() string {
	return "scores"
}
