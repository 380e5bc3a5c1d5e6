package models

import (
	"encoding/json"
	"strconv"
	"time"

	"gorm.io/datatypes"
)

// QuestionSnapshot is the worksheet-local copy of one question's
// presentation: the (possibly permuted) choice order and the designator
// that is correct under that order. It is written once when the worksheet
// is generated and never re-derived from the canonical Question.
type QuestionSnapshot struct {
	QuestionID uint         `json:"question_id"`
	Type       QuestionType `json:"question_type"`
	Choices    []Choice     `json:"choices,omitempty"`
	// CorrectAnswer is the worksheet-local designator: the letter that is
	// correct after permutation, or the canonical text for free response.
	CorrectAnswer string `json:"correct_answer"`
}

type Worksheet struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"not null;size:200;index" validate:"required,max=200"`
	Description string `json:"description" gorm:"type:text"`

	// QuestionIDs is the ordered sequence of question identifiers, stored
	// by value. Deleting a question does not cascade here.
	QuestionIDs datatypes.JSON `json:"question_ids" gorm:"type:json"`

	// Snapshot holds one QuestionSnapshot per question in presentation
	// order. Immutable after creation.
	Snapshot datatypes.JSON `json:"snapshot" gorm:"type:json"`

	// PDFPath is attached after a successful render; the only mutation a
	// worksheet ever sees.
	PDFPath *string `json:"pdf_path,omitempty" gorm:"size:500"`

	CreatedAt time.Time `json:"created_at"`
}

func (Worksheet) TableName() string {
	return "worksheets"
}

func (w *Worksheet) QuestionIDList() []uint {
	if len(w.QuestionIDs) == 0 {
		return nil
	}
	var ids []uint
	if err := json.Unmarshal(w.QuestionIDs, &ids); err != nil {
		return nil
	}
	return ids
}

func (w *Worksheet) SetQuestionIDs(ids []uint) {
	if ids == nil {
		ids = []uint{}
	}
	data, _ := json.Marshal(ids)
	w.QuestionIDs = data
}

func (w *Worksheet) Snapshots() []QuestionSnapshot {
	if len(w.Snapshot) == 0 {
		return nil
	}
	var snaps []QuestionSnapshot
	if err := json.Unmarshal(w.Snapshot, &snaps); err != nil {
		return nil
	}
	return snaps
}

func (w *Worksheet) SetSnapshots(snaps []QuestionSnapshot) {
	if snaps == nil {
		snaps = []QuestionSnapshot{}
	}
	data, _ := json.Marshal(snaps)
	w.Snapshot = data
}

// AnswerKey maps question ID (decimal string, JSON-friendly) to the
// worksheet-local correct designator.
func (w *Worksheet) AnswerKey() map[string]string {
	key := make(map[string]string)
	for _, s := range w.Snapshots() {
		key[strconv.FormatUint(uint64(s.QuestionID), 10)] = s.CorrectAnswer
	}
	return key
}
