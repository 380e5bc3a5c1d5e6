package models

import "time"

// QuestionDocument is the JSON exchange format: an object with metadata
// and a questions array. Import also accepts a bare top-level array of
// QuestionRecord.
type QuestionDocument struct {
	Metadata  DocumentMetadata `json:"metadata"`
	Questions []QuestionRecord `json:"questions"`
}

type DocumentMetadata struct {
	ExportedAt time.Time `json:"exported_at"`
	Count      int       `json:"count"`
	Version    string    `json:"version"`
}

// QuestionRecord is one question in the exchange format. Unknown fields
// are ignored on import and never emitted on export.
type QuestionRecord struct {
	QuestionText      string   `json:"question_text"`
	QuestionType      string   `json:"question_type,omitempty"`
	QuestionImagePath *string  `json:"question_image_path,omitempty"`
	AnswerA           string   `json:"answer_a,omitempty"`
	AnswerB           string   `json:"answer_b,omitempty"`
	AnswerC           string   `json:"answer_c,omitempty"`
	AnswerD           string   `json:"answer_d,omitempty"`
	AnswerImageA      *string  `json:"answer_image_a,omitempty"`
	AnswerImageB      *string  `json:"answer_image_b,omitempty"`
	AnswerImageC      *string  `json:"answer_image_c,omitempty"`
	AnswerImageD      *string  `json:"answer_image_d,omitempty"`
	CorrectAnswer     string   `json:"correct_answer,omitempty"`
	AnswerExplanation string   `json:"answer_explanation,omitempty"`
	SubjectTags       []string `json:"subject_tags,omitempty"`
	DifficultyLabel   string   `json:"difficulty_label,omitempty"`
}

type ImportStatus string

const (
	ImportCompleted ImportStatus = "completed"
	ImportFailed    ImportStatus = "failed"
)

// ImportEntryError describes why a single entry was rejected, with enough
// context (index plus identifying text) to fix and retry.
type ImportEntryError struct {
	Index   int    `json:"index"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ImportResult reports a partial-success import run.
type ImportResult struct {
	Total      int                `json:"total"`
	Imported   int                `json:"imported"`
	Skipped    int                `json:"skipped"`
	Duplicates int                `json:"duplicates"`
	ErrorCount int                `json:"error_count"`
	Errors     []ImportEntryError `json:"errors,omitempty"`
	Status     ImportStatus       `json:"status"`
}
