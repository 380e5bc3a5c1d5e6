package sqlite

import (
	"github.com/sat-prep/question-bank-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	question  repositories.QuestionRepository
	worksheet repositories.WorksheetRepository
	response  repositories.ResponseRepository
}

func NewRepository(db *gorm.DB) repositories.Repository {
	return &Repository{
		question:  NewQuestionSQLite(db),
		worksheet: NewWorksheetSQLite(db),
		response:  NewResponseSQLite(db),
	}
}

func (r *Repository) Question() repositories.QuestionRepository {
	return r.question
}

func (r *Repository) Worksheet() repositories.WorksheetRepository {
	return r.worksheet
}

func (r *Repository) Response() repositories.ResponseRepository {
	return r.response
}
