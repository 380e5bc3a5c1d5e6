package services

import (
	"log/slog"

	"github.com/sat-prep/question-bank-service/internal/config"
	"github.com/sat-prep/question-bank-service/internal/repositories"
	"github.com/sat-prep/question-bank-service/internal/validator"
)

// ServiceManager bundles the application services behind one handle for
// wiring into the handler layer.
type ServiceManager interface {
	Question() QuestionService
	Worksheet() WorksheetService
	Scoring() ScoringService
	ImportExport() ImportExportService
	Settings() SettingsService
}

type serviceManager struct {
	question     QuestionService
	worksheet    WorksheetService
	scoring      ScoringService
	importExport ImportExportService
	settings     SettingsService
}

func NewServiceManager(repo repositories.Repository, cfg *config.Config, logger *slog.Logger, validator *validator.Validator) ServiceManager {
	return &serviceManager{
		question:     NewQuestionService(repo, logger, validator),
		worksheet:    NewWorksheetService(repo, logger, validator),
		scoring:      NewScoringService(repo, cfg, logger, validator),
		importExport: NewImportExportService(repo, cfg, logger, validator),
		settings:     NewSettingsService(cfg, logger, validator),
	}
}

func (m *serviceManager) Question() QuestionService         { return m.question }
func (m *serviceManager) Worksheet() WorksheetService       { return m.worksheet }
func (m *serviceManager) Scoring() ScoringService           { return m.scoring }
func (m *serviceManager) ImportExport() ImportExportService { return m.importExport }
func (m *serviceManager) Settings() SettingsService         { return m.settings }
