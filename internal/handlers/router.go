package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sat-prep/question-bank-service/internal/render"
	"github.com/sat-prep/question-bank-service/internal/services"
	"github.com/sat-prep/question-bank-service/internal/utils"
	"github.com/sat-prep/question-bank-service/internal/validator"
)

type HandlerManager struct {
	questionHandler     *QuestionHandler
	worksheetHandler    *WorksheetHandler
	scoringHandler      *ScoringHandler
	importExportHandler *ImportExportHandler
	settingsHandler     *SettingsHandler
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	pdfGenerator *render.PDFGenerator,
	validator *validator.Validator,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		questionHandler:     NewQuestionHandler(serviceManager.Question(), validator, logger),
		worksheetHandler:    NewWorksheetHandler(serviceManager.Worksheet(), pdfGenerator, validator, logger),
		scoringHandler:      NewScoringHandler(serviceManager.Scoring(), validator, logger),
		importExportHandler: NewImportExportHandler(serviceManager.ImportExport(), logger),
		settingsHandler:     NewSettingsHandler(serviceManager.Settings(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Question routes
		questions := v1.Group("/questions")
		{
			questions.POST("", hm.questionHandler.CreateQuestion)
			questions.GET("", hm.questionHandler.ListQuestions)
			questions.GET("/tags", hm.questionHandler.ListTags)
			questions.GET("/:id", hm.questionHandler.GetQuestion)
			questions.PUT("/:id", hm.questionHandler.UpdateQuestion)
			questions.DELETE("/:id", hm.questionHandler.DeleteQuestion)
			questions.GET("/:id/stats", hm.scoringHandler.GetQuestionStats)

			// Import/export
			questions.POST("/import", hm.importExportHandler.ImportQuestions)
			questions.GET("/export", hm.importExportHandler.ExportQuestions)
		}

		// Worksheet routes
		worksheets := v1.Group("/worksheets")
		{
			worksheets.POST("", hm.worksheetHandler.GenerateWorksheet)
			worksheets.GET("", hm.worksheetHandler.ListWorksheets)
			worksheets.GET("/:id", hm.worksheetHandler.GetWorksheet)
			worksheets.DELETE("/:id", hm.worksheetHandler.DeleteWorksheet)
			worksheets.GET("/:id/answer-key", hm.worksheetHandler.GetAnswerKey)
			worksheets.POST("/:id/pdf", hm.worksheetHandler.RenderPDF)
			worksheets.GET("/:id/pdf", hm.worksheetHandler.DownloadPDF)
			worksheets.GET("/:id/stats", hm.scoringHandler.GetWorksheetStats)
			worksheets.GET("/:id/results", hm.scoringHandler.ExportWorksheetResults)

			// Per-student attempt management
			worksheets.GET("/:id/students/:student_id", hm.scoringHandler.GetWorksheetStatus)
			worksheets.DELETE("/:id/students/:student_id", hm.scoringHandler.ClearWorksheetResponses)
		}

		// Scoring routes
		scores := v1.Group("/scores")
		{
			scores.POST("", hm.scoringHandler.SubmitAnswer)
			scores.POST("/worksheet", hm.scoringHandler.SubmitWorksheet)
			scores.GET("/overview", hm.scoringHandler.GetOverview)
			scores.GET("/students", hm.scoringHandler.ListStudents)
			scores.GET("/students/:student_id", hm.scoringHandler.GetStudentPerformance)
		}

		// Settings routes
		settings := v1.Group("/settings")
		{
			settings.GET("", hm.settingsHandler.GetSettings)
			settings.PUT("", hm.settingsHandler.UpdateSettings)
		}
	}
}
