package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sat-prep/question-bank-service/internal/services"
	"github.com/sat-prep/question-bank-service/internal/utils"
	"github.com/sat-prep/question-bank-service/internal/validator"
)

type ScoringHandler struct {
	BaseHandler
	scoringService services.ScoringService
	validator      *validator.Validator
}

func NewScoringHandler(
	scoringService services.ScoringService,
	validator *validator.Validator,
	logger utils.Logger,
) *ScoringHandler {
	return &ScoringHandler{
		BaseHandler:    NewBaseHandler(logger),
		scoringService: scoringService,
		validator:      validator,
	}
}

// SubmitAnswer grades and records a single answer
func (h *ScoringHandler) SubmitAnswer(c *gin.Context) {
	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	h.LogRequest(c, "Submitting answer", "student_id", req.StudentID, "worksheet_id", req.WorksheetID)

	response, err := h.scoringService.SubmitAnswer(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// SubmitWorksheet grades a full set of answers for one worksheet
func (h *ScoringHandler) SubmitWorksheet(c *gin.Context) {
	var req services.SubmitWorksheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}
	h.LogRequest(c, "Submitting worksheet", "student_id", req.StudentID, "worksheet_id", req.WorksheetID)

	result, err := h.scoringService.SubmitWorksheet(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// GetStudentPerformance reports one student's accuracy by tag and difficulty
func (h *ScoringHandler) GetStudentPerformance(c *gin.Context) {
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}

	performance, err := h.scoringService.StudentPerformance(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, performance)
}

// GetQuestionStats reports aggregate accuracy for one question
func (h *ScoringHandler) GetQuestionStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	stats, err := h.scoringService.QuestionStats(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetWorksheetStats reports aggregate results for one worksheet
func (h *ScoringHandler) GetWorksheetStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	stats, err := h.scoringService.WorksheetStats(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetWorksheetStatus reports one student's standing on one worksheet
func (h *ScoringHandler) GetWorksheetStatus(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}

	status, err := h.scoringService.WorksheetStatus(c.Request.Context(), studentID, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetOverview reports bank-wide totals
func (h *ScoringHandler) GetOverview(c *gin.Context) {
	overview, err := h.scoringService.Overview(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// ListStudents lists students with recorded responses
func (h *ScoringHandler) ListStudents(c *gin.Context) {
	students, err := h.scoringService.Students(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"students": students})
}

// ClearWorksheetResponses wipes one student's attempt on one worksheet
func (h *ScoringHandler) ClearWorksheetResponses(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	studentID := ParseStringIDParam(c, "student_id")
	if studentID == "" {
		return
	}
	h.LogRequest(c, "Clearing worksheet responses", "student_id", studentID, "worksheet_id", id)

	if err := h.scoringService.ClearWorksheetResponses(c.Request.Context(), studentID, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Responses cleared"})
}

// ExportWorksheetResults downloads worksheet results as a spreadsheet
func (h *ScoringHandler) ExportWorksheetResults(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	data, err := h.scoringService.ExportWorksheetResults(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("worksheet-%d-results-%s.xlsx", id, time.Now().Format("20060102"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
