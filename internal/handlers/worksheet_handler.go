package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sat-prep/question-bank-service/internal/models"
	"github.com/sat-prep/question-bank-service/internal/render"
	"github.com/sat-prep/question-bank-service/internal/services"
	"github.com/sat-prep/question-bank-service/internal/utils"
	"github.com/sat-prep/question-bank-service/internal/validator"
)

type WorksheetHandler struct {
	BaseHandler
	worksheetService services.WorksheetService
	pdfGenerator     *render.PDFGenerator
	validator        *validator.Validator
}

func NewWorksheetHandler(
	worksheetService services.WorksheetService,
	pdfGenerator *render.PDFGenerator,
	validator *validator.Validator,
	logger utils.Logger,
) *WorksheetHandler {
	return &WorksheetHandler{
		BaseHandler:      NewBaseHandler(logger),
		worksheetService: worksheetService,
		pdfGenerator:     pdfGenerator,
		validator:        validator,
	}
}

// GenerateWorksheet creates a new worksheet from the question bank
func (h *WorksheetHandler) GenerateWorksheet(c *gin.Context) {
	h.LogRequest(c, "Generating worksheet")

	var req services.GenerateWorksheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	worksheet, err := h.worksheetService.Generate(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, worksheet)
}

// GetWorksheet retrieves the materialized worksheet
func (h *WorksheetHandler) GetWorksheet(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	worksheet, err := h.worksheetService.Materialize(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, worksheet)
}

// ListWorksheets lists stored worksheets
func (h *WorksheetHandler) ListWorksheets(c *gin.Context) {
	worksheets, err := h.worksheetService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"worksheets": worksheets})
}

// DeleteWorksheet removes a worksheet and its recorded responses
func (h *WorksheetHandler) DeleteWorksheet(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.worksheetService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Worksheet deleted"})
}

// GetAnswerKey returns the worksheet-local answer key
func (h *WorksheetHandler) GetAnswerKey(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	key, err := h.worksheetService.AnswerKey(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"worksheet_id": id, "answer_key": key})
}

// RenderPDF renders the worksheet to PDF and records the file path
func (h *WorksheetHandler) RenderPDF(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.LogRequest(c, "Rendering worksheet PDF", "worksheet_id", id)

	includeKey := c.DefaultQuery("answer_key", "true") == "true"

	worksheet, err := h.worksheetService.Materialize(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	doc := buildDocument(worksheet, includeKey)
	path, err := h.pdfGenerator.Generate(doc, fmt.Sprintf("worksheet-%d.pdf", id))
	if err != nil {
		h.LogError(c, err, "PDF generation failed", "worksheet_id", id)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to render worksheet PDF",
		})
		return
	}

	if err := h.worksheetService.AttachPDF(c.Request.Context(), id, path); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"worksheet_id": id, "pdf_path": path})
}

// DownloadPDF streams the rendered worksheet PDF
func (h *WorksheetHandler) DownloadPDF(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	worksheet, err := h.worksheetService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if worksheet.PDFPath == nil || *worksheet.PDFPath == "" {
		h.handleServiceError(c, services.ErrWorksheetNoPDF)
		return
	}

	c.FileAttachment(*worksheet.PDFPath, fmt.Sprintf("worksheet-%d.pdf", id))
}

// buildDocument converts a materialized worksheet to the renderer's input
func buildDocument(worksheet *services.GeneratedWorksheet, includeKey bool) *render.Document {
	doc := &render.Document{
		Title:            worksheet.Title,
		Description:      worksheet.Description,
		IncludeAnswerKey: includeKey,
		Questions:        make([]render.Question, 0, len(worksheet.Questions)),
	}
	for _, question := range worksheet.Questions {
		rq := render.Question{
			Number:        question.Number,
			Text:          question.Text,
			ImagePath:     question.ImagePath,
			CorrectAnswer: question.CorrectAnswer,
			FreeResponse:  question.Type == models.FreeResponse,
		}
		for _, choice := range question.Choices {
			rq.Choices = append(rq.Choices, render.Choice{
				Letter:    choice.Letter,
				Text:      choice.Text,
				ImagePath: choice.ImagePath,
			})
		}
		doc.Questions = append(doc.Questions, rq)
	}
	return doc
}
