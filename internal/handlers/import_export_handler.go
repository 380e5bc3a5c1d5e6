package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sat-prep/question-bank-service/internal/models"
	"github.com/sat-prep/question-bank-service/internal/repositories"
	"github.com/sat-prep/question-bank-service/internal/services"
	"github.com/sat-prep/question-bank-service/internal/utils"
)

type ImportExportHandler struct {
	BaseHandler
	importExportService services.ImportExportService
}

func NewImportExportHandler(
	importExportService services.ImportExportService,
	logger utils.Logger,
) *ImportExportHandler {
	return &ImportExportHandler{
		BaseHandler:         NewBaseHandler(logger),
		importExportService: importExportService,
	}
}

// ImportQuestions imports a JSON question document uploaded as a file.
// Image references inside the document resolve relative to the upload's
// directory only when the client also supplies source_dir.
func (h *ImportExportHandler) ImportQuestions(c *gin.Context) {
	h.LogRequest(c, "Importing questions")

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Missing upload",
			Details: "expected multipart field 'file'",
		})
		return
	}
	defer file.Close()

	if ext := strings.ToLower(filepath.Ext(header.Filename)); ext != ".json" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Unsupported file format",
			Details: ext,
		})
		return
	}

	sourceDir := c.PostForm("source_dir")

	result, err := h.importExportService.ImportQuestions(c.Request.Context(), file, sourceDir)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ExportQuestions emits the selected questions as a JSON document
func (h *ImportExportHandler) ExportQuestions(c *gin.Context) {
	h.LogRequest(c, "Exporting questions")

	var ids []uint
	if raw := c.Query("ids"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
			if err != nil {
				c.JSON(http.StatusBadRequest, ErrorResponse{
					Message: "Invalid ids parameter",
					Details: part,
				})
				return
			}
			ids = append(ids, uint(id))
		}
	}

	filters := repositories.QuestionFilters{Search: c.Query("search")}
	if raw := c.Query("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				filters.Tags = append(filters.Tags, tag)
			}
		}
	}
	if raw := c.Query("difficulty"); raw != "" {
		difficulty := models.DifficultyLevel(raw)
		filters.Difficulty = &difficulty
	}

	doc, err := h.importExportService.ExportQuestions(c.Request.Context(), ids, filters, c.Query("dest_dir"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	if c.DefaultQuery("download", "false") == "true" {
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Failed to encode export"})
			return
		}
		filename := fmt.Sprintf("questions-%s.json", time.Now().Format("20060102-150405"))
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, "application/json", data)
		return
	}

	c.JSON(http.StatusOK, doc)
}
