package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/google/uuid"
	"github.com/sat-prep/question-bank-service/internal/config"
	"github.com/sat-prep/question-bank-service/internal/models"
	"github.com/sat-prep/question-bank-service/internal/repositories"
	"github.com/sat-prep/question-bank-service/internal/validator"
)

// duplicateSimilarity is the text similarity at or above which an
// incoming question counts as a duplicate of an existing one.
const duplicateSimilarity = 0.95

// ImportExportService moves questions in and out of the bank as JSON
// documents, carrying referenced image files along.
type ImportExportService interface {
	// ImportQuestions reads a JSON document, either a QuestionDocument
	// object or a bare array of records. Invalid entries are skipped and
	// reported; valid ones are persisted.
	ImportQuestions(ctx context.Context, reader io.Reader, sourceDir string) (*models.ImportResult, error)

	// ExportQuestions writes the selected questions as a QuestionDocument:
	// explicit ids win, otherwise the filters select, otherwise everything.
	// Image files are copied to destDir when it is non-empty, and the
	// emitted paths rewritten relative to it.
	ExportQuestions(ctx context.Context, ids []uint, filters repositories.QuestionFilters, destDir string) (*models.QuestionDocument, error)
}

type importExportService struct {
	repo      repositories.Repository
	cfg       *config.Config
	logger    *slog.Logger
	validator *validator.Validator
	similar   *metrics.SorensenDice
}

func NewImportExportService(repo repositories.Repository, cfg *config.Config, logger *slog.Logger, validator *validator.Validator) ImportExportService {
	sd := metrics.NewSorensenDice()
	sd.CaseSensitive = false
	return &importExportService{
		repo:      repo,
		cfg:       cfg,
		logger:    logger,
		validator: validator,
		similar:   sd,
	}
}

// ===== IMPORT =====

func (s *importExportService) ImportQuestions(ctx context.Context, reader io.Reader, sourceDir string) (*models.ImportResult, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read import document: %w", err)
	}

	records, err := decodeDocument(data)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrImportEmptyDocument
	}

	existing, _, err := s.repo.Question().List(ctx, repositories.QuestionFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to load existing questions: %w", err)
	}
	existingTexts := make([]string, 0, len(existing))
	for _, question := range existing {
		existingTexts = append(existingTexts, question.Text)
	}

	result := &models.ImportResult{Total: len(records)}
	var toCreate []*models.Question

	for i, record := range records {
		question, entryErrs := s.parseRecord(record, sourceDir)
		if len(entryErrs) > 0 {
			for _, entryErr := range entryErrs {
				entryErr.Index = i
				result.Errors = append(result.Errors, entryErr)
			}
			result.Skipped++
			continue
		}

		if s.isDuplicate(question.Text, existingTexts) {
			result.Duplicates++
			result.Skipped++
			continue
		}

		existingTexts = append(existingTexts, question.Text)
		toCreate = append(toCreate, question)
	}

	if len(toCreate) > 0 {
		if err := s.repo.Question().CreateBatch(ctx, toCreate); err != nil {
			return nil, fmt.Errorf("failed to persist imported questions: %w", err)
		}
	}

	result.Imported = len(toCreate)
	result.ErrorCount = len(result.Errors)
	result.Status = models.ImportCompleted
	if result.Imported == 0 && result.ErrorCount > 0 {
		result.Status = models.ImportFailed
	}

	s.logger.Info("Imported questions",
		"total", result.Total,
		"imported", result.Imported,
		"duplicates", result.Duplicates,
		"errors", result.ErrorCount)
	return result, nil
}

// decodeDocument accepts both exchange shapes: the QuestionDocument
// object and a bare top-level array.
func decodeDocument(data []byte) ([]models.QuestionRecord, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var records []models.QuestionRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImportMalformed, err)
		}
		return records, nil
	}

	var doc models.QuestionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImportMalformed, err)
	}
	return doc.Questions, nil
}

// parseRecord turns one exchange record into a bank question, inferring
// the type when absent and resolving image references.
func (s *importExportService) parseRecord(record models.QuestionRecord, sourceDir string) (*models.Question, []models.ImportEntryError) {
	var entryErrs []models.ImportEntryError

	text := strings.TrimSpace(record.QuestionText)
	if text == "" {
		entryErrs = append(entryErrs, models.ImportEntryError{
			Field: "question_text", Message: "is required",
		})
	}

	questionType := models.QuestionType(record.QuestionType)
	if record.QuestionType == "" {
		// Records predating the type field carry choices only for
		// multiple choice.
		if record.AnswerA != "" || record.AnswerB != "" || record.AnswerC != "" || record.AnswerD != "" {
			questionType = models.MultipleChoice
		} else {
			questionType = models.FreeResponse
		}
	}
	if questionType != models.MultipleChoice && questionType != models.FreeResponse {
		entryErrs = append(entryErrs, models.ImportEntryError{
			Field: "question_type", Message: "unknown question type", Value: record.QuestionType,
		})
	}

	if strings.TrimSpace(record.CorrectAnswer) == "" {
		entryErrs = append(entryErrs, models.ImportEntryError{
			Field: "correct_answer", Message: "is required", Value: text,
		})
	}

	difficulty := models.DifficultyLevel(record.DifficultyLabel)
	if record.DifficultyLabel == "" {
		difficulty = models.DifficultyMedium
	}

	question := &models.Question{
		Text:          text,
		Type:          questionType,
		AnswerA:       record.AnswerA,
		AnswerB:       record.AnswerB,
		AnswerC:       record.AnswerC,
		AnswerD:       record.AnswerD,
		CorrectAnswer: normalizeCorrectAnswer(questionType, record.CorrectAnswer),
		Explanation:   record.AnswerExplanation,
		Difficulty:    difficulty,
	}
	question.SetTags(record.SubjectTags)

	if len(entryErrs) > 0 {
		return nil, entryErrs
	}

	if err := s.validator.Question().ValidateQuestion(question); err != nil {
		var ve ValidationErrors
		if vErrs, ok := err.(ValidationErrors); ok {
			ve = vErrs
		}
		if len(ve) == 0 {
			entryErrs = append(entryErrs, models.ImportEntryError{Message: err.Error(), Value: text})
		}
		for _, fieldErr := range ve {
			entryErrs = append(entryErrs, models.ImportEntryError{
				Field: fieldErr.Field, Message: fieldErr.Message, Value: text,
			})
		}
		return nil, entryErrs
	}

	// Image references come last: only copy files for records that will
	// actually be persisted.
	question.ImagePath = s.importImage(record.QuestionImagePath, sourceDir, s.cfg.Images.QuestionDir)
	question.AnswerImageA = s.importImage(record.AnswerImageA, sourceDir, s.cfg.Images.AnswerDir)
	question.AnswerImageB = s.importImage(record.AnswerImageB, sourceDir, s.cfg.Images.AnswerDir)
	question.AnswerImageC = s.importImage(record.AnswerImageC, sourceDir, s.cfg.Images.AnswerDir)
	question.AnswerImageD = s.importImage(record.AnswerImageD, sourceDir, s.cfg.Images.AnswerDir)

	return question, nil
}

// importImage copies a referenced image into the managed image directory
// under a fresh unique name, returning the managed path. A missing or
// unreadable image clears the reference rather than rejecting the record.
func (s *importExportService) importImage(ref *string, sourceDir, destDir string) *string {
	if ref == nil || strings.TrimSpace(*ref) == "" {
		return nil
	}

	src := *ref
	if !filepath.IsAbs(src) && sourceDir != "" {
		src = filepath.Join(sourceDir, src)
	}

	name := uuid.NewString() + filepath.Ext(src)
	dest := filepath.Join(destDir, name)
	if err := copyFile(src, dest); err != nil {
		s.logger.Warn("Dropped unreadable image reference", "path", *ref, "error", err)
		return nil
	}
	return &dest
}

func (s *importExportService) isDuplicate(text string, existing []string) bool {
	for _, other := range existing {
		if strutil.Similarity(text, other, s.similar) >= duplicateSimilarity {
			return true
		}
	}
	return false
}

// ===== EXPORT =====

func (s *importExportService) ExportQuestions(ctx context.Context, ids []uint, filters repositories.QuestionFilters, destDir string) (*models.QuestionDocument, error) {
	var questions []*models.Question
	var err error

	if len(ids) > 0 {
		questions, err = s.repo.Question().GetByIDs(ctx, ids)
		if err == nil && len(questions) != len(ids) {
			return nil, fmt.Errorf("%w: some requested questions do not exist", ErrQuestionNotFound)
		}
	} else {
		questions, _, err = s.repo.Question().List(ctx, filters)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}

	doc := &models.QuestionDocument{
		Metadata: models.DocumentMetadata{
			ExportedAt: time.Now().UTC(),
			Count:      len(questions),
			Version:    "1",
		},
		Questions: make([]models.QuestionRecord, 0, len(questions)),
	}

	for _, question := range questions {
		record := models.QuestionRecord{
			QuestionText:      question.Text,
			QuestionType:      string(question.Type),
			AnswerA:           question.AnswerA,
			AnswerB:           question.AnswerB,
			AnswerC:           question.AnswerC,
			AnswerD:           question.AnswerD,
			CorrectAnswer:     question.CorrectAnswer,
			AnswerExplanation: question.Explanation,
			SubjectTags:       question.Tags(),
			DifficultyLabel:   string(question.Difficulty),
		}
		record.QuestionImagePath = s.exportImage(question.ImagePath, destDir)
		record.AnswerImageA = s.exportImage(question.AnswerImageA, destDir)
		record.AnswerImageB = s.exportImage(question.AnswerImageB, destDir)
		record.AnswerImageC = s.exportImage(question.AnswerImageC, destDir)
		record.AnswerImageD = s.exportImage(question.AnswerImageD, destDir)
		doc.Questions = append(doc.Questions, record)
	}

	s.logger.Info("Exported questions", "count", len(questions), "dest_dir", destDir)
	return doc, nil
}

// exportImage copies a managed image next to the exported document and
// returns the relative reference. Missing files degrade to the stored path.
func (s *importExportService) exportImage(path *string, destDir string) *string {
	if path == nil || *path == "" {
		return nil
	}
	if destDir == "" {
		return path
	}

	name := filepath.Base(*path)
	dest := filepath.Join(destDir, name)
	if err := copyFile(*path, dest); err != nil {
		s.logger.Warn("Failed to copy exported image", "path", *path, "error", err)
		return path
	}
	rel := name
	return &rel
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
