package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/sat-prep/question-bank-service/internal/config"
	"github.com/sat-prep/question-bank-service/internal/models"
	"github.com/sat-prep/question-bank-service/internal/repositories"
	"github.com/sat-prep/question-bank-service/internal/validator"
	"github.com/xuri/excelize/v2"
)

// ScoringService grades submissions against worksheet snapshots and
// aggregates performance analytics.
type ScoringService interface {
	// Grading
	SubmitAnswer(ctx context.Context, req *SubmitAnswerRequest) (*models.StudentResponse, error)
	SubmitWorksheet(ctx context.Context, req *SubmitWorksheetRequest) (*WorksheetResult, error)

	// Analytics
	StudentPerformance(ctx context.Context, studentID string) (*StudentPerformance, error)
	QuestionStats(ctx context.Context, questionID uint) (*QuestionStats, error)
	WorksheetStats(ctx context.Context, worksheetID uint) (*WorksheetStats, error)
	Overview(ctx context.Context) (*Overview, error)
	WorksheetStatus(ctx context.Context, studentID string, worksheetID uint) (*WorksheetResult, error)
	Students(ctx context.Context) ([]string, error)

	// Maintenance
	ClearWorksheetResponses(ctx context.Context, studentID string, worksheetID uint) error
	ExportWorksheetResults(ctx context.Context, worksheetID uint) ([]byte, error)
}

type SubmitAnswerRequest struct {
	StudentID   string `json:"student_id" validate:"required"`
	WorksheetID uint   `json:"worksheet_id" validate:"required"`
	QuestionID  uint   `json:"question_id" validate:"required"`
	Answer      string `json:"answer"`
}

type SubmitWorksheetRequest struct {
	StudentID   string          `json:"student_id" validate:"required"`
	WorksheetID uint            `json:"worksheet_id" validate:"required"`
	Answers     map[uint]string `json:"answers" validate:"required"`
}

// WorksheetResult summarizes one student's standing on one worksheet.
type WorksheetResult struct {
	StudentID   string    `json:"student_id"`
	WorksheetID uint      `json:"worksheet_id"`
	Total       int       `json:"total_questions"`
	Answered    int       `json:"answered"`
	Correct     int       `json:"correct"`
	Percentage  float64   `json:"percentage"`
	Complete    bool      `json:"complete"`
	GradedAt    time.Time `json:"graded_at"`
}

type StudentPerformance struct {
	StudentID    string                 `json:"student_id"`
	TotalAnswers int                    `json:"total_answers"`
	Correct      int                    `json:"correct"`
	Percentage   float64                `json:"percentage"`
	Mastery      string                 `json:"mastery"`
	ByTag        []TagPerformance       `json:"by_tag"`
	ByDifficulty map[string]Performance `json:"by_difficulty"`
	Trend        []DailyPerformance     `json:"trend"`
}

// DailyPerformance is one day of a student's submissions.
type DailyPerformance struct {
	Date       string  `json:"date"`
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Percentage float64 `json:"percentage"`
}

type TagPerformance struct {
	Tag        string  `json:"tag"`
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Percentage float64 `json:"percentage"`
	Mastery    string  `json:"mastery"`
}

type Performance struct {
	Total      int     `json:"total"`
	Correct    int     `json:"correct"`
	Percentage float64 `json:"percentage"`
}

type QuestionStats struct {
	QuestionID  uint    `json:"question_id"`
	Text        string  `json:"question_text"`
	Attempts    int     `json:"attempts"`
	Correct     int     `json:"correct"`
	Percentage  float64 `json:"percentage"`
	Respondents int     `json:"respondents"`
}

type WorksheetStats struct {
	WorksheetID   uint    `json:"worksheet_id"`
	Title         string  `json:"title"`
	Questions     int     `json:"questions"`
	Students      int     `json:"students"`
	AverageScore  float64 `json:"average_score"`
	HighestScore  float64 `json:"highest_score"`
	LowestScore   float64 `json:"lowest_score"`
	CompleteCount int     `json:"complete_count"`
}

type Overview struct {
	Questions    int64              `json:"questions"`
	Worksheets   int                `json:"worksheets"`
	Students     int                `json:"students"`
	Responses    int                `json:"responses"`
	OverallScore float64            `json:"overall_score"`
	Hardest      []QuestionAccuracy `json:"hardest_questions"`
	Easiest      []QuestionAccuracy `json:"easiest_questions"`
}

// QuestionAccuracy ranks one question by its success rate.
type QuestionAccuracy struct {
	QuestionID uint    `json:"question_id"`
	Text       string  `json:"question_text"`
	Attempts   int     `json:"attempts"`
	Percentage float64 `json:"percentage"`
}

type scoringService struct {
	repo      repositories.Repository
	cfg       *config.Config
	logger    *slog.Logger
	validator *validator.Validator
	fuzzy     *metrics.Levenshtein
}

func NewScoringService(repo repositories.Repository, cfg *config.Config, logger *slog.Logger, validator *validator.Validator) ScoringService {
	lev := metrics.NewLevenshtein()
	lev.CaseSensitive = false
	return &scoringService{
		repo:      repo,
		cfg:       cfg,
		logger:    logger,
		validator: validator,
		fuzzy:     lev,
	}
}

// ===== GRADING =====

func (s *scoringService) SubmitAnswer(ctx context.Context, req *SubmitAnswerRequest) (*models.StudentResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	snapshot, err := s.lookupSnapshot(ctx, req.WorksheetID, req.QuestionID)
	if err != nil {
		return nil, err
	}

	response := &models.StudentResponse{
		StudentID:   strings.TrimSpace(req.StudentID),
		WorksheetID: req.WorksheetID,
		QuestionID:  req.QuestionID,
		Answer:      req.Answer,
		Correct:     s.grade(snapshot, req.Answer),
	}
	if err := s.repo.Response().Create(ctx, response); err != nil {
		return nil, fmt.Errorf("failed to record response: %w", err)
	}

	s.logger.Info("Graded answer",
		"student_id", response.StudentID,
		"worksheet_id", response.WorksheetID,
		"question_id", response.QuestionID,
		"correct", response.Correct)
	return response, nil
}

func (s *scoringService) SubmitWorksheet(ctx context.Context, req *SubmitWorksheetRequest) (*WorksheetResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	worksheet, snapshots, err := s.loadWorksheet(ctx, req.WorksheetID)
	if err != nil {
		return nil, err
	}

	for questionID, answer := range req.Answers {
		snapshot, ok := snapshots[questionID]
		if !ok {
			return nil, fmt.Errorf("%w: question %d not on worksheet %d",
				ErrResponseNotGradable, questionID, req.WorksheetID)
		}
		response := &models.StudentResponse{
			StudentID:   strings.TrimSpace(req.StudentID),
			WorksheetID: req.WorksheetID,
			QuestionID:  questionID,
			Answer:      answer,
			Correct:     s.grade(snapshot, answer),
		}
		if err := s.repo.Response().Create(ctx, response); err != nil {
			return nil, fmt.Errorf("failed to record response: %w", err)
		}
	}

	s.logger.Info("Graded worksheet submission",
		"student_id", req.StudentID,
		"worksheet_id", req.WorksheetID,
		"answers", len(req.Answers))
	return s.worksheetResult(ctx, req.StudentID, worksheet)
}

// grade compares an answer to the worksheet-local designator. Multiple
// choice is an exact letter match; free response passes when similarity
// to the canonical answer reaches the configured threshold.
func (s *scoringService) grade(snapshot models.QuestionSnapshot, answer string) bool {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return false
	}
	if snapshot.Type == models.FreeResponse {
		if strings.EqualFold(answer, snapshot.CorrectAnswer) {
			return true
		}
		similarity := strutil.Similarity(answer, snapshot.CorrectAnswer, s.fuzzy)
		return similarity >= s.cfg.Scoring.FuzzyThreshold
	}
	return strings.EqualFold(answer, snapshot.CorrectAnswer)
}

func (s *scoringService) lookupSnapshot(ctx context.Context, worksheetID, questionID uint) (models.QuestionSnapshot, error) {
	_, snapshots, err := s.loadWorksheet(ctx, worksheetID)
	if err != nil {
		return models.QuestionSnapshot{}, err
	}
	snapshot, ok := snapshots[questionID]
	if !ok {
		return models.QuestionSnapshot{}, fmt.Errorf("%w: question %d not on worksheet %d",
			ErrResponseNotGradable, questionID, worksheetID)
	}
	return snapshot, nil
}

func (s *scoringService) loadWorksheet(ctx context.Context, worksheetID uint) (*models.Worksheet, map[uint]models.QuestionSnapshot, error) {
	worksheet, err := s.repo.Worksheet().GetByID(ctx, worksheetID)
	if err != nil {
		return nil, nil, ErrWorksheetNotFound
	}
	snapshots := make(map[uint]models.QuestionSnapshot)
	for _, snapshot := range worksheet.Snapshots() {
		snapshots[snapshot.QuestionID] = snapshot
	}
	return worksheet, snapshots, nil
}

// ===== ANALYTICS =====

func (s *scoringService) StudentPerformance(ctx context.Context, studentID string) (*StudentPerformance, error) {
	responses, err := s.repo.Response().GetByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}
	if len(responses) == 0 {
		return nil, ErrStudentUnknown
	}
	responses = s.applyRepeatPolicy(responses)

	questions, err := s.questionsFor(ctx, responses)
	if err != nil {
		return nil, err
	}

	perf := &StudentPerformance{
		StudentID:    studentID,
		ByDifficulty: make(map[string]Performance),
	}

	tagTotals := make(map[string]*Performance)
	for _, response := range responses {
		perf.TotalAnswers++
		if response.Correct {
			perf.Correct++
		}

		question, ok := questions[response.QuestionID]
		if !ok {
			continue
		}

		diff := perf.ByDifficulty[string(question.Difficulty)]
		diff.Total++
		if response.Correct {
			diff.Correct++
		}
		perf.ByDifficulty[string(question.Difficulty)] = diff

		for _, tag := range question.Tags() {
			entry, ok := tagTotals[tag]
			if !ok {
				entry = &Performance{}
				tagTotals[tag] = entry
			}
			entry.Total++
			if response.Correct {
				entry.Correct++
			}
		}
	}

	perf.Percentage = percentage(perf.Correct, perf.TotalAnswers)
	perf.Mastery = masteryLevel(perf.Percentage)

	for diff, entry := range perf.ByDifficulty {
		entry.Percentage = percentage(entry.Correct, entry.Total)
		perf.ByDifficulty[diff] = entry
	}

	for tag, entry := range tagTotals {
		pct := percentage(entry.Correct, entry.Total)
		perf.ByTag = append(perf.ByTag, TagPerformance{
			Tag:        tag,
			Total:      entry.Total,
			Correct:    entry.Correct,
			Percentage: pct,
			Mastery:    masteryLevel(pct),
		})
	}
	sort.Slice(perf.ByTag, func(i, j int) bool {
		return perf.ByTag[i].Tag < perf.ByTag[j].Tag
	})

	perf.Trend = dailyTrend(responses)
	return perf, nil
}

// dailyTrend buckets submissions by calendar day, oldest first.
func dailyTrend(responses []*models.StudentResponse) []DailyPerformance {
	byDay := make(map[string]*DailyPerformance)
	for _, response := range responses {
		day := response.CreatedAt.Format("2006-01-02")
		entry, ok := byDay[day]
		if !ok {
			entry = &DailyPerformance{Date: day}
			byDay[day] = entry
		}
		entry.Total++
		if response.Correct {
			entry.Correct++
		}
	}

	trend := make([]DailyPerformance, 0, len(byDay))
	for _, entry := range byDay {
		entry.Percentage = percentage(entry.Correct, entry.Total)
		trend = append(trend, *entry)
	}
	sort.Slice(trend, func(i, j int) bool {
		return trend[i].Date < trend[j].Date
	})
	return trend
}

func (s *scoringService) QuestionStats(ctx context.Context, questionID uint) (*QuestionStats, error) {
	question, err := s.repo.Question().GetByID(ctx, questionID)
	if err != nil {
		return nil, ErrQuestionNotFound
	}

	responses, err := s.repo.Response().GetByQuestion(ctx, questionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}
	responses = s.applyRepeatPolicy(responses)

	stats := &QuestionStats{
		QuestionID: questionID,
		Text:       question.Text,
	}
	students := make(map[string]bool)
	for _, response := range responses {
		stats.Attempts++
		if response.Correct {
			stats.Correct++
		}
		students[response.StudentID] = true
	}
	stats.Percentage = percentage(stats.Correct, stats.Attempts)
	stats.Respondents = len(students)
	return stats, nil
}

func (s *scoringService) WorksheetStats(ctx context.Context, worksheetID uint) (*WorksheetStats, error) {
	worksheet, snapshots, err := s.loadWorksheet(ctx, worksheetID)
	if err != nil {
		return nil, err
	}

	responses, err := s.repo.Response().GetByWorksheet(ctx, worksheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}
	responses = s.applyRepeatPolicy(responses)

	byStudent := make(map[string][]*models.StudentResponse)
	for _, response := range responses {
		byStudent[response.StudentID] = append(byStudent[response.StudentID], response)
	}

	stats := &WorksheetStats{
		WorksheetID: worksheetID,
		Title:       worksheet.Title,
		Questions:   len(snapshots),
		Students:    len(byStudent),
		LowestScore: 100,
	}
	if len(byStudent) == 0 {
		stats.LowestScore = 0
		return stats, nil
	}

	var sum float64
	for _, studentResponses := range byStudent {
		correct := 0
		for _, response := range studentResponses {
			if response.Correct {
				correct++
			}
		}
		score := percentage(correct, len(snapshots))
		sum += score
		if score > stats.HighestScore {
			stats.HighestScore = score
		}
		if score < stats.LowestScore {
			stats.LowestScore = score
		}
		if len(studentResponses) >= len(snapshots) {
			stats.CompleteCount++
		}
	}
	stats.AverageScore = sum / float64(len(byStudent))
	return stats, nil
}

func (s *scoringService) Overview(ctx context.Context) (*Overview, error) {
	questionCount, err := s.repo.Question().Count(ctx, repositories.QuestionFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}
	worksheets, err := s.repo.Worksheet().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list worksheets: %w", err)
	}
	students, err := s.repo.Response().DistinctStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	responses, err := s.repo.Response().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}
	responses = s.applyRepeatPolicy(responses)

	correct := 0
	for _, response := range responses {
		if response.Correct {
			correct++
		}
	}

	hardest, easiest, err := s.rankQuestions(ctx, responses)
	if err != nil {
		return nil, err
	}

	return &Overview{
		Questions:    questionCount,
		Worksheets:   len(worksheets),
		Students:     len(students),
		Responses:    len(responses),
		OverallScore: percentage(correct, len(responses)),
		Hardest:      hardest,
		Easiest:      easiest,
	}, nil
}

// rankQuestions orders attempted questions by success rate and returns
// the five hardest and five easiest.
func (s *scoringService) rankQuestions(ctx context.Context, responses []*models.StudentResponse) ([]QuestionAccuracy, []QuestionAccuracy, error) {
	if len(responses) == 0 {
		return nil, nil, nil
	}

	questions, err := s.questionsFor(ctx, responses)
	if err != nil {
		return nil, nil, err
	}

	type tally struct {
		attempts int
		correct  int
	}
	tallies := make(map[uint]*tally)
	for _, response := range responses {
		entry, ok := tallies[response.QuestionID]
		if !ok {
			entry = &tally{}
			tallies[response.QuestionID] = entry
		}
		entry.attempts++
		if response.Correct {
			entry.correct++
		}
	}

	ranked := make([]QuestionAccuracy, 0, len(tallies))
	for questionID, entry := range tallies {
		question, ok := questions[questionID]
		if !ok {
			continue
		}
		ranked = append(ranked, QuestionAccuracy{
			QuestionID: questionID,
			Text:       question.Text,
			Attempts:   entry.attempts,
			Percentage: percentage(entry.correct, entry.attempts),
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Percentage != ranked[j].Percentage {
			return ranked[i].Percentage < ranked[j].Percentage
		}
		return ranked[i].QuestionID < ranked[j].QuestionID
	})

	limit := 5
	if len(ranked) < limit {
		limit = len(ranked)
	}
	hardest := make([]QuestionAccuracy, limit)
	copy(hardest, ranked[:limit])

	easiest := make([]QuestionAccuracy, limit)
	for i := 0; i < limit; i++ {
		easiest[i] = ranked[len(ranked)-1-i]
	}
	return hardest, easiest, nil
}

func (s *scoringService) WorksheetStatus(ctx context.Context, studentID string, worksheetID uint) (*WorksheetResult, error) {
	worksheet, _, err := s.loadWorksheet(ctx, worksheetID)
	if err != nil {
		return nil, err
	}
	return s.worksheetResult(ctx, studentID, worksheet)
}

func (s *scoringService) Students(ctx context.Context) ([]string, error) {
	students, err := s.repo.Response().DistinctStudents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

// ===== MAINTENANCE =====

func (s *scoringService) ClearWorksheetResponses(ctx context.Context, studentID string, worksheetID uint) error {
	if err := s.repo.Response().DeleteByStudentAndWorksheet(ctx, studentID, worksheetID); err != nil {
		return fmt.Errorf("failed to clear responses: %w", err)
	}
	s.logger.Info("Cleared worksheet responses", "student_id", studentID, "worksheet_id", worksheetID)
	return nil
}

func (s *scoringService) ExportWorksheetResults(ctx context.Context, worksheetID uint) ([]byte, error) {
	worksheet, snapshots, err := s.loadWorksheet(ctx, worksheetID)
	if err != nil {
		return nil, err
	}
	responses, err := s.repo.Response().GetByWorksheet(ctx, worksheetID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}
	responses = s.applyRepeatPolicy(responses)

	byStudent := make(map[string][]*models.StudentResponse)
	for _, response := range responses {
		byStudent[response.StudentID] = append(byStudent[response.StudentID], response)
	}
	students := make([]string, 0, len(byStudent))
	for student := range byStudent {
		students = append(students, student)
	}
	sort.Strings(students)

	f := excelize.NewFile()
	sheetName := "Results"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Student ID", "Answered", "Correct", "Score (%)", "Complete", "Last Submission"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, student := range students {
		studentResponses := byStudent[student]
		correct := 0
		var last time.Time
		for _, response := range studentResponses {
			if response.Correct {
				correct++
			}
			if response.CreatedAt.After(last) {
				last = response.CreatedAt
			}
		}
		row := []interface{}{
			student,
			len(studentResponses),
			correct,
			percentage(correct, len(snapshots)),
			len(studentResponses) >= len(snapshots),
			last.Format("2006-01-02 15:04:05"),
		}
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported worksheet results", "worksheet_id", worksheetID, "title", worksheet.Title, "students", len(students))
	return buf.Bytes(), nil
}

// ===== HELPERS =====

func (s *scoringService) worksheetResult(ctx context.Context, studentID string, worksheet *models.Worksheet) (*WorksheetResult, error) {
	responses, err := s.repo.Response().GetByStudentAndWorksheet(ctx, studentID, worksheet.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load responses: %w", err)
	}
	responses = s.applyRepeatPolicy(responses)

	total := len(worksheet.Snapshots())
	result := &WorksheetResult{
		StudentID:   studentID,
		WorksheetID: worksheet.ID,
		Total:       total,
		GradedAt:    time.Now(),
	}
	answered := make(map[uint]bool)
	for _, response := range responses {
		answered[response.QuestionID] = true
		if response.Correct {
			result.Correct++
		}
	}
	result.Answered = len(answered)
	result.Percentage = percentage(result.Correct, total)
	result.Complete = total > 0 && result.Answered >= total
	return result, nil
}

// applyRepeatPolicy collapses repeated submissions for the same
// (student, worksheet, question) triple when the policy is "latest".
// Input order is oldest first, so the last row wins.
func (s *scoringService) applyRepeatPolicy(responses []*models.StudentResponse) []*models.StudentResponse {
	if s.cfg.Scoring.RepeatPolicy == config.RepeatAll {
		return responses
	}

	type key struct {
		student     string
		worksheetID uint
		questionID  uint
	}
	latest := make(map[key]int)
	var order []key
	for i, response := range responses {
		k := key{response.StudentID, response.WorksheetID, response.QuestionID}
		if _, seen := latest[k]; !seen {
			order = append(order, k)
		}
		latest[k] = i
	}

	collapsed := make([]*models.StudentResponse, 0, len(order))
	for _, k := range order {
		collapsed = append(collapsed, responses[latest[k]])
	}
	return collapsed
}

func (s *scoringService) questionsFor(ctx context.Context, responses []*models.StudentResponse) (map[uint]*models.Question, error) {
	seen := make(map[uint]bool)
	var ids []uint
	for _, response := range responses {
		if !seen[response.QuestionID] {
			seen[response.QuestionID] = true
			ids = append(ids, response.QuestionID)
		}
	}
	questions, err := s.repo.Question().GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	byID := make(map[uint]*models.Question, len(questions))
	for _, question := range questions {
		byID[question.ID] = question
	}
	return byID, nil
}

func percentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// masteryLevel maps an accuracy percentage to a named band.
func masteryLevel(pct float64) string {
	switch {
	case pct >= 90:
		return "Expert"
	case pct >= 75:
		return "Proficient"
	case pct >= 60:
		return "Competent"
	case pct >= 40:
		return "Developing"
	default:
		return "Needs Improvement"
	}
}
