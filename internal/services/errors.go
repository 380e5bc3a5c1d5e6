package services

import (
	"errors"

	apperrors "github.com/sat-prep/question-bank-service/internal/errors"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Question specific errors
	ErrQuestionNotFound    = errors.New("question not found")
	ErrQuestionInvalidType = errors.New("invalid question type")
	ErrQuestionInUse       = errors.New("question is referenced by a worksheet")

	// Worksheet specific errors
	ErrWorksheetNotFound     = errors.New("worksheet not found")
	ErrWorksheetEmpty        = errors.New("no questions match the worksheet criteria")
	ErrWorksheetNoPDF        = errors.New("worksheet has no rendered PDF")
	ErrWorksheetQuestionGone = errors.New("worksheet references a missing question")

	// Import/export specific errors
	ErrImportEmptyDocument = errors.New("import document contains no questions")
	ErrImportMalformed     = errors.New("import document is not valid JSON")

	// Scoring specific errors
	ErrResponseNotGradable = errors.New("response cannot be graded against this question")
	ErrStudentUnknown      = errors.New("no responses recorded for student")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared error types from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors
type IntegrityError = apperrors.IntegrityError

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

// ===== ERROR HELPERS =====

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrWorksheetNotFound) ||
		errors.Is(err, ErrStudentUnknown)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrBadRequest) {
		return true
	}
	var ve apperrors.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	var sve *apperrors.ValidationError
	return errors.As(err, &sve)
}

// IsIntegrity checks if error represents a data integrity violation
func IsIntegrity(err error) bool {
	var ie *apperrors.IntegrityError
	return errors.As(err, &ie)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrQuestionInUse)
}
