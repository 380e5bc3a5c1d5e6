package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("correct_answer", "test message", "E")

	if err.Field != "correct_answer" {
		t.Errorf("Expected field to be 'correct_answer', got '%s'", err.Field)
	}

	if err.Message != "test message" {
		t.Errorf("Expected message to be 'test message', got '%s'", err.Message)
	}

	if err.Value != "E" {
		t.Errorf("Expected value to be 'E', got '%v'", err.Value)
	}

	expected := "validation error on field 'correct_answer': test message"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("field1", "message1", nil))
	expected := "validation failed: field1 message1"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewValidationError("field2", "message2", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestIntegrityError(t *testing.T) {
	err := NewIntegrityError("question", 42, "correct_answer", "designator matches no present choice", "E")

	if err.ID != 42 {
		t.Errorf("Expected ID to be 42, got %d", err.ID)
	}

	expected := "data integrity error on question 42 (correct_answer): designator matches no present choice"
	if err.Error() != expected {
		t.Errorf("Expected '%s', got '%s'", expected, err.Error())
	}
}
