package errors

import "fmt"

// IntegrityError reports stored data that violates an invariant, such as
// a correct-answer designator that matches none of a question's present
// choices. It is distinct from ValidationError: the offending record is
// already persisted, so the caller must surface the identifier rather
// than silently coercing the value.
type IntegrityError struct {
	Entity  string      `json:"entity"`
	ID      uint        `json:"id"`
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

func (ie *IntegrityError) Error() string {
	return fmt.Sprintf("data integrity error on %s %d (%s): %s", ie.Entity, ie.ID, ie.Field, ie.Message)
}

func NewIntegrityError(entity string, id uint, field, message string, value interface{}) *IntegrityError {
	return &IntegrityError{
		Entity:  entity,
		ID:      id,
		Field:   field,
		Message: message,
		Value:   value,
	}
}
