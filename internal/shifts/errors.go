package shifts

import (
	"sort"
	"strings"

	"github.com/nikmy/shifter/pkg/errors"
)

const (
	ErrNotFound     = errors.Const("shift not found")
	ErrConflict     = errors.Const("overlaps with existing shift for user")
	ErrUnauthorized = errors.Const("not allowed to manage shifts of another user")
)

const (
	FieldName  = "name"
	FieldStart = "start_date"
	FieldEnd   = "end_date"
)

const (
	msgNameRequired = "name field is required"
	msgStartInvalid = "start_date field is required and must be a valid ISO 8601 string"
	msgEndInvalid   = "end_date field is required and must be a valid ISO 8601 string"
	msgOrder        = "start_date and end_date must be in chronological order"
)

// InvalidInputError lists every offending field with its message.
type InvalidInputError struct {
	Fields map[string]string
}

func (e *InvalidInputError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// ConflictError names the stored shift the candidate collided with.
type ConflictError struct {
	Existing Shift
}

func (e *ConflictError) Error() string {
	return ErrConflict.Error() + " (shift " + e.Existing.ID + ")"
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
