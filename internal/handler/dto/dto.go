// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// birthdayLayout is the wire format for birthdays.
const birthdayLayout = "2006-01-02"

// validate is the shared validator instance. validator.Validate is
// concurrency safe and caches struct metadata.
var validate = validator.New(validator.WithRequiredStructEnabled())

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// Pagination provides cursor-based pagination info.
type Pagination struct {
	NextCursor string `json:"next_cursor,omitempty"`
	HasMore    bool   `json:"has_more"`
}

// ValidationError describes why a request failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

// checkStruct runs validator tags and converts failures into a ValidationError
// with stable, lowercased field names.
func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, strings.ToLower(fe.Field()))
	}
	return &ValidationError{Fields: fields}
}

// parseBirthday parses a YYYY-MM-DD date string.
func parseBirthday(s string) (time.Time, error) {
	t, err := time.Parse(birthdayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("birthday must be in YYYY-MM-DD format")
	}
	return t, nil
}

// formatBirthday renders a birthday in wire format.
func formatBirthday(t time.Time) string {
	return t.Format(birthdayLayout)
}
