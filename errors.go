package restblog

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound      = errors.New("post not found")
	ErrConflict      = errors.New("a post with this title already exists")
	ErrRequiredField = errors.New("field is required")
	ErrInvalidURL    = errors.New("invalid URL")
	ErrCSRFRejected  = errors.New("invalid or missing form token")
)

// ValidationErrors maps a form field name to the reason it was rejected.
type ValidationErrors map[string]error

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f + ": " + v[f].Error()
	}
	return "invalid post form: " + strings.Join(parts, "; ")
}

// Message returns the human-readable error for field, or "" if the field is valid.
func (v ValidationErrors) Message(field string) string {
	err, ok := v[field]
	if !ok || err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrRequiredField):
		return "This field is required!"
	case errors.Is(err, ErrInvalidURL):
		return "Enter a valid URL"
	case errors.Is(err, ErrConflict):
		return "A post with this title already exists."
	}
	return err.Error()
}

// Has reports whether field failed with target.
func (v ValidationErrors) Has(field string, target error) bool {
	err, ok := v[field]
	return ok && errors.Is(err, target)
}
