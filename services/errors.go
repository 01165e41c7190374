package services

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrUnauthenticated    = errors.New("authentication credentials were not provided")
	ErrInvalidCredentials = errors.New("invalid username or password")

	ErrArticleNotFound  = kindError(ErrNotFound, "article not found")
	ErrCommentNotFound  = kindError(ErrNotFound, "comment not found")
	ErrCategoryNotFound = kindError(ErrNotFound, "category not found")

	ErrUsernameTaken = kindError(ErrConflict, "username already exists")
	ErrCategoryTaken = kindError(ErrConflict, "category already exists")

	ErrNotAuthor = kindError(ErrForbidden, "you can only modify your own content")
	ErrNotAdmin  = kindError(ErrForbidden, "only administrators can manage categories")
)

// classified is an error with its own message that still matches a broader sentinel via errors.Is.
type classified struct {
	kind error
	msg  string
}

func kindError(kind error, msg string) error {
	return &classified{kind: kind, msg: msg}
}

func (e *classified) Error() string { return e.msg }

func (e *classified) Unwrap() error { return e.kind }

// ValidationError carries one message per rejected input field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func fieldError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func isConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
