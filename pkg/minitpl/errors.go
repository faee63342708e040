package minitpl

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// ErrTemplateNotFound is returned when a template file does not exist.
var ErrTemplateNotFound = errors.New("template file not found")

// ParseError describes a malformed directive. Malformed templates still
// render; parse errors are collected as diagnostics and only returned to
// the caller in strict mode.
type ParseError struct {
	Message  string
	Token    string
	Position int
	Line     int
	Column   int
}

func (e *ParseError) Error() string {
	where := fmt.Sprintf("position %d", e.Position)
	if e.Line > 0 {
		where = fmt.Sprintf("line %d, column %d", e.Line, e.Column)
	}
	if e.Token != "" {
		return fmt.Sprintf("parse error at %s near '%s': %s", where, e.Token, e.Message)
	}
	return fmt.Sprintf("parse error at %s: %s", where, e.Message)
}

// NewParseError creates a parse error for the token at byte offset
// position of src.
func NewParseError(src, message, token string, position int) *ParseError {
	line, col := lineColumn(src, position)
	return &ParseError{
		Message:  message,
		Token:    token,
		Position: position,
		Line:     line,
		Column:   col,
	}
}

// lineColumn converts a byte offset into a 1-based line and rune column.
func lineColumn(src string, offset int) (int, int) {
	if offset < 0 || offset > len(src) {
		return 0, 0
	}
	prefix := src[:offset]
	line := strings.Count(prefix, "\n") + 1
	if i := strings.LastIndexByte(prefix, '\n'); i >= 0 {
		prefix = prefix[i+1:]
	}
	return line, utf8.RuneCountInString(prefix) + 1
}

// TemplateFileError represents a failure to read or write a template file.
type TemplateFileError struct {
	Op   string
	Path string
	Err  error
}

func (e *TemplateFileError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s %s", e.Op, e.Path)
}

func (e *TemplateFileError) Unwrap() error {
	return e.Err
}

// MultiError collects multiple errors
type MultiError struct {
	errors []error
}

// NewMultiError creates a new multi-error collector
func NewMultiError() *MultiError {
	return &MultiError{
		errors: make([]error, 0),
	}
}

// Add adds an error to the collection (ignores nil errors)
func (m *MultiError) Add(err error) {
	if err != nil {
		m.errors = append(m.errors, err)
	}
}

// Len returns the number of errors
func (m *MultiError) Len() int {
	return len(m.errors)
}

// Errors returns the collected errors.
func (m *MultiError) Errors() []error {
	return m.errors
}

// Unwrap lets errors.Is and errors.As see every collected error.
func (m *MultiError) Unwrap() []error {
	return m.errors
}

// Err returns the multi-error or nil if empty
func (m *MultiError) Err() error {
	if len(m.errors) == 0 {
		return nil
	}
	if len(m.errors) == 1 {
		return m.errors[0]
	}
	return m
}

func (m *MultiError) Error() string {
	if len(m.errors) == 0 {
		return "no errors"
	}

	if len(m.errors) == 1 {
		return m.errors[0].Error()
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("%d errors occurred:", len(m.errors)))
	for i, err := range m.errors {
		parts = append(parts, fmt.Sprintf("  [%d] %v", i+1, err))
	}
	return strings.Join(parts, "\n")
}

// ContextError adds context to an existing error
type ContextError struct {
	Operation string
	Context   map[string]any
	Cause     error
}

func (e *ContextError) Error() string {
	keys := make([]string, 0, len(e.Context))
	for k := range e.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	contextParts := make([]string, 0, len(keys))
	for _, k := range keys {
		contextParts = append(contextParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
	}

	if len(contextParts) > 0 {
		return fmt.Sprintf("%s [%s]: %v", e.Operation, strings.Join(contextParts, ", "), e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Operation, e.Cause)
}

func (e *ContextError) Unwrap() error {
	return e.Cause
}

// WithContext wraps an error with additional context
func WithContext(err error, operation string, context map[string]any) error {
	if err == nil {
		return nil
	}
	return &ContextError{
		Operation: operation,
		Context:   context,
		Cause:     err,
	}
}

// IsNotFound reports whether err means a template file does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

// IsParseError checks if an error is, or contains, a parse error
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsTemplateFileError checks if an error is a template file error
func IsTemplateFileError(err error) bool {
	var fe *TemplateFileError
	return errors.As(err, &fe)
}
