// Package response extracts and validates structured JSON from unreliable
// free-form text. Real agent output wraps its payload in prose, fences,
// or both; the parser tries progressively more forgiving strategies and
// reports a typed failure when none succeeds.
package response

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorCode discriminates parse failures. invalid_json means the source
// produced noise; schema_mismatch means it produced a well-formed value of
// the wrong shape. Upstream retry policy differs between the two.
type ErrorCode string

const (
	ErrInvalidJSON    ErrorCode = "invalid_json"
	ErrSchemaMismatch ErrorCode = "schema_mismatch"
)

// ParseError is the typed failure outcome of a parse attempt.
type ParseError struct {
	Code   ErrorCode `json:"code"`
	Detail string    `json:"detail"`
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse response: %s: %s", e.Code, e.Detail)
}

// Validator checks the shape of a decoded value.
type Validator func(value any) error

// Parse extracts the first JSON value from raw and, when validate is
// non-nil, checks its shape. Extraction strategies are tried in order,
// first success wins: direct parse of the trimmed text, first fenced code
// block, then a bracket-depth scan. Parse never panics.
func Parse(raw string, validate Validator) (any, *ParseError) {
	candidate, ok := extract(raw)
	if !ok {
		return nil, &ParseError{Code: ErrInvalidJSON, Detail: "no JSON value found in text"}
	}
	var value any
	if err := json.Unmarshal([]byte(candidate), &value); err != nil {
		return nil, &ParseError{Code: ErrInvalidJSON, Detail: err.Error()}
	}
	if validate != nil {
		if err := validate(value); err != nil {
			return nil, &ParseError{Code: ErrSchemaMismatch, Detail: err.Error()}
		}
	}
	return value, nil
}

// ParseInto decodes the extracted JSON value into a typed target and
// validates the typed value.
func ParseInto[T any](raw string, validate func(T) error) (T, *ParseError) {
	var zero T
	candidate, ok := extract(raw)
	if !ok {
		return zero, &ParseError{Code: ErrInvalidJSON, Detail: "no JSON value found in text"}
	}
	var value T
	if err := json.Unmarshal([]byte(candidate), &value); err != nil {
		return zero, &ParseError{Code: ErrSchemaMismatch, Detail: err.Error()}
	}
	if validate != nil {
		if err := validate(value); err != nil {
			return zero, &ParseError{Code: ErrSchemaMismatch, Detail: err.Error()}
		}
	}
	return value, nil
}

// extract returns the first candidate JSON text in raw.
func extract(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	if json.Valid([]byte(trimmed)) {
		return trimmed, true
	}
	if fenced, ok := extractFenced(trimmed); ok && json.Valid([]byte(fenced)) {
		return fenced, true
	}
	if balanced, ok := ExtractBalanced(trimmed); ok && json.Valid([]byte(balanced)) {
		return balanced, true
	}
	return "", false
}

// extractFenced returns the contents of the first fenced code block, with
// or without a language tag.
func extractFenced(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start < 0 {
		return "", false
	}
	rest := s[start+3:]
	// Drop the language tag line, if any.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	} else {
		return "", false
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

// ExtractBalanced scans for the first `{` or `[` and walks forward
// tracking nesting depth and string-literal state, so brackets inside
// string values do not perturb the depth count. It returns the slice
// captured when depth returns to zero.
func ExtractBalanced(s string) (string, bool) {
	start := -1
	var open, close byte
	for i := 0; i < len(s); i++ {
		if s[i] == '{' {
			start, open, close = i, '{', '}'
			break
		}
		if s[i] == '[' {
			start, open, close = i, '[', ']'
			break
		}
	}
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
