// Package jsontool validates JSON documents and profiles their structure.
// Valid documents get a pretty-printed reserialization and a shape summary;
// invalid documents get a classified syntax error with a best-effort line
// number and targeted suggestions.
package jsontool

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
)

// Analysis is the outcome of validating a document. Exactly one of Profile
// and Failure is set depending on Valid.
type Analysis struct {
	Valid     bool     `json:"valid"`
	Formatted string   `json:"formatted,omitempty"`
	Profile   *Profile `json:"profile,omitempty"`
	Failure   *Failure `json:"failure,omitempty"`
}

// Profile summarizes the shape of a valid document.
type Profile struct {
	Type         string         `json:"type"`
	Size         int            `json:"size"`
	Depth        int            `json:"depth"`
	Keys         []string       `json:"keys"`
	ElementTypes []string       `json:"elementTypes,omitempty"`
	Fields       []FieldSummary `json:"fields,omitempty"`
}

// FieldSummary describes one top-level object key.
type FieldSummary struct {
	Key      string `json:"key"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
}

// Failure describes a syntax error in an invalid document.
type Failure struct {
	Message     string   `json:"message"`
	Line        *int     `json:"line"`
	Suggestions []string `json:"suggestions"`
}

// Analyze parses text as JSON. Empty or whitespace-only text returns nil.
func Analyze(text string) *Analysis {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var value interface{}
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return &Analysis{Valid: false, Failure: classify(err, text)}
	}

	formatted, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		// Unreachable for values produced by Unmarshal; classified anyway.
		return &Analysis{Valid: false, Failure: classify(err, text)}
	}

	return &Analysis{
		Valid:     true,
		Formatted: string(formatted),
		Profile:   profile(value),
	}
}

// profile builds the shape summary for a parsed value.
func profile(value interface{}) *Profile {
	p := &Profile{
		Type:  typeName(value),
		Depth: depth(value),
		Keys:  []string{},
	}

	switch v := value.(type) {
	case map[string]interface{}:
		p.Size = len(v)
		for key := range v {
			p.Keys = append(p.Keys, key)
		}
		sort.Strings(p.Keys)
		for _, key := range p.Keys {
			p.Fields = append(p.Fields, FieldSummary{
				Key:      key,
				Type:     typeName(v[key]),
				Nullable: v[key] == nil,
			})
		}
	case []interface{}:
		p.Size = len(v)
		seen := make(map[string]bool)
		for _, elem := range v {
			name := typeName(elem)
			if !seen[name] {
				seen[name] = true
				p.ElementTypes = append(p.ElementTypes, name)
			}
		}
		sort.Strings(p.ElementTypes)
	}

	return p
}

// depth is the maximum nesting depth: scalars are 0, containers are
// 1 + max(depth of children), and an empty container is 1.
func depth(value interface{}) int {
	switch v := value.(type) {
	case map[string]interface{}:
		max := 0
		for _, child := range v {
			if d := depth(child); d > max {
				max = d
			}
		}
		return 1 + max
	case []interface{}:
		max := 0
		for _, child := range v {
			if d := depth(child); d > max {
				max = d
			}
		}
		return 1 + max
	default:
		return 0
	}
}

// typeName maps a decoded value to its JSON type name.
func typeName(value interface{}) string {
	switch value.(type) {
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case nil:
		return "null"
	default:
		return "unknown"
	}
}

// classify turns a parser error into a Failure with targeted suggestions.
// Suggestions are derived by substring matching on the raw error text; the
// generic linter tip is always appended last.
func classify(err error, text string) *Failure {
	failure := &Failure{Message: err.Error()}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		failure.Line = lineAt(text, syntaxErr.Offset)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		failure.Line = lineAt(text, typeErr.Offset)
	}

	msg := err.Error()
	if strings.Contains(msg, "unexpected end of JSON input") {
		failure.Suggestions = append(failure.Suggestions,
			"Check for an unterminated string or a missing closing bracket or brace")
	}
	if strings.Contains(msg, "looking for beginning of value") {
		failure.Suggestions = append(failure.Suggestions,
			"Check for a missing value or a trailing comma before a closing bracket")
	}
	if strings.Contains(msg, "looking for beginning of object key") ||
		strings.Contains(msg, "after object key") {
		failure.Suggestions = append(failure.Suggestions,
			"Check that object keys are double-quoted and followed by a colon")
	}
	if strings.Contains(msg, "after object key:value pair") ||
		strings.Contains(msg, "after array element") {
		failure.Suggestions = append(failure.Suggestions,
			"Check for missing or extra commas between elements")
	}
	if strings.Contains(msg, "'\\''") {
		failure.Suggestions = append(failure.Suggestions,
			"Use double quotes for strings and keys; single quotes are not valid JSON")
	}

	failure.Suggestions = append(failure.Suggestions,
		"Run the document through a JSON linter for a full report")

	return failure
}

// lineAt converts a byte offset from the parser into a 1-based line number.
func lineAt(text string, offset int64) *int {
	if offset < 0 || offset > int64(len(text)) {
		return nil
	}
	line := 1 + strings.Count(text[:offset], "\n")
	return &line
}
