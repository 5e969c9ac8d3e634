package extract

import (
	"fmt"
	"strings"
)

// ParseError means no usable JSON object could be read from the response.
// Raw is kept for logging and never appears in Error().
type ParseError struct {
	Raw   string
	Cause error
}

func (e *ParseError) Error() (msg string) {
	if e.Cause != nil {
		msg = fmt.Sprintf("failed to parse response: %v", e.Cause)
		return msg
	}
	msg = "failed to parse response: no JSON object found"
	return msg
}

func (e *ParseError) Unwrap() (err error) {
	err = e.Cause
	return err
}

// FieldError is a single schema violation at a field path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError means the JSON parsed but does not have the required shape.
type ValidationError struct {
	Raw    string
	Fields []FieldError
}

func (e *ValidationError) Error() (msg string) {
	var sb strings.Builder
	sb.WriteString("response failed validation:")
	for i, f := range e.Fields {
		fmt.Fprintf(&sb, " %d. %s: %s;", i+1, f.Field, f.Message)
	}
	msg = strings.TrimSuffix(sb.String(), ";")
	return msg
}

// RejectedError means the model declined the input, e.g. because it is not a job description.
type RejectedError struct {
	Message string
	Raw     string
}

func (e *RejectedError) Error() (msg string) {
	msg = "model rejected input: " + e.Message
	return msg
}

// SchemaLoadError means an embedded schema could not be compiled.
type SchemaLoadError struct {
	Name  string
	Cause error
}

func (e *SchemaLoadError) Error() (msg string) {
	msg = fmt.Sprintf("failed to load schema %s: %v", e.Name, e.Cause)
	return msg
}

func (e *SchemaLoadError) Unwrap() (err error) {
	err = e.Cause
	return err
}
