// Package extract turns raw model text into validated documents.
package extract

import (
	"embed"
	"encoding/json"
	"strings"
	"sync"

	"github.com/nikogura/job-assistant/pkg/documents"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	resumeSchema      = "schemas/resume.schema.json"
	coverLetterSchema = "schemas/cover_letter.schema.json"
)

//nolint:gochecknoglobals // compiled schemas are cached
var (
	schemaMu    sync.Mutex
	schemaCache = map[string]*gojsonschema.Schema{}
)

// Resume extracts and validates a résumé envelope from raw model text.
// A bare résumé object without the envelope is accepted and wrapped.
func Resume(raw string) (doc *documents.ResumeResponse, err error) {
	var span string
	span, err = FindJSON(raw)
	if err != nil {
		return doc, err
	}

	parsed := gjson.Parse(span)

	if !parsed.Get("tailored_resume").Exists() {
		if rejected := rejection(parsed, raw); rejected != nil {
			err = rejected
			return doc, err
		}
		if parsed.Get("experience").Exists() || parsed.Get("professional_summary").Exists() {
			span = `{"tailored_resume":` + span + `}`
		}
	}

	err = validate(resumeSchema, span, raw)
	if err != nil {
		return doc, err
	}

	doc = &documents.ResumeResponse{}
	err = json.Unmarshal([]byte(span), doc)
	if err != nil {
		err = &ParseError{Raw: raw, Cause: err}
		return nil, err
	}

	return doc, err
}

// CoverLetter extracts and validates a cover letter envelope from raw model text.
func CoverLetter(raw string) (doc *documents.CoverLetterResponse, err error) {
	var span string
	span, err = FindJSON(raw)
	if err != nil {
		return doc, err
	}

	parsed := gjson.Parse(span)

	if !parsed.Get("cover_letter").Exists() {
		if rejected := rejection(parsed, raw); rejected != nil {
			err = rejected
			return doc, err
		}
		if parsed.Get("opening_paragraph").Exists() {
			span = `{"cover_letter":` + span + `}`
		}
	}

	err = validate(coverLetterSchema, span, raw)
	if err != nil {
		return doc, err
	}

	doc = &documents.CoverLetterResponse{}
	err = json.Unmarshal([]byte(span), doc)
	if err != nil {
		err = &ParseError{Raw: raw, Cause: err}
		return nil, err
	}

	doc.Metadata.ToneUsed = documents.Tone(strings.ToLower(strings.TrimSpace(string(doc.Metadata.ToneUsed))))

	return doc, err
}

// rejection returns a RejectedError when the object is the model's {"error": "..."} reply.
func rejection(parsed gjson.Result, raw string) (rejected *RejectedError) {
	msg := parsed.Get("error")
	if msg.Type != gjson.String || strings.TrimSpace(msg.String()) == "" {
		return rejected
	}
	rejected = &RejectedError{Message: strings.TrimSpace(msg.String()), Raw: raw}
	return rejected
}

func validate(name string, document string, raw string) (err error) {
	var schema *gojsonschema.Schema
	schema, err = loadSchema(name)
	if err != nil {
		return err
	}

	var result *gojsonschema.Result
	result, err = schema.Validate(gojsonschema.NewStringLoader(document))
	if err != nil {
		err = &ParseError{Raw: raw, Cause: err}
		return err
	}

	if result.Valid() {
		return err
	}

	verr := &ValidationError{
		Raw:    raw,
		Fields: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		verr.Fields = append(verr.Fields, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	err = verr
	return err
}

func loadSchema(name string) (schema *gojsonschema.Schema, err error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()

	if cached, ok := schemaCache[name]; ok {
		schema = cached
		return schema, err
	}

	var data []byte
	data, err = schemaFS.ReadFile(name)
	if err != nil {
		err = &SchemaLoadError{Name: name, Cause: errors.Wrap(err, "read")}
		return schema, err
	}

	schema, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
	if err != nil {
		err = &SchemaLoadError{Name: name, Cause: err}
		return nil, err
	}

	schemaCache[name] = schema
	return schema, err
}
