package llm

import (
	"fmt"
	"time"
)

const (
	// DefaultModel is the model used when none is configured.
	DefaultModel = "claude-sonnet-4-20250514"
	// DefaultTimeout bounds a single generation call.
	DefaultTimeout = 60 * time.Second
)

// Params are the fixed per-document generation settings.
type Params struct {
	Model       string
	MaxTokens   int64
	Temperature float64
}

// ResumeParams are used for résumé tailoring.
//
//nolint:gochecknoglobals // fixed generation settings
var ResumeParams = Params{
	Model:       DefaultModel,
	MaxTokens:   4096,
	Temperature: 0.3,
}

// CoverLetterParams are used for cover letters.
//
//nolint:gochecknoglobals // fixed generation settings
var CoverLetterParams = Params{
	Model:       DefaultModel,
	MaxTokens:   2048,
	Temperature: 0.4,
}

// Kind classifies an upstream failure.
type Kind string

const (
	KindAuth        Kind = "auth"
	KindQuota       Kind = "quota"
	KindRateLimited Kind = "rate_limited"
	KindNoContent   Kind = "no_content"
	KindNetwork     Kind = "network"
	KindTimeout     Kind = "timeout"
	KindCanceled    Kind = "canceled"
	KindAPI         Kind = "api"
)

// UpstreamError is returned by Generate for every failure of the generation API.
type UpstreamError struct {
	Kind Kind
	// Status is the HTTP status code, or 0 when no response was received.
	Status int
	Err    error
}

func (e *UpstreamError) Error() (msg string) {
	switch {
	case e.Status != 0 && e.Err != nil:
		msg = fmt.Sprintf("upstream %s error (status %d): %v", e.Kind, e.Status, e.Err)
	case e.Err != nil:
		msg = fmt.Sprintf("upstream %s error: %v", e.Kind, e.Err)
	default:
		msg = fmt.Sprintf("upstream %s error", e.Kind)
	}
	return msg
}

func (e *UpstreamError) Unwrap() (err error) {
	err = e.Err
	return err
}
