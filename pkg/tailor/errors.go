package tailor

import (
	"fmt"

	"github.com/nikogura/job-assistant/pkg/llm"
)

// Kind is the top-level failure category of a tailoring request.
type Kind string

const (
	KindInput         Kind = "input"
	KindConfiguration Kind = "configuration"
	KindUpstream      Kind = "upstream"
	KindParse         Kind = "parse"
	KindValidation    Kind = "validation"
)

// User-facing messages.
const (
	MsgJobDescriptionRequired = "Job description is required"
	MsgJobDescriptionShort    = "Job description seems too short. Please paste the full job posting."
	MsgCompanyRequired        = "Company name is required"
	MsgWhyRequired            = "Please tell us why you want to work at this company"
	MsgMissingAPIKey          = "API key not configured. Please add ANTHROPIC_API_KEY to your environment variables."
	MsgAuth                   = "Invalid API key. Please check your ANTHROPIC_API_KEY."
	MsgQuota                  = "Anthropic API credit balance is too low. Please add credits at https://console.anthropic.com/settings/billing"
	MsgRateLimited            = "Rate limit exceeded. Please try again in a moment."
	MsgTimeout                = "The AI service took too long to respond. Please try again."
	MsgNoContent              = "The AI service returned no text content. Please try again."
	MsgNetwork                = "Could not reach the AI service. Please check your connection and try again."
	MsgCanceled               = "The request was canceled."
	MsgUnexpected             = "An unexpected error occurred. Please try again."
	MsgParse                  = "Failed to parse AI response. Please try again."
)

// Error is the only error type returned by Service methods.
// Message is safe to show to a user. Raw model output never appears in it.
type Error struct {
	Kind Kind
	// Upstream is set when Kind is KindUpstream.
	Upstream llm.Kind
	Message  string
	// Attempts is the number of generation calls made, 0 if none.
	Attempts int
	Err      error
}

func (e *Error) Error() (msg string) {
	label := string(e.Kind)
	if e.Upstream != "" {
		label += "/" + string(e.Upstream)
	}

	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s: %v", label, e.Message, e.Err)
		return msg
	}
	msg = fmt.Sprintf("%s: %s", label, e.Message)
	return msg
}

func (e *Error) Unwrap() (err error) {
	err = e.Err
	return err
}

// UserMessage returns the message to show the user.
func (e *Error) UserMessage() (msg string) {
	msg = e.Message
	return msg
}

// Retryable reports whether the same request may succeed if sent again later.
func (e *Error) Retryable() (ok bool) {
	ok = e.Kind == KindUpstream && (e.Upstream == llm.KindRateLimited || e.Upstream == llm.KindTimeout)
	return ok
}

func inputError(message string, err error) (e *Error) {
	e = &Error{Kind: KindInput, Message: message, Err: err}
	return e
}

func upstreamError(upstream *llm.UpstreamError, attempts int) (e *Error) {
	e = &Error{
		Kind:     KindUpstream,
		Upstream: upstream.Kind,
		Attempts: attempts,
		Err:      upstream,
	}

	switch upstream.Kind {
	case llm.KindAuth:
		e.Message = MsgAuth
	case llm.KindQuota:
		e.Message = MsgQuota
	case llm.KindRateLimited:
		e.Message = MsgRateLimited
		if attempts > 1 {
			e.Message = fmt.Sprintf("Rate limit exceeded after %d attempts. Please try again in a moment.", attempts)
		}
	case llm.KindTimeout:
		e.Message = MsgTimeout
	case llm.KindNoContent:
		e.Message = MsgNoContent
	case llm.KindNetwork:
		e.Message = MsgNetwork
	case llm.KindCanceled:
		e.Message = MsgCanceled
	default:
		e.Message = MsgUnexpected
	}

	return e
}
