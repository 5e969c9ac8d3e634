package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Options configure a Client.
type Options struct {
	APIKey string
	// Model overrides the model in every Params passed to Generate.
	Model   string
	Timeout time.Duration
	// BaseURL points the client at a different API host, e.g. a test server.
	BaseURL string
	Logger  *zap.Logger
}

// Client sends single-turn requests to the Anthropic Messages API.
type Client struct {
	api     anthropic.Client
	apiKey  string
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewClient creates a new Claude API client. SDK retries are disabled; callers decide whether to retry.
func NewClient(opts Options) (client *Client) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}

	client = &Client{
		api:     anthropic.NewClient(reqOpts...),
		apiKey:  opts.APIKey,
		model:   opts.Model,
		timeout: opts.Timeout,
		logger:  opts.Logger,
	}
	return client
}

// Configured reports whether the client has a credential.
func (c *Client) Configured() (ok bool) {
	ok = strings.TrimSpace(c.apiKey) != ""
	return ok
}

// Generate sends one system instruction and one user message and returns the first text block of the reply.
// Every error it returns is an *UpstreamError.
func (c *Client) Generate(ctx context.Context, params Params, system string, user string) (text string, err error) {
	model := params.Model
	if c.model != "" {
		model = c.model
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	c.logger.Debug("sending generation request",
		zap.String("model", model),
		zap.Int64("max_tokens", params.MaxTokens),
		zap.Float64("temperature", params.Temperature),
		zap.Int("system_chars", len(system)),
		zap.Int("user_chars", len(user)),
	)

	var msg *anthropic.Message
	msg, err = c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   params.MaxTokens,
		Temperature: anthropic.Float(params.Temperature),
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	})
	if err != nil {
		upstream := classify(err)
		c.logger.Warn("generation request failed",
			zap.String("kind", string(upstream.Kind)),
			zap.Int("status", upstream.Status),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
		err = upstream
		return text, err
	}

	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			c.logger.Debug("generation request succeeded",
				zap.Duration("elapsed", time.Since(start)),
				zap.Int("response_chars", len(text)),
				zap.String("stop_reason", string(msg.StopReason)),
			)
			return text, err
		}
	}

	err = &UpstreamError{
		Kind: KindNoContent,
		Err:  errors.New("no text content in response"),
	}
	return text, err
}

// classify maps an SDK or transport error onto an UpstreamError.
func classify(err error) (upstream *UpstreamError) {
	var apierr *anthropic.Error

	switch {
	case errors.As(err, &apierr):
		upstream = &UpstreamError{Kind: KindAPI, Status: apierr.StatusCode, Err: err}
		switch {
		case apierr.StatusCode == http.StatusUnauthorized || apierr.StatusCode == http.StatusForbidden:
			upstream.Kind = KindAuth
		case apierr.StatusCode == http.StatusPaymentRequired:
			upstream.Kind = KindQuota
		case apierr.StatusCode == http.StatusBadRequest && strings.Contains(strings.ToLower(apierr.Error()), "credit balance"):
			upstream.Kind = KindQuota
		case apierr.StatusCode == http.StatusTooManyRequests:
			upstream.Kind = KindRateLimited
		}
	case errors.Is(err, context.DeadlineExceeded):
		upstream = &UpstreamError{Kind: KindTimeout, Err: err}
	case errors.Is(err, context.Canceled):
		upstream = &UpstreamError{Kind: KindCanceled, Err: err}
	default:
		upstream = &UpstreamError{Kind: KindNetwork, Err: err}
	}

	return upstream
}
