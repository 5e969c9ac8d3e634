// Package tailor runs the tailoring pipeline: validate the request, build prompts, call the
// generation API once, then extract and validate the returned document.
package tailor

import (
	"context"
	"time"

	"github.com/nikogura/job-assistant/pkg/candidates"
	"github.com/nikogura/job-assistant/pkg/documents"
	"github.com/nikogura/job-assistant/pkg/extract"
	"github.com/nikogura/job-assistant/pkg/llm"
	"github.com/nikogura/job-assistant/pkg/logger"
	"github.com/nikogura/job-assistant/pkg/prompts"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Generator sends one prompt pair to a text generation API.
type Generator interface {
	Generate(ctx context.Context, params llm.Params, system string, user string) (text string, err error)
	Configured() (ok bool)
}

// Profiles resolves a candidate id to a profile, falling back to a default.
type Profiles interface {
	Resolve(id string) (profile candidates.Profile, found bool)
}

// Options configure a Service.
type Options struct {
	Logger *zap.Logger
	Retry  RetryPolicy
}

// Service tailors résumés and writes cover letters. It holds no per-request state.
type Service struct {
	gen      Generator
	profiles Profiles
	retry    RetryPolicy
	logger   *zap.Logger
}

// NewService creates a tailoring service.
func NewService(gen Generator, profiles Profiles, opts Options) (svc *Service) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	svc = &Service{
		gen:      gen,
		profiles: profiles,
		retry:    opts.Retry,
		logger:   opts.Logger,
	}
	return svc
}

// TailorResume produces a résumé tailored to req.JobDescription. Every error is a *Error.
func (s *Service) TailorResume(ctx context.Context, req ResumeRequest) (doc *documents.ResumeResponse, err error) {
	err = checkRequest(req)
	if err != nil {
		return doc, err
	}

	err = s.checkConfigured()
	if err != nil {
		return doc, err
	}

	profile := s.resolve(req.CandidateID)
	keywords := cleanKeywords(req.AdditionalKeywords)

	log := s.logger.With(
		zap.String("document", "resume"),
		zap.String("candidate", profile.ID),
		zap.Int("keywords", len(keywords)),
	)

	system := prompts.ResumeSystem(profile)
	user := prompts.ResumeUser(profile, req.JobDescription, keywords)

	var raw string
	var attempts int
	raw, attempts, err = s.generate(ctx, log, llm.ResumeParams, system, user)
	if err != nil {
		return doc, err
	}

	doc, err = extract.Resume(raw)
	if err != nil {
		err = s.extractionError(log, err, raw, attempts)
		return nil, err
	}

	log.Info("resume tailored",
		zap.Int("attempts", attempts),
		zap.Int("positions", len(doc.TailoredResume.Experience)),
	)

	return doc, err
}

// GenerateCoverLetter writes a cover letter for req.CompanyName. Every error is a *Error.
func (s *Service) GenerateCoverLetter(ctx context.Context, req CoverLetterRequest) (doc *documents.CoverLetterResponse, err error) {
	err = checkRequest(req)
	if err != nil {
		return doc, err
	}

	err = s.checkConfigured()
	if err != nil {
		return doc, err
	}

	profile := s.resolve(req.CandidateID)

	log := s.logger.With(
		zap.String("document", "cover_letter"),
		zap.String("candidate", profile.ID),
		zap.String("company", req.CompanyName),
	)

	system := prompts.CoverLetterSystem(profile)
	user := prompts.CoverLetterUser(profile, prompts.CoverLetterFields{
		JobDescription: req.JobDescription,
		CompanyName:    req.CompanyName,
		WhyThisCompany: req.WhyThisCompany,
		CompanyMission: req.CompanyMission,
	})

	var raw string
	var attempts int
	raw, attempts, err = s.generate(ctx, log, llm.CoverLetterParams, system, user)
	if err != nil {
		return doc, err
	}

	doc, err = extract.CoverLetter(raw)
	if err != nil {
		err = s.extractionError(log, err, raw, attempts)
		return nil, err
	}

	log.Info("cover letter generated",
		zap.Int("attempts", attempts),
		zap.String("tone", string(doc.Metadata.ToneUsed)),
	)

	return doc, err
}

func (s *Service) checkConfigured() (err error) {
	if s.gen == nil || !s.gen.Configured() {
		err = &Error{Kind: KindConfiguration, Message: MsgMissingAPIKey}
		return err
	}
	return err
}

func (s *Service) resolve(id string) (profile candidates.Profile) {
	profile, found := s.profiles.Resolve(id)
	if !found && id != "" {
		s.logger.Warn("unknown candidate, using default profile",
			zap.String("requested", id),
			zap.String("using", profile.ID),
		)
	}
	return profile
}

// generate calls the generator, backing off on rate limits as the retry policy allows.
// A result that arrives after ctx is done is discarded.
func (s *Service) generate(ctx context.Context, log *zap.Logger, params llm.Params, system string, user string) (text string, attempts int, err error) {
	limit := s.retry.attempts()

	for attempts = 1; ; attempts++ {
		start := time.Now()
		text, err = s.gen.Generate(ctx, params, system, user)

		if err == nil && ctx.Err() != nil {
			text = ""
			err = &llm.UpstreamError{Kind: llm.KindCanceled, Err: ctx.Err()}
		}

		if err == nil {
			log.Debug("generation succeeded", zap.Int("attempt", attempts), zap.Duration("elapsed", time.Since(start)))
			return text, attempts, err
		}

		var upstream *llm.UpstreamError
		if !errors.As(err, &upstream) {
			upstream = &llm.UpstreamError{Kind: llm.KindAPI, Err: err}
		}

		if upstream.Kind != llm.KindRateLimited || attempts >= limit {
			log.Error("generation failed",
				zap.String("kind", string(upstream.Kind)),
				zap.Int("status", upstream.Status),
				zap.Int("attempts", attempts),
				zap.Error(err),
			)
			err = upstreamError(upstream, attempts)
			return "", attempts, err
		}

		wait := s.retry.delay(attempts)
		log.Warn("rate limited, backing off",
			zap.Int("attempt", attempts),
			zap.Duration("wait", wait),
		)

		serr := sleep(ctx, wait)
		if serr != nil {
			err = upstreamError(&llm.UpstreamError{Kind: llm.KindCanceled, Err: serr}, attempts)
			return "", attempts, err
		}
	}
}

// extractionError converts an extract error into a *Error and logs the raw text.
func (s *Service) extractionError(log *zap.Logger, err error, raw string, attempts int) (terr *Error) {
	var rejected *extract.RejectedError
	var verr *extract.ValidationError

	switch {
	case errors.As(err, &rejected):
		log.Warn("model rejected input", zap.String("reason", rejected.Message))
		terr = &Error{Kind: KindInput, Message: rejected.Message, Attempts: attempts, Err: err}
		return terr
	case errors.As(err, &verr):
		terr = &Error{Kind: KindValidation, Message: MsgParse, Attempts: attempts, Err: err}
	default:
		terr = &Error{Kind: KindParse, Message: MsgParse, Attempts: attempts, Err: err}
	}

	log.Error("failed to extract document",
		zap.String("kind", string(terr.Kind)),
		zap.Error(err),
		zap.String("raw", logger.TruncateForLog(raw, logger.RawLogLimit)),
	)

	return terr
}
