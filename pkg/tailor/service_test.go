package tailor

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nikogura/job-assistant/pkg/candidates"
	"github.com/nikogura/job-assistant/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// A short posting for a senior frontend role, well over the minimum length.
const frontendJD = "Senior Frontend Engineer at Widget Co. Build React and TypeScript apps, " +
	"own our component library, improve performance, and mentor engineers on a small team. " +
	"Remote within Australia."

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Generate(ctx context.Context, params llm.Params, system string, user string) (text string, err error) {
	args := m.Called(ctx, params, system, user)
	text = args.String(0)
	err = args.Error(1)
	return text, err
}

func (m *mockGenerator) Configured() (ok bool) {
	args := m.Called()
	ok = args.Bool(0)
	return ok
}

func fixture(t *testing.T, name string) (content string) {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	content = string(data)
	return content
}

func newTestService(t *testing.T, gen Generator, retry RetryPolicy) (svc *Service) {
	t.Helper()
	store, err := candidates.Open("", "")
	require.NoError(t, err)
	svc = NewService(gen, store, Options{Retry: retry})
	return svc
}

func requireTailorError(t *testing.T, err error) (terr *Error) {
	t.Helper()
	require.Error(t, err)
	require.True(t, errors.As(err, &terr), "expected *tailor.Error, got %T: %v", err, err)
	return terr
}

func TestTailorResumeShortJobDescription(t *testing.T) {
	gen := new(mockGenerator)
	svc := newTestService(t, gen, RetryPolicy{})

	doc, err := svc.TailorResume(context.Background(), ResumeRequest{
		JobDescription: "   Senior engineer wanted. Apply now.   ",
		CandidateID:    "jane-doe",
	})

	assert.Nil(t, doc)
	terr := requireTailorError(t, err)
	assert.Equal(t, KindInput, terr.Kind)
	assert.Equal(t, MsgJobDescriptionShort, terr.UserMessage())
	assert.Equal(t, 0, terr.Attempts)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTailorResumeMissingJobDescription(t *testing.T) {
	gen := new(mockGenerator)
	svc := newTestService(t, gen, RetryPolicy{})

	_, err := svc.TailorResume(context.Background(), ResumeRequest{})

	terr := requireTailorError(t, err)
	assert.Equal(t, KindInput, terr.Kind)
	assert.Equal(t, MsgJobDescriptionRequired, terr.Message)
	gen.AssertExpectations(t)
}

func TestTailorResumeNotConfigured(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Configured").Return(false)
	svc := newTestService(t, gen, RetryPolicy{})

	_, err := svc.TailorResume(context.Background(), ResumeRequest{JobDescription: frontendJD})

	terr := requireTailorError(t, err)
	assert.Equal(t, KindConfiguration, terr.Kind)
	assert.Contains(t, terr.UserMessage(), "ANTHROPIC_API_KEY")
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTailorResumeJaneDoe(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Configured").Return(true)
	gen.On("Generate", mock.Anything, llm.ResumeParams, mock.AnythingOfType("string"), mock.AnythingOfType("string")).
		Return(fixture(t, "resume.json"), nil).Once()

	svc := newTestService(t, gen, RetryPolicy{})

	doc, err := svc.TailorResume(context.Background(), ResumeRequest{
		JobDescription: frontendJD,
		CandidateID:    "jane-doe",
	})

	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Len(t, doc.TailoredResume.Experience, 2)
	gen.AssertExpectations(t)
}

func TestTailorResumeKeywordsReachPrompt(t *testing.T) {
	var user string

	gen := new(mockGenerator)
	gen.On("Configured").Return(true)
	gen.On("Generate", mock.Anything, llm.ResumeParams, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { user = args.String(3) }).
		Return(fixture(t, "resume.json"), nil)

	svc := newTestService(t, gen, RetryPolicy{})

	_, err := svc.TailorResume(context.Background(), ResumeRequest{
		JobDescription:     frontendJD,
		AdditionalKeywords: []string{"GraphQL", " Kubernetes ", "", "GraphQL"},
	})
	require.NoError(t, err)

	assert.Contains(t, user, "GraphQL")
	assert.Contains(t, user, "Kubernetes")
	assert.Equal(t, 1, strings.Count(user, "- GraphQL\n"))
}

func TestTailorResumeUnknownCandidateUsesDefault(t *testing.T) {
	var user string

	gen := new(mockGenerator)
	gen.On("Configured").Return(true)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { user = args.String(3) }).
		Return(fixture(t, "resume.json"), nil)

	svc := newTestService(t, gen, RetryPolicy{})

	_, err := svc.TailorResume(context.Background(), ResumeRequest{JobDescription: frontendJD, CandidateID: "nobody"})
	require.NoError(t, err)
	assert.Contains(t, user, "**Name:** Jane Doe")
}

func TestTailorResumeUpstreamAuth(t *testing.T) {
	gen := new(mockGenerator)
	gen.On("Configured").Return(true)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", &llm.UpstreamError{Kind: llm.KindAuth, Status: 401, Err: errors.New("invalid x-api-key")})

	svc := newTestService(t, gen, RetryPolicy{MaxAttempts: 3})

	_, err := svc.TailorResume(context.Background(), ResumeRequest{JobDescription: frontendJD})

	terr := requireTailorError(t, err)
	assert.Equal(t, KindUpstream, terr.Kind)
	assert.Equal(t, llm.KindAuth, terr.Upstream)
	assert.Contains(t, terr.UserMessage(), "ANTHROPIC_API_KEY")
	assert.False(t, terr.Retryable())
	assert.Equal(t, 1, terr.Attempts)
	gen.AssertNumberOfCalls(t, "Generate", 1)
}

func TestTailorResumeExtractionFailures(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind Kind
		wantMsg  string
	}{
		{
			name:     "no json",
			raw:      "I'm sorry, I cannot produce that right now.",
			wantKind: KindParse,
			wantMsg:  MsgParse,
		},
		{
			name:     "missing experience",
			raw:      `{"tailored_resume": {"professional_summary": "x", "skills": {}, "education": []}}`,
			wantKind: KindValidation,
			wantMsg:  MsgParse,
		},
		{
			name:     "model rejects input",
			raw:      `{"error": "The provided text does not appear to be a job description. Please paste the full job posting."}`,
			wantKind: KindInput,
			wantMsg:  "The provided text does not appear to be a job description. Please paste the full job posting.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(mockGenerator)
			gen.On("Configured").Return(true)
			gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tt.raw, nil)

			svc := newTestService(t, gen, RetryPolicy{})

			doc, err := svc.TailorResume(context.Background(), ResumeRequest{JobDescription: frontendJD})

			assert.Nil(t, doc)
			terr := requireTailorError(t, err)
			assert.Equal(t, tt.wantKind, terr.Kind)
			assert.Equal(t, tt.wantMsg, terr.UserMessage())
			assert.Equal(t, 1, terr.Attempts)
		})
	}
}

func stubSleep(t *testing.T) (waits *[]time.Duration) {
	t.Helper()
	waits = &[]time.Duration{}
	orig := sleep
	sleep = func(ctx context.Context, d time.Duration) (err error) {
		*waits = append(*waits, d)
		return err
	}
	t.Cleanup(func() { sleep = orig })
	return waits
}

func TestRateLimitSurfacesImmediatelyByDefault(t *testing.T) {
	waits := stubSleep(t)

	gen := new(mockGenerator)
	gen.On("Configured").Return(true)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", &llm.UpstreamError{Kind: llm.KindRateLimited, Status: 429})

	svc := newTestService(t, gen, RetryPolicy{})

	_, err := svc.TailorResume(context.Background(), ResumeRequest{JobDescription: frontendJD})

	terr := requireTailorError(t, err)
	assert.Equal(t, llm.KindRateLimited, terr.Upstream)
	assert.Equal(t, MsgRateLimited, terr.UserMessage())
	assert.True(t, terr.Retryable())
	assert.Equal(t, 1, terr.Attempts)
	assert.Empty(t, *waits)
}

func TestRateLimitBackoffRecovers(t *testing.T) {
	waits := stubSleep(t)
	limited := &llm.UpstreamError{Kind: llm.KindRateLimited, Status: 429}

	gen := new(mockGenerator)
	gen.On("Configured").Return(true)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", limited).Twice()
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(fixture(t, "resume.json"), nil).Once()

	svc := newTestService(t, gen, RetryPolicy{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond})

	doc, err := svc.TailorResume(context.Background(), ResumeRequest{JobDescription: frontendJD})
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond}, *waits)
	gen.AssertNumberOfCalls(t, "Generate", 3)
}

func TestRateLimitBackoffExhausted(t *testing.T) {
	stubSleep(t)

	gen := new(mockGenerator)
	gen.On("Configured").Return(true)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", &llm.UpstreamError{Kind: llm.KindRateLimited, Status: 429})

	svc := newTestService(t, gen, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond})

	_, err := svc.TailorResume(context.Background(), ResumeRequest{JobDescription: frontendJD})

	terr := requireTailorError(t, err)
	assert.Equal(t, llm.KindRateLimited, terr.Upstream)
	assert.Equal(t, 3, terr.Attempts)
	assert.Contains(t, terr.UserMessage(), "3 attempts")
}

func TestResultDiscardedAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gen := new(mockGenerator)
	gen.On("Configured").Return(true)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { cancel() }).
		Return(fixture(t, "resume.json"), nil)

	svc := newTestService(t, gen, RetryPolicy{})

	doc, err := svc.TailorResume(ctx, ResumeRequest{JobDescription: frontendJD})

	assert.Nil(t, doc)
	terr := requireTailorError(t, err)
	assert.Equal(t, llm.KindCanceled, terr.Upstream)
}

func TestGenerateCoverLetterValidationOrder(t *testing.T) {
	tests := []struct {
		name string
		req  CoverLetterRequest
		want string
	}{
		{
			name: "everything missing reports company first",
			req:  CoverLetterRequest{},
			want: MsgCompanyRequired,
		},
		{
			name: "blank company",
			req:  CoverLetterRequest{CompanyName: "   ", WhyThisCompany: "Great mission", JobDescription: frontendJD},
			want: MsgCompanyRequired,
		},
		{
			name: "missing why",
			req:  CoverLetterRequest{CompanyName: "Widget Co", JobDescription: frontendJD},
			want: MsgWhyRequired,
		},
		{
			name: "short job description",
			req:  CoverLetterRequest{CompanyName: "Widget Co", WhyThisCompany: "Great mission", JobDescription: "Too short"},
			want: MsgJobDescriptionShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := new(mockGenerator)
			svc := newTestService(t, gen, RetryPolicy{})

			_, err := svc.GenerateCoverLetter(context.Background(), tt.req)

			terr := requireTailorError(t, err)
			assert.Equal(t, KindInput, terr.Kind)
			assert.Equal(t, tt.want, terr.Message)
			gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestGenerateCoverLetter(t *testing.T) {
	var user string

	gen := new(mockGenerator)
	gen.On("Configured").Return(true)
	gen.On("Generate", mock.Anything, llm.CoverLetterParams, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { user = args.String(3) }).
		Return(fixture(t, "cover_letter.json"), nil)

	svc := newTestService(t, gen, RetryPolicy{})

	doc, err := svc.GenerateCoverLetter(context.Background(), CoverLetterRequest{
		CompanyName:    "Widget Co",
		WhyThisCompany: "I have contributed to their open source design system.",
		CompanyMission: "Widgets for everyone.",
		JobDescription: frontendJD,
	})

	require.NoError(t, err)
	assert.Equal(t, "Dear Hiring Manager,", doc.CoverLetter.Greeting)
	assert.Contains(t, user, "<company_name>\nWidget Co\n</company_name>")
	assert.Contains(t, user, "Widgets for everyone.")
	gen.AssertExpectations(t)
}

func TestGenerateCoverLetterMissingMetadata(t *testing.T) {
	raw := `{"cover_letter": {"greeting": "Dear Hiring Manager,", "opening_paragraph": "a", "body_paragraph_1": "b",
		"body_paragraph_2": "c", "closing_paragraph": "d", "signature": "Jane Doe"}}`

	gen := new(mockGenerator)
	gen.On("Configured").Return(true)
	gen.On("Generate", mock.Anything, llm.CoverLetterParams, mock.Anything, mock.Anything).Return(raw, nil)

	svc := newTestService(t, gen, RetryPolicy{})

	doc, err := svc.GenerateCoverLetter(context.Background(), CoverLetterRequest{
		CompanyName:    "Widget Co",
		WhyThisCompany: "I have contributed to their open source design system.",
		JobDescription: frontendJD,
	})

	assert.Nil(t, doc)
	terr := requireTailorError(t, err)
	assert.Equal(t, KindValidation, terr.Kind)
	assert.Equal(t, MsgParse, terr.UserMessage())
}

func TestMustRegister(t *testing.T) {
	v := validator.New()
	accept := func(validator.FieldLevel) bool { return true }

	assert.NotPanics(t, func() { mustRegister(v, "ok", accept) })
	assert.Panics(t, func() { mustRegister(v, "", accept) })
	assert.NotPanics(t, func() { requestValidator() })
}

func TestRetryPolicyDelay(t *testing.T) {
	p := RetryPolicy{BaseDelay: time.Second, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, p.delay(1))
	assert.Equal(t, 2*time.Second, p.delay(2))
	assert.Equal(t, 4*time.Second, p.delay(3))
	assert.Equal(t, 5*time.Second, p.delay(4))
	assert.Equal(t, 1, RetryPolicy{}.attempts())
}

func TestGuard(t *testing.T) {
	g := NewGuard()

	first := g.Begin("session-a")
	other := g.Begin("session-b")
	assert.True(t, first.Current())

	second := g.Begin("session-a")
	assert.False(t, first.Current(), "older request should be superseded")
	assert.True(t, second.Current())
	assert.True(t, other.Current(), "sessions are independent")

	second.Done()
	third := g.Begin("session-a")
	assert.False(t, first.Current())
	assert.True(t, third.Current())
}
