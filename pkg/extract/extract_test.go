package extract

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(t *testing.T, name string) (content string) {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	content = string(data)
	return content
}

func TestFindJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{
			name: "bare object",
			raw:  `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "prose around object",
			raw:  "Here is your resume:\n{\"a\": {\"b\": 2}}\nGood luck!",
			want: `{"a": {"b": 2}}`,
		},
		{
			name: "code fence",
			raw:  "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "braces inside strings",
			raw:  `{"text": "use {curly} and \"quoted }\" braces"}`,
			want: `{"text": "use {curly} and \"quoted }\" braces"}`,
		},
		{
			name: "two objects returns the first",
			raw:  `{"first": true} and then {"second": true}`,
			want: `{"first": true}`,
		},
		{
			name: "stray prose braces before object",
			raw:  `Note {this is not json} then {"ok": true}`,
			want: `{"ok": true}`,
		},
		{
			name: "unbalanced prose brace before object",
			raw:  "Sure { here is the resume:\n{\"a\":1}\nThanks",
			want: `{"a":1}`,
		},
		{
			name:    "no braces",
			raw:     "I cannot help with that.",
			wantErr: true,
		},
		{
			name:    "unterminated object",
			raw:     `{"a": 1, "b": [`,
			wantErr: true,
		},
		{
			name:    "balanced but invalid",
			raw:     `{not json at all}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindJSON(tt.raw)
			if tt.wantErr {
				var perr *ParseError
				require.True(t, errors.As(err, &perr), "expected *ParseError, got %v", err)
				assert.Equal(t, tt.raw, perr.Raw)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResumeProseWrapped(t *testing.T) {
	raw := "Here is the tailored resume you asked for:\n\n" + fixture(t, "resume.json") + "\n\nLet me know if you need changes."

	doc, err := Resume(raw)
	require.NoError(t, err)

	assert.Len(t, doc.TailoredResume.Experience, 2)
	assert.Equal(t, "Acme Retail", doc.TailoredResume.Experience[0].Company)
	assert.Equal(t, []string{"TypeScript", "JavaScript"}, doc.TailoredResume.Skills["languages"])
	require.NotNil(t, doc.OptimizationNotes)
	assert.InDelta(t, 86.5, doc.OptimizationNotes.ATSScore, 0.001)
	require.NotNil(t, doc.OptimizationNotes.ATSBreakdown)
	assert.InDelta(t, 95, doc.OptimizationNotes.ATSBreakdown.FormattingScore, 0.001)
}

func TestResumeBareObjectIsWrapped(t *testing.T) {
	raw := `{
  "professional_summary": "Engineer.",
  "skills": {"languages": ["Go"]},
  "experience": [{"company": "X", "role": "Dev", "dates": "2020", "achievements": ["Did work"]}],
  "education": []
}`

	doc, err := Resume(raw)
	require.NoError(t, err)
	assert.Equal(t, "Engineer.", doc.TailoredResume.ProfessionalSummary)
	assert.Nil(t, doc.OptimizationNotes)
}

func TestResumeMissingExperience(t *testing.T) {
	raw := `{"tailored_resume": {"professional_summary": "x", "skills": {}, "education": []}}`

	doc, err := Resume(raw)
	assert.Nil(t, doc)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)

	found := false
	for _, f := range verr.Fields {
		if strings.Contains(f.Message, "experience") {
			found = true
		}
	}
	assert.True(t, found, "expected a field error mentioning experience, got %+v", verr.Fields)
	assert.NotContains(t, err.Error(), "professional_summary\": \"x")
}

func TestResumeWrongTypes(t *testing.T) {
	raw := `{"tailored_resume": {
  "professional_summary": ["not", "a", "string"],
  "skills": {"languages": "Go, Rust"},
  "experience": [{"company": "X", "role": "Dev", "dates": "2020", "achievements": "one bullet"}],
  "education": []
}}`

	_, err := Resume(raw)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
	assert.GreaterOrEqual(t, len(verr.Fields), 3)
}

func TestResumeRejected(t *testing.T) {
	raw := `{"error": "The provided text does not appear to be a job description. Please paste the full job posting."}`

	_, err := Resume(raw)

	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected), "expected *RejectedError, got %v", err)
	assert.Contains(t, rejected.Message, "does not appear to be a job description")
}

func TestResumeNoJSON(t *testing.T) {
	_, err := Resume("Sorry, I can't do that.")

	var perr *ParseError
	require.True(t, errors.As(err, &perr))
	assert.NotContains(t, perr.Error(), "Sorry")
}

func TestCoverLetter(t *testing.T) {
	doc, err := CoverLetter("```json\n" + fixture(t, "cover_letter.json") + "\n```")
	require.NoError(t, err)

	assert.Equal(t, "Dear Hiring Manager,", doc.CoverLetter.Greeting)
	assert.Len(t, doc.CoverLetter.Paragraphs(), 4)
	assert.Equal(t, "conversational", string(doc.Metadata.ToneUsed))
	assert.Equal(t, []string{"React", "design systems"}, doc.Metadata.KeyPointsAddressed)
}

func TestCoverLetterMissingParagraph(t *testing.T) {
	raw := `{"cover_letter": {"greeting": "Hi", "opening_paragraph": "Hello", "signature": "Me"}}`

	_, err := CoverLetter(raw)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
}

func TestCoverLetterMissingMetadata(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "no metadata",
			raw: `{"cover_letter": {"greeting": "Hi", "opening_paragraph": "a", "body_paragraph_1": "b",
				"body_paragraph_2": "c", "closing_paragraph": "d", "signature": "J"}}`,
		},
		{
			name: "three paragraphs",
			raw: `{"cover_letter": {"greeting": "Hi", "opening_paragraph": "a", "body_paragraph_1": "b",
				"closing_paragraph": "d", "signature": "J"},
				"metadata": {"tone_used": "formal", "tone_reason": "r", "key_points_addressed": [], "company_specific_mentions": []}}`,
		},
		{
			name: "metadata without tone",
			raw: `{"cover_letter": {"greeting": "Hi", "opening_paragraph": "a", "body_paragraph_1": "b",
				"body_paragraph_2": "c", "closing_paragraph": "d", "signature": "J"},
				"metadata": {"key_points_addressed": [], "company_specific_mentions": []}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := CoverLetter(tt.raw)

			assert.Nil(t, doc)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "expected *ValidationError, got %v", err)
		})
	}
}

func TestCoverLetterRejected(t *testing.T) {
	_, err := CoverLetter(`Unfortunately: {"error": "Not a job posting."}`)

	var rejected *RejectedError
	require.True(t, errors.As(err, &rejected))
	assert.Equal(t, "Not a job posting.", rejected.Message)
}
