package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/nikogura/job-assistant/pkg/candidates"
	"github.com/nikogura/job-assistant/pkg/documents"
)

func testProfile() (p candidates.Profile) {
	p = candidates.Profile{
		ID:         "jane-doe",
		Profession: candidates.Developer,
		Name:       "Jane Doe",
		Email:      "jane.doe@example.com",
		Phone:      "+61 400 000 001",
		Location:   "Melbourne, VIC",
		LinkedIn:   "linkedin.com/in/janedoe-example",
	}
	return p
}

func testResume() (doc *documents.ResumeResponse) {
	doc = &documents.ResumeResponse{
		TailoredResume: documents.TailoredResume{
			ProfessionalSummary:        "Senior frontend engineer.",
			HighlightsOfQualifications: []string{"Led a TypeScript migration"},
			Skills: map[string][]string{
				"tools_platforms":      {"Vite"},
				"languages":            {"TypeScript", "JavaScript"},
				"zz_custom":            {"Storybook"},
				"frameworks_libraries": {"React"},
				"architecture":         {},
			},
			Experience: []documents.Experience{
				{
					Company:      "Acme Retail",
					Location:     "Melbourne, VIC",
					Role:         "Senior Frontend Engineer",
					Dates:        "Mar 2020 - Present",
					Summary:      "Own the storefront frontend.",
					Achievements: []string{"Led the migration", "Shipped a component library"},
				},
				{
					Company:      "Brightline Software",
					Role:         "Frontend Developer",
					Dates:        "Jan 2017 - Feb 2020",
					Achievements: []string{"Built dashboards"},
				},
			},
			KeyProjects: []documents.Project{
				{Name: "Design System", Description: "React components", Technologies: []string{"React"}, Impact: "Six teams"},
			},
			Education: []documents.Education{
				{Degree: "Bachelor of Computer Science", Institution: "Monash University", Location: "Melbourne, VIC"},
			},
		},
	}
	return doc
}

func TestResumeMarkdown(t *testing.T) {
	md := ResumeMarkdown(testResume(), testProfile())

	expectedParts := []string{
		"# Jane Doe\n\n",
		"jane.doe@example.com | +61 400 000 001 | Melbourne, VIC | linkedin.com/in/janedoe-example\n\n",
		"## Professional Summary\n\nSenior frontend engineer.\n\n",
		"## Highlights of Qualifications\n\n- Led a TypeScript migration\n",
		"**Languages:** TypeScript, JavaScript  \n",
		"**Tools & Platforms:** Vite  \n",
		"**zz_custom:** Storybook  \n",
		"### Acme Retail — Melbourne, VIC\n\n**Senior Frontend Engineer** | Mar 2020 - Present\n\nOwn the storefront frontend.\n\n- Led the migration\n- Shipped a component library\n",
		"### Brightline Software\n\n**Frontend Developer** | Jan 2017 - Feb 2020\n\n- Built dashboards\n",
		"### Design System\n\nReact components\n\n*Technologies:* React\n\n*Impact:* Six teams\n",
		"## Education\n\n**Bachelor of Computer Science** — Monash University, Melbourne, VIC",
	}

	for _, part := range expectedParts {
		if !strings.Contains(md, part) {
			t.Errorf("Expected markdown to contain %q\n--- got ---\n%s", part, md)
		}
	}

	if strings.Contains(md, "Architecture") {
		t.Error("Empty skill category should be skipped")
	}

	if !strings.HasSuffix(md, "\n") || strings.HasSuffix(md, "\n\n") {
		t.Error("Expected exactly one trailing newline")
	}
}

func TestResumeMarkdownSkillOrder(t *testing.T) {
	md := ResumeMarkdown(testResume(), testProfile())

	languages := strings.Index(md, "**Languages:**")
	frameworks := strings.Index(md, "**Frameworks & Libraries:**")
	tools := strings.Index(md, "**Tools & Platforms:**")
	custom := strings.Index(md, "**zz_custom:**")

	if languages >= frameworks || frameworks >= tools || tools >= custom {
		t.Errorf("Unexpected skill order: languages=%d frameworks=%d tools=%d custom=%d", languages, frameworks, tools, custom)
	}
}

func TestResumeMarkdownDeterministic(t *testing.T) {
	first := ResumeMarkdown(testResume(), testProfile())
	for range 20 {
		if ResumeMarkdown(testResume(), testProfile()) != first {
			t.Fatal("Expected identical output for identical input")
		}
	}
}

func TestResumeMarkdownEducationHeading(t *testing.T) {
	profile := testProfile()
	profile.Profession = candidates.GRC

	md := ResumeMarkdown(testResume(), profile)
	if !strings.Contains(md, "## Education & Certifications\n") {
		t.Errorf("Expected GRC education heading, got:\n%s", md)
	}
}

func TestCoverLetterMarkdown(t *testing.T) {
	doc := &documents.CoverLetterResponse{
		CoverLetter: documents.CoverLetter{
			Greeting:         "Dear Hiring Manager,",
			OpeningParagraph: "Opening.",
			BodyParagraph1:   "Body one.",
			ClosingParagraph: "Closing.",
			Signature:        "Sincerely,\nJane Doe",
		},
	}

	date := time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)
	md := CoverLetterMarkdown(doc, testProfile(), date)

	expected := "# Jane Doe\n\n" +
		"jane.doe@example.com | +61 400 000 001 | Melbourne, VIC  \nlinkedin.com/in/janedoe-example\n\n" +
		"March 5, 2026\n\n" +
		"Dear Hiring Manager,\n\n" +
		"Opening.\n\n" +
		"Body one.\n\n" +
		"Closing.\n\n" +
		"Sincerely,  \nJane Doe\n"

	if md != expected {
		t.Errorf("Unexpected cover letter markdown:\n--- want ---\n%s\n--- got ---\n%s", expected, md)
	}
}

func TestCoverLetterMarkdownNoDate(t *testing.T) {
	doc := &documents.CoverLetterResponse{
		CoverLetter: documents.CoverLetter{
			Greeting:         "Hello,",
			OpeningParagraph: "Opening.",
		},
	}

	md := CoverLetterMarkdown(doc, testProfile(), time.Time{})

	if strings.Contains(md, "2026") {
		t.Error("Zero date should not be rendered")
	}

	if !strings.HasSuffix(md, "Sincerely,  \nJane Doe\n") {
		t.Errorf("Expected default signature, got:\n%s", md)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "Acme Retail", expected: "acme-retail"},
		{input: "Widget Co.", expected: "widget"},
		{input: "Initech, Inc.", expected: "initech"},
		{input: "Globex Pty Ltd", expected: "globex"},
		{input: "Senior Engineer (Platform)", expected: "senior-engineer-platform"},
		{input: "  --Weird__Name--  ", expected: "weird-name"},
		{input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := SanitizeFilename(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestBuildFilenames(t *testing.T) {
	f := BuildFilenames("/tmp/out", "Jane Doe", "Widget Co.", "Senior Frontend Engineer Design Systems Team")

	if f.Base != "jane-doe-widget-senior-frontend-engineer-design" {
		t.Errorf("Unexpected base %q", f.Base)
	}

	if f.ResumeMD != "/tmp/out/jane-doe-widget-senior-frontend-engineer-design-resume.md" {
		t.Errorf("Unexpected resume path %q", f.ResumeMD)
	}

	if f.CoverLetterOutput(FormatPDF) != "/tmp/out/jane-doe-widget-senior-frontend-engineer-design-cover.pdf" {
		t.Errorf("Unexpected cover letter path %q", f.CoverLetterOutput(FormatPDF))
	}

	empty := BuildFilenames("/tmp/out", "", "", "")
	if empty.Base != "application" {
		t.Errorf("Expected fallback base, got %q", empty.Base)
	}
}
