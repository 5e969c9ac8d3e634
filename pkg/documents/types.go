// Package documents holds the structured documents the generation API returns.
package documents

// ResumeResponse is the résumé envelope.
type ResumeResponse struct {
	TailoredResume    TailoredResume     `json:"tailored_resume"`
	OptimizationNotes *OptimizationNotes `json:"optimization_notes,omitempty"`
}

// TailoredResume is a résumé tailored to one job description.
type TailoredResume struct {
	ProfessionalSummary        string              `json:"professional_summary"`
	HighlightsOfQualifications []string            `json:"highlights_of_qualifications,omitempty"`
	Skills                     map[string][]string `json:"skills"`
	Experience                 []Experience        `json:"experience"`
	KeyProjects                []Project           `json:"key_projects,omitempty"`
	Education                  []Education         `json:"education"`
}

// Experience is one tailored position.
type Experience struct {
	Company      string   `json:"company"`
	Location     string   `json:"location,omitempty"`
	Role         string   `json:"role"`
	Dates        string   `json:"dates"`
	Summary      string   `json:"summary,omitempty"`
	Achievements []string `json:"achievements"`
}

// Project is a tailored key project.
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies,omitempty"`
	Impact       string   `json:"impact,omitempty"`
}

// Education is one education entry.
type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Location    string `json:"location,omitempty"`
}

// OptimizationNotes is the model's own account of how it tailored the résumé.
type OptimizationNotes struct {
	ATSScore             float64       `json:"ats_score"`
	ATSBreakdown         *ATSBreakdown `json:"ats_breakdown,omitempty"`
	KeywordsIncorporated []string      `json:"keywords_incorporated,omitempty"`
	KeywordsMissing      []string      `json:"keywords_missing,omitempty"`
	SkillsHighlighted    []string      `json:"skills_highlighted,omitempty"`
	ExperienceReordered  bool          `json:"experience_reordered"`
	MatchScore           string        `json:"match_score,omitempty"`
	Suggestions          string        `json:"suggestions,omitempty"`
}

// ATSBreakdown holds the component scores behind ATSScore, each 0-100.
type ATSBreakdown struct {
	KeywordsMatch       float64 `json:"keywords_match"`
	SkillsMatch         float64 `json:"skills_match"`
	ExperienceRelevance float64 `json:"experience_relevance"`
	FormattingScore     float64 `json:"formatting_score"`
}

// CoverLetterResponse is the cover letter envelope.
type CoverLetterResponse struct {
	CoverLetter CoverLetter         `json:"cover_letter"`
	Metadata    CoverLetterMetadata `json:"metadata"`
}

// CoverLetter is a cover letter split into its paragraphs.
type CoverLetter struct {
	Greeting         string `json:"greeting"`
	OpeningParagraph string `json:"opening_paragraph"`
	BodyParagraph1   string `json:"body_paragraph_1"`
	BodyParagraph2   string `json:"body_paragraph_2"`
	ClosingParagraph string `json:"closing_paragraph"`
	Signature        string `json:"signature"`
}

// Paragraphs returns the body paragraphs in reading order, skipping empty ones.
func (c CoverLetter) Paragraphs() (paragraphs []string) {
	for _, p := range []string{c.OpeningParagraph, c.BodyParagraph1, c.BodyParagraph2, c.ClosingParagraph} {
		if p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// Tone is the register the model chose for a cover letter.
type Tone string

const (
	ToneConversational Tone = "conversational"
	ToneProfessional   Tone = "professional"
)

// CoverLetterMetadata describes how the letter was written.
type CoverLetterMetadata struct {
	ToneUsed                Tone     `json:"tone_used"`
	ToneReason              string   `json:"tone_reason,omitempty"`
	KeyPointsAddressed      []string `json:"key_points_addressed,omitempty"`
	CompanySpecificMentions []string `json:"company_specific_mentions,omitempty"`
}
