package prompts

import (
	"fmt"
	"strings"

	"github.com/nikogura/job-assistant/pkg/candidates"
)

// CoverLetterFields are the per-letter inputs supplied by the user.
type CoverLetterFields struct {
	JobDescription string
	CompanyName    string
	WhyThisCompany string
	CompanyMission string
}

// CoverLetterSystem builds the cover letter system instruction for a candidate.
func CoverLetterSystem(p candidates.Profile) (prompt string) {
	v := p.Variant()
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert cover letter writer with 15 years of experience helping %ss land roles. ", v.Label)
	b.WriteString("You write specific, personal cover letters that complement a tailored resume.\n\n")

	b.WriteString("## Your Task\n\n")
	b.WriteString("Write a cover letter for the candidate that:\n")
	b.WriteString("1. Opens with a hook specific to the role or company, never \"I am writing to apply\"\n")
	b.WriteString("2. Connects 2-3 of the candidate's real achievements to the job's requirements\n")
	b.WriteString("3. Uses the candidate's own reason for wanting to join the company\n")
	b.WriteString("4. Closes with a short call to action and thanks\n")
	b.WriteString("5. Stays between 250 and 350 words\n\n")

	b.WriteString("## Tone\n")
	b.WriteString("Choose \"conversational\" for startups and companies whose posting reads informally, otherwise \"professional\". ")
	b.WriteString("Report the choice and a one-sentence reason in metadata.\n\n")

	b.WriteString("## Output Format\n\n")
	b.WriteString("Return ONLY a JSON object with this structure (no markdown, no commentary):\n\n")
	b.WriteString(`{
  "cover_letter": {
    "greeting": "Dear Hiring Manager, (use a name if the posting gives one)",
    "opening_paragraph": "Hook plus current title and years of experience, 2-3 sentences",
    "body_paragraph_1": "Most relevant achievement tied to the requirements, 3-4 sentences",
    "body_paragraph_2": "Second achievement or skill set, plus why this company, 3-4 sentences",
    "closing_paragraph": "Enthusiasm, forward-looking statement and thanks, 2 sentences",
    "signature": "Sincerely,\nCandidate Name"
  },
  "metadata": {
    "tone_used": "conversational | professional",
    "tone_reason": "Why this tone fits the company",
    "key_points_addressed": ["requirement addressed"],
    "company_specific_mentions": ["company detail referenced"]
  }
}`)
	b.WriteString("\n\n")

	b.WriteString("## Truthfulness (CRITICAL)\n")
	b.WriteString("- Only reference achievements present in the candidate experience\n")
	b.WriteString("- Only state company facts given in the job description, the company mission or the candidate's reason\n")
	b.WriteString("- Never over-promise or exaggerate\n")
	fmt.Fprintf(&b, "- Sign the letter as %s\n", p.Name)

	prompt = b.String()
	return prompt
}

// CoverLetterUser builds the cover letter user message. The mission section is omitted when empty.
func CoverLetterUser(p candidates.Profile, fields CoverLetterFields) (message string) {
	var b strings.Builder

	section(&b, "Company Name", "company_name", fields.CompanyName)
	section(&b, "Why This Company", "why_this_company", fields.WhyThisCompany)
	if strings.TrimSpace(fields.CompanyMission) != "" {
		section(&b, "Company Mission", "company_mission", fields.CompanyMission)
	}
	section(&b, "Job Description", "job_description", fields.JobDescription)
	section(&b, "Candidate Experience", "candidate_experience", FormatProfile(p))

	b.WriteString("## Instructions\n\n")
	fmt.Fprintf(&b, "Write a cover letter for %s applying to %s. ", p.Name, strings.TrimSpace(fields.CompanyName))
	b.WriteString("Return the response as a JSON object following the output format in your instructions.")

	message = b.String()
	return message
}
