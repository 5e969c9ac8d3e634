package prompts

import (
	"fmt"
	"strings"

	"github.com/nikogura/job-assistant/pkg/candidates"
)

// RejectionMessage is what the model is told to return when the input is not a job posting.
const RejectionMessage = "The provided text does not appear to be a job description. Please paste the full job posting."

// ResumeSystem builds the résumé system instruction for a candidate.
// Bullet guidance names each of the candidate's positions, most recent first.
//
//nolint:funlen // Prompt template
func ResumeSystem(p candidates.Profile) (prompt string) {
	v := p.Variant()
	var b strings.Builder

	fmt.Fprintf(&b, "You are an expert resume writer and career coach with 15 years of experience helping %ss land roles. ", v.Label)
	fmt.Fprintf(&b, "Your readers are %s. ", v.Audience)
	b.WriteString("Your specialty is tailoring resumes to a specific job description while staying completely truthful.\n\n")

	fmt.Fprintf(&b, "## LENGTH TARGET: %s\n", strings.ToUpper(v.PageTarget))
	fmt.Fprintf(&b, "This candidate has %s years of experience. Size the resume to fit %s:\n", p.YearsOfExperience, v.PageTarget)
	fmt.Fprintf(&b, "- Professional Summary: %s sentences\n", v.SummarySentences)
	fmt.Fprintf(&b, "- Highlights of Qualifications: %s bullet points\n", v.Highlights)
	for i, exp := range p.Experience {
		fmt.Fprintf(&b, "- %s (%s): %s achievement bullets\n", positionLabel(i), exp.Company, v.Bullets(i))
	}
	b.WriteString("- Keep each bullet to 1-2 lines\n\n")

	b.WriteString("## Your Task\n\n")
	b.WriteString("Given a job description and the candidate's experience, produce a tailored resume that:\n")
	b.WriteString("1. Highlights the experience most relevant to this role\n")
	b.WriteString("2. Incorporates keywords from the job description naturally\n")
	b.WriteString("3. Reorders and rewords achievements to match the role's requirements\n")
	b.WriteString("4. Never fabricates or exaggerates experience\n")
	b.WriteString("5. Reads well for both applicant tracking systems and human reviewers\n\n")

	if len(v.Emphasis) > 0 {
		b.WriteString("For this profession, emphasize:\n")
		for _, e := range v.Emphasis {
			fmt.Fprintf(&b, "- %s\n", e)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Output Format\n\n")
	b.WriteString("Return ONLY a JSON object with this structure (no markdown, no commentary):\n\n")
	b.WriteString(resumeSchemaExample(p, v))
	b.WriteString("\n\n")

	b.WriteString("### ATS Score\n")
	b.WriteString("Score each breakdown field from 0 to 100:\n")
	b.WriteString("- keywords_match: share of job description keywords present in the resume\n")
	b.WriteString("- skills_match: share of required skills the candidate has\n")
	b.WriteString("- experience_relevance: how relevant the experience is to the role\n")
	b.WriteString("- formatting_score: ATS-friendliness of the format (90-100 for this format)\n")
	b.WriteString("ats_score = keywords_match*0.35 + skills_match*0.30 + experience_relevance*0.25 + formatting_score*0.10\n")
	b.WriteString("List important job keywords the candidate genuinely lacks in keywords_missing.\n\n")

	b.WriteString("## Tailoring Rules\n\n")
	b.WriteString("### Skills\n")
	b.WriteString("- Use these skill groups, most relevant skills first: ")
	b.WriteString(categoryLabels(v.OutputCategories))
	b.WriteString("\n- Omit a group entirely if the candidate has nothing relevant for it\n")
	b.WriteString("- Drop skills that are irrelevant to this role\n\n")

	b.WriteString("### Experience\n")
	b.WriteString("- Keep every position, in the same order, with company, role, location and dates exactly as given\n")
	b.WriteString("- Put the most relevant achievements first within each role\n")
	b.WriteString("- Use the job description's terminology where it honestly applies\n")
	b.WriteString("- Keep quantified results from the source; never invent new metrics\n\n")

	b.WriteString("### Truthfulness (CRITICAL)\n")
	b.WriteString("- NEVER add skills the candidate does not have\n")
	b.WriteString("- NEVER fabricate achievements, metrics, employers, titles or dates\n")
	b.WriteString("- If a required skill is missing, highlight transferable skills instead and note the gap\n")
	b.WriteString("- Use ONLY information in the candidate experience. When in doubt, leave it out.\n\n")

	b.WriteString("### Additional Keywords\n")
	b.WriteString("If the user supplies additional keywords, work them in wherever the candidate's real experience supports them. ")
	b.WriteString("If a keyword cannot be supported truthfully, list it in keywords_missing instead.\n\n")

	b.WriteString("## Edge Cases\n")
	b.WriteString("- Vague job description: return the resume and explain what would help in optimization_notes.suggestions\n")
	b.WriteString("- Little relevant experience: focus on transferable skills and set match_score to \"Low\"\n")
	fmt.Fprintf(&b, "- Input is not a job description: return exactly {\"error\": %q}\n", RejectionMessage)

	prompt = b.String()
	return prompt
}

// ResumeUser builds the résumé user message. Keywords are rendered verbatim in their given order.
func ResumeUser(p candidates.Profile, jobDescription string, keywords []string) (message string) {
	var b strings.Builder

	section(&b, "Job Description", "job_description", jobDescription)
	section(&b, "Candidate Experience", "candidate_experience", FormatProfile(p))

	if len(keywords) > 0 {
		var kw strings.Builder
		for _, k := range keywords {
			fmt.Fprintf(&kw, "- %s\n", k)
		}
		section(&b, "Additional Keywords", "additional_keywords", kw.String())
	}

	b.WriteString("## Instructions\n\n")
	b.WriteString("Generate a tailored resume for this specific job. ")
	b.WriteString("Return the response as a JSON object following the output format in your instructions.")

	message = b.String()
	return message
}

func resumeSchemaExample(p candidates.Profile, v candidates.Variant) (example string) {
	var b strings.Builder

	b.WriteString("{\n  \"tailored_resume\": {\n")
	fmt.Fprintf(&b, "    \"professional_summary\": \"%s sentences tailored to this role\",\n", v.SummarySentences)
	fmt.Fprintf(&b, "    \"highlights_of_qualifications\": [\"%s qualifications relevant to the job\"],\n", v.Highlights)
	b.WriteString("    \"skills\": {\n")
	for i, c := range v.OutputCategories {
		sep := ","
		if i == len(v.OutputCategories)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "      %q: [\"skill1\", \"skill2\"]%s\n", c.Key, sep)
	}
	b.WriteString("    },\n")
	b.WriteString("    \"experience\": [\n")
	for i, exp := range p.Experience {
		sep := ","
		if i == len(p.Experience)-1 {
			sep = ""
		}
		b.WriteString("      {\n")
		fmt.Fprintf(&b, "        \"company\": %q,\n", exp.Company)
		b.WriteString("        \"location\": \"City, Region\",\n")
		b.WriteString("        \"role\": \"Job Title\",\n")
		b.WriteString("        \"dates\": \"Start - End\",\n")
		b.WriteString("        \"summary\": \"One sentence describing the role, tailored to the target job\",\n")
		fmt.Fprintf(&b, "        \"achievements\": [\"%s concise, quantified, relevant bullets\"]\n", v.Bullets(i))
		fmt.Fprintf(&b, "      }%s\n", sep)
	}
	b.WriteString("    ],\n")
	b.WriteString("    \"key_projects\": [\n")
	b.WriteString("      {\"name\": \"Project\", \"description\": \"One sentence\", \"technologies\": [\"Tech\"], \"impact\": \"Quantified impact\"}\n")
	b.WriteString("    ],\n")
	b.WriteString("    \"education\": [\n")
	b.WriteString("      {\"degree\": \"Degree\", \"institution\": \"School\", \"location\": \"City, Country (optional)\"}\n")
	b.WriteString("    ]\n")
	b.WriteString("  },\n")
	b.WriteString("  \"optimization_notes\": {\n")
	b.WriteString("    \"ats_score\": 85,\n")
	b.WriteString("    \"ats_breakdown\": {\"keywords_match\": 90, \"skills_match\": 85, \"experience_relevance\": 80, \"formatting_score\": 95},\n")
	b.WriteString("    \"keywords_incorporated\": [\"keyword\"],\n")
	b.WriteString("    \"keywords_missing\": [\"keyword the candidate lacks\"],\n")
	b.WriteString("    \"skills_highlighted\": [\"skill\"],\n")
	b.WriteString("    \"experience_reordered\": true,\n")
	b.WriteString("    \"match_score\": \"High | Medium | Low\",\n")
	b.WriteString("    \"suggestions\": \"Additional suggestions for the candidate\"\n")
	b.WriteString("  }\n")
	b.WriteString("}")

	example = b.String()
	return example
}

func positionLabel(i int) (label string) {
	switch i {
	case 0:
		label = "Most recent role"
	case 1:
		label = "Second role"
	case 2:
		label = "Third role"
	default:
		label = fmt.Sprintf("Role %d", i+1)
	}
	return label
}

func categoryLabels(cats []candidates.Category) (labels string) {
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, fmt.Sprintf("%s (%s)", c.Label, c.Key))
	}
	labels = strings.Join(names, ", ")
	return labels
}
