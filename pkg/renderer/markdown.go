// Package renderer turns generated documents into Markdown and, through pandoc, into PDF or DOCX.
package renderer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/nikogura/job-assistant/pkg/candidates"
	"github.com/nikogura/job-assistant/pkg/documents"
)

// DateLayout is the date format printed on cover letters.
const DateLayout = "January 2, 2006"

// ResumeMarkdown renders a tailored résumé with the candidate's contact header.
func ResumeMarkdown(doc *documents.ResumeResponse, profile candidates.Profile) (md string) {
	var b strings.Builder
	resume := doc.TailoredResume
	variant, _ := candidates.LookupVariant(profile.Profession)

	writeHeader(&b, profile, true)

	if resume.ProfessionalSummary != "" {
		b.WriteString("## Professional Summary\n\n")
		b.WriteString(resume.ProfessionalSummary)
		b.WriteString("\n\n")
	}

	if len(resume.HighlightsOfQualifications) > 0 {
		b.WriteString("## Highlights of Qualifications\n\n")
		writeBullets(&b, resume.HighlightsOfQualifications)
	}

	keys := skillOrder(resume.Skills, variant)
	if len(keys) > 0 {
		b.WriteString("## Skills\n\n")
		for _, key := range keys {
			fmt.Fprintf(&b, "**%s:** %s  \n", variant.SkillLabel(key), strings.Join(resume.Skills[key], ", "))
		}
		b.WriteString("\n")
	}

	if len(resume.Experience) > 0 {
		b.WriteString("## Professional Experience\n\n")
		for _, exp := range resume.Experience {
			b.WriteString("### ")
			b.WriteString(exp.Company)
			if exp.Location != "" {
				b.WriteString(" — ")
				b.WriteString(exp.Location)
			}
			b.WriteString("\n\n")

			fmt.Fprintf(&b, "**%s** | %s\n\n", exp.Role, exp.Dates)

			if exp.Summary != "" {
				b.WriteString(exp.Summary)
				b.WriteString("\n\n")
			}

			writeBullets(&b, exp.Achievements)
		}
	}

	if len(resume.KeyProjects) > 0 {
		b.WriteString("## Key Projects\n\n")
		for _, proj := range resume.KeyProjects {
			fmt.Fprintf(&b, "### %s\n\n%s\n\n", proj.Name, proj.Description)
			if len(proj.Technologies) > 0 {
				fmt.Fprintf(&b, "*Technologies:* %s\n\n", strings.Join(proj.Technologies, ", "))
			}
			if proj.Impact != "" {
				fmt.Fprintf(&b, "*Impact:* %s\n\n", proj.Impact)
			}
		}
	}

	if len(resume.Education) > 0 {
		heading := variant.EducationHeading
		if heading == "" {
			heading = "Education"
		}
		fmt.Fprintf(&b, "## %s\n\n", heading)
		for _, edu := range resume.Education {
			fmt.Fprintf(&b, "**%s** — %s", edu.Degree, edu.Institution)
			if edu.Location != "" {
				b.WriteString(", ")
				b.WriteString(edu.Location)
			}
			b.WriteString("  \n")
		}
		b.WriteString("\n")
	}

	md = strings.TrimRight(b.String(), "\n") + "\n"
	return md
}

// CoverLetterMarkdown renders a cover letter. A zero date leaves the date line out.
func CoverLetterMarkdown(doc *documents.CoverLetterResponse, profile candidates.Profile, date time.Time) (md string) {
	var b strings.Builder
	letter := doc.CoverLetter

	writeHeader(&b, profile, false)

	if !date.IsZero() {
		b.WriteString(date.Format(DateLayout))
		b.WriteString("\n\n")
	}

	if letter.Greeting != "" {
		b.WriteString(letter.Greeting)
		b.WriteString("\n\n")
	}

	for _, p := range letter.Paragraphs() {
		b.WriteString(p)
		b.WriteString("\n\n")
	}

	signature := letter.Signature
	if signature == "" {
		signature = "Sincerely,\n" + profile.Name
	}
	lines := strings.Split(strings.TrimSpace(signature), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	b.WriteString(strings.Join(lines, "  \n"))
	b.WriteString("\n")

	md = b.String()
	return md
}

// writeHeader writes the name and contact block. The résumé puts LinkedIn on the contact line,
// the cover letter on its own line.
func writeHeader(b *strings.Builder, p candidates.Profile, inline bool) {
	fmt.Fprintf(b, "# %s\n\n", p.Name)

	contact := nonEmpty(p.Email, p.Phone, p.Location)
	if inline {
		contact = nonEmpty(p.Email, p.Phone, p.Location, p.LinkedIn)
	}

	if len(contact) > 0 {
		b.WriteString(strings.Join(contact, " | "))
		if !inline && p.LinkedIn != "" {
			b.WriteString("  \n")
			b.WriteString(p.LinkedIn)
		}
		b.WriteString("\n\n")
	}
}

func writeBullets(b *strings.Builder, items []string) {
	for _, item := range items {
		b.WriteString("- ")
		b.WriteString(item)
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

// skillOrder lists the non-empty skill keys, variant categories first, then anything else sorted.
func skillOrder(skills map[string][]string, v candidates.Variant) (keys []string) {
	seen := make(map[string]bool, len(skills))

	add := func(key string) {
		if seen[key] || len(skills[key]) == 0 {
			return
		}
		seen[key] = true
		keys = append(keys, key)
	}

	for _, c := range v.OutputCategories {
		add(c.Key)
	}
	for _, c := range v.SkillCategories {
		add(c.Key)
	}

	var rest []string
	for key := range skills {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		add(key)
	}

	return keys
}

func nonEmpty(parts ...string) (out []string) {
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
