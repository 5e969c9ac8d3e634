// Package prompts builds the system and user messages sent to the generation API.
// Every function here is pure: the same inputs always produce the same bytes.
package prompts

import (
	"fmt"
	"strings"

	"github.com/nikogura/job-assistant/pkg/candidates"
)

// FormatProfile flattens a profile into the plain-text block the model reads as candidate experience.
// Skills are listed in the variant's category order so map iteration never leaks into the output.
func FormatProfile(p candidates.Profile) (text string) {
	variant := p.Variant()
	var b strings.Builder

	fmt.Fprintf(&b, "**Name:** %s\n", p.Name)
	b.WriteString("**Contact:** ")
	b.WriteString(joinNonEmpty(" | ", p.Email, p.Phone, p.Location, p.LinkedIn))
	b.WriteString("\n")
	fmt.Fprintf(&b, "**Title:** %s\n", p.Title)
	fmt.Fprintf(&b, "**Years of Experience:** %s\n", p.YearsOfExperience)

	if p.Summary != "" {
		b.WriteString("\n**Professional Summary:**\n")
		b.WriteString(strings.TrimSpace(p.Summary))
		b.WriteString("\n")
	}

	if len(p.Highlights) > 0 {
		b.WriteString("\n**Highlights of Qualifications:**\n")
		for _, h := range p.Highlights {
			fmt.Fprintf(&b, "- %s\n", h)
		}
	}

	b.WriteString("\n**Skills:**\n")
	for _, cat := range variant.SkillCategories {
		items := p.Skills[cat.Key]
		if len(items) == 0 {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", cat.Label, strings.Join(items, ", "))
	}

	if len(p.Projects) > 0 {
		b.WriteString("\n**Key Projects:**\n")
		for _, proj := range p.Projects {
			fmt.Fprintf(&b, "- %s: %s", proj.Name, proj.Description)
			if len(proj.Technologies) > 0 {
				fmt.Fprintf(&b, " (Technologies: %s)", strings.Join(proj.Technologies, ", "))
			}
			if proj.Impact != "" {
				fmt.Fprintf(&b, " — Impact: %s", proj.Impact)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("\n**Experience:**\n")
	for _, exp := range p.Experience {
		b.WriteString("\n")
		b.WriteString(joinNonEmpty(" — ", exp.Company, exp.Location))
		b.WriteString("\n")
		fmt.Fprintf(&b, "%s | %s\n", exp.Role, exp.Dates)
		for _, a := range exp.Achievements {
			fmt.Fprintf(&b, "- %s\n", a)
		}
	}

	if len(p.Education) > 0 {
		fmt.Fprintf(&b, "\n**%s:**\n", variant.EducationHeading)
		for _, edu := range p.Education {
			fmt.Fprintf(&b, "- %s\n", joinNonEmpty(" — ", edu.Degree, edu.Institution, edu.Location))
		}
	}

	text = strings.TrimRight(b.String(), "\n")
	return text
}

// section wraps body in a markdown heading and a labelled delimiter pair.
func section(b *strings.Builder, heading string, tag string, body string) {
	fmt.Fprintf(b, "## %s\n\n<%s>\n%s\n</%s>\n\n", heading, tag, strings.TrimSpace(body), tag)
}

func joinNonEmpty(sep string, parts ...string) (joined string) {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	joined = strings.Join(kept, sep)
	return joined
}
