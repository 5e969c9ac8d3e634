// Package scorer checks a tailored résumé against the profile it was generated from.
package scorer

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/nikogura/job-assistant/pkg/candidates"
	"github.com/nikogura/job-assistant/pkg/documents"
)

// Violation is one rule broken by a tailored résumé.
type Violation struct {
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Location string `json:"location"`
	Found    string `json:"found"`
	Expected string `json:"expected,omitempty"`
}

// ATSCheck compares the model's ATS score with the weighted breakdown it reported.
type ATSCheck struct {
	Present  bool    `json:"present"`
	Reported float64 `json:"reported"`
	Computed float64 `json:"computed"`
	Mismatch bool    `json:"mismatch"`
}

// Report is the result of checking one résumé.
type Report struct {
	FidelityScore int         `json:"fidelity_score"`
	Violations    []Violation `json:"violations"`
	ATS           ATSCheck    `json:"ats"`
}

// Scorer checks tailored résumés.
type Scorer struct {
	tolerance float64
}

// NewScorer creates a new scorer instance.
func NewScorer() (scorer *Scorer) {
	scorer = &Scorer{tolerance: DefaultATSTolerance}
	return scorer
}

// ComputeATS returns the weighted ATS score for a breakdown.
func ComputeATS(b documents.ATSBreakdown) (score float64) {
	score = b.KeywordsMatch*WeightKeywords +
		b.SkillsMatch*WeightSkills +
		b.ExperienceRelevance*WeightExperience +
		b.FormattingScore*WeightFormatting
	score = math.Round(score*10) / 10
	return score
}

// Check compares resume against profile. It never fails; problems are reported as violations.
func (s *Scorer) Check(resume *documents.ResumeResponse, profile candidates.Profile) (report Report) {
	report.Violations = []Violation{}
	if resume == nil {
		report.FidelityScore = 100
		return report
	}

	tailored := resume.TailoredResume

	report.Violations = append(report.Violations, s.checkExperience(tailored.Experience, profile.Experience)...)
	report.Violations = append(report.Violations, s.checkSkills(tailored.Skills, profile)...)
	report.Violations = append(report.Violations, s.checkEducation(tailored.Education, profile.Education)...)

	report.ATS = s.checkATS(resume.OptimizationNotes)
	if report.ATS.Mismatch {
		report.Violations = append(report.Violations, Violation{
			Rule:     RuleATSScoreMismatch,
			Severity: ScoringRules[RuleATSScoreMismatch].Severity,
			Location: "optimization_notes.ats_score",
			Found:    fmt.Sprintf("%.1f", report.ATS.Reported),
			Expected: fmt.Sprintf("%.1f", report.ATS.Computed),
		})
	}

	report.FidelityScore = s.score(report.Violations)
	return report
}

func (s *Scorer) checkExperience(tailored []documents.Experience, source []candidates.Experience) (violations []Violation) {
	if len(tailored) != len(source) {
		violations = append(violations, s.violation(RulePositionCountMismatch, "experience",
			fmt.Sprintf("%d positions", len(tailored)), fmt.Sprintf("%d positions", len(source))))
	}

	byCompany := make(map[string]candidates.Experience, len(source))
	for _, exp := range source {
		byCompany[normalize(exp.Company)] = exp
	}

	for i, exp := range tailored {
		location := fmt.Sprintf("experience[%d]", i)

		match, ok := byCompany[normalize(exp.Company)]
		if !ok {
			violations = append(violations, s.violation(RuleCompanyMismatch, location, exp.Company, ""))
			continue
		}

		if normalize(exp.Dates) != normalize(match.Dates) {
			violations = append(violations, s.violation(RuleDateMismatch, location+".dates", exp.Dates, match.Dates))
		}

		if normalize(exp.Role) != normalize(match.Role) {
			violations = append(violations, s.violation(RuleRoleTitleMismatch, location+".role", exp.Role, match.Role))
		}
	}

	return violations
}

// checkSkills flags skills that neither appear in the profile's skill lists nor anywhere in its text.
func (s *Scorer) checkSkills(tailored map[string][]string, profile candidates.Profile) (violations []Violation) {
	known := make(map[string]bool)
	for _, items := range profile.Skills {
		for _, item := range items {
			known[normalize(item)] = true
		}
	}

	corpus := normalize(profileText(profile))

	for _, key := range sortedKeys(tailored) {
		for _, skill := range tailored[key] {
			n := normalize(skill)
			if n == "" || known[n] || strings.Contains(corpus, n) {
				continue
			}
			violations = append(violations, s.violation(RuleSkillNotInProfile, "skills."+key, skill, ""))
		}
	}

	return violations
}

func (s *Scorer) checkEducation(tailored []documents.Education, source []candidates.Education) (violations []Violation) {
	for i, edu := range tailored {
		found := false
		for _, src := range source {
			if normalize(edu.Degree) == normalize(src.Degree) && normalize(edu.Institution) == normalize(src.Institution) {
				found = true
				break
			}
		}
		if !found {
			violations = append(violations, s.violation(RuleEducationNotInProfile,
				fmt.Sprintf("education[%d]", i), edu.Degree+", "+edu.Institution, ""))
		}
	}
	return violations
}

func (s *Scorer) checkATS(notes *documents.OptimizationNotes) (check ATSCheck) {
	if notes == nil || notes.ATSBreakdown == nil {
		return check
	}

	check.Present = true
	check.Reported = notes.ATSScore
	check.Computed = ComputeATS(*notes.ATSBreakdown)
	check.Mismatch = math.Abs(check.Reported-check.Computed) > s.tolerance
	return check
}

func (s *Scorer) violation(rule, location, found, expected string) (v Violation) {
	v = Violation{
		Rule:     rule,
		Severity: ScoringRules[rule].Severity,
		Location: location,
		Found:    found,
		Expected: expected,
	}
	return v
}

func (s *Scorer) score(violations []Violation) (score int) {
	score = 100

	for _, v := range violations {
		rule, exists := ScoringRules[v.Rule]
		if !exists {
			continue
		}
		score -= rule.Weight
	}

	if score < 0 {
		score = 0
	}

	return score
}

// ExtractLessons turns a report into short human-readable findings.
func (s *Scorer) ExtractLessons(report Report) (lessons []string) {
	lessons = []string{}

	for _, v := range report.Violations {
		if v.Severity != "critical" {
			continue
		}
		lesson := v.Rule + " at " + v.Location + ": " + v.Found
		if v.Expected != "" {
			lesson += " (profile: " + v.Expected + ")"
		}
		lessons = append(lessons, lesson)
	}

	skills := 0
	for _, v := range report.Violations {
		if v.Rule == RuleSkillNotInProfile {
			skills++
		}
	}
	if skills > 0 {
		lessons = append(lessons, fmt.Sprintf("%d skill(s) not found in the profile; remove or regenerate", skills))
	}

	if report.ATS.Mismatch {
		lessons = append(lessons, fmt.Sprintf("Reported ATS score %.1f does not match its breakdown (%.1f)",
			report.ATS.Reported, report.ATS.Computed))
	}

	return lessons
}

func profileText(p candidates.Profile) (text string) {
	var b strings.Builder
	b.WriteString(p.Title)
	b.WriteString(" ")
	b.WriteString(p.Summary)
	for _, h := range p.Highlights {
		b.WriteString(" ")
		b.WriteString(h)
	}
	for _, exp := range p.Experience {
		b.WriteString(" ")
		b.WriteString(exp.Role)
		for _, a := range exp.Achievements {
			b.WriteString(" ")
			b.WriteString(a)
		}
	}
	for _, proj := range p.Projects {
		b.WriteString(" ")
		b.WriteString(proj.Name)
		b.WriteString(" ")
		b.WriteString(proj.Description)
		b.WriteString(" ")
		b.WriteString(strings.Join(proj.Technologies, " "))
	}
	for _, edu := range p.Education {
		b.WriteString(" ")
		b.WriteString(edu.Degree)
	}
	text = b.String()
	return text
}

// normalize lowercases s, unifies dashes and collapses whitespace.
func normalize(s string) (n string) {
	n = strings.NewReplacer("–", "-", "—", "-").Replace(strings.ToLower(s))
	n = strings.Join(strings.Fields(n), " ")
	n = strings.NewReplacer(" - ", "-", " -", "-", "- ", "-").Replace(n)
	return n
}

func sortedKeys(m map[string][]string) (keys []string) {
	keys = make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
