package candidates

import (
	"fmt"
)

// Profession tags which variant table entry drives a profile's prompts.
type Profession string

const (
	Developer Profession = "developer"
	Payroll   Profession = "payroll"
	GRC       Profession = "grc"
)

// Category is a skill category key with its display label.
type Category struct {
	Key   string
	Label string
}

// BulletRange is an inclusive min/max count.
type BulletRange struct {
	Min int
	Max int
}

// String renders the range the way prompts spell it, e.g. "6-8".
func (r BulletRange) String() (s string) {
	if r.Min == r.Max {
		s = fmt.Sprintf("%d", r.Min)
		return s
	}
	s = fmt.Sprintf("%d-%d", r.Min, r.Max)
	return s
}

// Variant holds everything that differs between professions.
type Variant struct {
	Profession Profession
	// Label is the role the model is asked to play, e.g. "software developer".
	Label string
	// Audience describes who reads the résumé.
	Audience string
	// SkillCategories are the keys a profile may use in its skills map, in display order.
	SkillCategories []Category
	// OutputCategories are the skill groups the tailored résumé should use.
	OutputCategories []Category
	// BulletGuide is per position, most recent first. Positions past the end use the last entry.
	BulletGuide      []BulletRange
	SummarySentences BulletRange
	Highlights       BulletRange
	EducationHeading string
	PageTarget       string
	// Emphasis lists what the model should foreground for this profession.
	Emphasis []string
}

// Bullets returns the bullet guidance for the position at index i.
func (v Variant) Bullets(i int) (r BulletRange) {
	if len(v.BulletGuide) == 0 {
		r = BulletRange{Min: 3, Max: 5}
		return r
	}
	if i >= len(v.BulletGuide) {
		i = len(v.BulletGuide) - 1
	}
	r = v.BulletGuide[i]
	return r
}

// HasSkillCategory reports whether key is a known profile skill category.
func (v Variant) HasSkillCategory(key string) (ok bool) {
	for _, c := range v.SkillCategories {
		if c.Key == key {
			ok = true
			return ok
		}
	}
	return ok
}

// SkillLabel returns the display label for a skill category key. Unknown keys are returned as is.
func (v Variant) SkillLabel(key string) (label string) {
	for _, c := range v.SkillCategories {
		if c.Key == key {
			label = c.Label
			return label
		}
	}
	for _, c := range v.OutputCategories {
		if c.Key == key {
			label = c.Label
			return label
		}
	}
	label = key
	return label
}

// Variants is the profession variant table.
//
//nolint:gochecknoglobals // lookup table
var Variants = map[Profession]Variant{
	Developer: {
		Profession: Developer,
		Label:      "software developer",
		Audience:   "engineering hiring managers and applicant tracking systems at technology companies",
		SkillCategories: []Category{
			{Key: "languages", Label: "Languages"},
			{Key: "frameworks_libraries", Label: "Frameworks & Libraries"},
			{Key: "architecture", Label: "Architecture"},
			{Key: "css", Label: "CSS"},
			{Key: "tools", Label: "Tools"},
			{Key: "testing", Label: "Testing"},
			{Key: "methodologies", Label: "Methodologies"},
			{Key: "design", Label: "Design"},
			{Key: "other", Label: "Other"},
		},
		OutputCategories: []Category{
			{Key: "languages", Label: "Languages"},
			{Key: "frameworks_libraries", Label: "Frameworks & Libraries"},
			{Key: "architecture", Label: "Architecture"},
			{Key: "tools_platforms", Label: "Tools & Platforms"},
			{Key: "methodologies", Label: "Methodologies"},
		},
		BulletGuide:      []BulletRange{{Min: 6, Max: 8}, {Min: 5, Max: 6}, {Min: 3, Max: 4}},
		SummarySentences: BulletRange{Min: 3, Max: 4},
		Highlights:       BulletRange{Min: 5, Max: 6},
		EducationHeading: "Education",
		PageTarget:       "2 A4 pages",
		Emphasis: []string{
			"shipped features and measurable product impact",
			"technical depth in the languages and frameworks the job names",
			"architecture, performance and testing practices",
		},
	},
	Payroll: {
		Profession: Payroll,
		Label:      "payroll professional",
		Audience:   "payroll managers, HR leaders and applicant tracking systems",
		SkillCategories: []Category{
			{Key: "payroll_systems", Label: "Payroll Systems"},
			{Key: "hris_applications", Label: "HRIS Applications"},
			{Key: "legislative_knowledge", Label: "Legislative Knowledge"},
			{Key: "software_tools", Label: "Software & Tools"},
			{Key: "methodologies", Label: "Methodologies"},
			{Key: "certifications", Label: "Certifications"},
		},
		OutputCategories: []Category{
			{Key: "payroll_systems", Label: "Payroll Systems"},
			{Key: "hris_applications", Label: "HRIS Applications"},
			{Key: "legislative_knowledge", Label: "Legislative Knowledge"},
			{Key: "software_tools", Label: "Software & Tools"},
			{Key: "methodologies", Label: "Methodologies"},
			{Key: "certifications", Label: "Certifications"},
		},
		BulletGuide:      []BulletRange{{Min: 5, Max: 7}, {Min: 4, Max: 5}, {Min: 3, Max: 4}},
		SummarySentences: BulletRange{Min: 3, Max: 4},
		Highlights:       BulletRange{Min: 5, Max: 6},
		EducationHeading: "Education",
		PageTarget:       "2 A4 pages",
		Emphasis: []string{
			"payroll accuracy, volume and number of employees processed",
			"award and legislative compliance",
			"system implementations, migrations and reconciliations",
		},
	},
	GRC: {
		Profession: GRC,
		Label:      "governance, risk and compliance specialist",
		Audience:   "security leaders, compliance managers and applicant tracking systems",
		SkillCategories: []Category{
			{Key: "frameworks_standards", Label: "Frameworks & Standards"},
			{Key: "grc_platforms", Label: "GRC Platforms"},
			{Key: "cloud_security", Label: "Cloud Security"},
			{Key: "audit_compliance", Label: "Audit & Compliance"},
			{Key: "methodologies", Label: "Methodologies"},
			{Key: "certifications", Label: "Certifications"},
		},
		OutputCategories: []Category{
			{Key: "frameworks_standards", Label: "Frameworks & Standards"},
			{Key: "grc_platforms", Label: "GRC Platforms"},
			{Key: "cloud_security", Label: "Cloud Security"},
			{Key: "audit_compliance", Label: "Audit & Compliance"},
			{Key: "methodologies", Label: "Methodologies"},
			{Key: "certifications", Label: "Certifications"},
		},
		BulletGuide:      []BulletRange{{Min: 5, Max: 7}, {Min: 4, Max: 5}, {Min: 3, Max: 4}},
		SummarySentences: BulletRange{Min: 3, Max: 4},
		Highlights:       BulletRange{Min: 5, Max: 6},
		EducationHeading: "Education & Certifications",
		PageTarget:       "2 A4 pages",
		Emphasis: []string{
			"audits delivered and certifications achieved for the organisation",
			"risk assessments, control design and remediation outcomes",
			"framework mappings such as ISO 27001, SOC 2 and NIST",
		},
	},
}

// LookupVariant returns the variant for a profession.
func LookupVariant(p Profession) (v Variant, ok bool) {
	v, ok = Variants[p]
	return v, ok
}

// MustVariant returns the variant for a profession and panics if it is unknown.
// Profiles are validated at load time, so a miss here is a programming error.
func MustVariant(p Profession) (v Variant) {
	v, ok := Variants[p]
	if !ok {
		panic(fmt.Sprintf("unknown profession %q", p))
	}
	return v
}
