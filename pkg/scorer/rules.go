package scorer

// Rule represents a scoring rule.
type Rule struct {
	Name        string
	Category    string // fidelity, accuracy, quality
	Severity    string // critical, major, minor
	Description string
	Weight      int // Points deducted for violation
}

const (
	RuleSkillNotInProfile     = "SKILL_NOT_IN_PROFILE"
	RuleCompanyMismatch       = "COMPANY_MISMATCH"
	RuleDateMismatch          = "DATE_MISMATCH"
	RuleRoleTitleMismatch     = "ROLE_TITLE_MISMATCH"
	RulePositionCountMismatch = "POSITION_COUNT_MISMATCH"
	RuleEducationNotInProfile = "EDUCATION_NOT_IN_PROFILE"
	RuleATSScoreMismatch      = "ATS_SCORE_MISMATCH"
)

//nolint:gochecknoglobals // Scoring configuration constants
var ScoringRules = map[string]Rule{
	// Fidelity Rules
	RuleSkillNotInProfile: {
		Name:        RuleSkillNotInProfile,
		Category:    "fidelity",
		Severity:    "major",
		Description: "Skill listed that does not appear anywhere in the candidate profile",
		Weight:      15,
	},
	RuleEducationNotInProfile: {
		Name:        RuleEducationNotInProfile,
		Category:    "fidelity",
		Severity:    "major",
		Description: "Degree or institution not present in the candidate profile",
		Weight:      15,
	},

	// Accuracy Rules
	RuleCompanyMismatch: {
		Name:        RuleCompanyMismatch,
		Category:    "accuracy",
		Severity:    "critical",
		Description: "Experience entry names a company the candidate never worked for",
		Weight:      30,
	},
	RuleDateMismatch: {
		Name:        RuleDateMismatch,
		Category:    "accuracy",
		Severity:    "critical",
		Description: "Employment dates differ from the profile",
		Weight:      25,
	},
	RuleRoleTitleMismatch: {
		Name:        RuleRoleTitleMismatch,
		Category:    "accuracy",
		Severity:    "critical",
		Description: "Role title modified from the profile",
		Weight:      20,
	},
	RulePositionCountMismatch: {
		Name:        RulePositionCountMismatch,
		Category:    "accuracy",
		Severity:    "major",
		Description: "Number of experience entries differs from the profile",
		Weight:      15,
	},

	// Quality Rules
	RuleATSScoreMismatch: {
		Name:        RuleATSScoreMismatch,
		Category:    "quality",
		Severity:    "minor",
		Description: "Reported ATS score disagrees with its weighted breakdown by more than the tolerance",
		Weight:      5,
	},
}

// ATS component weights.
const (
	WeightKeywords   = 0.35
	WeightSkills     = 0.30
	WeightExperience = 0.25
	WeightFormatting = 0.10
)

// DefaultATSTolerance is the largest allowed gap between a reported and a recomputed ATS score.
const DefaultATSTolerance = 5.0
