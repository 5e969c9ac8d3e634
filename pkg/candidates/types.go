package candidates

// Profile is a candidate's complete résumé-relevant record.
type Profile struct {
	ID                string              `json:"id" yaml:"id" validate:"required"`
	Profession        Profession          `json:"profession" yaml:"profession" validate:"required,profession"`
	Name              string              `json:"name" yaml:"name" validate:"required"`
	Email             string              `json:"email" yaml:"email" validate:"required,email"`
	Phone             string              `json:"phone" yaml:"phone"`
	Location          string              `json:"location" yaml:"location"`
	LinkedIn          string              `json:"linkedin,omitempty" yaml:"linkedin,omitempty"`
	YearsOfExperience string              `json:"years_of_experience" yaml:"years_of_experience" validate:"required"`
	Title             string              `json:"title" yaml:"title" validate:"required"`
	Summary           string              `json:"summary,omitempty" yaml:"summary,omitempty"`
	Highlights        []string            `json:"highlights,omitempty" yaml:"highlights,omitempty"`
	Skills            map[string][]string `json:"skills" yaml:"skills" validate:"required,min=1"`
	Experience        []Experience        `json:"experience" yaml:"experience" validate:"required,min=1,dive"`
	Education         []Education         `json:"education" yaml:"education" validate:"dive"`
	Projects          []Project           `json:"projects,omitempty" yaml:"projects,omitempty" validate:"dive"`
}

// Experience is one position held by the candidate.
type Experience struct {
	Company      string   `json:"company" yaml:"company" validate:"required"`
	Location     string   `json:"location" yaml:"location"`
	Role         string   `json:"role" yaml:"role" validate:"required"`
	Dates        string   `json:"dates" yaml:"dates" validate:"required"`
	Achievements []string `json:"achievements" yaml:"achievements" validate:"required,min=1"`
}

// Education is a credential earned by the candidate.
type Education struct {
	Degree      string `json:"degree" yaml:"degree" validate:"required"`
	Institution string `json:"institution" yaml:"institution" validate:"required"`
	Location    string `json:"location,omitempty" yaml:"location,omitempty"`
}

// Project is a notable project the candidate can point to.
type Project struct {
	Name         string   `json:"name" yaml:"name" validate:"required"`
	Description  string   `json:"description" yaml:"description" validate:"required"`
	Technologies []string `json:"technologies" yaml:"technologies"`
	Impact       string   `json:"impact,omitempty" yaml:"impact,omitempty"`
}

// Clone returns a deep copy of the profile.
func (p Profile) Clone() (clone Profile) {
	clone = p

	clone.Highlights = cloneStrings(p.Highlights)

	if p.Skills != nil {
		clone.Skills = make(map[string][]string, len(p.Skills))
		for k, v := range p.Skills {
			clone.Skills[k] = cloneStrings(v)
		}
	}

	if p.Experience != nil {
		clone.Experience = make([]Experience, len(p.Experience))
		for i, exp := range p.Experience {
			exp.Achievements = cloneStrings(exp.Achievements)
			clone.Experience[i] = exp
		}
	}

	if p.Education != nil {
		clone.Education = append([]Education(nil), p.Education...)
	}

	if p.Projects != nil {
		clone.Projects = make([]Project, len(p.Projects))
		for i, proj := range p.Projects {
			proj.Technologies = cloneStrings(proj.Technologies)
			clone.Projects[i] = proj
		}
	}

	return clone
}

// Variant returns the profession variant table entry for the profile.
func (p Profile) Variant() (variant Variant) {
	variant = MustVariant(p.Profession)
	return variant
}

func cloneStrings(in []string) (out []string) {
	if in == nil {
		return out
	}
	out = make([]string, len(in))
	copy(out, in)
	return out
}
