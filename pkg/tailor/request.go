package tailor

import (
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// MinJobDescriptionLength is the minimum trimmed length of a job description.
const MinJobDescriptionLength = 50

// ResumeRequest asks for a résumé tailored to a job description.
// Regenerating with extra keywords is a new request with AdditionalKeywords set.
type ResumeRequest struct {
	JobDescription     string   `json:"job_description" validate:"required,mintrimmed=50"`
	CandidateID        string   `json:"candidate_id,omitempty"`
	AdditionalKeywords []string `json:"additional_keywords,omitempty"`
}

// CoverLetterRequest asks for a cover letter for a specific company.
type CoverLetterRequest struct {
	CompanyName    string `json:"company_name" validate:"nonblank"`
	WhyThisCompany string `json:"why_this_company" validate:"nonblank"`
	JobDescription string `json:"job_description" validate:"required,mintrimmed=50"`
	CompanyMission string `json:"company_mission,omitempty"`
	CandidateID    string `json:"candidate_id,omitempty"`
}

//nolint:gochecknoglobals // validator caches struct metadata
var (
	validateOnce sync.Once
	validate     *validator.Validate
)

//nolint:gochecknoglobals // lookup table
var fieldMessages = map[string]string{
	"JobDescription.required":   MsgJobDescriptionRequired,
	"JobDescription.mintrimmed": MsgJobDescriptionShort,
	"CompanyName.nonblank":      MsgCompanyRequired,
	"WhyThisCompany.nonblank":   MsgWhyRequired,
}

func requestValidator() (v *validator.Validate) {
	validateOnce.Do(func() {
		validate = validator.New()

		mustRegister(validate, "mintrimmed", func(fl validator.FieldLevel) bool {
			n, err := strconv.Atoi(fl.Param())
			if err != nil {
				return false
			}
			return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
		})

		mustRegister(validate, "nonblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	v = validate
	return v
}

// mustRegister panics when a custom tag cannot be registered, so a bad tag fails on first use
// instead of surfacing later as an undefined validation function.
func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	err := v.RegisterValidation(tag, fn)
	if err != nil {
		panic(errors.Wrapf(err, "failed to register %q validation", tag))
	}
}

// checkRequest validates a request struct and returns an input *Error for the first failing field.
func checkRequest(req interface{}) (err error) {
	verr := requestValidator().Struct(req)
	if verr == nil {
		return err
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(verr, &fieldErrs) || len(fieldErrs) == 0 {
		err = inputError(MsgUnexpected, verr)
		return err
	}

	first := fieldErrs[0]
	msg, ok := fieldMessages[first.StructField()+"."+first.Tag()]
	if !ok {
		msg = first.Field() + " is invalid"
	}

	err = inputError(msg, verr)
	return err
}

// cleanKeywords trims keywords and drops blanks and duplicates, keeping order.
func cleanKeywords(in []string) (out []string) {
	seen := make(map[string]bool, len(in))
	for _, k := range in {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	return out
}
