package renderer

import (
	"path/filepath"
	"strings"
)

// Filenames holds the output paths for one application.
type Filenames struct {
	Base           string
	ResumeMD       string
	CoverLetterMD  string
	JobDescription string
	dir            string
}

// ResumeOutput returns the résumé path for format.
func (f Filenames) ResumeOutput(format Format) (path string) {
	path = filepath.Join(f.dir, f.Base+"-resume."+string(format))
	return path
}

// CoverLetterOutput returns the cover letter path for format.
func (f Filenames) CoverLetterOutput(format Format) (path string) {
	path = filepath.Join(f.dir, f.Base+"-cover."+string(format))
	return path
}

// BuildFilenames derives output file paths from the candidate, company and role.
func BuildFilenames(outDir, name, company, role string) (filenames Filenames) {
	roleWords := strings.Fields(role)
	if len(roleWords) > 4 {
		role = strings.Join(roleWords[:4], " ")
	}

	parts := nonEmpty(SanitizeFilename(name), SanitizeFilename(company), SanitizeFilename(role))
	base := strings.Join(parts, "-")
	if base == "" {
		base = "application"
	}

	filenames = Filenames{
		Base:           base,
		ResumeMD:       filepath.Join(outDir, base+"-resume.md"),
		CoverLetterMD:  filepath.Join(outDir, base+"-cover.md"),
		JobDescription: filepath.Join(outDir, base+"-jd.txt"),
		dir:            outDir,
	}
	return filenames
}

// SanitizeFilename lowercases name, drops company suffixes and replaces anything outside [a-z0-9] with hyphens.
func SanitizeFilename(name string) (sanitized string) {
	suffixes := []string{
		" LLC", " llc",
		" Inc.", " inc.",
		" Inc", " inc",
		" Corporation", " corporation",
		" Corp.", " corp.",
		" Corp", " corp",
		" Limited", " limited",
		" Ltd.", " ltd.",
		" Ltd", " ltd",
		" Pty", " pty",
		" Co.", " co.",
		" Co", " co",
		",",
	}

	sanitized = strings.TrimSpace(name)
	for _, suffix := range suffixes {
		sanitized = strings.TrimSuffix(sanitized, suffix)
	}

	sanitized = strings.ToLower(sanitized)

	sanitized = strings.Map(func(r rune) (result rune) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			result = r
			return result
		}
		result = '-'
		return result
	}, sanitized)

	for strings.Contains(sanitized, "--") {
		sanitized = strings.ReplaceAll(sanitized, "--", "-")
	}

	sanitized = strings.Trim(sanitized, "-")

	return sanitized
}
