package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nikogura/job-assistant/pkg/candidates"
	"github.com/nikogura/job-assistant/pkg/documents"
	"github.com/nikogura/job-assistant/pkg/renderer"
	"github.com/nikogura/job-assistant/pkg/scorer"
	"github.com/nikogura/job-assistant/pkg/tailor"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// generateTimeout bounds one command's generation work, including pandoc.
const generateTimeout = 5 * time.Minute

// job is everything known about the posting being applied to.
type job struct {
	description string
	company     string
	role        string
	why         string
	mission     string
	keywords    []string
	candidate   candidates.Profile
}

// prepareJob loads config and the job description and resolves the candidate.
func prepareJob(ctx context.Context, jdInput, candidateID string) (a app, svc *tailor.Service, j job, err error) {
	a, err = setupApp()
	if err != nil {
		return a, svc, j, err
	}

	svc, err = a.service()
	if err != nil {
		return a, svc, j, reportError(err)
	}

	candidateID, err = chooseCandidate(a.profiles, candidateID)
	if err != nil {
		return a, svc, j, err
	}

	var found bool
	j.candidate, found = a.profiles.Resolve(candidateID)
	if !found && candidateID != "" {
		fmt.Printf("Warning: unknown candidate %q, using %s\n", candidateID, j.candidate.ID)
	}

	j.description, err = fetchAndLogJD(ctx, jdInput)
	if err != nil {
		err = errors.Wrap(err, "failed to load job description")
		return a, svc, j, err
	}

	return a, svc, j, err
}

// tailorResume generates the résumé and checks it against the candidate's profile.
func tailorResume(ctx context.Context, a app, svc *tailor.Service, j job) (doc *documents.ResumeResponse, report scorer.Report, err error) {
	req := tailor.ResumeRequest{
		JobDescription:     j.description,
		CandidateID:        j.candidate.ID,
		AdditionalKeywords: j.keywords,
	}

	doc, err = svc.TailorResume(ctx, req)
	if err != nil {
		return doc, report, err
	}

	report = scorer.NewScorer().Check(doc, j.candidate)

	a.log.Debug("fidelity check",
		zap.Int("score", report.FidelityScore),
		zap.Int("violations", len(report.Violations)),
		zap.Bool("ats_present", report.ATS.Present),
	)

	return doc, report, err
}

// writeCoverLetter generates the cover letter.
func writeCoverLetter(ctx context.Context, svc *tailor.Service, j job) (doc *documents.CoverLetterResponse, err error) {
	req := tailor.CoverLetterRequest{
		CompanyName:    j.company,
		WhyThisCompany: j.why,
		JobDescription: j.description,
		CompanyMission: j.mission,
		CandidateID:    j.candidate.ID,
	}

	doc, err = svc.GenerateCoverLetter(ctx, req)
	return doc, err
}

func printFidelity(report scorer.Report, doc *documents.ResumeResponse) {
	if notes := doc.OptimizationNotes; notes != nil {
		fmt.Printf("ATS score: %.1f", notes.ATSScore)
		if notes.MatchScore != "" {
			fmt.Printf(" (match: %s)", notes.MatchScore)
		}
		fmt.Println()
		if len(notes.KeywordsMissing) > 0 {
			fmt.Printf("Keywords missing: %s\n", strings.Join(notes.KeywordsMissing, ", "))
			fmt.Println("Re-run with --keywords to work them in where your experience supports it.")
		}
	}

	fmt.Printf("Fidelity score: %d/100\n", report.FidelityScore)
	for _, lesson := range scorer.NewScorer().ExtractLessons(report) {
		fmt.Printf("  ! %s\n", lesson)
	}
}

// saveOutputs writes whichever documents are non-nil plus the job description.
func saveOutputs(ctx context.Context, a app, j job, opts outputOptions, resume *documents.ResumeResponse, letter *documents.CoverLetterResponse) (err error) {
	format, err := renderer.ParseFormat(opts.format)
	if err != nil {
		return err
	}

	outDir, err := createCompanyOutputDir(opts.baseDir(a), j.company)
	if err != nil {
		return err
	}

	files := renderer.BuildFilenames(outDir, j.candidate.Name, j.company, j.role)

	err = os.WriteFile(files.JobDescription, []byte(j.description), 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write job description: %s", files.JobDescription)
		return err
	}

	if resume != nil {
		var path string
		path, err = writeDocument(ctx, a, renderer.ResumeMarkdown(resume, j.candidate),
			files.ResumeMD, format, files.ResumeOutput(format), a.cfg.Pandoc.ResumeTemplate, opts.keepMarkdown)
		if err != nil {
			err = errors.Wrap(err, "failed to write resume")
			return err
		}
		fmt.Printf("Resume: %s\n", path)
	}

	if letter != nil {
		var path string
		path, err = writeDocument(ctx, a, renderer.CoverLetterMarkdown(letter, j.candidate, time.Now()),
			files.CoverLetterMD, format, files.CoverLetterOutput(format), a.cfg.Pandoc.CoverLetterTemplate, opts.keepMarkdown)
		if err != nil {
			err = errors.Wrap(err, "failed to write cover letter")
			return err
		}
		fmt.Printf("Cover letter: %s\n", path)
	}

	return err
}
