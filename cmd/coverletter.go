package cmd

import (
	"context"

	"github.com/nikogura/job-assistant/pkg/documents"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var coverFlags struct {
	candidate string
	company   string
	role      string
	why       string
	mission   string
	output    outputOptions
}

//nolint:gochecknoglobals // Cobra boilerplate
var coverLetterCmd = &cobra.Command{
	Use:   "cover-letter <jd-file-or-url>",
	Short: "Write a cover letter for a job description",
	Long: `Write a cover letter for a specific company and job description.

You are asked for the company and why you want to work there if the flags are omitted.

Example:
  job-assistant cover-letter jd.txt --company "Acme Corp" --why "Their open source work on build tooling"
  job-assistant cover-letter - --company "Acme" --why "..." --mission "Make retail simple" < jd.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runCoverLetter,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(coverLetterCmd)
	coverLetterCmd.Flags().StringVar(&coverFlags.candidate, "candidate", "", "Candidate profile id (\"?\" to pick interactively)")
	coverLetterCmd.Flags().StringVar(&coverFlags.company, "company", "", "Company name")
	coverLetterCmd.Flags().StringVar(&coverFlags.role, "role", "", "Role title, used for file names")
	coverLetterCmd.Flags().StringVar(&coverFlags.why, "why", "", "Why you want to work at this company")
	coverLetterCmd.Flags().StringVar(&coverFlags.mission, "mission", "", "The company's mission statement")
	addOutputFlags(coverLetterCmd, &coverFlags.output)
}

func runCoverLetter(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), generateTimeout)
	defer cancel()

	a, svc, j, err := prepareJob(ctx, args[0], coverFlags.candidate)
	if err != nil {
		return err
	}
	defer a.sync()

	j.role = coverFlags.role
	j.mission = coverFlags.mission
	j.company, j.why = askCompanyDetails(coverFlags.company, coverFlags.why)

	var doc *documents.CoverLetterResponse
	err = withSpinner("Writing cover letter with Claude API...", func() (genErr error) {
		doc, genErr = writeCoverLetter(ctx, svc, j)
		return genErr
	})
	if err != nil {
		return reportError(err)
	}

	a.log.Sugar().Debugf("cover letter tone: %s (%s)", doc.Metadata.ToneUsed, doc.Metadata.ToneReason)

	err = saveOutputs(ctx, a, j, coverFlags.output, nil, doc)
	return err
}

// askCompanyDetails prompts for whichever of company and why is missing.
func askCompanyDetails(company, why string) (finalCompany, finalWhy string) {
	finalCompany = company
	if finalCompany == "" {
		finalCompany = promptForInput("Company name")
	}

	finalWhy = why
	if finalWhy == "" {
		finalWhy = promptForInput("Why this company")
	}

	return finalCompany, finalWhy
}
