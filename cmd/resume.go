package cmd

import (
	"context"

	"github.com/nikogura/job-assistant/pkg/documents"
	"github.com/nikogura/job-assistant/pkg/scorer"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var resumeFlags struct {
	candidate string
	company   string
	role      string
	keywords  []string
	output    outputOptions
}

//nolint:gochecknoglobals // Cobra boilerplate
var resumeCmd = &cobra.Command{
	Use:   "resume <jd-file-or-url>",
	Short: "Tailor a resume to a job description",
	Long: `Tailor a candidate's resume to a job description.

The job description can be a file path, a URL, or "-" for stdin.

Example:
  job-assistant resume jd.txt --company "Acme Corp" --role "Staff Engineer"
  job-assistant resume https://example.com/jobs/123 --candidate alex-morgan --format pdf
  job-assistant resume jd.txt --keywords "GraphQL,Accessibility"`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(resumeCmd)
	resumeCmd.Flags().StringVar(&resumeFlags.candidate, "candidate", "", "Candidate profile id (\"?\" to pick interactively)")
	resumeCmd.Flags().StringVar(&resumeFlags.company, "company", "", "Company name, used for file names")
	resumeCmd.Flags().StringVar(&resumeFlags.role, "role", "", "Role title, used for file names")
	resumeCmd.Flags().StringSliceVar(&resumeFlags.keywords, "keywords", nil, "Extra keywords to work into the resume")
	addOutputFlags(resumeCmd, &resumeFlags.output)
}

func addOutputFlags(cmd *cobra.Command, opts *outputOptions) {
	cmd.Flags().StringVar(&opts.outputDir, "output-dir", "", "Output directory (default from config)")
	cmd.Flags().StringVar(&opts.format, "format", "md", "Output format: md, pdf or docx")
	cmd.Flags().BoolVar(&opts.keepMarkdown, "keep-markdown", true, "Keep markdown files after pdf/docx export")
}

func runResume(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), generateTimeout)
	defer cancel()

	a, svc, j, err := prepareJob(ctx, args[0], resumeFlags.candidate)
	if err != nil {
		return err
	}
	defer a.sync()

	j.company = resumeFlags.company
	j.role = resumeFlags.role
	j.keywords = resumeFlags.keywords

	var doc *documents.ResumeResponse
	var report scorer.Report
	err = withSpinner("Tailoring resume with Claude API...", func() (genErr error) {
		doc, report, genErr = tailorResume(ctx, a, svc, j)
		return genErr
	})
	if err != nil {
		return reportError(err)
	}

	printFidelity(report, doc)

	err = saveOutputs(ctx, a, j, resumeFlags.output, doc, nil)
	return err
}
