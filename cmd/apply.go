package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/nikogura/job-assistant/pkg/documents"
	"github.com/nikogura/job-assistant/pkg/scorer"
	"github.com/nikogura/job-assistant/pkg/tracker"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

//nolint:gochecknoglobals // Cobra boilerplate
var applyFlags struct {
	candidate string
	company   string
	role      string
	why       string
	mission   string
	url       string
	keywords  []string
	track     bool
	output    outputOptions
}

//nolint:gochecknoglobals // Cobra boilerplate
var applyCmd = &cobra.Command{
	Use:   "apply <jd-file-or-url>",
	Short: "Tailor a resume and write a cover letter in one go",
	Long: `Generate a tailored resume and a cover letter for the same job description.
Both documents are generated concurrently. With --track the application is
recorded in the tracker.

Example:
  job-assistant apply jd.txt --company "Acme Corp" --role "Staff Engineer" --why "..." --track`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().StringVar(&applyFlags.candidate, "candidate", "", "Candidate profile id (\"?\" to pick interactively)")
	applyCmd.Flags().StringVar(&applyFlags.company, "company", "", "Company name")
	applyCmd.Flags().StringVar(&applyFlags.role, "role", "", "Role title")
	applyCmd.Flags().StringVar(&applyFlags.why, "why", "", "Why you want to work at this company")
	applyCmd.Flags().StringVar(&applyFlags.mission, "mission", "", "The company's mission statement")
	applyCmd.Flags().StringVar(&applyFlags.url, "url", "", "Career page URL to store with the tracked application")
	applyCmd.Flags().StringSliceVar(&applyFlags.keywords, "keywords", nil, "Extra keywords to work into the resume")
	applyCmd.Flags().BoolVar(&applyFlags.track, "track", false, "Record the application in the tracker")
	addOutputFlags(applyCmd, &applyFlags.output)
}

func runApply(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), generateTimeout)
	defer cancel()

	a, svc, j, err := prepareJob(ctx, args[0], applyFlags.candidate)
	if err != nil {
		return err
	}
	defer a.sync()

	j.role = applyFlags.role
	j.mission = applyFlags.mission
	j.keywords = applyFlags.keywords
	j.company, j.why = askCompanyDetails(applyFlags.company, applyFlags.why)

	var resume *documents.ResumeResponse
	var report scorer.Report
	var letter *documents.CoverLetterResponse

	err = withSpinner("Generating resume and cover letter with Claude API...", func() error {
		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() (genErr error) {
			resume, report, genErr = tailorResume(gctx, a, svc, j)
			return genErr
		})

		g.Go(func() (genErr error) {
			letter, genErr = writeCoverLetter(gctx, svc, j)
			return genErr
		})

		return g.Wait()
	})
	if err != nil {
		return reportError(err)
	}

	printFidelity(report, resume)

	err = saveOutputs(ctx, a, j, applyFlags.output, resume, letter)
	if err != nil {
		return err
	}

	if !applyFlags.track {
		return err
	}

	err = trackApplication(ctx, a, j)
	return err
}

func trackApplication(ctx context.Context, a app, j job) (err error) {
	store, err := openTracker(ctx, a)
	if err != nil {
		return err
	}
	defer store.Close()

	position := j.role
	if position == "" {
		position = j.candidate.Title
	}

	created, err := store.Create(ctx, tracker.Application{
		CompanyName:   j.company,
		Position:      position,
		DateApplied:   time.Now(),
		Status:        tracker.StatusApplied,
		CareerPageURL: applyFlags.url,
	})
	if err != nil {
		err = errors.Wrap(err, "failed to record application")
		return err
	}

	fmt.Printf("Tracked application %s\n", created.ID)
	return err
}
