package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/nikogura/job-assistant/pkg/tracker"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const dateFlagLayout = "2006-01-02"

//nolint:gochecknoglobals // Cobra boilerplate
var appFlags struct {
	company       string
	position      string
	status        string
	applied       string
	salary        string
	notes         string
	url           string
	followUp      string
	contact       string
	interviews    []string
	clearFollowUp bool
	outputDir     string
}

//nolint:gochecknoglobals // Cobra boilerplate
var applicationsCmd = &cobra.Command{
	Use:     "applications",
	Aliases: []string{"apps"},
	Short:   "Track job applications",
	Long: `Track the applications you have sent. Applications are stored in PostgreSQL;
set database_url in the config file or DATABASE_URL in the environment.`,
}

//nolint:gochecknoglobals // Cobra boilerplate
var appAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Record a new application",
	Example: `  job-assistant applications add --company "Acme Corp" --position "Staff Engineer" --follow-up 2026-11-01`,
	Args:    cobra.NoArgs,
	RunE:    runAppAdd,
}

//nolint:gochecknoglobals // Cobra boilerplate
var appListCmd = &cobra.Command{
	Use:   "list",
	Short: "List applications, newest first",
	Args:  cobra.NoArgs,
	RunE:  runAppList,
}

//nolint:gochecknoglobals // Cobra boilerplate
var appUpdateCmd = &cobra.Command{
	Use:     "update <id>",
	Short:   "Change fields of an application",
	Example: `  job-assistant applications update 6f1c... --status interview --interview 2026-11-04`,
	Args:    cobra.ExactArgs(1),
	RunE:    runAppUpdate,
}

//nolint:gochecknoglobals // Cobra boilerplate
var appDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an application",
	Args:  cobra.ExactArgs(1),
	RunE:  runAppDelete,
}

//nolint:gochecknoglobals // Cobra boilerplate
var appStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show counts per status and follow-ups due",
	Args:  cobra.NoArgs,
	RunE:  runAppStats,
}

//nolint:gochecknoglobals // Cobra boilerplate
var appExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export applications to an Excel spreadsheet",
	Args:  cobra.NoArgs,
	RunE:  runAppExport,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(applicationsCmd)
	applicationsCmd.AddCommand(appAddCmd, appListCmd, appUpdateCmd, appDeleteCmd, appStatsCmd, appExportCmd)

	for _, c := range []*cobra.Command{appAddCmd, appUpdateCmd} {
		c.Flags().StringVar(&appFlags.company, "company", "", "Company name")
		c.Flags().StringVar(&appFlags.position, "position", "", "Position applied for")
		c.Flags().StringVar(&appFlags.status, "status", "", "Status: applied, screening, interview, offer, rejected, withdrawn")
		c.Flags().StringVar(&appFlags.applied, "applied", "", "Date applied (YYYY-MM-DD, default today)")
		c.Flags().StringVar(&appFlags.salary, "salary", "", "Salary or range")
		c.Flags().StringVar(&appFlags.notes, "notes", "", "Notes")
		c.Flags().StringVar(&appFlags.url, "url", "", "Career page URL")
		c.Flags().StringVar(&appFlags.followUp, "follow-up", "", "Follow-up date (YYYY-MM-DD)")
		c.Flags().StringVar(&appFlags.contact, "contact", "", "Contact person")
		c.Flags().StringSliceVar(&appFlags.interviews, "interview", nil, "Interview date (YYYY-MM-DD), repeatable")
	}
	appUpdateCmd.Flags().BoolVar(&appFlags.clearFollowUp, "clear-follow-up", false, "Remove the follow-up date")

	appListCmd.Flags().StringVar(&appFlags.status, "status", "", "Only show this status")
	appListCmd.Flags().StringVar(&appFlags.company, "company", "", "Only show companies containing this text")

	appExportCmd.Flags().StringVar(&appFlags.outputDir, "output-dir", ".", "Directory for the spreadsheet")
	appExportCmd.Flags().StringVar(&appFlags.status, "status", "", "Only export this status")
}

// openTracker connects to the configured PostgreSQL database.
func openTracker(ctx context.Context, a app) (store tracker.Store, err error) {
	if a.cfg.DatabaseURL == "" {
		err = errors.New("database_url is not configured; set it in the config file or DATABASE_URL")
		return store, err
	}

	store, err = tracker.NewPostgresStore(ctx, a.cfg.DatabaseURL)
	if err != nil {
		err = errors.Wrap(err, "failed to open application tracker")
		return store, err
	}

	return store, err
}

func withTracker(cmd *cobra.Command, fn func(ctx context.Context, store tracker.Store) error) (err error) {
	a, err := setupApp()
	if err != nil {
		return err
	}
	defer a.sync()

	ctx := cmd.Context()
	store, err := openTracker(ctx, a)
	if err != nil {
		return err
	}
	defer store.Close()

	err = fn(ctx, store)
	return err
}

func runAppAdd(cmd *cobra.Command, _ []string) (err error) {
	record := tracker.Application{
		CompanyName:   appFlags.company,
		Position:      appFlags.position,
		Salary:        appFlags.salary,
		Notes:         appFlags.notes,
		CareerPageURL: appFlags.url,
		ContactPerson: appFlags.contact,
	}

	if appFlags.status != "" {
		record.Status, err = tracker.ParseStatus(appFlags.status)
		if err != nil {
			return err
		}
	}

	record.DateApplied, err = parseDate(appFlags.applied)
	if err != nil {
		return err
	}

	if appFlags.followUp != "" {
		var followUp time.Time
		followUp, err = parseDate(appFlags.followUp)
		if err != nil {
			return err
		}
		record.FollowUpDate = &followUp
	}

	record.InterviewDates, err = parseDates(appFlags.interviews)
	if err != nil {
		return err
	}

	err = withTracker(cmd, func(ctx context.Context, store tracker.Store) error {
		created, createErr := store.Create(ctx, record)
		if createErr != nil {
			return createErr
		}
		fmt.Printf("Added application %s (%s, %s)\n", created.ID, created.CompanyName, created.Position)
		return nil
	})
	return err
}

func runAppList(cmd *cobra.Command, _ []string) (err error) {
	filter, err := listFilter()
	if err != nil {
		return err
	}

	err = withTracker(cmd, func(ctx context.Context, store tracker.Store) error {
		apps, listErr := store.List(ctx, filter)
		if listErr != nil {
			return listErr
		}
		printApplications(apps)
		return nil
	})
	return err
}

func runAppUpdate(cmd *cobra.Command, args []string) (err error) {
	id, err := uuid.Parse(args[0])
	if err != nil {
		err = errors.Wrapf(err, "invalid application id %q", args[0])
		return err
	}

	upd, err := updateFromFlags(cmd)
	if err != nil {
		return err
	}

	err = withTracker(cmd, func(ctx context.Context, store tracker.Store) error {
		updated, updErr := store.Update(ctx, id, upd)
		if updErr != nil {
			return updErr
		}
		fmt.Printf("Updated %s: %s, %s (%s)\n", updated.ID, updated.CompanyName, updated.Position, updated.Status.Label())
		return nil
	})
	return err
}

func runAppDelete(cmd *cobra.Command, args []string) (err error) {
	id, err := uuid.Parse(args[0])
	if err != nil {
		err = errors.Wrapf(err, "invalid application id %q", args[0])
		return err
	}

	err = withTracker(cmd, func(ctx context.Context, store tracker.Store) error {
		delErr := store.Delete(ctx, id)
		if delErr != nil {
			return delErr
		}
		fmt.Printf("Deleted %s\n", id)
		return nil
	})
	return err
}

func runAppStats(cmd *cobra.Command, _ []string) (err error) {
	err = withTracker(cmd, func(ctx context.Context, store tracker.Store) error {
		stats, statsErr := store.Stats(ctx)
		if statsErr != nil {
			return statsErr
		}

		apps, listErr := store.List(ctx, tracker.Filter{})
		if listErr != nil {
			return listErr
		}

		printStats(stats, tracker.FollowUpsDue(apps, time.Now()))
		return nil
	})
	return err
}

func runAppExport(cmd *cobra.Command, _ []string) (err error) {
	filter, err := listFilter()
	if err != nil {
		return err
	}

	err = withTracker(cmd, func(ctx context.Context, store tracker.Store) (exportErr error) {
		apps, exportErr := store.List(ctx, filter)
		if exportErr != nil {
			return exportErr
		}

		path := filepath.Join(appFlags.outputDir, tracker.ExportFilename(time.Now()))
		f, exportErr := os.Create(path)
		if exportErr != nil {
			exportErr = errors.Wrapf(exportErr, "failed to create %s", path)
			return exportErr
		}
		defer func() {
			closeErr := f.Close()
			if exportErr == nil && closeErr != nil {
				exportErr = errors.Wrapf(closeErr, "failed to close %s", path)
			}
		}()

		exportErr = tracker.ExportXLSX(apps, f)
		if exportErr != nil {
			return exportErr
		}

		fmt.Printf("Exported %d applications to %s\n", len(apps), path)
		return exportErr
	})
	return err
}

func listFilter() (filter tracker.Filter, err error) {
	filter.Company = appFlags.company
	if appFlags.status != "" {
		filter.Status, err = tracker.ParseStatus(appFlags.status)
	}
	return filter, err
}

// updateFromFlags turns the flags the user actually set into an Update.
func updateFromFlags(cmd *cobra.Command) (upd tracker.Update, err error) {
	flags := cmd.Flags()

	str := func(name, value string) *string {
		if !flags.Changed(name) {
			return nil
		}
		v := value
		return &v
	}

	upd.CompanyName = str("company", appFlags.company)
	upd.Position = str("position", appFlags.position)
	upd.Salary = str("salary", appFlags.salary)
	upd.Notes = str("notes", appFlags.notes)
	upd.CareerPageURL = str("url", appFlags.url)
	upd.ContactPerson = str("contact", appFlags.contact)
	upd.ClearFollowUp = appFlags.clearFollowUp

	if flags.Changed("status") {
		var status tracker.Status
		status, err = tracker.ParseStatus(appFlags.status)
		if err != nil {
			return upd, err
		}
		upd.Status = &status
	}

	if flags.Changed("applied") {
		var applied time.Time
		applied, err = parseDate(appFlags.applied)
		if err != nil {
			return upd, err
		}
		upd.DateApplied = &applied
	}

	if flags.Changed("follow-up") {
		var followUp time.Time
		followUp, err = parseDate(appFlags.followUp)
		if err != nil {
			return upd, err
		}
		upd.FollowUpDate = &followUp
	}

	if flags.Changed("interview") {
		var dates []time.Time
		dates, err = parseDates(appFlags.interviews)
		if err != nil {
			return upd, err
		}
		upd.InterviewDates = &dates
	}

	return upd, err
}

// parseDate parses YYYY-MM-DD; an empty string yields the zero time.
func parseDate(s string) (t time.Time, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return t, err
	}

	t, err = time.ParseInLocation(dateFlagLayout, s, time.Local)
	if err != nil {
		err = errors.Wrapf(err, "invalid date %q (want YYYY-MM-DD)", s)
		return t, err
	}

	return t, err
}

func parseDates(in []string) (out []time.Time, err error) {
	for _, s := range in {
		var t time.Time
		t, err = parseDate(s)
		if err != nil {
			return out, err
		}
		if !t.IsZero() {
			out = append(out, t)
		}
	}
	return out, err
}

func printApplications(apps []tracker.Application) {
	if len(apps) == 0 {
		fmt.Println("No applications found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tCOMPANY\tPOSITION\tSTATUS\tAPPLIED\tFOLLOW UP")
	for _, a := range apps {
		followUp := "-"
		if a.FollowUpDate != nil {
			followUp = a.FollowUpDate.Format(dateFlagLayout)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.CompanyName, a.Position, a.Status.Label(), a.DateApplied.Format(dateFlagLayout), followUp)
	}
	_ = w.Flush()
}

func printStats(stats tracker.Stats, due []tracker.Application) {
	fmt.Printf("Total applications: %d\n", stats.Total)
	for _, s := range tracker.Statuses {
		fmt.Printf("  %-10s %d\n", s.Label(), stats.ByStatus[s])
	}

	if len(due) == 0 {
		return
	}

	fmt.Printf("\nFollow-ups due (%d):\n", len(due))
	for _, a := range due {
		fmt.Printf("  %s  %s, %s\n", a.FollowUpDate.Format(dateFlagLayout), a.CompanyName, a.Position)
	}
}
