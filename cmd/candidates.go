package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/nikogura/job-assistant/pkg/candidates"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var candidatesCmd = &cobra.Command{
	Use:   "candidates [id]",
	Short: "List candidate profiles or show one",
	Long: `List the built-in candidate profiles and any found in profiles_dir.
Pass an id to show that profile, or "?" to pick one interactively.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCandidates,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(candidatesCmd)
}

func runCandidates(_ *cobra.Command, args []string) (err error) {
	a, err := setupApp()
	if err != nil {
		return err
	}
	defer a.sync()

	if len(args) == 0 {
		printCandidates(a.profiles.List(), a.profiles.DefaultID())
		return err
	}

	id, err := chooseCandidate(a.profiles, args[0])
	if err != nil {
		return err
	}

	profile, ok := a.profiles.Get(id)
	if !ok {
		err = errors.Errorf("unknown candidate %q", id)
		return err
	}

	printProfile(profile)
	return err
}

func printCandidates(profiles []candidates.Profile, defaultID string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tTITLE\tPROFESSION")
	for _, p := range profiles {
		id := p.ID
		if id == defaultID {
			id += " *"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", id, p.Name, p.Title, p.Profession)
	}
	_ = w.Flush()
}

func printProfile(p candidates.Profile) {
	v := p.Variant()

	fmt.Printf("%s (%s)\n", p.Name, p.ID)
	fmt.Printf("%s, %s years\n", p.Title, p.YearsOfExperience)
	fmt.Printf("%s | %s | %s\n", p.Email, p.Phone, p.Location)
	fmt.Printf("Profession: %s\n\n", p.Profession)

	fmt.Println("Experience:")
	for i, e := range p.Experience {
		fmt.Printf("  %s, %s (%s) [%s bullets]\n", e.Role, e.Company, e.Dates, v.Bullets(i))
	}

	fmt.Println("\nSkills:")
	for _, c := range v.SkillCategories {
		if skills := p.Skills[c.Key]; len(skills) > 0 {
			fmt.Printf("  %s: %s\n", c.Label, strings.Join(skills, ", "))
		}
	}

	if len(p.Education) > 0 {
		fmt.Printf("\n%s:\n", v.EducationHeading)
		for _, e := range p.Education {
			fmt.Printf("  %s, %s\n", e.Degree, e.Institution)
		}
	}
}
