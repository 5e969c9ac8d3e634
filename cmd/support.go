package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/nikogura/job-assistant/pkg/candidates"
	"github.com/nikogura/job-assistant/pkg/jd"
	"github.com/nikogura/job-assistant/pkg/renderer"
	"github.com/nikogura/job-assistant/pkg/tailor"
	"github.com/pkg/errors"
)

func fetchAndLogJD(ctx context.Context, jdInput string) (jobDescription string, err error) {
	if getVerbose() {
		fmt.Printf("Loading job description from: %s\n", jdInput)
	}

	jobDescription, err = jd.FetchWithContext(ctx, jdInput)
	if err != nil {
		if jdInput == jd.Stdin || !strings.HasPrefix(jdInput, "http") {
			return jobDescription, err
		}

		// Pages rendered by JavaScript often yield nothing useful.
		fmt.Printf("\nWarning: Failed to fetch job description from URL: %v\n", err)
		fmt.Println("This often happens with JavaScript-rendered pages (Lever, Workable, etc.)")
		fmt.Println("\nPlease paste the job description text below.")
		fmt.Println("When finished, press Ctrl+D (Unix/Mac) or Ctrl+Z then Enter (Windows):")
		fmt.Println()

		jobDescription, err = jd.FetchReader(os.Stdin)
		if err != nil {
			err = errors.Wrap(err, "no job description provided")
			return jobDescription, err
		}

		fmt.Printf("\nJob description received (%d characters)\n", len(jobDescription))
		return jobDescription, err
	}

	if getVerbose() {
		fmt.Printf("Job description loaded (%d characters)\n", len(jobDescription))
	}

	return jobDescription, err
}

func promptForInput(fieldName string) (input string) {
	fmt.Printf("Please enter %s: ", strings.ToLower(fieldName))

	scanner := bufio.NewScanner(os.Stdin)
	if scanner.Scan() {
		input = strings.TrimSpace(scanner.Text())
	}

	return input
}

// chooseCandidate returns id, or asks the user to pick a profile when id is "?".
func chooseCandidate(store *candidates.Store, id string) (chosen string, err error) {
	if id != "?" {
		chosen = id
		return chosen, err
	}

	profiles := store.List()
	prompt := promptui.Select{
		Label: "Candidate",
		Items: profiles,
		Size:  10,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "> {{ .Name | cyan }} ({{ .Title }})",
			Inactive: "  {{ .Name }} ({{ .Title }})",
			Selected: "Candidate: {{ .Name | green }}",
		},
	}

	var idx int
	idx, _, err = prompt.Run()
	if err != nil {
		err = errors.Wrap(err, "candidate selection cancelled")
		return chosen, err
	}

	chosen = profiles[idx].ID
	return chosen, err
}

// reportError prints the user-facing message of a tailoring failure and returns the error for cobra.
func reportError(err error) (out error) {
	var terr *tailor.Error
	if errors.As(err, &terr) {
		fmt.Fprintf(os.Stderr, "Error: %s\n", terr.UserMessage())
		if terr.Retryable() {
			fmt.Fprintln(os.Stderr, "This is usually temporary. Try again in a minute.")
		}
	}
	out = err
	return out
}

// spinner provides a simple text-based progress indicator.
type spinner struct {
	message string
	stop    chan bool
	done    chan bool
	mu      sync.Mutex
	active  bool
}

func newSpinner(message string) (s *spinner) {
	s = &spinner{
		message: message,
		stop:    make(chan bool),
		done:    make(chan bool),
	}
	return s
}

func (s *spinner) start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.mu.Unlock()

	go func() {
		chars := []string{"|", "/", "-", "\\"}
		i := 0
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		fmt.Printf("%s ", s.message)
		for {
			select {
			case <-s.stop:
				fmt.Printf("\r%s\r", strings.Repeat(" ", len(s.message)+2))
				s.done <- true
				return
			case <-ticker.C:
				fmt.Printf("\r%s %s", s.message, chars[i%len(chars)])
				i++
			}
		}
	}()
}

func (s *spinner) stopSpinner() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.stop <- true
	<-s.done

	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// withSpinner runs fn behind a spinner unless verbose output is on.
func withSpinner(message string, fn func() error) (err error) {
	if getVerbose() {
		fmt.Println(message)
		err = fn()
		return err
	}

	s := newSpinner(message)
	s.start()
	err = fn()
	s.stopSpinner()
	return err
}

// outputOptions are the flags shared by commands that write documents.
type outputOptions struct {
	outputDir    string
	format       string
	keepMarkdown bool
}

func (o outputOptions) baseDir(a app) (dir string) {
	dir = o.outputDir
	if dir == "" {
		dir = a.cfg.Defaults.OutputDir
	}
	return dir
}

func createCompanyOutputDir(baseOutDir, company string) (outDir string, err error) {
	companyDir := renderer.SanitizeFilename(company)
	if companyDir == "" {
		companyDir = "general"
	}
	outDir = filepath.Join(baseOutDir, companyDir)
	err = os.MkdirAll(outDir, 0755)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outDir)
		return outDir, err
	}

	return outDir, err
}

// writeDocument writes markdown to mdPath and, for pdf or docx, converts it next to it.
func writeDocument(ctx context.Context, a app, markdown, mdPath string, format renderer.Format, outPath, template string, keepMarkdown bool) (written string, err error) {
	err = renderer.WriteMarkdown(markdown, mdPath)
	if err != nil {
		return written, err
	}

	if format == renderer.FormatMarkdown {
		written = mdPath
		return written, err
	}

	err = renderer.Export(ctx, markdown, format, outPath, renderer.ExportOptions{Template: template})
	if err != nil {
		return written, err
	}
	written = outPath

	if !keepMarkdown {
		err = renderer.CleanupMarkdown(mdPath)
		if err != nil {
			a.log.Sugar().Warnf("failed to remove %s: %v", mdPath, err)
			err = nil
		}
	}

	return written, err
}
