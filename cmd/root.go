package cmd

import (
	"os"

	"github.com/nikogura/job-assistant/pkg/candidates"
	"github.com/nikogura/job-assistant/pkg/config"
	"github.com/nikogura/job-assistant/pkg/llm"
	"github.com/nikogura/job-assistant/pkg/logger"
	"github.com/nikogura/job-assistant/pkg/tailor"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var jsonLogs bool

//nolint:gochecknoglobals // Cobra boilerplate
var configFile string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "job-assistant",
	Short: "Tailor resumes, write cover letters and track job applications",
	Long: `job-assistant tailors a candidate's resume to a job description and writes
matching cover letters using the Claude API. It also keeps track of the
applications you have sent.

Run 'job-assistant init' to create a starter configuration.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Write logs as JSON")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.job-assistant/config.yaml)")
}

// getVerbose returns the verbose flag value.
func getVerbose() (result bool) {
	result = verbose
	return result
}

// getConfigFile returns the config file path.
func getConfigFile() (result string) {
	result = configFile
	return result
}

// app bundles what every command needs once configuration is loaded.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	profiles *candidates.Store
}

// setupApp loads configuration, builds the logger and opens the candidate profiles.
func setupApp() (a app, err error) {
	a.log, err = logger.New(jsonLogs, getVerbose())
	if err != nil {
		return a, err
	}

	a.cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return a, err
	}

	a.profiles, err = candidates.Open(a.cfg.ProfilesDir, a.cfg.DefaultCandidate)
	if err != nil {
		err = errors.Wrap(err, "failed to load candidate profiles")
		return a, err
	}

	a.log.Debug("configuration loaded",
		zap.String("model", a.cfg.Generation.Model),
		zap.Duration("timeout", a.cfg.Generation.Timeout),
		zap.Int("profiles", len(a.profiles.List())),
	)

	return a, err
}

// service builds the tailoring service. A missing API key fails here, before any job description is fetched.
func (a app) service() (svc *tailor.Service, err error) {
	err = a.cfg.RequireAPIKey()
	if err != nil {
		return svc, err
	}

	svc = a.newService()
	return svc, err
}

// newService builds the tailoring service without checking the API key. Requests fail with a
// configuration error until one is set.
func (a app) newService() (svc *tailor.Service) {
	client := llm.NewClient(llm.Options{
		APIKey:  a.cfg.AnthropicAPIKey,
		Model:   a.cfg.Generation.Model,
		Timeout: a.cfg.Generation.Timeout,
		Logger:  a.log,
	})

	svc = tailor.NewService(client, a.profiles, tailor.Options{
		Logger: a.log,
		Retry:  a.cfg.RetryPolicy(),
	})
	return svc
}

func (a app) sync() {
	_ = a.log.Sync()
}
