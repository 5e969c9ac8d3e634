package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/nikogura/job-assistant/pkg/server"
	"github.com/nikogura/job-assistant/pkg/tracker"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveAddr string

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve the tailoring service and the application tracker over HTTP.

Applications are stored in PostgreSQL when database_url is configured and in
memory otherwise.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, :8080)")
}

func runServe(cmd *cobra.Command, _ []string) (err error) {
	a, err := setupApp()
	if err != nil {
		return err
	}
	defer a.sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.cfg.AnthropicAPIKey == "" {
		a.log.Warn("no API key configured; generation requests will fail until ANTHROPIC_API_KEY is set")
	}

	var store tracker.Store
	if a.cfg.DatabaseURL != "" {
		store, err = openTracker(ctx, a)
		if err != nil {
			return err
		}
	} else {
		a.log.Warn("no database_url configured; applications are kept in memory")
		store = tracker.NewMemoryStore()
	}
	defer store.Close()

	if !getVerbose() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := server.New(server.Options{
		Tailor:       a.newService(),
		Profiles:     a.profiles,
		Applications: store,
		Logger:       a.log.Named("http"),
	})

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	err = server.Run(ctx, addr, engine, a.log)
	if err != nil {
		a.log.Error("server stopped", zap.Error(err))
	}
	return err
}
