// Package server exposes the tailoring service and the application tracker over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nikogura/job-assistant/pkg/candidates"
	"github.com/nikogura/job-assistant/pkg/documents"
	"github.com/nikogura/job-assistant/pkg/scorer"
	"github.com/nikogura/job-assistant/pkg/tailor"
	"github.com/nikogura/job-assistant/pkg/tracker"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// SessionHeader identifies a client session. A newer request in the same session supersedes older ones.
const SessionHeader = "X-Session-ID"

const shutdownTimeout = 10 * time.Second

// Tailor produces tailored documents.
type Tailor interface {
	TailorResume(ctx context.Context, req tailor.ResumeRequest) (doc *documents.ResumeResponse, err error)
	GenerateCoverLetter(ctx context.Context, req tailor.CoverLetterRequest) (doc *documents.CoverLetterResponse, err error)
}

// Profiles looks up candidate profiles.
type Profiles interface {
	Get(id string) (profile candidates.Profile, ok bool)
	Resolve(id string) (profile candidates.Profile, found bool)
	List() (profiles []candidates.Profile)
}

// Options configure the HTTP handler.
type Options struct {
	Tailor       Tailor
	Profiles     Profiles
	Applications tracker.Store
	Logger       *zap.Logger
	Guard        *tailor.Guard
	Now          func() time.Time
}

type handler struct {
	tailor   Tailor
	profiles Profiles
	apps     tracker.Store
	logger   *zap.Logger
	guard    *tailor.Guard
	scorer   *scorer.Scorer
	now      func() time.Time
}

// New builds the gin engine with every route registered.
func New(opts Options) (engine *gin.Engine) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Guard == nil {
		opts.Guard = tailor.NewGuard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	h := &handler{
		tailor:   opts.Tailor,
		profiles: opts.Profiles,
		apps:     opts.Applications,
		logger:   opts.Logger,
		guard:    opts.Guard,
		scorer:   scorer.NewScorer(),
		now:      opts.Now,
	}

	engine = gin.New()
	engine.Use(requestID())
	engine.Use(accessLog(opts.Logger))
	engine.Use(recovery(opts.Logger))
	engine.Use(errorHandler(opts.Logger))

	engine.NoRoute(func(c *gin.Context) {
		failure(c, http.StatusNotFound, "Route not found", ErrorDetail{Kind: "not_found"})
	})

	v1 := engine.Group("/v1")
	v1.GET("/health", h.health)

	v1.POST("/resume", h.tailorResume)
	v1.POST("/cover-letter", h.coverLetter)

	v1.GET("/candidates", h.listCandidates)
	v1.GET("/candidates/:id", h.getCandidate)

	apps := v1.Group("/applications")
	apps.GET("", h.listApplications)
	apps.POST("", h.createApplication)
	apps.GET("/stats", h.applicationStats)
	apps.GET("/export", h.exportApplications)
	apps.GET("/:id", h.getApplication)
	apps.PATCH("/:id", h.updateApplication)
	apps.DELETE("/:id", h.deleteApplication)

	return engine
}

// Run serves handler on addr until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) (err error) {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", addr))
		serveErr := srv.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
		close(errCh)
	}()

	select {
	case err = <-errCh:
		if err != nil {
			err = errors.Wrapf(err, "failed to serve on %s", addr)
		}
		return err

	case <-ctx.Done():
	}

	logger.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		err = errors.Wrap(err, "failed to shut down http server")
		return err
	}

	return err
}
