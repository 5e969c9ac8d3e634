package server

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nikogura/job-assistant/pkg/candidates"
	"github.com/nikogura/job-assistant/pkg/documents"
	"github.com/nikogura/job-assistant/pkg/renderer"
	"github.com/nikogura/job-assistant/pkg/scorer"
	"github.com/nikogura/job-assistant/pkg/tailor"
	"github.com/nikogura/job-assistant/pkg/tracker"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ResumeResult is the data of a successful résumé request.
type ResumeResult struct {
	CandidateID string                    `json:"candidate_id"`
	Resume      *documents.ResumeResponse `json:"resume"`
	Fidelity    scorer.Report             `json:"fidelity"`
	Markdown    string                    `json:"markdown"`
}

// CoverLetterResult is the data of a successful cover letter request.
type CoverLetterResult struct {
	CandidateID string                         `json:"candidate_id"`
	CoverLetter *documents.CoverLetterResponse `json:"cover_letter"`
	Markdown    string                         `json:"markdown"`
}

// StatsResult is the data of the stats endpoint.
type StatsResult struct {
	tracker.Stats
	FollowUpsDue []tracker.Application `json:"follow_ups_due"`
}

func (h *handler) health(c *gin.Context) {
	success(c, http.StatusOK, "ok", gin.H{"status": "healthy"})
}

func (h *handler) tailorResume(c *gin.Context) {
	var req tailor.ResumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest("Invalid request body"))
		return
	}

	ticket := h.begin(c)
	defer ticket.Done()

	doc, err := h.tailor.TailorResume(c.Request.Context(), req)
	if !ticket.Current() {
		h.superseded(c)
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	profile, _ := h.profiles.Resolve(req.CandidateID)
	report := h.scorer.Check(doc, profile)
	if len(report.Violations) > 0 {
		h.logger.Warn("tailored resume strays from profile",
			zap.String("candidate", profile.ID),
			zap.Int("fidelity_score", report.FidelityScore),
			zap.Strings("lessons", h.scorer.ExtractLessons(report)),
		)
	}

	success(c, http.StatusOK, "Resume tailored", ResumeResult{
		CandidateID: profile.ID,
		Resume:      doc,
		Fidelity:    report,
		Markdown:    renderer.ResumeMarkdown(doc, profile),
	})
}

func (h *handler) coverLetter(c *gin.Context) {
	var req tailor.CoverLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest("Invalid request body"))
		return
	}

	ticket := h.begin(c)
	defer ticket.Done()

	doc, err := h.tailor.GenerateCoverLetter(c.Request.Context(), req)
	if !ticket.Current() {
		h.superseded(c)
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	profile, _ := h.profiles.Resolve(req.CandidateID)

	success(c, http.StatusOK, "Cover letter generated", CoverLetterResult{
		CandidateID: profile.ID,
		CoverLetter: doc,
		Markdown:    renderer.CoverLetterMarkdown(doc, profile, h.now()),
	})
}

// begin registers the request with the session guard. Requests without a session never collide.
func (h *handler) begin(c *gin.Context) (ticket *tailor.Ticket) {
	session := strings.TrimSpace(c.GetHeader(SessionHeader))
	if session == "" {
		session = "request:" + c.GetString(requestIDKey)
	}
	ticket = h.guard.Begin(session)
	return ticket
}

func (h *handler) superseded(c *gin.Context) {
	h.logger.Info("dropping superseded result",
		zap.String("session", c.GetHeader(SessionHeader)),
		zap.String("request_id", c.GetString(requestIDKey)),
	)
	failure(c, http.StatusConflict, "Superseded by a newer request", ErrorDetail{Kind: "superseded"})
}

func (h *handler) listCandidates(c *gin.Context) {
	profiles := h.profiles.List()

	type summary struct {
		ID         string                `json:"id"`
		Name       string                `json:"name"`
		Title      string                `json:"title"`
		Profession candidates.Profession `json:"profession"`
	}

	out := make([]summary, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, summary{ID: p.ID, Name: p.Name, Title: p.Title, Profession: p.Profession})
	}

	success(c, http.StatusOK, "Candidates retrieved", out)
}

func (h *handler) getCandidate(c *gin.Context) {
	profile, ok := h.profiles.Get(c.Param("id"))
	if !ok {
		failure(c, http.StatusNotFound, "Candidate not found", ErrorDetail{Kind: "not_found"})
		return
	}
	success(c, http.StatusOK, "Candidate retrieved", profile)
}

func (h *handler) listApplications(c *gin.Context) {
	filter, err := filterFrom(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	apps, err := h.apps.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if apps == nil {
		apps = []tracker.Application{}
	}

	success(c, http.StatusOK, "Applications retrieved", apps)
}

func (h *handler) createApplication(c *gin.Context) {
	var app tracker.Application
	if err := c.ShouldBindJSON(&app); err != nil {
		_ = c.Error(badRequest("Invalid request body"))
		return
	}
	app.ID = uuid.Nil

	created, err := h.apps.Create(c.Request.Context(), app)
	if err != nil {
		_ = c.Error(err)
		return
	}

	success(c, http.StatusCreated, "Application created", created)
}

func (h *handler) getApplication(c *gin.Context) {
	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	app, err := h.apps.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	success(c, http.StatusOK, "Application retrieved", app)
}

func (h *handler) updateApplication(c *gin.Context) {
	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	var upd tracker.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		_ = c.Error(badRequest("Invalid request body"))
		return
	}

	app, err := h.apps.Update(c.Request.Context(), id, upd)
	if err != nil {
		_ = c.Error(err)
		return
	}

	success(c, http.StatusOK, "Application updated", app)
}

func (h *handler) deleteApplication(c *gin.Context) {
	id, ok := h.applicationID(c)
	if !ok {
		return
	}

	err := h.apps.Delete(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	success(c, http.StatusOK, "Application deleted", nil)
}

func (h *handler) applicationStats(c *gin.Context) {
	stats, err := h.apps.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	apps, err := h.apps.List(c.Request.Context(), tracker.Filter{})
	if err != nil {
		_ = c.Error(err)
		return
	}

	due := tracker.FollowUpsDue(apps, h.now())
	if due == nil {
		due = []tracker.Application{}
	}

	success(c, http.StatusOK, "Statistics retrieved", StatsResult{Stats: stats, FollowUpsDue: due})
}

func (h *handler) exportApplications(c *gin.Context) {
	filter, err := filterFrom(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	apps, err := h.apps.List(c.Request.Context(), filter)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var buf bytes.Buffer
	err = tracker.ExportXLSX(apps, &buf)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+tracker.ExportFilename(h.now())+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *handler) applicationID(c *gin.Context) (id uuid.UUID, ok bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(badRequest("Invalid application ID"))
		return id, false
	}
	return id, true
}

func filterFrom(c *gin.Context) (filter tracker.Filter, err error) {
	filter.Company = strings.TrimSpace(c.Query("company"))

	if s := c.Query("status"); s != "" {
		filter.Status, err = tracker.ParseStatus(s)
		if err != nil {
			return filter, err
		}
	}

	return filter, err
}
