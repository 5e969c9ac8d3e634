// Package tracker stores job applications the user has submitted.
package tracker

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Status is where an application stands.
type Status string

const (
	StatusApplied   Status = "applied"
	StatusScreening Status = "screening"
	StatusInterview Status = "interview"
	StatusOffer     Status = "offer"
	StatusRejected  Status = "rejected"
	StatusWithdrawn Status = "withdrawn"
)

// Statuses lists every status in pipeline order.
//
//nolint:gochecknoglobals // lookup table
var Statuses = []Status{
	StatusApplied,
	StatusScreening,
	StatusInterview,
	StatusOffer,
	StatusRejected,
	StatusWithdrawn,
}

// Valid reports whether s is a known status.
func (s Status) Valid() (ok bool) {
	for _, known := range Statuses {
		if s == known {
			ok = true
			return ok
		}
	}
	return ok
}

// Closed reports whether the application needs no further follow-up.
func (s Status) Closed() (closed bool) {
	closed = s == StatusOffer || s == StatusRejected || s == StatusWithdrawn
	return closed
}

// Label is the display form of the status, e.g. "Screening".
func (s Status) Label() (label string) {
	label = cases.Title(language.English).String(string(s))
	return label
}

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (status Status, err error) {
	status = Status(strings.ToLower(strings.TrimSpace(s)))
	if !status.Valid() {
		err = errors.Wrapf(ErrInvalid, "unknown status %q", s)
		return "", err
	}
	return status, err
}

// Application is one tracked job application.
type Application struct {
	ID             uuid.UUID   `json:"id"`
	CompanyName    string      `json:"company_name" validate:"nonblank"`
	Position       string      `json:"position" validate:"nonblank"`
	DateApplied    time.Time   `json:"date_applied"`
	Status         Status      `json:"status" validate:"status"`
	Salary         string      `json:"salary,omitempty"`
	Notes          string      `json:"notes,omitempty"`
	CareerPageURL  string      `json:"career_page_url,omitempty" validate:"omitempty,url"`
	FollowUpDate   *time.Time  `json:"follow_up_date,omitempty"`
	ContactPerson  string      `json:"contact_person,omitempty"`
	InterviewDates []time.Time `json:"interview_dates,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Update is a partial change to an application. Nil fields are left alone.
type Update struct {
	CompanyName    *string      `json:"company_name,omitempty"`
	Position       *string      `json:"position,omitempty"`
	DateApplied    *time.Time   `json:"date_applied,omitempty"`
	Status         *Status      `json:"status,omitempty"`
	Salary         *string      `json:"salary,omitempty"`
	Notes          *string      `json:"notes,omitempty"`
	CareerPageURL  *string      `json:"career_page_url,omitempty"`
	FollowUpDate   *time.Time   `json:"follow_up_date,omitempty"`
	ClearFollowUp  bool         `json:"clear_follow_up,omitempty"`
	ContactPerson  *string      `json:"contact_person,omitempty"`
	InterviewDates *[]time.Time `json:"interview_dates,omitempty"`
}

// Apply copies the set fields of u onto a.
func (u Update) Apply(a *Application) {
	if u.CompanyName != nil {
		a.CompanyName = *u.CompanyName
	}
	if u.Position != nil {
		a.Position = *u.Position
	}
	if u.DateApplied != nil {
		a.DateApplied = *u.DateApplied
	}
	if u.Status != nil {
		a.Status = *u.Status
	}
	if u.Salary != nil {
		a.Salary = *u.Salary
	}
	if u.Notes != nil {
		a.Notes = *u.Notes
	}
	if u.CareerPageURL != nil {
		a.CareerPageURL = *u.CareerPageURL
	}
	if u.FollowUpDate != nil {
		d := *u.FollowUpDate
		a.FollowUpDate = &d
	}
	if u.ClearFollowUp {
		a.FollowUpDate = nil
	}
	if u.ContactPerson != nil {
		a.ContactPerson = *u.ContactPerson
	}
	if u.InterviewDates != nil {
		a.InterviewDates = append([]time.Time(nil), (*u.InterviewDates)...)
	}
}

// Filter narrows a listing. The zero value matches everything.
type Filter struct {
	Status  Status
	Company string
}

// Match reports whether a passes the filter. Company matches case-insensitively on a substring.
func (f Filter) Match(a Application) (ok bool) {
	if f.Status != "" && a.Status != f.Status {
		return ok
	}
	if f.Company != "" && !strings.Contains(strings.ToLower(a.CompanyName), strings.ToLower(f.Company)) {
		return ok
	}
	ok = true
	return ok
}

// Stats counts applications in total and per status.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[Status]int `json:"by_status"`
}

// Store persists applications.
type Store interface {
	Create(ctx context.Context, app Application) (created Application, err error)
	Get(ctx context.Context, id uuid.UUID) (app Application, err error)
	List(ctx context.Context, filter Filter) (apps []Application, err error)
	Update(ctx context.Context, id uuid.UUID, upd Update) (app Application, err error)
	Delete(ctx context.Context, id uuid.UUID) (err error)
	Stats(ctx context.Context) (stats Stats, err error)
	Close()
}

// ErrNotFound is returned when no application has the requested id.
//
//nolint:gochecknoglobals // sentinel error
var ErrNotFound = errors.New("application not found")

// ErrInvalid is wrapped by every validation failure.
//
//nolint:gochecknoglobals // sentinel error
var ErrInvalid = errors.New("invalid application")

//nolint:gochecknoglobals // validator caches struct metadata
var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() (v *validator.Validate) {
	validateOnce.Do(func() {
		validate = validator.New()
		mustRegister(validate, "nonblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		mustRegister(validate, "status", func(fl validator.FieldLevel) bool {
			return Status(fl.Field().String()).Valid()
		})
	})
	v = validate
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	err := v.RegisterValidation(tag, fn)
	if err != nil {
		panic(errors.Wrapf(err, "failed to register %q validation", tag))
	}
}

// Validate checks an application record. Failures wrap ErrInvalid.
func Validate(app Application) (err error) {
	verr := recordValidator().Struct(app)
	if verr == nil {
		return err
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(verr, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		switch first.Tag() {
		case "nonblank":
			err = errors.Wrapf(ErrInvalid, "%s is required", fieldName(first.Field()))
		case "status":
			err = errors.Wrapf(ErrInvalid, "unknown status %q", first.Value())
		case "url":
			err = errors.Wrapf(ErrInvalid, "%s must be a URL", fieldName(first.Field()))
		default:
			err = errors.Wrapf(ErrInvalid, "%s failed %s", fieldName(first.Field()), first.Tag())
		}
		return err
	}

	err = errors.Wrap(ErrInvalid, verr.Error())
	return err
}

func fieldName(field string) (name string) {
	switch field {
	case "CompanyName":
		name = "company name"
	case "Position":
		name = "position"
	case "CareerPageURL":
		name = "career page URL"
	default:
		name = strings.ToLower(field)
	}
	return name
}

// prepare fills defaults on a new record and validates it.
func prepare(app Application, now time.Time) (prepared Application, err error) {
	prepared = app
	prepared.CompanyName = strings.TrimSpace(prepared.CompanyName)
	prepared.Position = strings.TrimSpace(prepared.Position)

	if prepared.ID == uuid.Nil {
		prepared.ID = uuid.New()
	}
	if prepared.Status == "" {
		prepared.Status = StatusApplied
	}
	if prepared.DateApplied.IsZero() {
		prepared.DateApplied = now
	}
	prepared.CreatedAt = now
	prepared.UpdatedAt = now

	err = Validate(prepared)
	return prepared, err
}

// ComputeStats counts apps by status. Every status appears in ByStatus, with zero if unused.
func ComputeStats(apps []Application) (stats Stats) {
	stats.ByStatus = make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		stats.ByStatus[s] = 0
	}
	for _, a := range apps {
		stats.Total++
		stats.ByStatus[a.Status]++
	}
	return stats
}

// FollowUpsDue returns open applications whose follow-up date is on or before now, oldest first.
func FollowUpsDue(apps []Application, now time.Time) (due []Application) {
	for _, a := range apps {
		if a.FollowUpDate == nil || a.Status.Closed() {
			continue
		}
		if !a.FollowUpDate.After(now) {
			due = append(due, a)
		}
	}

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].FollowUpDate.Before(*due[j].FollowUpDate)
	})
	return due
}

// newestFirst orders by date applied, then creation time, both descending.
func newestFirst(a, b Application) (less bool) {
	if !a.DateApplied.Equal(b.DateApplied) {
		less = a.DateApplied.After(b.DateApplied)
		return less
	}
	less = a.CreatedAt.After(b.CreatedAt)
	return less
}
