package tracker

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func day(s string) (t time.Time) {
	t, _ = time.Parse("2006-01-02", s)
	return t
}

func ptr[T any](v T) *T {
	return &v
}

func TestStatus(t *testing.T) {
	assert.True(t, StatusInterview.Valid())
	assert.False(t, Status("ghosted").Valid())
	assert.Equal(t, "Screening", StatusScreening.Label())
	assert.Equal(t, "Withdrawn", StatusWithdrawn.Label())

	s, err := ParseStatus("  OFFER ")
	require.NoError(t, err)
	assert.Equal(t, StatusOffer, s)

	_, err = ParseStatus("ghosted")
	assert.True(t, errors.Is(err, ErrInvalid))

	assert.True(t, StatusRejected.Closed())
	assert.False(t, StatusApplied.Closed())
}

func TestValidate(t *testing.T) {
	valid := Application{CompanyName: "Widget Co", Position: "Engineer", Status: StatusApplied}

	tests := []struct {
		name    string
		mutate  func(a *Application)
		wantErr string
	}{
		{name: "valid", mutate: func(a *Application) {}},
		{name: "blank company", mutate: func(a *Application) { a.CompanyName = "  " }, wantErr: "company name is required"},
		{name: "missing position", mutate: func(a *Application) { a.Position = "" }, wantErr: "position is required"},
		{name: "bad status", mutate: func(a *Application) { a.Status = "ghosted" }, wantErr: "unknown status"},
		{name: "bad url", mutate: func(a *Application) { a.CareerPageURL = "not a url" }, wantErr: "career page URL must be a URL"},
		{name: "good url", mutate: func(a *Application) { a.CareerPageURL = "https://widget.example/careers" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := valid
			tt.mutate(&app)
			err := Validate(app)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMustRegister(t *testing.T) {
	v := validator.New()
	accept := func(validator.FieldLevel) bool { return true }

	assert.NotPanics(t, func() { mustRegister(v, "ok", accept) })
	assert.Panics(t, func() { mustRegister(v, "", accept) })
}

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	store := NewMemoryStore()
	store.now = fixedClock(now)

	created, err := store.Create(ctx, Application{CompanyName: " Widget Co ", Position: "Frontend Engineer"})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "Widget Co", created.CompanyName)
	assert.Equal(t, StatusApplied, created.Status)
	assert.Equal(t, now, created.DateApplied)
	assert.Equal(t, now, created.CreatedAt)

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	later := now.Add(48 * time.Hour)
	store.now = fixedClock(later)

	interviews := []time.Time{day("2026-03-10")}
	updated, err := store.Update(ctx, created.ID, Update{
		Status:         ptr(StatusInterview),
		Notes:          ptr("Recruiter call went well"),
		InterviewDates: &interviews,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusInterview, updated.Status)
	assert.Equal(t, "Recruiter call went well", updated.Notes)
	assert.Equal(t, interviews, updated.InterviewDates)
	assert.Equal(t, later, updated.UpdatedAt)
	assert.Equal(t, now, updated.CreatedAt)

	interviews[0] = day("2030-01-01")
	got, err = store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, day("2026-03-10"), got.InterviewDates[0], "store must not alias caller slices")

	err = store.Delete(ctx, created.ID)
	require.NoError(t, err)

	_, err = store.Get(ctx, created.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	err = store.Delete(ctx, created.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStoreCreateInvalid(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Create(context.Background(), Application{Position: "Engineer"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	apps, err := store.List(context.Background(), Filter{})
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestMemoryStoreUpdateInvalidLeavesRecord(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	created, err := store.Create(ctx, Application{CompanyName: "Widget Co", Position: "Engineer"})
	require.NoError(t, err)

	_, err = store.Update(ctx, created.ID, Update{Status: ptr(Status("ghosted"))})
	assert.True(t, errors.Is(err, ErrInvalid))

	got, err := store.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApplied, got.Status)

	_, err = store.Update(ctx, uuid.New(), Update{Notes: ptr("x")})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, a := range []Application{
		{CompanyName: "Alpha", Position: "Engineer", DateApplied: day("2026-01-05")},
		{CompanyName: "Bravo", Position: "Engineer", DateApplied: day("2026-02-10"), Status: StatusRejected},
		{CompanyName: "Charlie", Position: "Engineer", DateApplied: day("2026-01-20"), Status: StatusInterview},
	} {
		_, err := store.Create(ctx, a)
		require.NoError(t, err)
	}

	apps, err := store.List(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, apps, 3)
	assert.Equal(t, []string{"Bravo", "Charlie", "Alpha"}, companies(apps))

	apps, err = store.List(ctx, Filter{Status: StatusInterview})
	require.NoError(t, err)
	assert.Equal(t, []string{"Charlie"}, companies(apps))

	apps, err = store.List(ctx, Filter{Company: "alp"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha"}, companies(apps))
}

func TestMemoryStoreStats(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for _, s := range []Status{StatusApplied, StatusApplied, StatusOffer, StatusRejected} {
		_, err := store.Create(ctx, Application{CompanyName: "Co", Position: "Role", Status: s})
		require.NoError(t, err)
	}

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.ByStatus[StatusApplied])
	assert.Equal(t, 1, stats.ByStatus[StatusOffer])
	assert.Equal(t, 0, stats.ByStatus[StatusScreening])
	assert.Len(t, stats.ByStatus, len(Statuses))
}

func TestMemoryStoreConcurrentCreate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.Create(ctx, Application{CompanyName: "Co", Position: "Role"})
		}()
	}
	wg.Wait()

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, stats.Total)
}

func TestFollowUpsDue(t *testing.T) {
	now := day("2026-03-15")

	apps := []Application{
		{CompanyName: "Late", Status: StatusApplied, FollowUpDate: ptr(day("2026-03-14"))},
		{CompanyName: "Today", Status: StatusScreening, FollowUpDate: ptr(day("2026-03-15"))},
		{CompanyName: "Future", Status: StatusApplied, FollowUpDate: ptr(day("2026-03-20"))},
		{CompanyName: "Closed", Status: StatusRejected, FollowUpDate: ptr(day("2026-03-01"))},
		{CompanyName: "Oldest", Status: StatusInterview, FollowUpDate: ptr(day("2026-03-02"))},
		{CompanyName: "None", Status: StatusApplied},
	}

	due := FollowUpsDue(apps, now)
	assert.Equal(t, []string{"Oldest", "Late", "Today"}, companies(due))
}

func TestUpdateClearFollowUp(t *testing.T) {
	app := Application{FollowUpDate: ptr(day("2026-03-14"))}
	Update{ClearFollowUp: true}.Apply(&app)
	assert.Nil(t, app.FollowUpDate)
}

func TestExportXLSX(t *testing.T) {
	apps := []Application{
		{
			ID:             uuid.New(),
			CompanyName:    "Widget Co",
			Position:       "Frontend Engineer",
			Status:         StatusInterview,
			DateApplied:    day("2026-03-01"),
			FollowUpDate:   ptr(day("2026-03-08")),
			InterviewDates: []time.Time{day("2026-03-10"), day("2026-03-12")},
			Salary:         "$150k",
			Notes:          "Referred by Sam",
		},
		{
			ID:          uuid.New(),
			CompanyName: "Globex",
			Position:    "Staff Engineer",
			Status:      StatusApplied,
			DateApplied: day("2026-02-20"),
		},
	}

	var buf bytes.Buffer
	err := ExportXLSX(apps, &buf)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Company", rows[0][0])
	assert.Equal(t, "Notes", rows[0][len(columns)-1])

	assert.Equal(t, "Widget Co", rows[1][0])
	assert.Equal(t, "Interview", rows[1][2])
	assert.Equal(t, "2026-03-01", rows[1][3])
	assert.Equal(t, "2026-03-08", rows[1][4])
	assert.Equal(t, "2026-03-10, 2026-03-12", rows[1][5])

	assert.Equal(t, "Globex", rows[2][0])
	assert.Equal(t, "Applied", rows[2][2])
}

func TestExportFilename(t *testing.T) {
	name := ExportFilename(time.Date(2026, 3, 1, 14, 30, 5, 0, time.UTC))
	assert.Equal(t, "applications_20260301_143005.xlsx", name)
}

func TestListQuery(t *testing.T) {
	query, args := listQuery(Filter{})
	assert.NotContains(t, query, "WHERE")
	assert.Contains(t, query, "ORDER BY date_applied DESC, created_at DESC")
	assert.Empty(t, args)

	query, args = listQuery(Filter{Status: StatusOffer, Company: "Widget"})
	assert.Contains(t, query, "WHERE status = $1 AND LOWER(company_name) LIKE $2")
	assert.Equal(t, []interface{}{"offer", "%widget%"}, args)

	query, args = listQuery(Filter{Company: "Widget"})
	assert.Contains(t, query, "WHERE LOWER(company_name) LIKE $1")
	assert.Equal(t, []interface{}{"%widget%"}, args)
}

func companies(apps []Application) (names []string) {
	for _, a := range apps {
		names = append(names, a.CompanyName)
	}
	return names
}
