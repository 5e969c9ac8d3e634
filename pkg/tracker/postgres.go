package tracker

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS applications (
	id              UUID PRIMARY KEY,
	company_name    TEXT NOT NULL,
	position        TEXT NOT NULL,
	date_applied    TIMESTAMPTZ NOT NULL,
	status          TEXT NOT NULL CHECK (status IN ('applied', 'screening', 'interview', 'offer', 'rejected', 'withdrawn')),
	salary          TEXT,
	notes           TEXT,
	career_page_url TEXT,
	follow_up_date  TIMESTAMPTZ,
	contact_person  TEXT,
	interview_dates TIMESTAMPTZ[] NOT NULL DEFAULT '{}',
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS applications_date_applied_idx ON applications (date_applied DESC);
`

const selectColumns = `id, company_name, position, date_applied, status, salary, notes, career_page_url,
	follow_up_date, contact_person, interview_dates, created_at, updated_at`

// PostgresStore keeps applications in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore connects to databaseURL and creates the applications table if needed.
func NewPostgresStore(ctx context.Context, databaseURL string) (store *PostgresStore, err error) {
	var cfg *pgxpool.Config
	cfg, err = pgxpool.ParseConfig(databaseURL)
	if err != nil {
		err = errors.Wrap(err, "failed to parse database URL")
		return store, err
	}

	cfg.MaxConns = 10
	cfg.MinConns = 1
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConnIdleTime = 30 * time.Minute

	var pool *pgxpool.Pool
	pool, err = pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		err = errors.Wrap(err, "failed to create connection pool")
		return store, err
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		err = errors.Wrap(err, "failed to reach database")
		return store, err
	}

	store = &PostgresStore{pool: pool, now: time.Now}

	err = store.Migrate(ctx)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return store, err
}

// Migrate creates the applications table and index if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) (err error) {
	_, err = s.pool.Exec(ctx, schema)
	if err != nil {
		err = errors.Wrap(err, "failed to create applications table")
		return err
	}
	return err
}

// Create validates app, assigns an id and timestamps, and inserts it.
func (s *PostgresStore) Create(ctx context.Context, app Application) (created Application, err error) {
	created, err = prepare(app, s.now().UTC())
	if err != nil {
		return Application{}, err
	}

	query := `
		INSERT INTO applications (` + selectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = s.pool.Exec(ctx, query, writeArgs(created)...)
	if err != nil {
		err = errors.Wrap(err, "failed to insert application")
		return Application{}, err
	}

	return created, err
}

// Get returns the application with id.
func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (app Application, err error) {
	query := `SELECT ` + selectColumns + ` FROM applications WHERE id = $1`

	app, err = scanApplication(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		err = notFound(err, id)
		return Application{}, err
	}

	return app, err
}

// List returns matching applications, newest first.
func (s *PostgresStore) List(ctx context.Context, filter Filter) (apps []Application, err error) {
	query, args := listQuery(filter)

	var rows pgx.Rows
	rows, err = s.pool.Query(ctx, query, args...)
	if err != nil {
		err = errors.Wrap(err, "failed to list applications")
		return apps, err
	}
	defer rows.Close()

	apps = []Application{}
	for rows.Next() {
		var app Application
		app, err = scanApplication(rows)
		if err != nil {
			err = errors.Wrap(err, "failed to scan application")
			return nil, err
		}
		apps = append(apps, app)
	}

	err = rows.Err()
	if err != nil {
		err = errors.Wrap(err, "failed to read applications")
		return nil, err
	}

	return apps, err
}

// Update applies upd to the application with id inside a transaction.
func (s *PostgresStore) Update(ctx context.Context, id uuid.UUID, upd Update) (app Application, err error) {
	var tx pgx.Tx
	tx, err = s.pool.Begin(ctx)
	if err != nil {
		err = errors.Wrap(err, "failed to begin transaction")
		return app, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := `SELECT ` + selectColumns + ` FROM applications WHERE id = $1 FOR UPDATE`

	app, err = scanApplication(tx.QueryRow(ctx, query, id))
	if err != nil {
		err = notFound(err, id)
		return Application{}, err
	}

	upd.Apply(&app)

	err = Validate(app)
	if err != nil {
		return Application{}, err
	}

	app.UpdatedAt = s.now().UTC()

	update := `
		UPDATE applications SET
			company_name = $2, position = $3, date_applied = $4, status = $5, salary = $6, notes = $7,
			career_page_url = $8, follow_up_date = $9, contact_person = $10, interview_dates = $11,
			created_at = $12, updated_at = $13
		WHERE id = $1`

	_, err = tx.Exec(ctx, update, writeArgs(app)...)
	if err != nil {
		err = errors.Wrap(err, "failed to update application")
		return Application{}, err
	}

	err = tx.Commit(ctx)
	if err != nil {
		err = errors.Wrap(err, "failed to commit update")
		return Application{}, err
	}

	return app, err
}

// Delete removes the application with id.
func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) (err error) {
	var tag pgconn.CommandTag
	tag, err = s.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		err = errors.Wrap(err, "failed to delete application")
		return err
	}

	if tag.RowsAffected() == 0 {
		err = errors.Wrapf(ErrNotFound, "id %s", id)
		return err
	}

	return err
}

// Stats counts applications by status.
func (s *PostgresStore) Stats(ctx context.Context) (stats Stats, err error) {
	var rows pgx.Rows
	rows, err = s.pool.Query(ctx, `SELECT status, COUNT(*) FROM applications GROUP BY status`)
	if err != nil {
		err = errors.Wrap(err, "failed to count applications")
		return stats, err
	}
	defer rows.Close()

	stats = ComputeStats(nil)
	for rows.Next() {
		var status string
		var count int
		err = rows.Scan(&status, &count)
		if err != nil {
			err = errors.Wrap(err, "failed to scan status count")
			return stats, err
		}
		stats.ByStatus[Status(status)] = count
		stats.Total += count
	}

	err = rows.Err()
	if err != nil {
		err = errors.Wrap(err, "failed to read status counts")
		return stats, err
	}

	return stats, err
}

// Close releases the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// listQuery builds the list statement for filter.
func listQuery(filter Filter) (query string, args []interface{}) {
	var where []string

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, "status = $1")
	}

	if filter.Company != "" {
		args = append(args, "%"+strings.ToLower(filter.Company)+"%")
		where = append(where, "LOWER(company_name) LIKE $"+strconv.Itoa(len(args)))
	}

	query = `SELECT ` + selectColumns + ` FROM applications`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY date_applied DESC, created_at DESC`

	return query, args
}

func writeArgs(a Application) (args []interface{}) {
	dates := a.InterviewDates
	if dates == nil {
		dates = []time.Time{}
	}

	args = []interface{}{
		a.ID,
		a.CompanyName,
		a.Position,
		a.DateApplied,
		string(a.Status),
		nullable(a.Salary),
		nullable(a.Notes),
		nullable(a.CareerPageURL),
		a.FollowUpDate,
		nullable(a.ContactPerson),
		dates,
		a.CreatedAt,
		a.UpdatedAt,
	}
	return args
}

func scanApplication(row pgx.Row) (app Application, err error) {
	var status string
	var salary, notes, careerPageURL, contactPerson *string

	err = row.Scan(
		&app.ID, &app.CompanyName, &app.Position, &app.DateApplied, &status,
		&salary, &notes, &careerPageURL, &app.FollowUpDate, &contactPerson,
		&app.InterviewDates, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return app, err
	}

	app.Status = Status(status)
	app.Salary = deref(salary)
	app.Notes = deref(notes)
	app.CareerPageURL = deref(careerPageURL)
	app.ContactPerson = deref(contactPerson)
	if len(app.InterviewDates) == 0 {
		app.InterviewDates = nil
	}

	return app, err
}

func notFound(err error, id uuid.UUID) (wrapped error) {
	if errors.Is(err, pgx.ErrNoRows) {
		wrapped = errors.Wrapf(ErrNotFound, "id %s", id)
		return wrapped
	}
	wrapped = errors.Wrap(err, "failed to load application")
	return wrapped
}

func nullable(s string) (p *string) {
	if s == "" {
		return p
	}
	p = &s
	return p
}

func deref(p *string) (s string) {
	if p != nil {
		s = *p
	}
	return s
}
