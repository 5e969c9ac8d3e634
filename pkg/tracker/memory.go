package tracker

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// MemoryStore keeps applications in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	apps map[uuid.UUID]Application
	now  func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() (store *MemoryStore) {
	store = &MemoryStore{
		apps: make(map[uuid.UUID]Application),
		now:  time.Now,
	}
	return store
}

// Create validates app, assigns an id and timestamps, and stores it.
func (s *MemoryStore) Create(_ context.Context, app Application) (created Application, err error) {
	created, err = prepare(app, s.now().UTC())
	if err != nil {
		return Application{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.apps[created.ID]; exists {
		err = errors.Wrapf(ErrInvalid, "application %s already exists", created.ID)
		return Application{}, err
	}

	s.apps[created.ID] = clone(created)
	return created, err
}

// Get returns the application with id.
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (app Application, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.apps[id]
	if !ok {
		err = errors.Wrapf(ErrNotFound, "id %s", id)
		return app, err
	}

	app = clone(stored)
	return app, err
}

// List returns matching applications, newest first.
func (s *MemoryStore) List(_ context.Context, filter Filter) (apps []Application, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	apps = make([]Application, 0, len(s.apps))
	for _, a := range s.apps {
		if filter.Match(a) {
			apps = append(apps, clone(a))
		}
	}

	sort.SliceStable(apps, func(i, j int) bool {
		return newestFirst(apps[i], apps[j])
	})
	return apps, err
}

// Update applies upd to the application with id.
func (s *MemoryStore) Update(_ context.Context, id uuid.UUID, upd Update) (app Application, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.apps[id]
	if !ok {
		err = errors.Wrapf(ErrNotFound, "id %s", id)
		return app, err
	}

	app = clone(stored)
	upd.Apply(&app)

	err = Validate(app)
	if err != nil {
		return Application{}, err
	}

	app.UpdatedAt = s.now().UTC()
	s.apps[id] = clone(app)
	return app, err
}

// Delete removes the application with id.
func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.apps[id]; !ok {
		err = errors.Wrapf(ErrNotFound, "id %s", id)
		return err
	}

	delete(s.apps, id)
	return err
}

// Stats counts stored applications by status.
func (s *MemoryStore) Stats(ctx context.Context) (stats Stats, err error) {
	var apps []Application
	apps, err = s.List(ctx, Filter{})
	if err != nil {
		return stats, err
	}

	stats = ComputeStats(apps)
	return stats, err
}

// Close is a no-op.
func (s *MemoryStore) Close() {}

func clone(a Application) (c Application) {
	c = a
	if a.FollowUpDate != nil {
		d := *a.FollowUpDate
		c.FollowUpDate = &d
	}
	if a.InterviewDates != nil {
		c.InterviewDates = append([]time.Time(nil), a.InterviewDates...)
	}
	return c
}
