// Package store caches resource lists fetched from the admin API.
// Each resource is fetched once; later fetches are served from memory until
// the resource is invalidated. A resource has at most one fetch in flight.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/robby/adminctl/internal/domain"
	"github.com/robby/adminctl/internal/logging"
)

var (
	// ErrFetchInFlight indicates a fetch for the resource is already running.
	ErrFetchInFlight = errors.New("fetch already in progress")
	// ErrUnknownResource indicates the resource is not in the catalog.
	ErrUnknownResource = errors.New("unknown resource")
)

// Lister loads every row of a resource.
type Lister interface {
	ListResource(ctx context.Context, resource string) ([]domain.Row, error)
}

type entry struct {
	rows      []domain.Row
	loaded    bool
	stale     bool
	fetching  bool
	cancel    context.CancelFunc
	gen       uint64
	fetchedAt time.Time
}

// Store is safe for concurrent use; fetches run in Bubble Tea command
// goroutines while the UI reads cached rows.
type Store struct {
	mu      sync.Mutex
	lister  Lister
	entries map[string]*entry
	log     *logrus.Logger
	now     func() time.Time
}

// New creates an empty store backed by lister. log may be nil.
func New(lister Lister, log *logrus.Logger) *Store {
	if log == nil {
		log = logging.Discard()
	}
	return &Store{
		lister:  lister,
		entries: make(map[string]*entry),
		log:     log,
		now:     time.Now,
	}
}

func (s *Store) entry(resource string) *entry {
	e, ok := s.entries[resource]
	if !ok {
		e = &entry{}
		s.entries[resource] = e
	}
	return e
}

// Fetch returns the rows of resource. Cached rows are returned when the
// resource is loaded and not stale. A second Fetch while one is running
// returns ErrFetchInFlight. A fetch stopped by Cancel or Reset returns
// context.Canceled and leaves the cache untouched.
func (s *Store) Fetch(ctx context.Context, resource string) ([]domain.Row, error) {
	if _, ok := domain.LookupResource(resource); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, resource)
	}

	s.mu.Lock()
	e := s.entry(resource)
	if e.loaded && !e.stale {
		rows := copyRows(e.rows)
		s.mu.Unlock()
		return rows, nil
	}
	if e.fetching {
		s.mu.Unlock()
		return nil, ErrFetchInFlight
	}
	ctx, cancel := context.WithCancel(ctx)
	e.fetching = true
	e.stale = false
	e.cancel = cancel
	e.gen++
	gen := e.gen
	s.mu.Unlock()

	log := s.log.WithField("resource", resource)
	log.Debug("fetching rows")
	rows, err := s.lister.ListResource(ctx, resource)
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.entries[resource]
	if !ok || current != e || e.gen != gen {
		log.Debug("discarding canceled fetch")
		return nil, context.Canceled
	}
	e.fetching = false
	e.cancel = nil
	if err != nil {
		log.WithError(err).Warn("fetch failed")
		return nil, err
	}

	e.rows = copyRows(rows)
	e.loaded = true
	e.fetchedAt = s.now()
	log.WithField("rows", len(rows)).Debug("fetched rows")
	return copyRows(rows), nil
}

// Invalidate marks resource stale so the next Fetch goes to the server. An
// invalidation during a running fetch also applies to the fetch after it.
func (s *Store) Invalidate(resource string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entry(resource).stale = true
}

// Cancel stops the in-flight fetch of resource, if any, and reports whether
// one was running.
func (s *Store) Cancel(resource string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[resource]
	if !ok || !e.fetching {
		return false
	}
	e.cancel()
	e.cancel = nil
	e.fetching = false
	e.gen++
	s.log.WithField("resource", resource).Debug("fetch canceled")
	return true
}

// Rows returns the cached rows of resource and whether it has been loaded.
func (s *Store) Rows(resource string) ([]domain.Row, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[resource]
	if !ok || !e.loaded {
		return nil, false
	}
	return copyRows(e.rows), true
}

// Loaded reports whether resource has been fetched at least once.
func (s *Store) Loaded(resource string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[resource]
	return ok && e.loaded
}

// FetchedAt returns when resource was last loaded from the server.
func (s *Store) FetchedAt(resource string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[resource]
	if !ok || !e.loaded {
		return time.Time{}, false
	}
	return e.fetchedAt, true
}

// Reset cancels every fetch and forgets every cached list.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.cancel != nil {
			e.cancel()
		}
	}
	s.entries = make(map[string]*entry)
}

func copyRows(rows []domain.Row) []domain.Row {
	out := make([]domain.Row, len(rows))
	copy(out, rows)
	return out
}
