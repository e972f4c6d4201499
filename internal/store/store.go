// Package store is the IdeaSpark task store: the one owner of the SQLite
// handle and the validated CRUD operations on top of it.
//
// A Store is constructed explicitly and passed to whatever needs it; there
// is no process-wide instance. The handle is opened lazily by Initialize.
//
// Concurrency:
//   - Concurrent Initialize calls share one in-flight attempt, so the file is
//     opened and the schema created once.
//   - A failed attempt is not remembered; the next call starts over.
//   - CRUD calls are not serialized here. SQLite serializes statements.
package store

import (
	"context"
	"log"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/ideaspark/ideaspark/internal/store/db"
)

const initKey = "initialize"

// Opener opens and prepares the backing database. It must create the schema.
type Opener func(ctx context.Context, path string) (*db.DB, error)

// DefaultOpener opens path with the SQLite driver and creates the schema.
func DefaultOpener(ctx context.Context, path string) (*db.DB, error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := database.InitSchema(ctx); err != nil {
		_ = database.Close()
		return nil, err
	}
	return database, nil
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for store activity.
func WithLogger(logger *log.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOpener replaces the function used to open the database.
func WithOpener(open Opener) Option {
	return func(s *Store) {
		if open != nil {
			s.open = open
		}
	}
}

// WithObserver registers an observer notified after each successful write.
func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observers = append(s.observers, o)
		}
	}
}

// WithClock overrides the time source used for created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how new task ids are produced.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// Store owns the database handle for its lifetime.
type Store struct {
	path      string
	open      Opener
	logger    *log.Logger
	observers []Observer
	now       func() time.Time
	newID     func() string

	inflight singleflight.Group

	mu          sync.RWMutex
	db          *db.DB
	initialized bool
	// closes counts Close calls; an attempt that spans one is discarded.
	closes uint64
}

// New creates a Store for the database at path. Nothing is opened until
// Initialize is called.
//
// Example:
//
//	s := store.New(cfg.DB.Path, store.WithLogger(logger))
//	if err := s.Initialize(ctx); err != nil {
//	    return err
//	}
//	defer s.Close()
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		open:   DefaultOpener,
		logger: log.New(os.Stderr, "[store] ", log.LstdFlags),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the database path this store was created for.
func (s *Store) Path() string {
	return s.path
}

// Initialized reports whether the handle is open and the schema exists.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Initialize opens the database and creates the schema, once.
//
// It returns immediately when already initialized. Callers arriving while an
// attempt is in flight wait for that attempt and get its result. A caller
// whose ctx ends stops waiting, but the attempt itself runs to completion
// for the others.
func (s *Store) Initialize(ctx context.Context) error {
	if s.Initialized() {
		return nil
	}

	ch := s.inflight.DoChan(initKey, func() (interface{}, error) {
		return nil, s.initialize(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// initialize runs inside the shared flight.
func (s *Store) initialize(ctx context.Context) error {
	// A flight that started just after a previous one finished must not
	// open a second handle.
	s.mu.RLock()
	initialized, gen := s.initialized, s.closes
	s.mu.RUnlock()
	if initialized {
		return nil
	}

	database, err := s.open(ctx, s.path)
	if err != nil {
		s.mu.Lock()
		s.db = nil
		s.initialized = false
		s.mu.Unlock()

		s.logger.Printf("Database initialization error: %v", err)
		return persistenceErr("initialize database", err)
	}

	s.mu.Lock()
	if s.closes != gen {
		s.mu.Unlock()
		_ = database.Close()
		s.logger.Printf("Database closed during initialization: %s", s.path)
		return ErrClosed
	}
	s.db = database
	s.initialized = true
	s.mu.Unlock()

	s.logger.Printf("Database initialized: %s", s.path)
	return nil
}

// Close releases the handle. A later Initialize opens it again.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closes++
	if s.db == nil {
		s.initialized = false
		return nil
	}

	err := s.db.Close()
	s.db = nil
	s.initialized = false
	return err
}

// handle returns the open database or ErrNotInitialized.
func (s *Store) handle() (*db.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.initialized || s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}
