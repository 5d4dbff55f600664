package repositories

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	log "github.com/sirupsen/logrus"
)

// Store owns a Badger database and hands out repositories backed by it.
type Store struct {
	db     *badger.DB
	mutex  sync.Mutex
	loc    *time.Location
	closed bool
}

// OpenStore opens (or creates) the Badger database at path. An empty path
// opens an in-memory database.
func OpenStore(path string, loc *time.Location) (*Store, error) {
	opts := badger.DefaultOptions(path).
		WithLogger(badgerLogger{log.WithField("component", "badger")}).
		WithNumVersionsToKeep(1)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return NewStore(db, loc), nil
}

// NewStore wraps an already open Badger database.
func NewStore(db *badger.DB, loc *time.Location) *Store {
	if loc == nil {
		loc = time.UTC
	}
	return &Store{db: db, loc: loc}
}

// Posts returns the post repository.
func (s *Store) Posts() *BadgerPostRepository {
	return NewBadgerPostRepository(s.db, s.loc)
}

// Comments returns the comment repository.
func (s *Store) Comments() *BadgerCommentRepository {
	return NewBadgerCommentRepository(s.db)
}

// Backup writes a full backup of the database to w.
func (s *Store) Backup(w io.Writer) error {
	if _, err := s.db.Backup(w, 0); err != nil {
		return fmt.Errorf("failed to backup database: %w", err)
	}
	return nil
}

// Restore loads a backup produced by Backup.
func (s *Store) Restore(r io.Reader) error {
	if err := s.db.Load(r, 4); err != nil {
		return fmt.Errorf("failed to restore database: %w", err)
	}
	return nil
}

// Clear drops every key.
func (s *Store) Clear() error {
	return s.db.DropAll()
}

// Close closes the database. Calling it more than once is a no-op.
func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// badgerLogger routes Badger's internal logging through logrus, demoting
// its chatty info output to debug.
type badgerLogger struct {
	entry *log.Entry
}

func (l badgerLogger) Errorf(format string, args ...interface{})   { l.entry.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...interface{}) { l.entry.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...interface{})    { l.entry.Debugf(format, args...) }
func (l badgerLogger) Debugf(format string, args ...interface{})   { l.entry.Tracef(format, args...) }
