package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/example/salon-agenda/internal/schedule"
	"go.uber.org/zap"
)

// Resource is the persisted JSON document the store reads and overwrites.
type Resource interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, body []byte) error
	String() string
}

// Store holds the full appointment collection in memory. It is loaded once,
// grows only by Append, and is written back whole on every Save.
type Store struct {
	res Resource
	log *zap.Logger

	mu     sync.RWMutex
	appts  []schedule.Appointment
	lastID int64

	// saveMu orders writes: snapshots reach the resource in the order taken.
	saveMu sync.Mutex
}

func New(res Resource, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{res: res, log: log.Named("store")}
}

// Load replaces the collection with the persisted one. Any read or decode
// failure resets to an empty collection and writes that back so the resource
// is valid again; the failure is only logged.
func (s *Store) Load(ctx context.Context) []schedule.Appointment {
	appts, err := s.read(ctx)
	if err != nil {
		if errors.Is(err, ErrMissing) {
			s.log.Info("no document yet, creating an empty one",
				zap.String("resource", s.res.String()))
		} else {
			s.log.Warn("load failed, resetting to empty collection",
				zap.String("resource", s.res.String()), zap.Error(err))
		}
		s.Replace(nil)
		_ = s.Save(ctx)
		return s.All()
	}
	s.Replace(appts)
	s.log.Info("loaded appointments",
		zap.String("resource", s.res.String()), zap.Int("count", len(appts)))
	return s.All()
}

func (s *Store) read(ctx context.Context) ([]schedule.Appointment, error) {
	b, err := s.res.Read(ctx)
	if err != nil {
		return nil, err
	}
	appts, err := schedule.DecodeDocument(b)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.res, err)
	}
	return appts, nil
}

// Save writes the whole collection to the resource. A failure is logged and
// returned; the in-memory collection is left as is and nothing is retried.
func (s *Store) Save(ctx context.Context) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	s.mu.RLock()
	body, err := schedule.EncodeDocument(s.appts)
	s.mu.RUnlock()
	if err != nil {
		s.log.Error("save failed", zap.Error(err))
		return fmt.Errorf("encode document: %w", err)
	}
	if err := s.res.Write(ctx, body); err != nil {
		s.log.Error("save failed", zap.String("resource", s.res.String()), zap.Error(err))
		return fmt.Errorf("write %s: %w", s.res, err)
	}
	return nil
}

// Append adds one record in memory. Callers persist with Save.
func (s *Store) Append(a schedule.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appts = append(s.appts, a)
	if a.ID > s.lastID {
		s.lastID = a.ID
	}
}

// Replace swaps the whole collection, as a full-document write does.
func (s *Store) Replace(appts []schedule.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appts = append([]schedule.Appointment{}, appts...)
	for _, a := range s.appts {
		if a.ID > s.lastID {
			s.lastID = a.ID
		}
	}
}

// All returns a copy of the collection in insertion order.
func (s *Store) All() []schedule.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]schedule.Appointment{}, s.appts...)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.appts)
}

// NextID returns a millisecond timestamp token, bumped past every id the
// store has seen so ids stay unique even within one millisecond.
func (s *Store) NextID(now time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := now.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Document encodes the in-memory collection the way Save would write it.
func (s *Store) Document() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return schedule.EncodeDocument(s.appts)
}
