package fila

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Store owns the pending sequence and the served history. Every method is a
// critical section over both, so positions stay contiguous from 0 under
// concurrent callers.
type Store struct {
	mu      sync.Mutex
	pending []Entry
	served  []ServedRecord

	now   func() time.Time
	newID func() string
}

type Option func(*Store)

// WithClock replaces the time source. Returned times are converted to UTC.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		pending: []Entry{},
		served:  []ServedRecord{},
		now:     time.Now,
		newID:   newEntryID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Enqueue inserts a new client. Priority clients go right after the last
// Priority entry, Normal clients go to the end.
func (s *Store) Enqueue(name string, class ServiceClass) (Entry, error) {
	if err := ValidateName(name); err != nil {
		return Entry{}, err
	}
	if !class.Valid() {
		return Entry{}, &ValidationError{Field: FieldServiceClass, Reason: fmt.Sprintf("%q is not N or P", string(class))}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	target := len(s.pending)
	if class == Priority {
		target = s.lastPriorityPosition() + 1
	}

	for i := range s.pending {
		if s.pending[i].Position >= target {
			s.pending[i].Position++
		}
	}

	entry := Entry{
		ID:           s.newID(),
		Name:         name,
		ServiceClass: class,
		Position:     target,
		ArrivalTime:  s.now().UTC(),
	}
	s.pending = append(s.pending, Entry{})
	copy(s.pending[target+1:], s.pending[target:])
	s.pending[target] = entry

	log.WithFields(log.Fields{"id": entry.ID, "class": string(class), "position": target}).Debug("Entry enqueued")
	return entry, nil
}

// lastPriorityPosition returns -1 when there is no Priority entry.
func (s *Store) lastPriorityPosition() int {
	last := -1
	for _, e := range s.pending {
		if e.ServiceClass == Priority && e.Position > last {
			last = e.Position
		}
	}
	return last
}

// ServeNext serves the first unserved entry. QueueEmpty and AllServed leave
// the history untouched.
func (s *Store) ServeNext() (ServedRecord, Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return ServedRecord{}, QueueEmpty
	}

	for i := range s.pending {
		if s.pending[i].Served {
			continue
		}
		s.pending[i].Served = true
		e := s.pending[i]
		record := ServedRecord{
			ID:           e.ID,
			Name:         e.Name,
			ServiceClass: e.ServiceClass,
			Position:     e.Position,
			ArrivalTime:  e.ArrivalTime,
			ServiceTime:  s.now().UTC(),
		}
		s.served = append(s.served, record)
		s.removeIndex(i)

		log.WithFields(log.Fields{"id": record.ID, "position": record.Position}).Debug("Entry served")
		return record, Served
	}

	return ServedRecord{}, AllServed
}

// RemoveAt drops the entry at position and closes the gap behind it.
func (s *Store) RemoveAt(position int) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPosition(position); err != nil {
		return Entry{}, err
	}
	removed := s.pending[position]
	s.removeIndex(position)

	log.WithFields(log.Fields{"id": removed.ID, "position": position}).Debug("Entry removed")
	return removed, nil
}

func (s *Store) GetAt(position int) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkPosition(position); err != nil {
		return Entry{}, err
	}
	return s.pending[position], nil
}

// ListPending returns the unserved entries in position order.
func (s *Store) ListPending() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.pending))
	for _, e := range s.pending {
		if !e.Served {
			out = append(out, e)
		}
	}
	return out
}

// ListServed returns the history in the order entries were served.
func (s *Store) ListServed() []ServedRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]ServedRecord, len(s.served))
	copy(out, s.served)
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// ServedCount returns the size of the history.
func (s *Store) ServedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.served)
}

func (s *Store) checkPosition(position int) error {
	if position < 0 || position >= len(s.pending) {
		return errors.Wrapf(ErrNotFound, "position %d out of range [0, %d)", position, len(s.pending))
	}
	if s.pending[position].Served {
		return errors.Wrapf(ErrNotFound, "entry at position %d was already served", position)
	}
	return nil
}

// removeIndex must be called with mu held.
func (s *Store) removeIndex(i int) {
	s.pending = append(s.pending[:i], s.pending[i+1:]...)
	for j := i; j < len(s.pending); j++ {
		s.pending[j].Position--
	}
}
