// Package desk owns the queue shared by the HTTP and gRPC surfaces. It parses
// wire-level input, exports served records and keeps watchers up to date.
package desk

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/morfien101/fila/pkg/fila"
	log "github.com/sirupsen/logrus"
)

// RecordPublisher receives served records. history.Publisher satisfies it.
type RecordPublisher interface {
	Publish(rec fila.ServedRecord) bool
}

// Snapshot is the pending queue as seen after a mutation.
type Snapshot struct {
	Pending     []fila.Entry
	ServedCount int
	At          time.Time
}

type Desk struct {
	store   *fila.Store
	history RecordPublisher

	// opMu orders mutations with their broadcasts so watchers never see an
	// older snapshot after a newer one.
	opMu sync.Mutex

	mu       sync.Mutex
	watchers map[string]chan Snapshot
}

func New(store *fila.Store, history RecordPublisher) *Desk {
	return &Desk{
		store:    store,
		history:  history,
		watchers: map[string]chan Snapshot{},
	}
}

// Enqueue validates the name before the class so a request with both wrong
// reports the name.
func (d *Desk) Enqueue(ctx context.Context, name, class string) (fila.Entry, error) {
	if err := fila.ValidateName(name); err != nil {
		return fila.Entry{}, err
	}
	sc, err := fila.ParseServiceClass(class)
	if err != nil {
		return fila.Entry{}, err
	}

	d.opMu.Lock()
	defer d.opMu.Unlock()

	entry, err := d.store.Enqueue(name, sc)
	if err != nil {
		return fila.Entry{}, err
	}
	log.WithContext(ctx).WithFields(log.Fields{"id": entry.ID, "class": string(sc), "position": entry.Position}).Info("Client joined the queue")
	d.broadcast()
	return entry, nil
}

func (d *Desk) ServeNext(ctx context.Context) (fila.ServedRecord, fila.Outcome) {
	d.opMu.Lock()
	defer d.opMu.Unlock()

	rec, outcome := d.store.ServeNext()
	if outcome != fila.Served {
		log.WithContext(ctx).WithField("outcome", outcome.String()).Debug("Nothing to serve")
		return rec, outcome
	}

	log.WithContext(ctx).WithFields(log.Fields{"id": rec.ID, "class": string(rec.ServiceClass)}).Info("Client served")
	if d.history != nil {
		d.history.Publish(rec)
	}
	d.broadcast()
	return rec, outcome
}

func (d *Desk) RemoveAt(ctx context.Context, position int) (fila.Entry, error) {
	d.opMu.Lock()
	defer d.opMu.Unlock()

	removed, err := d.store.RemoveAt(position)
	if err != nil {
		return fila.Entry{}, err
	}
	log.WithContext(ctx).WithFields(log.Fields{"id": removed.ID, "position": position}).Info("Client removed from the queue")
	d.broadcast()
	return removed, nil
}

func (d *Desk) GetAt(position int) (fila.Entry, error) {
	return d.store.GetAt(position)
}

func (d *Desk) ListPending() []fila.Entry {
	return d.store.ListPending()
}

func (d *Desk) ListServed() []fila.ServedRecord {
	return d.store.ListServed()
}

// Stats returns the pending and served counts.
func (d *Desk) Stats() (pending, served int) {
	return d.store.Len(), d.store.ServedCount()
}

// Watch streams snapshots until ctx is done, starting with the current one.
// Only the latest snapshot is buffered, so a slow reader skips intermediate
// states instead of holding up the queue.
func (d *Desk) Watch(ctx context.Context) (<-chan Snapshot, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate UUID: %v", err)
	}

	ch := make(chan Snapshot, 1)
	d.opMu.Lock()
	d.mu.Lock()
	d.watchers[id.String()] = ch
	ch <- d.snapshot()
	d.mu.Unlock()
	d.opMu.Unlock()
	log.WithFields(log.Fields{"id": id.String()}).Info("New queue watcher")

	go func() {
		<-ctx.Done()
		d.mu.Lock()
		delete(d.watchers, id.String())
		close(ch)
		d.mu.Unlock()
		log.WithFields(log.Fields{"id": id.String()}).Info("Queue watcher disconnected")
	}()

	return ch, nil
}

func (d *Desk) WatcherCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.watchers)
}

func (d *Desk) snapshot() Snapshot {
	return Snapshot{
		Pending:     d.store.ListPending(),
		ServedCount: d.store.ServedCount(),
		At:          time.Now().UTC(),
	}
}

// broadcast must be called with opMu held.
func (d *Desk) broadcast() {
	snap := d.snapshot()

	d.mu.Lock()
	defer d.mu.Unlock()
	for id, ch := range d.watchers {
		select {
		case <-ch:
			log.WithField("id", id).Debug("Watcher behind, replacing snapshot")
		default:
		}
		ch <- snap
	}
}
