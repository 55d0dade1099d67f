package history

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/morfien101/fila/pkg/fila"
	log "github.com/sirupsen/logrus"
)

type PublisherOptions struct {
	BufferSize   int
	Workers      int
	Retries      int
	RetryBackoff time.Duration
	WriteTimeout time.Duration
}

func DefaultPublisherOptions() PublisherOptions {
	return PublisherOptions{
		BufferSize:   1024,
		Workers:      2,
		Retries:      3,
		RetryBackoff: 500 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	}
}

// Publisher hands served records to a Sink from background workers so the
// queue never waits on the backend. Records are dropped with a warning when
// the buffer is full.
type Publisher struct {
	sink Sink
	opts PublisherOptions

	mu     sync.RWMutex
	closed bool
	work   chan fila.ServedRecord
	wg     sync.WaitGroup

	delivered atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

func NewPublisher(sink Sink, opts PublisherOptions) *Publisher {
	def := DefaultPublisherOptions()
	if opts.BufferSize <= 0 {
		opts.BufferSize = def.BufferSize
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.Retries <= 0 {
		opts.Retries = def.Retries
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = def.WriteTimeout
	}
	return &Publisher{
		sink: sink,
		opts: opts,
		work: make(chan fila.ServedRecord, opts.BufferSize),
	}
}

func (p *Publisher) Start() {
	for i := 0; i < p.opts.Workers; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
	log.WithFields(log.Fields{"workers": p.opts.Workers, "buffer": p.opts.BufferSize}).Info("History publisher started")
}

// Publish never blocks. It returns false when the record was not accepted.
func (p *Publisher) Publish(rec fila.ServedRecord) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	select {
	case p.work <- rec:
		return true
	default:
		p.dropped.Add(1)
		log.WithFields(log.Fields{"id": rec.ID}).Warn("History buffer full, dropping served record")
		return false
	}
}

// Stop refuses new records, waits for the buffer to drain and returns.
func (p *Publisher) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.work)
	p.mu.Unlock()

	p.wg.Wait()
	log.WithFields(log.Fields{
		"delivered": p.delivered.Load(),
		"failed":    p.failed.Load(),
		"dropped":   p.dropped.Load(),
	}).Info("History publisher stopped")
}

// Stats returns delivered, failed and dropped counts.
func (p *Publisher) Stats() (delivered, failed, dropped int64) {
	return p.delivered.Load(), p.failed.Load(), p.dropped.Load()
}

func (p *Publisher) run(workerID int) {
	defer p.wg.Done()
	for rec := range p.work {
		if p.deliver(workerID, rec) {
			p.delivered.Add(1)
		} else {
			p.failed.Add(1)
		}
	}
}

func (p *Publisher) deliver(workerID int, rec fila.ServedRecord) bool {
	for attempt := 0; attempt < p.opts.Retries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), p.opts.WriteTimeout)
		err := p.sink.Write(ctx, rec)
		cancel()
		if err == nil {
			return true
		}
		log.WithFields(log.Fields{
			"worker":  workerID,
			"attempt": attempt + 1,
			"id":      rec.ID,
			"error":   err,
		}).Warn("History write failed")
		if attempt+1 < p.opts.Retries {
			time.Sleep(p.opts.RetryBackoff * time.Duration(attempt+1))
		}
	}
	log.WithFields(log.Fields{"worker": workerID, "id": rec.ID}).Error("Giving up on served record")
	return false
}
