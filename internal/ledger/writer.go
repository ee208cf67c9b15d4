package ledger

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zappabad/papertrade/internal/account"
)

// WriterConfig holds configuration for the journal writer.
type WriterConfig struct {
	// Buffer is the size of the pending operations channel.
	Buffer int
	// Timeout bounds each store call.
	Timeout time.Duration
}

// DefaultWriterConfig returns a WriterConfig with reasonable defaults.
func DefaultWriterConfig() WriterConfig {
	return WriterConfig{
		Buffer:  256,
		Timeout: 2 * time.Second,
	}
}

type op struct {
	tx       account.Transaction
	truncate bool
}

// Writer forwards journal operations to a Store on its own goroutine so the
// session never waits on the database. Operations arriving while the buffer
// is full are dropped and counted.
type Writer struct {
	cfg    WriterConfig
	store  Store
	logger *slog.Logger

	ops     chan op
	dropped atomic.Int64
	failed  atomic.Int64

	// mu orders enqueue against Close so nothing lands after the drain.
	mu        sync.RWMutex
	stopped   bool
	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewWriter starts a Writer over store.
func NewWriter(cfg WriterConfig, store Store, logger *slog.Logger) *Writer {
	if cfg.Buffer <= 0 {
		cfg.Buffer = DefaultWriterConfig().Buffer
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultWriterConfig().Timeout
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	w := &Writer{
		cfg:    cfg,
		store:  store,
		logger: logger,
		ops:    make(chan op, cfg.Buffer),
		closed: make(chan struct{}),
	}

	w.wg.Add(1)
	go w.run()

	return w
}

func (w *Writer) run() {
	defer w.wg.Done()

	for {
		select {
		case o := <-w.ops:
			w.apply(o)
		case <-w.closed:
			// drain what was accepted before Close
			for {
				select {
				case o := <-w.ops:
					w.apply(o)
				default:
					return
				}
			}
		}
	}
}

func (w *Writer) apply(o op) {
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.Timeout)
	defer cancel()

	var err error
	if o.truncate {
		err = w.store.Truncate(ctx)
	} else {
		err = w.store.Append(ctx, o.tx)
	}
	if err != nil {
		w.failed.Add(1)
		w.logger.Error("journal write failed", "error", err, "truncate", o.truncate, "id", o.tx.ID)
	}
}

func (w *Writer) enqueue(o op) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		w.dropped.Add(1)
		return
	}
	select {
	case w.ops <- o:
	default:
		w.dropped.Add(1)
	}
}

// Append queues tx for insertion.
func (w *Writer) Append(tx account.Transaction) {
	w.enqueue(op{tx: tx})
}

// Truncate queues removal of every journaled transaction.
func (w *Writer) Truncate() {
	w.enqueue(op{truncate: true})
}

// Recent reads straight from the store.
func (w *Writer) Recent(ctx context.Context, limit int) ([]account.Transaction, error) {
	return w.store.Recent(ctx, limit)
}

// Dropped returns the number of operations lost to a full buffer.
func (w *Writer) Dropped() int64 {
	return w.dropped.Load()
}

// Failed returns the number of store calls that returned an error.
func (w *Writer) Failed() int64 {
	return w.failed.Load()
}

// Close stops accepting operations, flushes the buffer and waits.
func (w *Writer) Close() {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.stopped = true
		w.mu.Unlock()
		close(w.closed)
	})
	w.wg.Wait()
}
