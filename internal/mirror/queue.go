package mirror

import (
	"context"
	"encoding/json"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/billerpro/billerpro/internal/ledger"
	"github.com/billerpro/billerpro/internal/metrics"
)

type intentKind int

const (
	intentVendors intentKind = iota
	intentSettings
	intentBillUpsert
	intentBillDelete
)

type intent struct {
	kind    intentKind
	object  string
	payload []byte
}

// Status is the passive sync indicator the UI polls. A failure never aborts
// or reverts the local mutation that produced the intent.
type Status struct {
	Syncing    bool      `json:"syncing"`
	Pending    int       `json:"pending"`
	LastError  string    `json:"lastError,omitempty"`
	LastSyncAt time.Time `json:"lastSyncAt,omitempty"`
}

// settingsDoc is the settings snapshot shape written to the drive.
type settingsDoc struct {
	User          ledger.UserProfile `json:"user"`
	MonthlyTarget decimal.Decimal    `json:"monthlyTarget"`
	SelectedMonth string             `json:"selectedMonth"`
}

// Queue is the single-consumer mirror writer. Mutation handlers enqueue
// intents and return immediately; one goroutine drains the channel and
// updates the status value. Implements ledger.MirrorSink.
type Queue struct {
	store   ObjectStore
	root    string
	logger  *slog.Logger
	timeout time.Duration

	ch   chan intent
	wg   sync.WaitGroup
	once sync.Once

	mu      sync.Mutex
	closed  bool
	pending int
	status  Status
}

type Option func(*Queue)

func WithQueueSize(n int) Option {
	return func(q *Queue) {
		if n > 0 {
			q.ch = make(chan intent, n)
		}
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewQueue(store ObjectStore, root string, logger *slog.Logger, opts ...Option) *Queue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		store:   store,
		root:    root,
		logger:  logger,
		timeout: 30 * time.Second,
		ch:      make(chan intent, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *Queue) start() {
	q.once.Do(func() {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			q.logger.Info("mirror consumer started", "root", q.root)
			for it := range q.ch {
				q.apply(it)
			}
			q.logger.Info("mirror consumer stopped")
		}()
	})
}

func (q *Queue) apply(it intent) {
	q.mu.Lock()
	q.status.Syncing = true
	q.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	var err error
	if it.kind == intentBillDelete {
		err = q.store.Remove(ctx, it.object)
	} else {
		err = q.store.Put(ctx, it.object, it.payload)
	}
	cancel()

	q.mu.Lock()
	q.pending--
	q.status.Pending = q.pending
	q.status.Syncing = q.pending > 0
	if err != nil {
		q.status.LastError = err.Error()
	} else {
		q.status.LastError = ""
		q.status.LastSyncAt = time.Now()
	}
	q.mu.Unlock()

	if err != nil {
		metrics.MirrorWritesTotal.WithLabelValues("error").Inc()
		q.logger.Error("mirror.write.failed", "object", it.object, "error", err)
	} else {
		metrics.MirrorWritesTotal.WithLabelValues("ok").Inc()
		q.logger.Debug("mirror.write.ok", "object", it.object)
	}
}

// Status returns the current sync indicator.
func (q *Queue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.status
}

// Shutdown drains the queue, bounded by ctx.
func (q *Queue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("mirror shutdown interrupted by context")
	case <-done:
		q.logger.Info("mirror queue drained, shutdown complete")
	}
}

// enqueue never blocks the caller's mutation: when the channel is full the
// intent is dropped and recorded as a sync error.
func (q *Queue) enqueue(it intent) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	select {
	case q.ch <- it:
		q.pending++
		q.status.Pending = q.pending
		q.status.Syncing = true
		q.mu.Unlock()
	default:
		q.status.LastError = "mirror queue full, change not mirrored"
		q.mu.Unlock()
		q.logger.Warn("mirror.queue.full", "object", it.object)
	}
}

// ---- ledger.MirrorSink ----

func (q *Queue) VendorsChanged(vendors []ledger.Vendor) {
	b, err := json.Marshal(vendors)
	if err != nil {
		q.logger.Error("mirror.encode.failed", "what", "vendors", "error", err)
		return
	}
	q.enqueue(intent{kind: intentVendors, object: path.Join(q.root, "vendors.json"), payload: b})
}

func (q *Queue) SettingsChanged(snap ledger.Snapshot) {
	b, err := json.Marshal(settingsDoc{
		User:          snap.User,
		MonthlyTarget: snap.MonthlyTarget,
		SelectedMonth: snap.SelectedMonth,
	})
	if err != nil {
		q.logger.Error("mirror.encode.failed", "what", "settings", "error", err)
		return
	}
	q.enqueue(intent{kind: intentSettings, object: path.Join(q.root, "settings.json"), payload: b})
}

func (q *Queue) BillUpserted(bill ledger.Bill) {
	b, err := json.Marshal(bill)
	if err != nil {
		q.logger.Error("mirror.encode.failed", "what", "bill", "error", err)
		return
	}
	q.enqueue(intent{kind: intentBillUpsert, object: q.billObject(bill.ID), payload: b})
}

func (q *Queue) BillDeleted(id string) {
	q.enqueue(intent{kind: intentBillDelete, object: q.billObject(id)})
}

func (q *Queue) billObject(id string) string {
	return path.Join(q.root, "bills", id+".json")
}
