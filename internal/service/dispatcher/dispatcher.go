// Package dispatcher delivers notifications to their sinks in the
// background. Delivery is best effort: callers never wait for sinks.
package dispatcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talx-hub/coinledger/internal/model"
	"github.com/talx-hub/coinledger/internal/model/notification"
	"github.com/talx-hub/coinledger/internal/serviceerrs"
	"github.com/talx-hub/coinledger/internal/utils/semaphore"
)

const (
	ResultDelivered = "delivered"
	ResultFailed    = "failed"
	ResultDropped   = "dropped"
)

type Sink interface {
	Name() string
	Deliver(ctx context.Context, n notification.Notification) error
}

type DeliverySemaphore interface {
	AcquireWithTimeout(ctx context.Context, timeout time.Duration) error
	Release()
}

type Observer interface {
	ObserveDelivery(sink, result string)
}

type Config struct {
	Workers       int
	QueueSize     int
	MaxDeliveries uint64
	// DeliveryTimeout bounds both the semaphore wait and a single sink call.
	DeliveryTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = model.DefaultWorkerCount
	}
	if c.QueueSize <= 0 {
		c.QueueSize = model.DefaultQueueSize
	}
	if c.MaxDeliveries == 0 {
		c.MaxDeliveries = model.DefaultMaxDeliveries
	}
	if c.DeliveryTimeout <= 0 {
		c.DeliveryTimeout = model.DefaultTimeout
	}
	return c
}

type Dispatcher struct {
	sema     DeliverySemaphore
	observer Observer
	log      *slog.Logger
	now      func() time.Time
	queue    chan notification.Notification
	sinks    []Sink
	wg       sync.WaitGroup
	cfg      Config
	mu       sync.RWMutex
	stopOnce sync.Once
	started  bool
	stopped  bool
}

type Option func(*Dispatcher)

func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		d.observer = o
	}
}

func WithSemaphore(sema DeliverySemaphore) Option {
	return func(d *Dispatcher) {
		d.sema = sema
	}
}

func New(cfg Config, log *slog.Logger, sinks []Sink, opts ...Option) *Dispatcher {
	cfg = cfg.withDefaults()
	d := &Dispatcher{
		cfg:   cfg,
		sinks: sinks,
		log:   log.With("service", "dispatcher"),
		now:   time.Now,
		queue: make(chan notification.Notification, cfg.QueueSize),
		sema:  semaphore.New(cfg.MaxDeliveries),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Notify enqueues n without blocking. Empty ID and CreatedAt are filled in
// here so that every sink sees the same values.
func (d *Dispatcher) Notify(ctx context.Context, n notification.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = d.now()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return serviceerrs.ErrDispatcherStopped
	}

	select {
	case d.queue <- n:
		return nil
	default:
		d.log.LogAttrs(ctx, slog.LevelWarn, "notification queue is full, dropping",
			slog.String("id", n.ID),
			slog.String("customer_id", n.CustomerID),
			slog.Int("queue_size", d.cfg.QueueSize))
		d.observe("queue", ResultDropped)
		return fmt.Errorf("notification %s: %w", n.ID, serviceerrs.ErrQueueFull)
	}
}

// Start runs the workers. When ctx is done the dispatcher stops as if Stop
// was called.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.stopped {
		return
	}
	d.started = true

	deliveryCtx := context.WithoutCancel(ctx)
	for range d.cfg.Workers {
		d.wg.Add(1)
		go d.worker(deliveryCtx)
	}
	go func() {
		<-ctx.Done()
		d.Stop()
	}()

	d.log.LogAttrs(ctx, slog.LevelInfo, "dispatcher started",
		slog.Int("workers", d.cfg.Workers),
		slog.Int("sinks", len(d.sinks)))
}

// Stop rejects new notifications, drains the queue and waits for the workers.
func (d *Dispatcher) Stop() {
	d.stopOnce.Do(func() {
		d.mu.Lock()
		d.stopped = true
		close(d.queue)
		started := d.started
		d.mu.Unlock()

		if !started {
			for n := range d.queue {
				d.log.LogAttrs(context.Background(), slog.LevelWarn,
					"dispatcher was never started, notification dropped",
					slog.String("id", n.ID))
			}
			return
		}
		d.wg.Wait()
		d.log.LogAttrs(context.Background(), slog.LevelInfo, "dispatcher stopped")
	})
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()

	for n := range d.queue {
		for _, sink := range d.sinks {
			d.deliver(ctx, sink, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, sink Sink, n notification.Notification) {
	if err := d.sema.AcquireWithTimeout(ctx, d.cfg.DeliveryTimeout); err != nil {
		d.fail(ctx, sink, n, err)
		return
	}
	defer d.sema.Release()

	tCtx, cancel := context.WithTimeout(ctx, d.cfg.DeliveryTimeout)
	defer cancel()
	if err := sink.Deliver(tCtx, n); err != nil {
		d.fail(ctx, sink, n, err)
		return
	}

	d.observe(sink.Name(), ResultDelivered)
	d.log.LogAttrs(ctx, slog.LevelDebug, "notification delivered",
		slog.String("sink", sink.Name()),
		slog.String("id", n.ID))
}

func (d *Dispatcher) fail(ctx context.Context, sink Sink, n notification.Notification, err error) {
	d.observe(sink.Name(), ResultFailed)
	d.log.LogAttrs(ctx, slog.LevelError, "failed to deliver notification",
		slog.String("sink", sink.Name()),
		slog.String("id", n.ID),
		slog.String("customer_id", n.CustomerID),
		slog.Any(model.KeyLoggerError, fmt.Errorf("%w: %w", serviceerrs.ErrDeliveryFailed, err)))
}

func (d *Dispatcher) observe(sink, result string) {
	if d.observer != nil {
		d.observer.ObserveDelivery(sink, result)
	}
}
