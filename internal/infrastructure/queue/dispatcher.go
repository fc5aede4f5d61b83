package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/superapp/auth-service/internal/api/metrics"
	"github.com/superapp/auth-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	sendTimeout    = 30 * time.Second
	drainTimeout   = 15 * time.Second
)

var (
	ErrQueueFull   = errors.New("mail queue full")
	ErrQueueClosed = errors.New("mail queue closed")
)

// Dispatcher delivers notifications off the request path. Messages are
// sharded by recipient so mail to one address is sent in enqueue order.
type Dispatcher struct {
	workers []chan ports.Notification
	sender  ports.Notifier
	log     zerolog.Logger

	// base outlives the Start context so queued mail survives shutdown;
	// only Close cancels it, once the drain deadline passes.
	base   context.Context
	cancel context.CancelFunc

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender ports.Notifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.Notification, numWorkers),
		sender:  sender,
		log:     log.With().Str("component", "mail_dispatcher").Logger(),
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.Notification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Cancelling ctx does not stop them:
// workers exit once Close has drained their channels.
func (d *Dispatcher) Start(ctx context.Context) {
	d.base, d.cancel = context.WithCancel(context.WithoutCancel(ctx))
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(i, ch)
	}
}

// Notify enqueues n without blocking. A full shard drops the message.
func (d *Dispatcher) Notify(_ context.Context, n ports.Notification) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}

	idx := d.shardIndex(n.To)
	select {
	case d.workers[idx] <- n:
		metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	default:
		metrics.NotificationsTotal.WithLabelValues(string(n.Kind), "dropped").Inc()
		d.log.Warn().Str("kind", string(n.Kind)).Str("to", n.To).Int("worker_id", idx).Msg("mail queue full, notification dropped")
		return ErrQueueFull
	}
}

// Close stops accepting notifications and waits for queued ones to be sent.
// Sends still running after drainTimeout have their context cancelled.
func (d *Dispatcher) Close() {
	d.closeWithin(drainTimeout)
}

func (d *Dispatcher) closeWithin(timeout time.Duration) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()

	if d.cancel == nil {
		return
	}
	defer d.cancel()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		d.log.Warn().Dur("timeout", timeout).Msg("mail queue drain timed out, aborting remaining sends")
		d.cancel()
		<-done
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *Dispatcher) shardIndex(to string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(to))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(id int, ch <-chan ports.Notification) {
	defer d.wg.Done()
	workerID := strconv.Itoa(id)
	for n := range ch {
		metrics.MailQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
		d.deliver(id, n)
	}
}

func (d *Dispatcher) deliver(id int, n ports.Notification) {
	ctx, cancel := context.WithTimeout(d.base, sendTimeout)
	defer cancel()

	start := time.Now()
	err := d.sender.Notify(ctx, n)
	metrics.NotificationDuration.WithLabelValues(string(n.Kind)).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(string(n.Kind), "failed").Inc()
		d.log.Error().Err(err).
			Str("kind", string(n.Kind)).
			Str("to", n.To).
			Int("worker_id", id).
			Msg("notification delivery failed")
		return
	}
	metrics.NotificationsTotal.WithLabelValues(string(n.Kind), "sent").Inc()
}
