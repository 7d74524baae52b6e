package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/citizenconnect/complaint-portal/internal/api/metrics"
	"github.com/citizenconnect/complaint-portal/internal/core/domain"
	"github.com/citizenconnect/complaint-portal/internal/core/ports"
)

const (
	defaultWorkers     = 4
	defaultSendTimeout = 15 * time.Second
	channelBuffer      = 256
)

// MailDispatcher routes outgoing emails to a fixed set of workers using
// consistent hashing on the recipient, preserving per-recipient ordering.
// Enqueue never blocks the caller.
type MailDispatcher struct {
	workers     []chan domain.Email
	sender      ports.MailSender
	sendTimeout time.Duration
	log         zerolog.Logger
	wg          sync.WaitGroup
}

// NewMailDispatcher creates a MailDispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used; if sendTimeout <= 0,
// defaultSendTimeout is used.
func NewMailDispatcher(numWorkers int, sender ports.MailSender, sendTimeout time.Duration, log zerolog.Logger) *MailDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	d := &MailDispatcher{
		workers:     make([]chan domain.Email, numWorkers),
		sender:      sender,
		sendTimeout: sendTimeout,
		log:         log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Email, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled;
// Wait blocks until they have returned.
func (d *MailDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker started by Start has stopped.
func (d *MailDispatcher) Wait() {
	d.wg.Wait()
}

// Enqueue hands msg to the worker responsible for its recipient. It returns
// false, and drops the message, when that worker's buffer is full.
func (d *MailDispatcher) Enqueue(msg domain.Email) bool {
	idx := d.shardIndex(msg.To)
	select {
	case d.workers[idx] <- msg:
		metrics.MailTotal.WithLabelValues("queued").Inc()
		metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return true
	default:
		metrics.MailTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().Str("to", msg.To).Int("worker_id", idx).Msg("mail queue full, message dropped")
		return false
	}
}

// shardIndex maps a recipient deterministically to a worker index.
func (d *MailDispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *MailDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Email) {
	defer d.wg.Done()
	depth := metrics.MailQueueDepth.WithLabelValues(strconv.Itoa(id))
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			depth.Set(float64(len(ch)))
			d.deliver(ctx, id, msg)
		}
	}
}

func (d *MailDispatcher) deliver(ctx context.Context, id int, msg domain.Email) {
	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	start := time.Now()
	if err := d.sender.Send(sendCtx, msg); err != nil {
		metrics.MailTotal.WithLabelValues("failed").Inc()
		metrics.MailSendDuration.WithLabelValues("failed").Observe(time.Since(start).Seconds())
		d.log.Error().Err(err).
			Str("to", msg.To).
			Str("subject", msg.Subject).
			Int("worker_id", id).
			Msg("email delivery failed")
		return
	}
	metrics.MailTotal.WithLabelValues("sent").Inc()
	metrics.MailSendDuration.WithLabelValues("sent").Observe(time.Since(start).Seconds())
	d.log.Debug().Str("to", msg.To).Int("worker_id", id).Msg("email sent")
}
