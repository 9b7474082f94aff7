package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/mailer"
	"github.com/spec-kit/callcenter-service/internal/observability"
)

const sendTimeout = 30 * time.Second

// MailQueue delivers emails on a fixed pool of workers fed by a bounded channel. Messages
// offered while the buffer is full are dropped and logged.
type MailQueue struct {
	sender  mailer.Sender
	metrics *observability.Metrics
	logger  *zap.Logger
	jobs    chan mailer.Message
	workers int

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewMailQueue builds a queue; call Start to launch the workers.
func NewMailQueue(sender mailer.Sender, size, workers int, metrics *observability.Metrics, logger *zap.Logger) *MailQueue {
	if size <= 0 {
		size = 100
	}
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MailQueue{
		sender:  sender,
		metrics: metrics,
		logger:  logger,
		jobs:    make(chan mailer.Message, size),
		workers: workers,
	}
}

// Start launches the workers. They drain the queue and exit after Stop.
func (q *MailQueue) Start() {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.run(i)
	}
}

// Enqueue offers msg without blocking.
func (q *MailQueue) Enqueue(msg mailer.Message) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("mail queue stopped, message dropped", zap.String("subject", msg.Subject))
		return false
	}
	select {
	case q.jobs <- msg:
		return true
	default:
		q.logger.Warn("mail queue full, message dropped",
			zap.Strings("to", msg.To),
			zap.String("subject", msg.Subject),
		)
		return false
	}
}

// Stop closes the queue and waits for in-flight messages or ctx expiry.
func (q *MailQueue) Stop(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MailQueue) run(worker int) {
	defer q.wg.Done()
	for msg := range q.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err := q.sender.Send(ctx, msg)
		cancel()

		q.metrics.RecordEmail(err)
		if err != nil {
			q.logger.Error("failed to send email",
				zap.Int("worker", worker),
				zap.Strings("to", msg.To),
				zap.String("subject", msg.Subject),
				zap.Error(err),
			)
		}
	}
}
