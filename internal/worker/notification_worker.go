package worker

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Subscriber attaches notification handlers to the event dispatcher.
type Subscriber interface {
	RegisterHandlers()
}

// NotificationWorker owns the background side of notifications: event subscriptions,
// email delivery and the periodic purge of read notifications.
type NotificationWorker struct {
	subscriber Subscriber
	mails      *MailQueue
	retention  *RetentionJob
	logger     *zap.Logger

	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

// NewNotificationWorker bundles the jobs. A nil retention job disables the purge.
func NewNotificationWorker(subscriber Subscriber, mails *MailQueue, retention *RetentionJob, logger *zap.Logger) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationWorker{
		subscriber: subscriber,
		mails:      mails,
		retention:  retention,
		logger:     logger,
		done:       make(chan struct{}),
	}
}

// Start subscribes the handlers and launches the mail workers and purge schedule.
// Calling it more than once has no effect.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.once.Do(func() {
		if w.subscriber != nil {
			w.subscriber.RegisterHandlers()
		}
		if w.mails != nil {
			w.mails.Start()
		}

		ctx, w.cancel = context.WithCancel(ctx)
		if w.retention == nil {
			close(w.done)
			return
		}
		go func() {
			defer close(w.done)
			w.retention.Start(ctx)
		}()
		w.logger.Info("notification worker started")
	})
}

// Stop halts the purge schedule and drains queued mail until ctx expires.
func (w *NotificationWorker) Stop(ctx context.Context) error {
	if w.cancel == nil {
		return nil
	}
	w.cancel()
	select {
	case <-w.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	if w.mails != nil {
		return w.mails.Stop(ctx)
	}
	return nil
}
