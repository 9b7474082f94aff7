package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/mailer"
)

type recordingSender struct {
	mu    sync.Mutex
	sent  []mailer.Message
	block chan struct{}
	err   error
}

func (s *recordingSender) Send(_ context.Context, msg mailer.Message) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.err
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestMailQueueDeliversAndDrains(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	q := NewMailQueue(sender, 10, 2, nil, zap.NewNop())
	q.Start()

	for i := 0; i < 5; i++ {
		require.True(t, q.Enqueue(mailer.Message{Subject: "hello"}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, q.Stop(ctx))
	assert.Equal(t, 5, sender.count())
	assert.False(t, q.Enqueue(mailer.Message{Subject: "late"}))
}

func TestMailQueueDropsWhenFull(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	q := NewMailQueue(sender, 1, 1, nil, zap.NewNop())

	assert.True(t, q.Enqueue(mailer.Message{Subject: "a"}))
	assert.False(t, q.Enqueue(mailer.Message{Subject: "b"}))

	q.Start()
	close(sender.block)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, q.Stop(ctx))
	assert.Equal(t, 1, sender.count())
}

type stubPurger struct {
	retention time.Duration
	calls     int
}

func (p *stubPurger) PurgeRead(_ context.Context, retention time.Duration) (int64, error) {
	p.calls++
	p.retention = retention
	return 3, nil
}

func TestRetentionJob(t *testing.T) {
	_, err := NewRetentionJob("not a schedule", time.Hour, &stubPurger{}, nil)
	assert.Error(t, err)

	purger := &stubPurger{}
	job, err := NewRetentionJob("@daily", 48*time.Hour, purger, nil)
	require.NoError(t, err)

	job.RunOnce()
	assert.Equal(t, 1, purger.calls)
	assert.Equal(t, 48*time.Hour, purger.retention)
}

type countingSubscriber struct{ calls int }

func (s *countingSubscriber) RegisterHandlers() { s.calls++ }

func TestNotificationWorkerLifecycle(t *testing.T) {
	subscriber := &countingSubscriber{}
	sender := &recordingSender{}
	mails := NewMailQueue(sender, 4, 1, nil, nil)
	job, err := NewRetentionJob("@daily", time.Hour, &stubPurger{}, nil)
	require.NoError(t, err)

	w := NewNotificationWorker(subscriber, mails, job, nil)
	w.Start(context.Background())
	w.Start(context.Background())
	assert.Equal(t, 1, subscriber.calls)

	require.True(t, mails.Enqueue(mailer.Message{Subject: "assigned"}))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))
	assert.Equal(t, 1, sender.count())
}

func TestNotificationWorkerWithoutRetention(t *testing.T) {
	w := NewNotificationWorker(&countingSubscriber{}, NewMailQueue(&recordingSender{}, 1, 1, nil, nil), nil, nil)
	assert.NoError(t, w.Stop(context.Background()))

	w.Start(context.Background())
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, w.Stop(ctx))
}
