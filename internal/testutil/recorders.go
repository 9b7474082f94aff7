package testutil

import (
	"context"
	"sync"

	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/mailer"
	"github.com/spec-kit/callcenter-service/internal/repository"
)

// MailRecorder captures queued emails. Full makes every Enqueue report a drop.
type MailRecorder struct {
	mu       sync.Mutex
	Full     bool
	messages []mailer.Message
}

func (m *MailRecorder) Enqueue(msg mailer.Message) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Full {
		return false
	}
	m.messages = append(m.messages, msg)
	return true
}

// Messages returns a copy of the captured emails.
func (m *MailRecorder) Messages() []mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Message(nil), m.messages...)
}

// BroadcastRecorder captures realtime broadcasts and can be told to fail.
type BroadcastRecorder struct {
	mu   sync.Mutex
	Err  error
	sent []domain.Notification
}

func (b *BroadcastRecorder) Broadcast(_ context.Context, n domain.Notification) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.Err != nil {
		return b.Err
	}
	b.sent = append(b.sent, n)
	return nil
}

// Sent returns a copy of the broadcast notifications.
func (b *BroadcastRecorder) Sent() []domain.Notification {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Notification(nil), b.sent...)
}

// StaticStats answers dashboard queries with canned values and records the windows asked.
type StaticStats struct {
	Calls       int
	OpenTickets int
	Agents      int
	Loads       []repository.AgentLoad
	Agent       repository.AgentStats
	Err         error

	Windows []repository.Window
}

func (s *StaticStats) CountCalls(_ context.Context, w repository.Window) (int, error) {
	s.Windows = append(s.Windows, w)
	return s.Calls, s.Err
}

func (s *StaticStats) CountOpenTickets(context.Context) (int, error) {
	return s.OpenTickets, s.Err
}

func (s *StaticStats) CountUsersByRole(context.Context, domain.Role) (int, error) {
	return s.Agents, s.Err
}

func (s *StaticStats) AgentLoads(_ context.Context, w repository.Window) ([]repository.AgentLoad, error) {
	s.Windows = append(s.Windows, w)
	return s.Loads, s.Err
}

func (s *StaticStats) AgentStats(_ context.Context, _ int64, w repository.Window) (repository.AgentStats, error) {
	s.Windows = append(s.Windows, w)
	return s.Agent, s.Err
}

var _ repository.StatsRepository = (*StaticStats)(nil)
