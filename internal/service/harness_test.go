package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/events"
	"github.com/spec-kit/callcenter-service/internal/mailer"
	"github.com/spec-kit/callcenter-service/internal/testutil"
	"github.com/spec-kit/callcenter-service/internal/ticketnumber"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util"
)

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

var testNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

type harness struct {
	store         *testutil.Store
	mails         *testutil.MailRecorder
	broadcasts    *testutil.BroadcastRecorder
	calls         *CallService
	tickets       *TicketService
	notifications *NotificationService

	supervisor *domain.User
	agentA     *domain.User
	agentB     *domain.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := testutil.NewStore()
	dispatcher := events.NewInMemoryDispatcher(nil)
	h := &harness{
		store:      store,
		mails:      &testutil.MailRecorder{},
		broadcasts: &testutil.BroadcastRecorder{},
		supervisor: store.AddUser("Sam", domain.RoleSupervisor),
		agentA:     store.AddUser("Alice", domain.RoleAgent),
		agentB:     store.AddUser("Bob", domain.RoleAgent),
	}
	h.calls = NewCallService(CallDependencies{
		CallRepo:   store.Calls(),
		TxManager:  testutil.TxManager{},
		Dispatcher: dispatcher,
	})
	h.tickets = NewTicketService(TicketDependencies{
		TicketRepo:  store.Tickets(),
		CommentRepo: store.Comments(),
		CallRepo:    store.Calls(),
		UserRepo:    store.Users(),
		Numbers:     ticketnumber.NewGenerator(ticketnumber.DefaultPrefix, store.Tickets(), fixedClock{testNow}),
		Dispatcher:  dispatcher,
		Clock:       func() time.Time { return testNow },
	})
	h.notifications = NewNotificationService(NotificationDependencies{
		NotificationRepo: store.NotificationRepo(),
		UserRepo:         store.Users(),
		Dispatcher:       dispatcher,
		Broadcaster:      h.broadcasts,
		Mails:            h.mails,
		Renderer:         mailer.NewRenderer("Call Center", "https://cc.example.com"),
	})
	h.notifications.RegisterHandlers()
	return h
}

// notificationsFor returns the stored notifications addressed to userID.
func (h *harness) notificationsFor(userID int64) []domain.Notification {
	var out []domain.Notification
	for _, n := range h.store.AllNotifications() {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (h *harness) newCall(t *testing.T, actor *domain.User, status domain.CallStatus) *domain.Call {
	t.Helper()
	call, err := h.calls.CreateCall(context.Background(), actor, CallCreateInput{
		CallTime:    testNow,
		ClientName:  "Acme Corp",
		ClientPhone: "+1 555 0100",
		Subject:     "Billing question",
		CallType:    domain.CallTypeInbound,
		Status:      status,
	})
	require.NoError(t, err)
	return call
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, code), "expected %s, got %v", code, err)
}

func strPtr(s string) *string { return &s }
