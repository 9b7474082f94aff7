package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/persistence"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util"
)

// openTestPool migrates and truncates the database named by TEST_POSTGRES_DSN.
func openTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pool, zap.NewNop()))
	_, err = pool.Exec(ctx, `TRUNCATE notifications, ticket_comments, tickets, calls, users RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return pool
}

func createUser(t *testing.T, users repository.UserRepository, name string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Name: name, Email: name + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestPostgresSingleActiveCall(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	users := repository.NewUserRepository(pool)
	calls := repository.NewCallRepository(pool)
	tx := repository.NewTxManager(pool)

	agent := createUser(t, users, "alice", domain.RoleAgent)
	newCall := func(status domain.CallStatus) *domain.Call {
		c := &domain.Call{
			UserID: agent.ID, CallTime: time.Now().UTC(), ClientName: "Client", ClientPhone: "555",
			Subject: "Billing", CallType: domain.CallTypeInbound, Status: status,
		}
		require.NoError(t, calls.Create(ctx, c))
		return c
	}
	first := newCall(domain.CallStatusActive)
	second := newCall(domain.CallStatusIncoming)

	second.Status = domain.CallStatusActive
	err := calls.Update(ctx, second)
	assert.True(t, apperrors.IsUniqueViolation(err, ""), "partial unique index must reject a second active call")

	require.NoError(t, tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := calls.LockOwner(ctx, agent.ID); err != nil {
			return err
		}
		held, err := calls.HoldActive(ctx, agent.ID, second.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, []int64{first.ID}, held)
		return calls.Update(ctx, second)
	}))

	reloaded, err := calls.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CallStatusOnHold, reloaded.Status)

	active, total, err := calls.List(ctx, repository.CallFilter{
		OwnerID:  &agent.ID,
		Statuses: []domain.CallStatus{domain.CallStatusActive},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, second.ID, active[0].ID)
}

func TestPostgresTicketLifecycle(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	users := repository.NewUserRepository(pool)
	calls := repository.NewCallRepository(pool)
	tickets := repository.NewTicketRepository(pool)
	comments := repository.NewTicketCommentRepository(pool)

	agent := createUser(t, users, "bob", domain.RoleAgent)
	call := &domain.Call{
		UserID: agent.ID, CallTime: time.Now().UTC(), ClientName: "Client", ClientPhone: "555",
		Subject: "Refund", CallType: domain.CallTypeInbound, Status: domain.CallStatusEnded,
	}
	require.NoError(t, calls.Create(ctx, call))

	seq1, err := tickets.NextSequence(ctx)
	require.NoError(t, err)
	seq2, err := tickets.NextSequence(ctx)
	require.NoError(t, err)
	assert.Greater(t, seq2, seq1)

	ticket := &domain.Ticket{
		TicketNumber: "TIC-20240315-000001", CallID: &call.ID, CreatedBy: agent.ID,
		ClientName: "Client", ClientPhone: "555", Subject: "Refund request", Description: "Card charged twice",
		Priority: domain.TicketPriorityHigh, Status: domain.TicketStatusOpen,
	}
	require.NoError(t, tickets.Create(ctx, ticket))

	dup := *ticket
	err = tickets.Create(ctx, &dup)
	assert.True(t, apperrors.IsUniqueViolation(err, repository.TicketNumberConstraint))

	comment := &domain.TicketComment{TicketID: ticket.ID, UserID: agent.ID, Comment: "Called back"}
	require.NoError(t, comments.Create(ctx, comment))

	search := "refund"
	found, total, err := tickets.List(ctx, repository.TicketFilter{ParticipantID: &agent.ID, SearchTerm: &search})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, ticket.ID, found[0].ID)

	wildcard := "%"
	_, total, err = tickets.List(ctx, repository.TicketFilter{ParticipantID: &agent.ID, SearchTerm: &wildcard})
	require.NoError(t, err)
	assert.Zero(t, total, "percent is matched literally")

	require.NoError(t, calls.Delete(ctx, call.ID))
	reloaded, err := tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, reloaded.CallID)

	require.NoError(t, tickets.Delete(ctx, ticket.ID))
	_, err = comments.GetByID(ctx, comment.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
}

func TestPostgresNotifications(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	users := repository.NewUserRepository(pool)
	notifications := repository.NewNotificationRepository(pool)

	sam := createUser(t, users, "sam", domain.RoleSupervisor)
	for i, related := range []domain.RelatedEntity{domain.RelatedToTicket(7), {}} {
		n := &domain.Notification{
			UserID: sam.ID, Title: "New ticket", Message: "TIC-1", Type: domain.NotificationNewTicket,
			Related: related, Read: i == 1,
		}
		require.NoError(t, notifications.Create(ctx, n))
	}

	unread, err := notifications.CountUnread(ctx, sam.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	items, total, err := notifications.List(ctx, repository.NotificationFilter{UserID: sam.ID, UnreadOnly: true})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	assert.Equal(t, domain.RelatedToTicket(7), items[0].Related)

	purged, err := notifications.PurgeReadBefore(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	updated, err := notifications.MarkAllRead(ctx, sam.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	deleted, err := notifications.DeleteForUser(ctx, sam.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestPostgresAgentLoads(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()
	users := repository.NewUserRepository(pool)
	calls := repository.NewCallRepository(pool)
	stats := repository.NewStatsRepository(pool)

	agent := createUser(t, users, "dana", domain.RoleAgent)
	createUser(t, users, "sam", domain.RoleSupervisor)
	now := time.Now().UTC()
	rating := 4
	require.NoError(t, calls.Create(ctx, &domain.Call{
		UserID: agent.ID, CallTime: now, ClientName: "C", ClientPhone: "1", Subject: "S",
		CallType: domain.CallTypeOutbound, Status: domain.CallStatusEnded, SatisfactionRating: &rating,
	}))

	window := repository.Window{From: now.Add(-time.Hour), To: now.Add(time.Hour)}
	loads, err := stats.AgentLoads(ctx, window)
	require.NoError(t, err)
	require.Len(t, loads, 1)
	assert.Equal(t, 1, loads[0].CallsInWindow)

	agentStats, err := stats.AgentStats(ctx, agent.ID, window)
	require.NoError(t, err)
	assert.Equal(t, 1, agentStats.Calls)
	assert.InDelta(t, 4.0, agentStats.AvgSatisfaction, 0.001)

	supervisors, err := stats.CountUsersByRole(ctx, domain.RoleSupervisor)
	require.NoError(t, err)
	assert.Equal(t, 1, supervisors)
}
