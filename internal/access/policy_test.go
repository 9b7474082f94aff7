package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/callcenter-service/internal/domain"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util"
)

func ptr(v int64) *int64 { return &v }

var (
	agentA     = &domain.User{ID: 1, Role: domain.RoleAgent}
	agentB     = &domain.User{ID: 2, Role: domain.RoleAgent}
	supervisor = &domain.User{ID: 9, Role: domain.RoleSupervisor}
)

func TestCanAccessCall(t *testing.T) {
	call := &domain.Call{ID: 10, UserID: agentA.ID}

	assert.True(t, CanAccessCall(agentA, call))
	assert.False(t, CanAccessCall(agentB, call))
	assert.True(t, CanAccessCall(supervisor, call))
	assert.False(t, CanAccessCall(nil, call))
}

func TestCanAccessTicket(t *testing.T) {
	tests := []struct {
		name   string
		user   *domain.User
		ticket *domain.Ticket
		want   bool
	}{
		{"creator", agentA, &domain.Ticket{CreatedBy: agentA.ID}, true},
		{"assignee", agentB, &domain.Ticket{CreatedBy: agentA.ID, AssignedTo: ptr(agentB.ID)}, true},
		{"stranger", agentB, &domain.Ticket{CreatedBy: agentA.ID}, false},
		{"supervisor", supervisor, &domain.Ticket{CreatedBy: agentA.ID}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccessTicket(tt.user, tt.ticket))
		})
	}
}

func TestCanDeleteTicketExcludesAssignee(t *testing.T) {
	ticket := &domain.Ticket{CreatedBy: agentA.ID, AssignedTo: ptr(agentB.ID)}

	assert.True(t, CanDeleteTicket(agentA, ticket))
	assert.False(t, CanDeleteTicket(agentB, ticket))
	assert.True(t, CanDeleteTicket(supervisor, ticket))
}

func TestCommentRules(t *testing.T) {
	comment := &domain.TicketComment{UserID: agentA.ID}

	assert.True(t, CanEditComment(agentA, comment))
	assert.False(t, CanEditComment(supervisor, comment))
	assert.True(t, CanDeleteComment(supervisor, comment))
	assert.False(t, CanDeleteComment(agentB, comment))
}

func TestNotificationsArePrivateForSupervisors(t *testing.T) {
	n := &domain.Notification{UserID: agentA.ID}

	assert.True(t, CanAccessNotification(agentA, n))
	assert.False(t, CanAccessNotification(supervisor, n))
}

func TestScopes(t *testing.T) {
	assert.Nil(t, CallOwnerScope(supervisor))
	assert.Equal(t, ptr(agentA.ID), CallOwnerScope(agentA))
	assert.Nil(t, TicketParticipantScope(supervisor))
	assert.Equal(t, ptr(agentB.ID), TicketParticipantScope(agentB))
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(true, "nope"))

	err := Check(false, "nope")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	assert.False(t, CanReopenTicket(agentA))
	assert.True(t, CanReopenTicket(supervisor))
}
