package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

func ptrID(v int64) *int64 { return &v }

func TestNewCallRecipientsOnlyForAgents(t *testing.T) {
	supervisors := []domain.User{{ID: 8, Role: domain.RoleSupervisor}, {ID: 9, Role: domain.RoleSupervisor}}

	assert.Equal(t, []int64{8, 9}, NewCallRecipients(&domain.User{ID: 1, Role: domain.RoleAgent}, supervisors))
	assert.Empty(t, NewCallRecipients(&domain.User{ID: 8, Role: domain.RoleSupervisor}, supervisors))
}

func TestResolvedRecipients(t *testing.T) {
	tests := []struct {
		name   string
		ticket domain.Ticket
		actor  int64
		want   []int64
	}{
		{"assignee resolves", domain.Ticket{CreatedBy: 1, AssignedTo: ptrID(2)}, 2, []int64{1}},
		{"third party resolves", domain.Ticket{CreatedBy: 1, AssignedTo: ptrID(2)}, 9, []int64{1, 2}},
		{"creator is assignee", domain.Ticket{CreatedBy: 1, AssignedTo: ptrID(1)}, 9, []int64{1}},
		{"sole stakeholder resolves", domain.Ticket{CreatedBy: 1}, 1, []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvedRecipients(&tt.ticket, tt.actor))
		})
	}
}

func TestAssignedRecipientsIncludesSelf(t *testing.T) {
	assert.Equal(t, []int64{3}, AssignedRecipients(&domain.Ticket{CreatedBy: 3, AssignedTo: ptrID(3)}))
	assert.Nil(t, AssignedRecipients(&domain.Ticket{CreatedBy: 3}))
}

func TestCommentRecipientsExcludeAuthor(t *testing.T) {
	ticket := &domain.Ticket{CreatedBy: 1, AssignedTo: ptrID(2)}

	assert.Equal(t, []int64{2}, CommentRecipients(ticket, 1))
	assert.Equal(t, []int64{1, 2}, CommentRecipients(ticket, 7))
}
