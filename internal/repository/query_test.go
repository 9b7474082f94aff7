package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

func TestApplyTicketFilter(t *testing.T) {
	participant := int64(4)
	search := "  Refund "
	query, args, err := applyTicketFilter(psql.Select("id").From("tickets"), TicketFilter{
		ParticipantID: &participant,
		Statuses:      []domain.TicketStatus{domain.TicketStatusOpen, domain.TicketStatusPending},
		Priorities:    []domain.TicketPriority{domain.TicketPriorityUrgent},
		SearchTerm:    &search,
	}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id FROM tickets WHERE (created_by = $1 OR assigned_to = $2) AND status IN ($3,$4) "+
			"AND priority IN ($5) AND (LOWER(ticket_number) LIKE $6 ESCAPE '\\' OR LOWER(subject) LIKE $7 ESCAPE '\\' "+
			"OR LOWER(client_name) LIKE $8 ESCAPE '\\')",
		query)
	assert.Equal(t, []any{
		int64(4), int64(4),
		domain.TicketStatusOpen, domain.TicketStatusPending,
		domain.TicketPriorityUrgent,
		"%refund%", "%refund%", "%refund%",
	}, args)
}

func TestApplyTicketFilterEscapesWildcards(t *testing.T) {
	search := `50%_off\`
	_, args, err := applyTicketFilter(psql.Select("id").From("tickets"), TicketFilter{SearchTerm: &search}).ToSql()
	require.NoError(t, err)

	want := `%50\%\_off\\%`
	assert.Equal(t, []any{want, want, want}, args)
}

func TestApplyTicketFilterIgnoresBlankSearch(t *testing.T) {
	blank := "   "
	query, args, err := applyTicketFilter(psql.Select("id").From("tickets"), TicketFilter{SearchTerm: &blank}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM tickets", query)
	assert.Empty(t, args)
}

func TestApplyCallFilter(t *testing.T) {
	owner := int64(2)
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	query, args, err := applyCallFilter(psql.Select("id").From("calls"), CallFilter{
		OwnerID:  &owner,
		Statuses: []domain.CallStatus{domain.CallStatusActive},
		From:     &from,
		To:       &to,
	}).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id FROM calls WHERE user_id = $1 AND status IN ($2) AND call_time >= $3 AND call_time < $4",
		query)
	assert.Equal(t, []any{int64(2), domain.CallStatusActive, from, to}, args)
}

func TestInWindowIsHalfOpen(t *testing.T) {
	from := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	window := Window{From: from, To: from.Add(24 * time.Hour)}

	query, args, err := psql.Select("COUNT(*)").From("tickets").Where(inWindow("resolved_at", window)).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM tickets WHERE (resolved_at >= $1 AND resolved_at < $2)", query)
	assert.Equal(t, []any{window.From, window.To}, args)
}

func TestNormalizePage(t *testing.T) {
	limit, offset := normalizePage(0, -5)
	assert.Equal(t, uint64(DefaultPageSize), limit)
	assert.Zero(t, offset)

	limit, offset = normalizePage(500, 30)
	assert.Equal(t, uint64(MaxPageSize), limit)
	assert.Equal(t, uint64(30), offset)
}
