package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// Window is a half-open [From, To) time range.
type Window struct {
	From time.Time
	To   time.Time
}

// AgentLoad summarizes one agent's activity for the supervisor overview.
type AgentLoad struct {
	UserID        int64
	Name          string
	CallsInWindow int
	OpenAssigned  int
}

// AgentStats summarizes a single agent's own activity.
type AgentStats struct {
	Calls              int
	AvgDurationSeconds float64
	TicketsResolved    int
	AvgSatisfaction    float64
}

// StatsRepository runs the aggregate queries behind the dashboard.
type StatsRepository interface {
	CountCalls(ctx context.Context, window Window) (int, error)
	CountOpenTickets(ctx context.Context) (int, error)
	CountUsersByRole(ctx context.Context, role domain.Role) (int, error)
	AgentLoads(ctx context.Context, window Window) ([]AgentLoad, error)
	AgentStats(ctx context.Context, userID int64, window Window) (AgentStats, error)
}

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository builds the dashboard query repository.
func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &statsRepository{pool: pool}
}

// openStatuses are the ticket states that still need work.
var openStatuses = []domain.TicketStatus{
	domain.TicketStatusOpen,
	domain.TicketStatusInProgress,
	domain.TicketStatusPending,
}

func (r *statsRepository) CountCalls(ctx context.Context, window Window) (int, error) {
	return r.count(ctx, psql.Select("COUNT(*)").From("calls").Where(inWindow("call_time", window)))
}

func (r *statsRepository) CountOpenTickets(ctx context.Context) (int, error) {
	return r.count(ctx, psql.Select("COUNT(*)").From("tickets").Where(sq.Eq{"status": openStatuses}))
}

func (r *statsRepository) CountUsersByRole(ctx context.Context, role domain.Role) (int, error) {
	return r.count(ctx, psql.Select("COUNT(*)").From("users").Where(sq.Eq{"role": role}))
}

func (r *statsRepository) AgentLoads(ctx context.Context, window Window) ([]AgentLoad, error) {
	// Subqueries keep the default "?" placeholders; the outer builder renumbers them.
	calls := sq.Select("COUNT(*)").From("calls c").
		Where("c.user_id = u.id").
		Where(inWindow("c.call_time", window))
	open := sq.Select("COUNT(*)").From("tickets t").
		Where("t.assigned_to = u.id").
		Where(sq.Eq{"t.status": openStatuses})

	query, args, err := psql.Select("u.id", "u.name").
		Column(sq.Alias(calls, "calls_in_window")).
		Column(sq.Alias(open, "open_assigned")).
		From("users u").
		Where(sq.Eq{"u.role": domain.RoleAgent}).
		OrderBy("u.name ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	loads := []AgentLoad{}
	for rows.Next() {
		var load AgentLoad
		if err := rows.Scan(&load.UserID, &load.Name, &load.CallsInWindow, &load.OpenAssigned); err != nil {
			return nil, err
		}
		loads = append(loads, load)
	}
	return loads, rows.Err()
}

func (r *statsRepository) AgentStats(ctx context.Context, userID int64, window Window) (AgentStats, error) {
	var stats AgentStats

	callQuery, callArgs, err := psql.
		Select("COUNT(*)", "COALESCE(AVG(duration_seconds), 0)::float8", "COALESCE(AVG(satisfaction_rating), 0)::float8").
		From("calls").
		Where(sq.Eq{"user_id": userID}).
		Where(inWindow("call_time", window)).
		ToSql()
	if err != nil {
		return stats, err
	}
	if err := conn(ctx, r.pool).QueryRow(ctx, callQuery, callArgs...).
		Scan(&stats.Calls, &stats.AvgDurationSeconds, &stats.AvgSatisfaction); err != nil {
		return stats, err
	}

	stats.TicketsResolved, err = r.count(ctx, psql.Select("COUNT(*)").From("tickets").
		Where(sq.Eq{"assigned_to": userID}).
		Where(inWindow("resolved_at", window)))
	return stats, err
}

func (r *statsRepository) count(ctx context.Context, builder sq.SelectBuilder) (int, error) {
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}
	var n int
	err = conn(ctx, r.pool).QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func inWindow(column string, window Window) sq.And {
	return sq.And{
		sq.GtOrEq{column: window.From},
		sq.Lt{column: window.To},
	}
}
