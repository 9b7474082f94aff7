package service

import (
	"context"
	"time"

	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util"
)

// SupervisorOverview summarizes team activity for the current day.
type SupervisorOverview struct {
	CallsToday  int
	OpenTickets int
	AgentCount  int
	Agents      []repository.AgentLoad
}

// AgentOverview summarizes the caller's own activity for the current day.
type AgentOverview struct {
	CallsToday           int
	AvgDurationSeconds   float64
	TicketsResolvedToday int
	AvgSatisfaction      float64
}

// Overview holds exactly one of the role-specific summaries.
type Overview struct {
	Role       domain.Role
	Supervisor *SupervisorOverview
	Agent      *AgentOverview
}

// DashboardService computes the landing page KPIs.
type DashboardService struct {
	stats repository.StatsRepository
	now   func() time.Time
}

// NewDashboardService constructs the service. A nil clock uses UTC wall time.
func NewDashboardService(stats repository.StatsRepository, clock func() time.Time) *DashboardService {
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &DashboardService{stats: stats, now: clock}
}

// Overview returns the role-appropriate summary for actor.
func (s *DashboardService) Overview(ctx context.Context, actor *domain.User) (*Overview, error) {
	today := dayWindow(s.now())
	if actor.IsSupervisor() {
		sup, err := s.supervisor(ctx, today)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		return &Overview{Role: actor.Role, Supervisor: sup}, nil
	}

	stats, err := s.stats.AgentStats(ctx, actor.ID, today)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &Overview{Role: actor.Role, Agent: &AgentOverview{
		CallsToday:           stats.Calls,
		AvgDurationSeconds:   stats.AvgDurationSeconds,
		TicketsResolvedToday: stats.TicketsResolved,
		AvgSatisfaction:      stats.AvgSatisfaction,
	}}, nil
}

func (s *DashboardService) supervisor(ctx context.Context, today repository.Window) (*SupervisorOverview, error) {
	var (
		out SupervisorOverview
		err error
	)
	if out.CallsToday, err = s.stats.CountCalls(ctx, today); err != nil {
		return nil, err
	}
	if out.OpenTickets, err = s.stats.CountOpenTickets(ctx); err != nil {
		return nil, err
	}
	if out.AgentCount, err = s.stats.CountUsersByRole(ctx, domain.RoleAgent); err != nil {
		return nil, err
	}
	if out.Agents, err = s.stats.AgentLoads(ctx, today); err != nil {
		return nil, err
	}
	return &out, nil
}

func dayWindow(now time.Time) repository.Window {
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return repository.Window{From: start, To: start.AddDate(0, 0, 1)}
}
