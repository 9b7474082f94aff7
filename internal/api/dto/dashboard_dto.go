package dto

import (
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/service"
)

// AgentLoadResponse is one row of the supervisor's team table.
type AgentLoadResponse struct {
	UserID              int64  `json:"user_id"`
	Name                string `json:"name"`
	CallsToday          int    `json:"calls_today"`
	OpenAssignedTickets int    `json:"open_assigned_tickets"`
}

// SupervisorOverviewResponse summarizes team activity.
type SupervisorOverviewResponse struct {
	CallsToday  int                 `json:"calls_today"`
	OpenTickets int                 `json:"open_tickets"`
	AgentCount  int                 `json:"agent_count"`
	Agents      []AgentLoadResponse `json:"agents"`
}

// AgentOverviewResponse summarizes the caller's own day.
type AgentOverviewResponse struct {
	CallsToday           int     `json:"calls_today"`
	AvgDurationSeconds   float64 `json:"avg_duration_seconds"`
	TicketsResolvedToday int     `json:"tickets_resolved_today"`
	AvgSatisfaction      float64 `json:"avg_satisfaction"`
}

// OverviewResponse carries exactly one of the role summaries.
type OverviewResponse struct {
	Role       domain.Role                 `json:"role"`
	Supervisor *SupervisorOverviewResponse `json:"supervisor,omitempty"`
	Agent      *AgentOverviewResponse      `json:"agent,omitempty"`
}

// NewOverviewResponse maps the dashboard overview.
func NewOverviewResponse(o *service.Overview) OverviewResponse {
	resp := OverviewResponse{Role: o.Role}
	if s := o.Supervisor; s != nil {
		agents := make([]AgentLoadResponse, 0, len(s.Agents))
		for _, a := range s.Agents {
			agents = append(agents, AgentLoadResponse{
				UserID:              a.UserID,
				Name:                a.Name,
				CallsToday:          a.CallsInWindow,
				OpenAssignedTickets: a.OpenAssigned,
			})
		}
		resp.Supervisor = &SupervisorOverviewResponse{
			CallsToday:  s.CallsToday,
			OpenTickets: s.OpenTickets,
			AgentCount:  s.AgentCount,
			Agents:      agents,
		}
	}
	if a := o.Agent; a != nil {
		resp.Agent = &AgentOverviewResponse{
			CallsToday:           a.CallsToday,
			AvgDurationSeconds:   a.AvgDurationSeconds,
			TicketsResolvedToday: a.TicketsResolvedToday,
			AvgSatisfaction:      a.AvgSatisfaction,
		}
	}
	return resp
}
