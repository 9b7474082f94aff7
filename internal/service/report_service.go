package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/callcenter-service/internal/access"
	"github.com/spec-kit/callcenter-service/internal/domain"
	"github.com/spec-kit/callcenter-service/internal/repository"
	apperrors "github.com/spec-kit/callcenter-service/pkg/util"
)

// MaxExportRows caps a single call export.
const MaxExportRows = 10000

const callSheet = "Calls"

var callReportHeaders = []interface{}{
	"ID", "Agent", "Call time", "Client", "Phone", "Subject", "Type", "Status",
	"Duration (s)", "Satisfaction", "Notes",
}

// ReportService builds spreadsheet exports for supervisors.
type ReportService struct {
	calls repository.CallRepository
	users repository.UserRepository
}

// NewReportService constructs the service.
func NewReportService(calls repository.CallRepository, users repository.UserRepository) *ReportService {
	return &ReportService{calls: calls, users: users}
}

// ExportCalls renders calls with call_time in [from, to) as an XLSX workbook.
func (s *ReportService) ExportCalls(ctx context.Context, actor *domain.User, from, to *time.Time) ([]byte, error) {
	if err := access.Check(actor.IsSupervisor(), "reports are restricted to supervisors"); err != nil {
		return nil, err
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, apperrors.NewValidationError("invalid range", map[string]string{"to": "must be after from"})
	}

	calls, err := s.calls.ListForExport(ctx, from, to, MaxExportRows)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	names, err := s.userNames(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", callSheet); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := f.SetSheetRow(callSheet, "A1", &callReportHeaders); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if err := f.SetCellStyle(callSheet, "A1", "K1", style); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	for i, call := range calls {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		row := callReportRow(call, names[call.UserID])
		if err := f.SetSheetRow(callSheet, cell, &row); err != nil {
			return nil, apperrors.NewInternalError(err)
		}
	}
	_ = f.SetColWidth(callSheet, "B", "B", 25)
	_ = f.SetColWidth(callSheet, "C", "E", 20)
	_ = f.SetColWidth(callSheet, "F", "F", 40)
	_ = f.SetColWidth(callSheet, "K", "K", 50)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("write workbook: %w", err))
	}
	return buf.Bytes(), nil
}

func (s *ReportService) userNames(ctx context.Context) (map[int64]string, error) {
	names := map[int64]string{}
	for _, role := range []domain.Role{domain.RoleAgent, domain.RoleSupervisor} {
		users, err := s.users.ListByRole(ctx, role)
		if err != nil {
			return nil, err
		}
		for _, u := range users {
			names[u.ID] = u.Name
		}
	}
	return names, nil
}

func callReportRow(call domain.Call, agent string) []interface{} {
	row := []interface{}{
		call.ID,
		agent,
		call.CallTime.UTC().Format(time.RFC3339),
		call.ClientName,
		call.ClientPhone,
		call.Subject,
		string(call.CallType),
		string(call.Status),
		"",
		"",
		"",
	}
	if call.DurationSeconds != nil {
		row[8] = *call.DurationSeconds
	}
	if call.SatisfactionRating != nil {
		row[9] = *call.SatisfactionRating
	}
	if call.Notes != nil {
		row[10] = *call.Notes
	}
	return row
}
