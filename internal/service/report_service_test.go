package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

func TestExportCalls(t *testing.T) {
	h := newHarness(t)
	h.newCall(t, h.agentA, domain.CallStatusEnded)
	h.newCall(t, h.agentB, domain.CallStatusEnded)
	reports := NewReportService(h.store.Calls(), h.store.Users())

	data, err := reports.ExportCalls(context.Background(), h.supervisor, nil, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(callSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "ID", rows[0][0])
	assert.Contains(t, []string{rows[1][1], rows[2][1]}, "Alice")
	assert.Contains(t, []string{rows[1][1], rows[2][1]}, "Bob")
}

func TestExportCallsRestrictions(t *testing.T) {
	h := newHarness(t)
	reports := NewReportService(h.store.Calls(), h.store.Users())
	ctx := context.Background()

	_, err := reports.ExportCalls(ctx, h.agentA, nil, nil)
	requireCode(t, err, "FORBIDDEN")

	from := testNow
	to := testNow.Add(-time.Hour)
	_, err = reports.ExportCalls(ctx, h.supervisor, &from, &to)
	requireCode(t, err, "VALIDATION_FAILED")
}
