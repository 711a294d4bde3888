package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vigilo-hq/workforce-api/internal/models"
	"github.com/vigilo-hq/workforce-api/internal/repository"
	appErrors "github.com/vigilo-hq/workforce-api/pkg/errors"
)

type mockStatsRepo struct {
	scheduled    []repository.DayScheduleRow
	attendances  []models.AttendanceRecord
	terminations int
}

func (m *mockStatsRepo) ListScheduledForDay(ctx context.Context, day models.Weekday, officeID *int64) ([]repository.DayScheduleRow, error) {
	return m.scheduled, nil
}

func (m *mockStatsRepo) ListAttendancesForDay(ctx context.Context, day time.Time, officeID *int64) ([]models.AttendanceRecord, error) {
	return m.attendances, nil
}

func (m *mockStatsRepo) CountTerminations(ctx context.Context, from, to time.Time, officeID *int64) (int, error) {
	return m.terminations, nil
}

func shiftRow(empID int64, number string, shift *models.Shift) repository.DayScheduleRow {
	row := repository.DayScheduleRow{EmployeeID: empID, EmployeeNumber: number}
	if shift != nil {
		row.ShiftID = &shift.ID
		row.ShiftName = &shift.Name
		row.ShiftStart = &shift.StartTime
		row.ShiftEnd = &shift.EndTime
	}
	return row
}

var statsCatalog = []models.Shift{
	{ID: 1, Name: "Mañana", StartTime: "08:00", EndTime: "15:00"},
	{ID: 2, Name: "Tarde", StartTime: "14:00", EndTime: "21:00"},
	{ID: 3, Name: "Descanso", StartTime: "00:00", EndTime: "00:00"},
}

func TestDailyStatsCounters(t *testing.T) {
	day := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)
	repo := &mockStatsRepo{
		scheduled: []repository.DayScheduleRow{
			shiftRow(1, "E-001", &statsCatalog[0]), // morning, present and late
			shiftRow(2, "E-002", &statsCatalog[1]), // evening, absent
			shiftRow(3, "E-003", &statsCatalog[2]), // rest day
			shiftRow(4, "E-004", nil),              // defaults to morning, absent
		},
		attendances: []models.AttendanceRecord{
			{Attendance: models.Attendance{EmployeeID: 1, Late: true}, ShiftStart: &statsCatalog[0].StartTime},
		},
		terminations: 1,
	}
	svc := NewStatsService(repo, &mockCatalog{shifts: statsCatalog}, zap.NewNop(), "Mañana")

	stats, err := svc.Daily(context.Background(), day, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.TotalPresent)
	assert.Equal(t, 2, stats.TotalAbsent)
	assert.Equal(t, 1, stats.RestDay)
	assert.Equal(t, 1, stats.Late)
	assert.Equal(t, 1, stats.MorningPresent)
	assert.Equal(t, 1, stats.MorningAbsent)
	assert.Equal(t, 0, stats.EveningPresent)
	assert.Equal(t, 1, stats.EveningAbsent)
	assert.Equal(t, 1, stats.Terminations)
}

func TestDailyStatsEmptyCatalog(t *testing.T) {
	svc := NewStatsService(&mockStatsRepo{}, &mockCatalog{}, zap.NewNop(), "Mañana")

	_, err := svc.Daily(context.Background(), time.Now(), nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrShiftCatalogEmpty.Code, appErrors.FromError(err).Code)
}

func TestRangeAbsences(t *testing.T) {
	repo := &mockStatsRepo{
		scheduled: []repository.DayScheduleRow{
			shiftRow(1, "E-001", &statsCatalog[0]),
			shiftRow(2, "E-002", &statsCatalog[2]),
		},
	}
	svc := NewStatsService(repo, &mockCatalog{shifts: statsCatalog}, zap.NewNop(), "Mañana")

	day := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)
	report, err := svc.Range(context.Background(), models.StatsRangeFilter{
		Type:      models.ReportAbsences,
		StartDate: day,
		EndDate:   day,
	})
	require.NoError(t, err)
	require.Len(t, report.Absences, 1)
	assert.Equal(t, "E-001", report.Absences[0].EmployeeNumber)
	assert.Empty(t, report.Attendances)
}

func TestRangeLateFiltersRecords(t *testing.T) {
	repo := &mockStatsRepo{
		attendances: []models.AttendanceRecord{
			{Attendance: models.Attendance{EmployeeID: 1, Late: true}},
			{Attendance: models.Attendance{EmployeeID: 2, Late: false}},
		},
	}
	svc := NewStatsService(repo, &mockCatalog{shifts: statsCatalog}, zap.NewNop(), "Mañana")

	day := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)
	report, err := svc.Range(context.Background(), models.StatsRangeFilter{
		Type:      models.ReportLate,
		StartDate: day,
		EndDate:   day,
	})
	require.NoError(t, err)
	require.Len(t, report.Attendances, 1)
	assert.Equal(t, int64(1), report.Attendances[0].EmployeeID)
}

func TestRangeRejectsInvertedDates(t *testing.T) {
	svc := NewStatsService(&mockStatsRepo{}, &mockCatalog{shifts: statsCatalog}, zap.NewNop(), "Mañana")

	start := time.Date(2026, time.August, 24, 0, 0, 0, 0, time.UTC)
	_, err := svc.Range(context.Background(), models.StatsRangeFilter{
		Type:      models.ReportAttendances,
		StartDate: start,
		EndDate:   start.AddDate(0, 0, -2),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRangeRejectsUnknownType(t *testing.T) {
	svc := NewStatsService(&mockStatsRepo{}, &mockCatalog{shifts: statsCatalog}, zap.NewNop(), "Mañana")

	_, err := svc.Range(context.Background(), models.StatsRangeFilter{Type: "nope", StartDate: time.Now(), EndDate: time.Now()})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
