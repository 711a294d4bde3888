package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vigilo-hq/workforce-api/internal/models"
	"github.com/vigilo-hq/workforce-api/internal/repository"
	"github.com/vigilo-hq/workforce-api/internal/schedule"
	appErrors "github.com/vigilo-hq/workforce-api/pkg/errors"
)

type statsRepository interface {
	ListScheduledForDay(ctx context.Context, day models.Weekday, officeID *int64) ([]repository.DayScheduleRow, error)
	ListAttendancesForDay(ctx context.Context, day time.Time, officeID *int64) ([]models.AttendanceRecord, error)
	CountTerminations(ctx context.Context, from, to time.Time, officeID *int64) (int, error)
}

// RangeReport is the result of a range listing. Attendance-backed
// report types fill Attendances; absence and rest types fill Absences.
type RangeReport struct {
	Type        models.StatsReportType    `json:"type"`
	StartDate   time.Time                 `json:"start_date"`
	EndDate     time.Time                 `json:"end_date"`
	Attendances []models.AttendanceRecord `json:"attendances,omitempty"`
	Absences    []models.AbsenceRow       `json:"absences,omitempty"`
}

// StatsService aggregates daily attendance counters and range
// listings. The effective shift of an employee follows the same
// default fill rule the schedule views use.
type StatsService struct {
	repo             statsRepository
	shifts           shiftCatalogProvider
	logger           *zap.Logger
	defaultShiftName string

	// maxRangeDays bounds range reports to keep day-by-day scans sane.
	maxRangeDays int
}

// NewStatsService constructs a StatsService.
func NewStatsService(repo statsRepository, shifts shiftCatalogProvider, logger *zap.Logger, defaultShiftName string) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{repo: repo, shifts: shifts, logger: logger, defaultShiftName: defaultShiftName, maxRangeDays: 92}
}

// Daily computes the counters for one calendar day.
func (s *StatsService) Daily(ctx context.Context, day time.Time, officeID *int64) (*models.DailyStats, error) {
	day = truncateDay(day)

	catalog, err := s.shifts.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	def, _, err := schedule.ResolveDefaultShift(catalog, s.defaultShiftName)
	if err != nil {
		return nil, err
	}

	scheduled, err := s.repo.ListScheduledForDay(ctx, models.FromTime(day), officeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day roster")
	}
	attendances, err := s.repo.ListAttendancesForDay(ctx, day, officeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day attendances")
	}

	attended := make(map[int64]models.AttendanceRecord, len(attendances))
	for _, a := range attendances {
		attended[a.EmployeeID] = a
	}

	stats := &models.DailyStats{Date: day}
	for _, row := range scheduled {
		shift := effectiveRowShift(row, def)
		if shift.IsRest() {
			stats.RestDay++
			continue
		}

		record, present := attended[row.EmployeeID]
		if present {
			stats.TotalPresent++
			if record.Late {
				stats.Late++
			}
			if shift.IsMorning() {
				stats.MorningPresent++
			} else {
				stats.EveningPresent++
			}
			continue
		}

		stats.TotalAbsent++
		if shift.IsMorning() {
			stats.MorningAbsent++
		} else {
			stats.EveningAbsent++
		}
	}

	terminations, err := s.repo.CountTerminations(ctx, day, day.Add(24*time.Hour), officeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count terminations")
	}
	stats.Terminations = terminations

	return stats, nil
}

// Range produces the row listing for one report type over a date
// interval, inclusive on both ends.
func (s *StatsService) Range(ctx context.Context, filter models.StatsRangeFilter) (*RangeReport, error) {
	if !filter.Type.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown report type")
	}
	start := truncateDay(filter.StartDate)
	end := truncateDay(filter.EndDate)
	if end.Before(start) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date is before start date")
	}
	if int(end.Sub(start).Hours()/24)+1 > s.maxRangeDays {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date range is too large")
	}

	catalog, err := s.shifts.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	def, _, err := schedule.ResolveDefaultShift(catalog, s.defaultShiftName)
	if err != nil {
		return nil, err
	}

	report := &RangeReport{Type: filter.Type, StartDate: start, EndDate: end}
	for day := start; !day.After(end); day = day.Add(24 * time.Hour) {
		if err := s.collectDay(ctx, report, day, filter, def); err != nil {
			return nil, err
		}
	}
	return report, nil
}

func (s *StatsService) collectDay(ctx context.Context, report *RangeReport, day time.Time, filter models.StatsRangeFilter, def models.Shift) error {
	switch filter.Type {
	case models.ReportAttendances, models.ReportLate, models.ReportMorningPresent, models.ReportEveningPresent:
		attendances, err := s.repo.ListAttendancesForDay(ctx, day, filter.OfficeID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day attendances")
		}
		for _, a := range attendances {
			if filter.Type == models.ReportLate && !a.Late {
				continue
			}
			morning := attendanceIsMorning(a, def)
			if filter.Type == models.ReportMorningPresent && !morning {
				continue
			}
			if filter.Type == models.ReportEveningPresent && morning {
				continue
			}
			report.Attendances = append(report.Attendances, a)
		}
		return nil

	case models.ReportAbsences, models.ReportRestDays, models.ReportMorningAbsent, models.ReportEveningAbsent:
		scheduled, err := s.repo.ListScheduledForDay(ctx, models.FromTime(day), filter.OfficeID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day roster")
		}
		attendances, err := s.repo.ListAttendancesForDay(ctx, day, filter.OfficeID)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day attendances")
		}
		attended := make(map[int64]bool, len(attendances))
		for _, a := range attendances {
			attended[a.EmployeeID] = true
		}

		for _, row := range scheduled {
			shift := effectiveRowShift(row, def)
			rest := shift.IsRest()

			if filter.Type == models.ReportRestDays {
				if !rest {
					continue
				}
			} else {
				if rest || attended[row.EmployeeID] {
					continue
				}
				if filter.Type == models.ReportMorningAbsent && !shift.IsMorning() {
					continue
				}
				if filter.Type == models.ReportEveningAbsent && shift.IsMorning() {
					continue
				}
			}

			report.Absences = append(report.Absences, models.AbsenceRow{
				Day:            day,
				EmployeeID:     row.EmployeeID,
				EmployeeNumber: row.EmployeeNumber,
				FirstName:      row.FirstName,
				LastName:       row.LastName,
				OfficeName:     row.OfficeName,
				ShiftName:      shift.Name,
				ShiftStart:     shift.StartTime,
				ShiftEnd:       shift.EndTime,
			})
		}
		return nil
	}
	return appErrors.Clone(appErrors.ErrValidation, "unknown report type")
}

func effectiveRowShift(row repository.DayScheduleRow, def models.Shift) models.Shift {
	if row.ShiftID == nil {
		return def
	}
	shift := models.Shift{ID: *row.ShiftID}
	if row.ShiftName != nil {
		shift.Name = *row.ShiftName
	}
	if row.ShiftStart != nil {
		shift.StartTime = *row.ShiftStart
	}
	if row.ShiftEnd != nil {
		shift.EndTime = *row.ShiftEnd
	}
	return shift
}

func attendanceIsMorning(a models.AttendanceRecord, def models.Shift) bool {
	if a.ShiftStart != nil {
		return *a.ShiftStart < models.MorningCutoff
	}
	return def.IsMorning()
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
