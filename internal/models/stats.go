package models

import "time"

// StatsReportType enumerates the range listings the statistics module
// can produce. Values match the report selector used by the client.
type StatsReportType string

const (
	ReportAttendances     StatsReportType = "asistencias"
	ReportAbsences        StatsReportType = "inasistencias"
	ReportRestDays        StatsReportType = "descansos"
	ReportLate            StatsReportType = "tardes"
	ReportMorningPresent  StatsReportType = "asistencias-matutinas"
	ReportMorningAbsent   StatsReportType = "faltas-matutinas"
	ReportEveningPresent  StatsReportType = "asistencias-vespertinas"
	ReportEveningAbsent   StatsReportType = "faltas-vespertinas"
)

// Valid reports whether the report type is supported.
func (t StatsReportType) Valid() bool {
	switch t {
	case ReportAttendances, ReportAbsences, ReportRestDays, ReportLate,
		ReportMorningPresent, ReportMorningAbsent, ReportEveningPresent, ReportEveningAbsent:
		return true
	default:
		return false
	}
}

// DailyStats aggregates one day's attendance counters, optionally
// scoped to a single office.
type DailyStats struct {
	Date           time.Time `db:"-" json:"date"`
	TotalPresent   int       `db:"total_present" json:"total_present"`
	TotalAbsent    int       `db:"total_absent" json:"total_absent"`
	RestDay        int       `db:"rest_day" json:"rest_day"`
	Late           int       `db:"late" json:"late"`
	MorningPresent int       `db:"morning_present" json:"morning_present"`
	MorningAbsent  int       `db:"morning_absent" json:"morning_absent"`
	EveningPresent int       `db:"evening_present" json:"evening_present"`
	EveningAbsent  int       `db:"evening_absent" json:"evening_absent"`
	Terminations   int       `db:"terminations" json:"terminations"`
}

// StatsRangeFilter scopes range report listings.
type StatsRangeFilter struct {
	Type      StatsReportType
	StartDate time.Time
	EndDate   time.Time
	OfficeID  *int64
}

// AbsenceRow is one row of the absences report: a scheduled employee
// with no attendance record for the day.
type AbsenceRow struct {
	Day            time.Time `db:"day" json:"day"`
	EmployeeID     int64     `db:"employee_id" json:"employee_id"`
	EmployeeNumber string    `db:"employee_number" json:"employee_number"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	OfficeName     *string   `db:"office_name" json:"office_name,omitempty"`
	ShiftName      string    `db:"shift_name" json:"shift_name"`
	ShiftStart     string    `db:"shift_start" json:"shift_start"`
	ShiftEnd       string    `db:"shift_end" json:"shift_end"`
}
