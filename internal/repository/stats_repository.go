package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vigilo-hq/workforce-api/internal/models"
)

// DayScheduleRow is one active employee with their assigned shift for
// a weekday, if any. Employees without a row for the day carry nil
// shift fields and fall back to the default shift upstream.
type DayScheduleRow struct {
	EmployeeID     int64   `db:"employee_id"`
	EmployeeNumber string  `db:"employee_number"`
	FirstName      string  `db:"first_name"`
	LastName       string  `db:"last_name"`
	OfficeID       *int64  `db:"office_id"`
	OfficeName     *string `db:"office_name"`
	ShiftID        *int64  `db:"shift_id"`
	ShiftName      *string `db:"shift_name"`
	ShiftStart     *string `db:"shift_start"`
	ShiftEnd       *string `db:"shift_end"`
}

// StatsRepository provides the raw per-day rows the statistics
// service aggregates. Counters themselves are computed in Go so the
// default shift fill rule matches the schedule views exactly.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository creates a new statistics repository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// ListScheduledForDay returns every active employee with their
// schedule row for the given weekday joined in.
func (r *StatsRepository) ListScheduledForDay(ctx context.Context, day models.Weekday, officeID *int64) ([]DayScheduleRow, error) {
	query := `SELECT e.id AS employee_id, e.employee_number, e.first_name, e.last_name, e.office_id, o.name AS office_name, s.id AS shift_id, s.name AS shift_name, s.start_time AS shift_start, s.end_time AS shift_end FROM employees e LEFT JOIN offices o ON o.id = e.office_id LEFT JOIN schedule_entries se ON se.employee_id = e.id AND se.day_of_week = $1 LEFT JOIN shifts s ON s.id = se.shift_id WHERE e.terminated = FALSE`
	args := []interface{}{day}
	if officeID != nil {
		query += " AND e.office_id = $2"
		args = append(args, *officeID)
	}
	query += " ORDER BY e.last_name ASC, e.first_name ASC, e.id ASC"

	var rows []DayScheduleRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list scheduled for day: %w", err)
	}
	return rows, nil
}

// ListAttendancesForDay returns attendance records for one calendar
// day, optionally scoped to an office.
func (r *StatsRepository) ListAttendancesForDay(ctx context.Context, day time.Time, officeID *int64) ([]models.AttendanceRecord, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE a.day = $1", attendanceRecordColumns, attendanceRecordJoins)
	args := []interface{}{day}
	if officeID != nil {
		query += " AND a.office_id = $2"
		args = append(args, *officeID)
	}
	query += " ORDER BY e.last_name ASC, e.first_name ASC, a.id ASC"

	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendances for day: %w", err)
	}
	return records, nil
}

// CountTerminations counts employees terminated inside the interval.
func (r *StatsRepository) CountTerminations(ctx context.Context, from, to time.Time, officeID *int64) (int, error) {
	query := `SELECT COUNT(*) FROM employees WHERE terminated = TRUE AND terminated_at >= $1 AND terminated_at < $2`
	args := []interface{}{from, to}
	if officeID != nil {
		query += " AND office_id = $3"
		args = append(args, *officeID)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count terminations: %w", err)
	}
	return total, nil
}
