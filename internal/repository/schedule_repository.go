package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vigilo-hq/workforce-api/internal/models"
)

// ScheduleRepository provides persistence for weekly schedule rows.
// Rows are sparse: an employee only has rows for explicitly assigned
// days. Expanding them to a full week happens above this layer.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// scheduleRow is the flat scan target for entry+shift joins.
type scheduleRow struct {
	ID             int64          `db:"id"`
	EmployeeID     int64          `db:"employee_id"`
	EmployeeNumber string         `db:"employee_number"`
	FirstName      string         `db:"first_name"`
	LastName       string         `db:"last_name"`
	DayOfWeek      models.Weekday `db:"day_of_week"`
	ShiftID        int64          `db:"shift_id"`
	ShiftName      string         `db:"shift_name"`
	ShiftStart     string         `db:"shift_start"`
	ShiftEnd       string         `db:"shift_end"`
}

func (row scheduleRow) entry() models.EntryWithShift {
	return models.EntryWithShift{
		ID:        row.ID,
		DayOfWeek: row.DayOfWeek,
		Shift: models.Shift{
			ID:        row.ShiftID,
			Name:      row.ShiftName,
			StartTime: row.ShiftStart,
			EndTime:   row.ShiftEnd,
		},
	}
}

// ListByEmployee returns one employee's sparse schedule rows joined
// with their shifts, ordered by day then row id so later rows win in
// reconciliation.
func (r *ScheduleRepository) ListByEmployee(ctx context.Context, employeeID int64) ([]models.EntryWithShift, error) {
	const query = `SELECT se.id, se.employee_id, '' AS employee_number, '' AS first_name, '' AS last_name, se.day_of_week, s.id AS shift_id, s.name AS shift_name, s.start_time AS shift_start, s.end_time AS shift_end FROM schedule_entries se JOIN shifts s ON s.id = se.shift_id WHERE se.employee_id = $1 ORDER BY se.day_of_week ASC, se.id ASC`
	var rows []scheduleRow
	if err := r.db.SelectContext(ctx, &rows, query, employeeID); err != nil {
		return nil, fmt.Errorf("list schedule by employee: %w", err)
	}
	entries := make([]models.EntryWithShift, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.entry())
	}
	return entries, nil
}

// ListByOffice returns every active employee of an office with their
// sparse schedule rows. Employees without rows still appear, so they
// get a fully defaulted week.
func (r *ScheduleRepository) ListByOffice(ctx context.Context, officeID int64) ([]models.EmployeeWithSchedule, error) {
	const query = `SELECT COALESCE(se.id, 0) AS id, e.id AS employee_id, e.employee_number, e.first_name, e.last_name, COALESCE(se.day_of_week, 0) AS day_of_week, COALESCE(s.id, 0) AS shift_id, COALESCE(s.name, '') AS shift_name, COALESCE(s.start_time, '') AS shift_start, COALESCE(s.end_time, '') AS shift_end FROM employees e LEFT JOIN schedule_entries se ON se.employee_id = e.id LEFT JOIN shifts s ON s.id = se.shift_id WHERE e.office_id = $1 AND e.terminated = FALSE ORDER BY e.last_name ASC, e.first_name ASC, e.id ASC, se.day_of_week ASC, se.id ASC`
	var rows []scheduleRow
	if err := r.db.SelectContext(ctx, &rows, query, officeID); err != nil {
		return nil, fmt.Errorf("list schedule by office: %w", err)
	}

	var out []models.EmployeeWithSchedule
	index := map[int64]int{}
	for _, row := range rows {
		pos, ok := index[row.EmployeeID]
		if !ok {
			pos = len(out)
			index[row.EmployeeID] = pos
			out = append(out, models.EmployeeWithSchedule{
				EmployeeID:     row.EmployeeID,
				EmployeeNumber: row.EmployeeNumber,
				FirstName:      row.FirstName,
				LastName:       row.LastName,
			})
		}
		if row.ID == 0 {
			continue
		}
		out[pos].Entries = append(out[pos].Entries, row.entry())
	}
	return out, nil
}

// FindForDay returns an employee's schedule row for one weekday, if
// any, joined with the shift.
func (r *ScheduleRepository) FindForDay(ctx context.Context, employeeID int64, day models.Weekday) (*models.EntryWithShift, error) {
	const query = `SELECT se.id, se.employee_id, '' AS employee_number, '' AS first_name, '' AS last_name, se.day_of_week, s.id AS shift_id, s.name AS shift_name, s.start_time AS shift_start, s.end_time AS shift_end FROM schedule_entries se JOIN shifts s ON s.id = se.shift_id WHERE se.employee_id = $1 AND se.day_of_week = $2 ORDER BY se.id DESC LIMIT 1`
	var row scheduleRow
	if err := r.db.GetContext(ctx, &row, query, employeeID, day); err != nil {
		return nil, err
	}
	entry := row.entry()
	return &entry, nil
}

// ReplaceWeek upserts an employee's schedule days in one transaction.
// Each payload day either updates the existing row for that day or
// inserts a new one; the unique (employee_id, day_of_week) index makes
// the operation idempotent.
func (r *ScheduleRepository) ReplaceWeek(ctx context.Context, employeeID int64, entries []models.EntryUpdate) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace week: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = upsertWeek(ctx, tx, employeeID, entries); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace week: %w", err)
	}
	return nil
}

// ReplaceOfficeWeeks applies a bulk schedule save for many employees
// in a single transaction. Any failed row rolls back the whole save.
func (r *ScheduleRepository) ReplaceOfficeWeeks(ctx context.Context, updates []models.EmployeeWeekUpdate) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace office weeks: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, u := range updates {
		if err = upsertWeek(ctx, tx, u.EmployeeID, u.Entries); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace office weeks: %w", err)
	}
	return nil
}

func upsertWeek(ctx context.Context, tx *sqlx.Tx, employeeID int64, entries []models.EntryUpdate) error {
	const query = `INSERT INTO schedule_entries (employee_id, day_of_week, shift_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $4) ON CONFLICT (employee_id, day_of_week) DO UPDATE SET shift_id = EXCLUDED.shift_id, updated_at = EXCLUDED.updated_at`
	now := time.Now().UTC()
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, query, employeeID, e.DayOfWeek, e.ShiftID, now); err != nil {
			return fmt.Errorf("upsert schedule day %d for employee %d: %w", e.DayOfWeek, employeeID, err)
		}
	}
	return nil
}
