package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vigilo-hq/workforce-api/internal/models"
)

// AttendanceRepository provides persistence for QR check-in records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository creates a new attendance repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

const attendanceRecordColumns = `a.id, a.employee_id, a.office_id, a.shift_id, a.day, a.check_in, a.check_out, a.latitude, a.longitude, a.in_range, a.late, a.created_at, a.updated_at, e.employee_number, e.first_name, e.last_name, o.name AS office_name, s.name AS shift_name, s.start_time AS shift_start, s.end_time AS shift_end`

const attendanceRecordJoins = `FROM attendances a JOIN employees e ON e.id = a.employee_id LEFT JOIN offices o ON o.id = a.office_id LEFT JOIN shifts s ON s.id = a.shift_id`

// FindOpenForDay returns the employee's record for a calendar day that
// has a check-in but no check-out yet.
func (r *AttendanceRepository) FindOpenForDay(ctx context.Context, employeeID int64, day time.Time) (*models.Attendance, error) {
	const query = `SELECT id, employee_id, office_id, shift_id, day, check_in, check_out, latitude, longitude, in_range, late, created_at, updated_at FROM attendances WHERE employee_id = $1 AND day = $2 AND check_out IS NULL ORDER BY id DESC LIMIT 1`
	var att models.Attendance
	if err := r.db.GetContext(ctx, &att, query, employeeID, day); err != nil {
		return nil, err
	}
	return &att, nil
}

// FindForDay returns the employee's record for a calendar day, open or
// closed.
func (r *AttendanceRepository) FindForDay(ctx context.Context, employeeID int64, day time.Time) (*models.Attendance, error) {
	const query = `SELECT id, employee_id, office_id, shift_id, day, check_in, check_out, latitude, longitude, in_range, late, created_at, updated_at FROM attendances WHERE employee_id = $1 AND day = $2 ORDER BY id DESC LIMIT 1`
	var att models.Attendance
	if err := r.db.GetContext(ctx, &att, query, employeeID, day); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find attendance for day: %w", err)
	}
	return &att, nil
}

// Create stores a new check-in record and fills in the generated id.
func (r *AttendanceRepository) Create(ctx context.Context, att *models.Attendance) error {
	now := time.Now().UTC()
	if att.CreatedAt.IsZero() {
		att.CreatedAt = now
	}
	att.UpdatedAt = now

	const query = `INSERT INTO attendances (employee_id, office_id, shift_id, day, check_in, check_out, latitude, longitude, in_range, late, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, att.EmployeeID, att.OfficeID, att.ShiftID, att.Day, att.CheckIn, att.CheckOut, att.Latitude, att.Longitude, att.InRange, att.Late, att.CreatedAt, att.UpdatedAt).Scan(&att.ID); err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// Close writes the check-out time on an open record.
func (r *AttendanceRepository) Close(ctx context.Context, id int64, checkOut time.Time) error {
	const query = `UPDATE attendances SET check_out = $2, updated_at = $3 WHERE id = $1 AND check_out IS NULL`
	res, err := r.db.ExecContext(ctx, query, id, checkOut, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("close attendance: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns attendance records joined with employee, office and
// shift metadata.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	base := attendanceRecordJoins + " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.EmployeeID != nil {
		conditions = append(conditions, fmt.Sprintf("a.employee_id = $%d", len(args)+1))
		args = append(args, *filter.EmployeeID)
	}
	if filter.OfficeID != nil {
		conditions = append(conditions, fmt.Sprintf("a.office_id = $%d", len(args)+1))
		args = append(args, *filter.OfficeID)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("a.day >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("a.day <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"day":       "a.day",
		"check_in":  "a.check_in",
		"last_name": "e.last_name",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "a.day"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, a.id %s LIMIT %d OFFSET %d", attendanceRecordColumns, base, column, order, order, size, offset)
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendances: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendances: %w", err)
	}

	return records, total, nil
}
