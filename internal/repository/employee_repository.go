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

// EmployeeRepository provides persistence for employees and positions.
type EmployeeRepository struct {
	db *sqlx.DB
}

// NewEmployeeRepository creates a new employee repository.
func NewEmployeeRepository(db *sqlx.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

const employeeRecordColumns = `e.id, e.employee_number, e.first_name, e.last_name, e.gender, e.position_id, e.office_id, e.is_supervisor, e.terminated, e.terminated_at, e.created_at, e.updated_at, p.name AS position_name, o.name AS office_name`

// List returns employees joined with office and position names.
func (r *EmployeeRepository) List(ctx context.Context, filter models.EmployeeFilter) ([]models.EmployeeRecord, int, error) {
	base := `FROM employees e LEFT JOIN positions p ON p.id = e.position_id LEFT JOIN offices o ON o.id = e.office_id WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.OfficeID != nil {
		conditions = append(conditions, fmt.Sprintf("e.office_id = $%d", len(args)+1))
		args = append(args, *filter.OfficeID)
	}
	if filter.Terminated != nil {
		conditions = append(conditions, fmt.Sprintf("e.terminated = $%d", len(args)+1))
		args = append(args, *filter.Terminated)
	}
	if filter.Search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf("(LOWER(e.first_name) LIKE $%d OR LOWER(e.last_name) LIKE $%d OR LOWER(e.employee_number) LIKE $%d)", n, n, n))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"last_name":       "e.last_name",
		"first_name":      "e.first_name",
		"employee_number": "e.employee_number",
		"created_at":      "e.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "e.last_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", employeeRecordColumns, base, column, order, size, offset)
	var employees []models.EmployeeRecord
	if err := r.db.SelectContext(ctx, &employees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list employees: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count employees: %w", err)
	}

	return employees, total, nil
}

// FindByID loads an employee by id with joined names.
func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*models.EmployeeRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM employees e LEFT JOIN positions p ON p.id = e.position_id LEFT JOIN offices o ON o.id = e.office_id WHERE e.id = $1 LIMIT 1`, employeeRecordColumns)
	var emp models.EmployeeRecord
	if err := r.db.GetContext(ctx, &emp, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find employee by id: %w", err)
	}
	return &emp, nil
}

// Create stores a new employee and fills in the generated id.
func (r *EmployeeRepository) Create(ctx context.Context, emp *models.Employee) error {
	now := time.Now().UTC()
	if emp.CreatedAt.IsZero() {
		emp.CreatedAt = now
	}
	emp.UpdatedAt = now

	const query = `INSERT INTO employees (employee_number, first_name, last_name, gender, position_id, office_id, is_supervisor, terminated, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, emp.EmployeeNumber, emp.FirstName, emp.LastName, emp.Gender, emp.PositionID, emp.OfficeID, emp.IsSupervisor, emp.Terminated, emp.CreatedAt, emp.UpdatedAt).Scan(&emp.ID); err != nil {
		return fmt.Errorf("create employee: %w", err)
	}
	return nil
}

// Update modifies an employee record.
func (r *EmployeeRepository) Update(ctx context.Context, emp *models.Employee) error {
	emp.UpdatedAt = time.Now().UTC()
	const query = `UPDATE employees SET employee_number = :employee_number, first_name = :first_name, last_name = :last_name, gender = :gender, position_id = :position_id, office_id = :office_id, is_supervisor = :is_supervisor, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, emp); err != nil {
		return fmt.Errorf("update employee: %w", err)
	}
	return nil
}

// Terminate marks an employee as terminated at the given time. The
// record stays for reporting; it is never deleted.
func (r *EmployeeRepository) Terminate(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE employees SET terminated = TRUE, terminated_at = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, at, time.Now().UTC()); err != nil {
		return fmt.Errorf("terminate employee: %w", err)
	}
	return nil
}

// ListPositions returns the position catalog ordered by name.
func (r *EmployeeRepository) ListPositions(ctx context.Context) ([]models.Position, error) {
	const query = `SELECT id, name FROM positions ORDER BY name ASC`
	var positions []models.Position
	if err := r.db.SelectContext(ctx, &positions, query); err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	return positions, nil
}
