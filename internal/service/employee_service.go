package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vigilo-hq/workforce-api/internal/models"
	appErrors "github.com/vigilo-hq/workforce-api/pkg/errors"
)

type employeeRepository interface {
	List(ctx context.Context, filter models.EmployeeFilter) ([]models.EmployeeRecord, int, error)
	FindByID(ctx context.Context, id int64) (*models.EmployeeRecord, error)
	Create(ctx context.Context, emp *models.Employee) error
	Update(ctx context.Context, emp *models.Employee) error
	Terminate(ctx context.Context, id int64, at time.Time) error
	ListPositions(ctx context.Context) ([]models.Position, error)
}

// EmployeeRequest is the create/update payload for an employee.
type EmployeeRequest struct {
	EmployeeNumber string `json:"employee_number" validate:"required,min=1,max=32"`
	FirstName      string `json:"first_name" validate:"required,min=1,max=120"`
	LastName       string `json:"last_name" validate:"required,min=1,max=120"`
	Gender         string `json:"gender" validate:"required,oneof=Masculino Femenino Otro"`
	PositionID     *int64 `json:"position_id,omitempty"`
	OfficeID       *int64 `json:"office_id,omitempty"`
	IsSupervisor   bool   `json:"is_supervisor"`
}

// EmployeeService manages the workforce roster.
type EmployeeService struct {
	repo      employeeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEmployeeService constructs an EmployeeService.
func NewEmployeeService(repo employeeRepository, validate *validator.Validate, logger *zap.Logger) *EmployeeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EmployeeService{repo: repo, validator: validate, logger: logger}
}

// List returns employees matching the filter.
func (s *EmployeeService) List(ctx context.Context, filter models.EmployeeFilter) ([]models.EmployeeRecord, *models.Pagination, error) {
	employees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list employees")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return employees, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads a single employee by id.
func (s *EmployeeService) Get(ctx context.Context, id int64) (*models.EmployeeRecord, error) {
	emp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "employee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employee")
	}
	return emp, nil
}

// Create stores a new employee.
func (s *EmployeeService) Create(ctx context.Context, req EmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}

	emp := &models.Employee{
		EmployeeNumber: req.EmployeeNumber,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Gender:         req.Gender,
		PositionID:     req.PositionID,
		OfficeID:       req.OfficeID,
		IsSupervisor:   req.IsSupervisor,
	}
	if err := s.repo.Create(ctx, emp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create employee")
	}

	s.logger.Info("employee created", zap.Int64("employee_id", emp.ID), zap.String("number", emp.EmployeeNumber))
	return emp, nil
}

// Update mutates an employee record. Terminated employees are frozen.
func (s *EmployeeService) Update(ctx context.Context, id int64, req EmployeeRequest) (*models.Employee, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid employee payload")
	}

	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Terminated {
		return nil, appErrors.Clone(appErrors.ErrConflict, "employee is terminated")
	}

	emp := record.Employee
	emp.EmployeeNumber = req.EmployeeNumber
	emp.FirstName = req.FirstName
	emp.LastName = req.LastName
	emp.Gender = req.Gender
	emp.PositionID = req.PositionID
	emp.OfficeID = req.OfficeID
	emp.IsSupervisor = req.IsSupervisor

	if err := s.repo.Update(ctx, &emp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update employee")
	}
	return &emp, nil
}

// Terminate marks an employee as terminated ("baja"). The record and
// its history stay available for reporting.
func (s *EmployeeService) Terminate(ctx context.Context, id int64) error {
	record, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if record.Terminated {
		return appErrors.Clone(appErrors.ErrConflict, "employee is already terminated")
	}

	if err := s.repo.Terminate(ctx, id, time.Now().UTC()); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to terminate employee")
	}
	s.logger.Info("employee terminated", zap.Int64("employee_id", id))
	return nil
}

// ListPositions returns the position catalog.
func (s *EmployeeService) ListPositions(ctx context.Context) ([]models.Position, error) {
	positions, err := s.repo.ListPositions(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list positions")
	}
	return positions, nil
}
