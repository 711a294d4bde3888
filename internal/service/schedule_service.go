package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vigilo-hq/workforce-api/internal/models"
	"github.com/vigilo-hq/workforce-api/internal/schedule"
	appErrors "github.com/vigilo-hq/workforce-api/pkg/errors"
)

type scheduleRepository interface {
	ListByEmployee(ctx context.Context, employeeID int64) ([]models.EntryWithShift, error)
	ListByOffice(ctx context.Context, officeID int64) ([]models.EmployeeWithSchedule, error)
	ReplaceWeek(ctx context.Context, employeeID int64, entries []models.EntryUpdate) error
	ReplaceOfficeWeeks(ctx context.Context, updates []models.EmployeeWeekUpdate) error
}

type shiftCatalogProvider interface {
	Catalog(ctx context.Context) ([]models.Shift, error)
}

type scheduleAuditor interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type employeeFinder interface {
	Get(ctx context.Context, id int64) (*models.EmployeeRecord, error)
}

// ScheduleService serves complete editable weeks. Persistence stays
// sparse; every read reconciles rows against the shift catalog so the
// caller always sees seven days.
type ScheduleService struct {
	repo             scheduleRepository
	shifts           shiftCatalogProvider
	employees        employeeFinder
	auditor          scheduleAuditor
	validator        *validator.Validate
	logger           *zap.Logger
	defaultShiftName string
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(repo scheduleRepository, shifts shiftCatalogProvider, employees employeeFinder, auditor scheduleAuditor, validate *validator.Validate, logger *zap.Logger, defaultShiftName string) *ScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ScheduleService{
		repo:             repo,
		shifts:           shifts,
		employees:        employees,
		auditor:          auditor,
		validator:        validate,
		logger:           logger,
		defaultShiftName: defaultShiftName,
	}
}

// GetEmployeeWeek returns one employee's reconciled week.
func (s *ScheduleService) GetEmployeeWeek(ctx context.Context, employeeID int64) (schedule.Week, error) {
	if _, err := s.employees.Get(ctx, employeeID); err != nil {
		return schedule.Week{}, err
	}

	rows, err := s.repo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return schedule.Week{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule rows")
	}

	catalog, err := s.shifts.Catalog(ctx)
	if err != nil {
		return schedule.Week{}, err
	}

	week, fellBack, err := schedule.Reconcile(rows, catalog, s.defaultShiftName)
	if err != nil {
		return schedule.Week{}, err
	}
	s.logFallback(fellBack, catalog)
	return week, nil
}

// UpdateEmployeeWeek saves an employee's week. Every payload day is
// upserted in one transaction; unknown shift ids reject the save.
func (s *ScheduleService) UpdateEmployeeWeek(ctx context.Context, employeeID int64, req models.WeekUpdate, actorID int64) (schedule.Week, error) {
	if err := s.validator.Struct(req); err != nil {
		return schedule.Week{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if _, err := s.employees.Get(ctx, employeeID); err != nil {
		return schedule.Week{}, err
	}

	catalog, err := s.shifts.Catalog(ctx)
	if err != nil {
		return schedule.Week{}, err
	}
	if err := validateEntries(req.Entries, catalog); err != nil {
		return schedule.Week{}, err
	}

	if err := s.repo.ReplaceWeek(ctx, employeeID, req.Entries); err != nil {
		return schedule.Week{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save schedule")
	}
	s.audit(ctx, actorID, fmt.Sprintf("employee:%d", employeeID))

	return s.GetEmployeeWeek(ctx, employeeID)
}

// GetOfficeWeeks returns every active employee of an office with a
// reconciled week. The default shift is resolved once for the whole
// pass.
func (s *ScheduleService) GetOfficeWeeks(ctx context.Context, officeID int64) ([]schedule.EmployeeWeek, error) {
	raw, err := s.repo.ListByOffice(ctx, officeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load office schedules")
	}

	catalog, err := s.shifts.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	weeks, fellBack, err := schedule.ReconcileOffice(raw, catalog, s.defaultShiftName)
	if err != nil {
		return nil, err
	}
	s.logFallback(fellBack, catalog)
	return weeks, nil
}

// UpdateOfficeWeeks applies a bulk save for many employees in one
// transaction. A single invalid entry rejects the whole save.
func (s *ScheduleService) UpdateOfficeWeeks(ctx context.Context, officeID int64, updates []models.EmployeeWeekUpdate, actorID int64) ([]schedule.EmployeeWeek, error) {
	if len(updates) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no schedule updates provided")
	}

	catalog, err := s.shifts.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	for _, u := range updates {
		if err := s.validator.Struct(u); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
		}
		if err := validateEntries(u.Entries, catalog); err != nil {
			return nil, err
		}
	}

	if err := s.repo.ReplaceOfficeWeeks(ctx, updates); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save office schedules")
	}
	s.audit(ctx, actorID, fmt.Sprintf("office:%d", officeID))

	return s.GetOfficeWeeks(ctx, officeID)
}

func validateEntries(entries []models.EntryUpdate, catalog []models.Shift) error {
	known := make(map[int64]bool, len(catalog))
	for _, shift := range catalog {
		known[shift.ID] = true
	}
	seen := make(map[models.Weekday]bool, len(entries))
	for _, e := range entries {
		if !e.DayOfWeek.Valid() {
			return appErrors.Clone(appErrors.ErrValidation, "day_of_week must be between 1 and 7")
		}
		if seen[e.DayOfWeek] {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate day %d in payload", e.DayOfWeek))
		}
		seen[e.DayOfWeek] = true
		if !known[e.ShiftID] {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown shift id %d", e.ShiftID))
		}
	}
	return nil
}

func (s *ScheduleService) logFallback(fellBack bool, catalog []models.Shift) {
	if !fellBack || len(catalog) == 0 {
		return
	}
	s.logger.Warn("default shift name not found in catalog, using first entry",
		zap.String("preferred", s.defaultShiftName),
		zap.String("fallback", catalog[0].Name))
}

func (s *ScheduleService) audit(ctx context.Context, actorID int64, resourceRef string) {
	if s.auditor == nil {
		return
	}
	actor := actorID
	if err := s.auditor.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actor,
		Action:     models.AuditActionScheduleWrite,
		Resource:   "schedule",
		ResourceID: &resourceRef,
		NewValues:  []byte(`{"status":"saved"}`),
	}); err != nil {
		s.logger.Warn("failed to record schedule audit log", zap.Error(err))
	}
}
