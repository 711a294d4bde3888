package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vigilo-hq/workforce-api/internal/models"
	appErrors "github.com/vigilo-hq/workforce-api/pkg/errors"
)

type mockScheduleRepo struct {
	byEmployee      []models.EntryWithShift
	byOffice        []models.EmployeeWithSchedule
	replacedWeek    []models.EntryUpdate
	replacedOffice  []models.EmployeeWeekUpdate
	replaceWeekErr  error
	replaceBulkErr  error
	listEmployeeErr error
}

func (m *mockScheduleRepo) ListByEmployee(ctx context.Context, employeeID int64) ([]models.EntryWithShift, error) {
	if m.listEmployeeErr != nil {
		return nil, m.listEmployeeErr
	}
	return m.byEmployee, nil
}

func (m *mockScheduleRepo) ListByOffice(ctx context.Context, officeID int64) ([]models.EmployeeWithSchedule, error) {
	return m.byOffice, nil
}

func (m *mockScheduleRepo) ReplaceWeek(ctx context.Context, employeeID int64, entries []models.EntryUpdate) error {
	if m.replaceWeekErr != nil {
		return m.replaceWeekErr
	}
	m.replacedWeek = entries
	return nil
}

func (m *mockScheduleRepo) ReplaceOfficeWeeks(ctx context.Context, updates []models.EmployeeWeekUpdate) error {
	if m.replaceBulkErr != nil {
		return m.replaceBulkErr
	}
	m.replacedOffice = updates
	return nil
}

type mockCatalog struct {
	shifts []models.Shift
	err    error
}

func (m *mockCatalog) Catalog(ctx context.Context) ([]models.Shift, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.shifts, nil
}

type mockEmployeeFinder struct {
	record *models.EmployeeRecord
	err    error
}

func (m *mockEmployeeFinder) Get(ctx context.Context, id int64) (*models.EmployeeRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.record != nil {
		return m.record, nil
	}
	return &models.EmployeeRecord{Employee: models.Employee{ID: id}}, nil
}

type mockAuditor struct {
	logs []*models.AuditLog
}

func (m *mockAuditor) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

var serviceCatalog = []models.Shift{
	{ID: 1, Name: "Mañana", StartTime: "08:00", EndTime: "15:00"},
	{ID: 2, Name: "Tarde", StartTime: "14:00", EndTime: "21:00"},
}

func newScheduleService(repo *mockScheduleRepo, catalog *mockCatalog, auditor *mockAuditor) *ScheduleService {
	return NewScheduleService(repo, catalog, &mockEmployeeFinder{}, auditor, validator.New(), zap.NewNop(), "Mañana")
}

func TestGetEmployeeWeekFillsDefaults(t *testing.T) {
	repo := &mockScheduleRepo{byEmployee: []models.EntryWithShift{
		{ID: 5, DayOfWeek: models.Wednesday, Shift: serviceCatalog[1]},
	}}
	svc := newScheduleService(repo, &mockCatalog{shifts: serviceCatalog}, nil)

	week, err := svc.GetEmployeeWeek(context.Background(), 1)
	require.NoError(t, err)

	entries := week.Entries()
	require.Len(t, entries, 7)
	assert.Equal(t, "Tarde", entries[2].Shift.Name)
	assert.False(t, entries[2].ID.IsPlaceholder())
	assert.Equal(t, "Mañana", entries[0].Shift.Name)
	assert.True(t, entries[0].ID.IsPlaceholder())
}

func TestGetEmployeeWeekEmptyCatalog(t *testing.T) {
	svc := newScheduleService(&mockScheduleRepo{}, &mockCatalog{}, nil)

	_, err := svc.GetEmployeeWeek(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrShiftCatalogEmpty.Code, appErrors.FromError(err).Code)
}

func TestUpdateEmployeeWeek(t *testing.T) {
	repo := &mockScheduleRepo{}
	auditor := &mockAuditor{}
	svc := newScheduleService(repo, &mockCatalog{shifts: serviceCatalog}, auditor)

	payload := models.WeekUpdate{Entries: []models.EntryUpdate{
		{DayOfWeek: models.Monday, ShiftID: 2},
		{DayOfWeek: models.Tuesday, ShiftID: 1},
	}}
	week, err := svc.UpdateEmployeeWeek(context.Background(), 1, payload, 99)
	require.NoError(t, err)

	assert.Len(t, repo.replacedWeek, 2)
	assert.Len(t, week.Entries(), 7)
	require.Len(t, auditor.logs, 1)
	assert.Equal(t, models.AuditActionScheduleWrite, auditor.logs[0].Action)
}

func TestUpdateEmployeeWeekRejectsUnknownShift(t *testing.T) {
	repo := &mockScheduleRepo{}
	svc := newScheduleService(repo, &mockCatalog{shifts: serviceCatalog}, nil)

	payload := models.WeekUpdate{Entries: []models.EntryUpdate{{DayOfWeek: models.Monday, ShiftID: 42}}}
	_, err := svc.UpdateEmployeeWeek(context.Background(), 1, payload, 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.replacedWeek)
}

func TestUpdateEmployeeWeekRejectsDuplicateDays(t *testing.T) {
	svc := newScheduleService(&mockScheduleRepo{}, &mockCatalog{shifts: serviceCatalog}, nil)

	payload := models.WeekUpdate{Entries: []models.EntryUpdate{
		{DayOfWeek: models.Monday, ShiftID: 1},
		{DayOfWeek: models.Monday, ShiftID: 2},
	}}
	_, err := svc.UpdateEmployeeWeek(context.Background(), 1, payload, 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestGetOfficeWeeks(t *testing.T) {
	repo := &mockScheduleRepo{byOffice: []models.EmployeeWithSchedule{
		{EmployeeID: 1, EmployeeNumber: "E-001", FirstName: "Ana", LastName: "García",
			Entries: []models.EntryWithShift{{ID: 4, DayOfWeek: models.Monday, Shift: serviceCatalog[1]}}},
		{EmployeeID: 2, EmployeeNumber: "E-002", FirstName: "Luis", LastName: "Pérez"},
	}}
	svc := newScheduleService(repo, &mockCatalog{shifts: serviceCatalog}, nil)

	weeks, err := svc.GetOfficeWeeks(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, weeks, 2)
	assert.Equal(t, "Tarde", weeks[0].Week[0].Shift.Name)
	for _, e := range weeks[1].Week.Entries() {
		assert.True(t, e.ID.IsPlaceholder())
	}
}

func TestUpdateOfficeWeeksBulk(t *testing.T) {
	repo := &mockScheduleRepo{}
	auditor := &mockAuditor{}
	svc := newScheduleService(repo, &mockCatalog{shifts: serviceCatalog}, auditor)

	updates := []models.EmployeeWeekUpdate{
		{EmployeeID: 1, Entries: []models.EntryUpdate{{DayOfWeek: models.Monday, ShiftID: 1}}},
		{EmployeeID: 2, Entries: []models.EntryUpdate{{DayOfWeek: models.Friday, ShiftID: 2}}},
	}
	_, err := svc.UpdateOfficeWeeks(context.Background(), 9, updates, 99)
	require.NoError(t, err)
	assert.Len(t, repo.replacedOffice, 2)
	assert.Len(t, auditor.logs, 1)
}

func TestUpdateOfficeWeeksRejectsEmptyPayload(t *testing.T) {
	svc := newScheduleService(&mockScheduleRepo{}, &mockCatalog{shifts: serviceCatalog}, nil)

	_, err := svc.UpdateOfficeWeeks(context.Background(), 9, nil, 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
