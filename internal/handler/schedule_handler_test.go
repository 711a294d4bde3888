package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vigilo-hq/workforce-api/internal/middleware"
	"github.com/vigilo-hq/workforce-api/internal/models"
	"github.com/vigilo-hq/workforce-api/internal/service"
)

type stubScheduleRepo struct {
	entries  []models.EntryWithShift
	replaced []models.EntryUpdate
}

func (s *stubScheduleRepo) ListByEmployee(ctx context.Context, employeeID int64) ([]models.EntryWithShift, error) {
	return s.entries, nil
}

func (s *stubScheduleRepo) ListByOffice(ctx context.Context, officeID int64) ([]models.EmployeeWithSchedule, error) {
	return nil, nil
}

func (s *stubScheduleRepo) ReplaceWeek(ctx context.Context, employeeID int64, entries []models.EntryUpdate) error {
	s.replaced = entries
	return nil
}

func (s *stubScheduleRepo) ReplaceOfficeWeeks(ctx context.Context, updates []models.EmployeeWeekUpdate) error {
	return nil
}

type stubCatalog struct {
	shifts []models.Shift
}

func (s *stubCatalog) Catalog(ctx context.Context) ([]models.Shift, error) {
	return s.shifts, nil
}

type stubEmployeeFinder struct{}

func (s *stubEmployeeFinder) Get(ctx context.Context, id int64) (*models.EmployeeRecord, error) {
	return &models.EmployeeRecord{Employee: models.Employee{ID: id}}, nil
}

type stubAuditor struct{}

func (s *stubAuditor) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	return nil
}

var handlerCatalog = []models.Shift{
	{ID: 1, Name: "Mañana", StartTime: "08:00", EndTime: "15:00"},
	{ID: 2, Name: "Tarde", StartTime: "14:00", EndTime: "21:00"},
}

func newScheduleTestHandler(repo *stubScheduleRepo) *ScheduleHandler {
	svc := service.NewScheduleService(repo, &stubCatalog{shifts: handlerCatalog}, &stubEmployeeFinder{}, &stubAuditor{}, validator.New(), zap.NewNop(), "Mañana")
	return NewScheduleHandler(svc)
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestScheduleHandlerGetEmployeeWeek(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubScheduleRepo{entries: []models.EntryWithShift{
		{ID: 9, DayOfWeek: models.Wednesday, Shift: handlerCatalog[1]},
	}}
	handler := newScheduleTestHandler(repo)

	c, w := newGinContext(http.MethodGet, "/horarios/empleado/7", nil)
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.GetEmployeeWeek(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			EmployeeID int64             `json:"employee_id"`
			Entries    []json.RawMessage `json:"entries"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Entries, 7)

	// Filled days carry a null id on the wire, persisted days keep theirs.
	var monday struct {
		ID *int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data.Entries[0], &monday))
	assert.Nil(t, monday.ID)

	var wednesday struct {
		ID *int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(envelope.Data.Entries[2], &wednesday))
	require.NotNil(t, wednesday.ID)
	assert.Equal(t, int64(9), *wednesday.ID)
}

func TestScheduleHandlerUpdateEmployeeWeek(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubScheduleRepo{}
	handler := newScheduleTestHandler(repo)

	payload, _ := json.Marshal(models.WeekUpdate{Entries: []models.EntryUpdate{
		{DayOfWeek: models.Monday, ShiftID: 2},
	}})
	c, w := newGinContext(http.MethodPatch, "/horarios/empleado/7", payload)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: 1, Role: models.RoleSupervisor})

	handler.UpdateEmployeeWeek(c)
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, repo.replaced, 1)
	assert.Equal(t, int64(2), repo.replaced[0].ShiftID)
}

func TestScheduleHandlerUpdateRequiresAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newScheduleTestHandler(&stubScheduleRepo{})

	c, w := newGinContext(http.MethodPatch, "/horarios/empleado/7", []byte(`{"entries":[]}`))
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	handler.UpdateEmployeeWeek(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestScheduleHandlerRejectsBadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newScheduleTestHandler(&stubScheduleRepo{})

	c, w := newGinContext(http.MethodGet, "/horarios/empleado/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	handler.GetEmployeeWeek(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
