package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vigilo-hq/workforce-api/internal/models"
	appErrors "github.com/vigilo-hq/workforce-api/pkg/errors"
)

type mockAttendanceRepo struct {
	open    *models.Attendance
	created *models.Attendance
	closed  bool
}

func (m *mockAttendanceRepo) FindOpenForDay(ctx context.Context, employeeID int64, day time.Time) (*models.Attendance, error) {
	if m.open == nil {
		return nil, sql.ErrNoRows
	}
	return m.open, nil
}

func (m *mockAttendanceRepo) Create(ctx context.Context, att *models.Attendance) error {
	att.ID = 100
	m.created = att
	return nil
}

func (m *mockAttendanceRepo) Close(ctx context.Context, id int64, checkOut time.Time) error {
	m.closed = true
	return nil
}

func (m *mockAttendanceRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	return nil, 0, nil
}

type mockOfficeResolver struct {
	office *models.Office
}

func (m *mockOfficeResolver) FindByQRToken(ctx context.Context, token string) (*models.Office, error) {
	if m.office == nil || m.office.QRToken == nil || *m.office.QRToken != token {
		return nil, sql.ErrNoRows
	}
	return m.office, nil
}

type mockDayScheduleFinder struct {
	entry *models.EntryWithShift
}

func (m *mockDayScheduleFinder) FindForDay(ctx context.Context, employeeID int64, day models.Weekday) (*models.EntryWithShift, error) {
	if m.entry == nil {
		return nil, sql.ErrNoRows
	}
	return m.entry, nil
}

func testOffice() *models.Office {
	token := "valid-token"
	return &models.Office{ID: 3, Name: "Despacho Centro", Latitude: 19.4326, Longitude: -99.1332, QRToken: &token}
}

func newAttendanceService(repo *mockAttendanceRepo, offices *mockOfficeResolver, finder *mockDayScheduleFinder, now time.Time) *AttendanceService {
	svc := NewAttendanceService(repo, offices, finder, &mockCatalog{shifts: serviceCatalog}, &mockEmployeeFinder{}, validator.New(), zap.NewNop(), AttendanceConfig{GeofenceRadiusMeters: 150, LateGrace: 10 * time.Minute}, "Mañana")
	svc.now = func() time.Time { return now }
	return svc
}

func TestScanOpensAttendance(t *testing.T) {
	repo := &mockAttendanceRepo{}
	// Monday 08:05, within the grace period of the 08:00 shift.
	now := time.Date(2026, time.August, 24, 8, 5, 0, 0, time.UTC)
	svc := newAttendanceService(repo, &mockOfficeResolver{office: testOffice()}, &mockDayScheduleFinder{}, now)

	res, err := svc.Scan(context.Background(), 7, CheckInRequest{QRToken: "valid-token", Latitude: 19.4326, Longitude: -99.1332})
	require.NoError(t, err)
	assert.Equal(t, ScanActionCheckIn, res.Action)
	require.NotNil(t, repo.created)
	assert.False(t, repo.created.Late)
	require.NotNil(t, repo.created.InRange)
	assert.True(t, *repo.created.InRange)
	assert.Equal(t, "Despacho Centro", res.OfficeName)
}

func TestScanMarksLateAfterGrace(t *testing.T) {
	repo := &mockAttendanceRepo{}
	now := time.Date(2026, time.August, 24, 8, 20, 0, 0, time.UTC)
	svc := newAttendanceService(repo, &mockOfficeResolver{office: testOffice()}, &mockDayScheduleFinder{}, now)

	_, err := svc.Scan(context.Background(), 7, CheckInRequest{QRToken: "valid-token", Latitude: 19.4326, Longitude: -99.1332})
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.True(t, repo.created.Late)
}

func TestScanClosesOpenAttendance(t *testing.T) {
	checkIn := time.Date(2026, time.August, 24, 8, 0, 0, 0, time.UTC)
	repo := &mockAttendanceRepo{open: &models.Attendance{ID: 55, EmployeeID: 7, CheckIn: &checkIn}}
	now := checkIn.Add(8 * time.Hour)
	svc := newAttendanceService(repo, &mockOfficeResolver{office: testOffice()}, &mockDayScheduleFinder{}, now)

	res, err := svc.Scan(context.Background(), 7, CheckInRequest{QRToken: "valid-token", Latitude: 19.4326, Longitude: -99.1332})
	require.NoError(t, err)
	assert.Equal(t, ScanActionCheckOut, res.Action)
	assert.True(t, repo.closed)
	require.NotNil(t, res.Attendance.CheckOut)
}

func TestScanRejectsOutOfRange(t *testing.T) {
	repo := &mockAttendanceRepo{}
	now := time.Date(2026, time.August, 24, 8, 0, 0, 0, time.UTC)
	svc := newAttendanceService(repo, &mockOfficeResolver{office: testOffice()}, &mockDayScheduleFinder{}, now)

	// Roughly 2km away from the office.
	_, err := svc.Scan(context.Background(), 7, CheckInRequest{QRToken: "valid-token", Latitude: 19.4506, Longitude: -99.1332})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrOutOfRange.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestScanRejectsUnknownToken(t *testing.T) {
	repo := &mockAttendanceRepo{}
	now := time.Date(2026, time.August, 24, 8, 0, 0, 0, time.UTC)
	svc := newAttendanceService(repo, &mockOfficeResolver{office: testOffice()}, &mockDayScheduleFinder{}, now)

	_, err := svc.Scan(context.Background(), 7, CheckInRequest{QRToken: "stale-token", Latitude: 19.4326, Longitude: -99.1332})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestScanUsesAssignedShiftForLateness(t *testing.T) {
	repo := &mockAttendanceRepo{}
	finder := &mockDayScheduleFinder{entry: &models.EntryWithShift{
		ID: 1, DayOfWeek: models.Monday, Shift: serviceCatalog[1],
	}}
	// 14:05 against a 14:00 evening shift with 10m grace.
	now := time.Date(2026, time.August, 24, 14, 5, 0, 0, time.UTC)
	svc := newAttendanceService(repo, &mockOfficeResolver{office: testOffice()}, finder, now)

	_, err := svc.Scan(context.Background(), 7, CheckInRequest{QRToken: "valid-token", Latitude: 19.4326, Longitude: -99.1332})
	require.NoError(t, err)
	require.NotNil(t, repo.created)
	assert.False(t, repo.created.Late)
	require.NotNil(t, repo.created.ShiftID)
	assert.Equal(t, int64(2), *repo.created.ShiftID)
}

func TestHaversineMeters(t *testing.T) {
	// Same point.
	assert.InDelta(t, 0, haversineMeters(19.4326, -99.1332, 19.4326, -99.1332), 0.01)
	// One degree of latitude is about 111km.
	d := haversineMeters(0, 0, 1, 0)
	assert.InDelta(t, 111195, d, 200)
}
