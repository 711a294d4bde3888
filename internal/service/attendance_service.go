package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vigilo-hq/workforce-api/internal/models"
	"github.com/vigilo-hq/workforce-api/internal/schedule"
	appErrors "github.com/vigilo-hq/workforce-api/pkg/errors"
)

type attendanceRepository interface {
	FindOpenForDay(ctx context.Context, employeeID int64, day time.Time) (*models.Attendance, error)
	Create(ctx context.Context, att *models.Attendance) error
	Close(ctx context.Context, id int64, checkOut time.Time) error
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
}

type officeTokenResolver interface {
	FindByQRToken(ctx context.Context, token string) (*models.Office, error)
}

type dayScheduleFinder interface {
	FindForDay(ctx context.Context, employeeID int64, day models.Weekday) (*models.EntryWithShift, error)
}

// CheckInRequest is the payload of a QR scan.
type CheckInRequest struct {
	QRToken   string  `json:"qr_token" validate:"required"`
	Latitude  float64 `json:"latitude" validate:"min=-90,max=90"`
	Longitude float64 `json:"longitude" validate:"min=-180,max=180"`
}

// Scan actions returned to the client.
const (
	ScanActionCheckIn  = "check_in"
	ScanActionCheckOut = "check_out"
)

// ScanResult reports what a QR scan did.
type ScanResult struct {
	Action     string            `json:"action"`
	Attendance models.Attendance `json:"attendance"`
	OfficeName string            `json:"office_name"`
}

// AttendanceConfig tunes the geofence and late rules.
type AttendanceConfig struct {
	GeofenceRadiusMeters float64
	LateGrace            time.Duration
}

// AttendanceService implements the QR check-in/check-out flow. The
// first scan of the day opens a record, the second closes it.
type AttendanceService struct {
	repo      attendanceRepository
	offices   officeTokenResolver
	schedules dayScheduleFinder
	shifts    shiftCatalogProvider
	employees employeeFinder
	validator *validator.Validate
	logger    *zap.Logger
	config    AttendanceConfig

	defaultShiftName string
	now              func() time.Time
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(repo attendanceRepository, offices officeTokenResolver, schedules dayScheduleFinder, shifts shiftCatalogProvider, employees employeeFinder, validate *validator.Validate, logger *zap.Logger, config AttendanceConfig, defaultShiftName string) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.GeofenceRadiusMeters <= 0 {
		config.GeofenceRadiusMeters = 150
	}
	return &AttendanceService{
		repo:             repo,
		offices:          offices,
		schedules:        schedules,
		shifts:           shifts,
		employees:        employees,
		validator:        validate,
		logger:           logger,
		config:           config,
		defaultShiftName: defaultShiftName,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// Scan processes a QR scan for the given employee. It resolves the
// office from the token, checks the geofence and either opens or
// closes today's attendance record.
func (s *AttendanceService) Scan(ctx context.Context, employeeID int64, req CheckInRequest) (*ScanResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scan payload")
	}

	emp, err := s.employees.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if emp.Terminated {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "terminated employees cannot register attendance")
	}

	office, err := s.offices.FindByQRToken(ctx, req.QRToken)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "qr code is not valid")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve qr token")
	}

	radius := s.config.GeofenceRadiusMeters
	if office.GeofenceRadius != nil && *office.GeofenceRadius > 0 {
		radius = *office.GeofenceRadius
	}
	distance := haversineMeters(office.Latitude, office.Longitude, req.Latitude, req.Longitude)
	inRange := distance <= radius
	if !inRange {
		s.logger.Info("scan outside geofence",
			zap.Int64("employee_id", employeeID),
			zap.Int64("office_id", office.ID),
			zap.Float64("distance_m", distance))
		return nil, appErrors.Clone(appErrors.ErrOutOfRange, "location is outside the office range")
	}

	now := s.now()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	open, err := s.repo.FindOpenForDay(ctx, employeeID, day)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up open attendance")
	}

	if open != nil {
		if err := s.repo.Close(ctx, open.ID, now); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to close attendance")
		}
		open.CheckOut = &now
		return &ScanResult{Action: ScanActionCheckOut, Attendance: *open, OfficeName: office.Name}, nil
	}

	shift, err := s.effectiveShift(ctx, employeeID, models.FromTime(now))
	if err != nil {
		return nil, err
	}

	late := s.isLate(now, shift)
	att := &models.Attendance{
		EmployeeID: employeeID,
		OfficeID:   &office.ID,
		ShiftID:    &shift.ID,
		Day:        day,
		CheckIn:    &now,
		Latitude:   &req.Latitude,
		Longitude:  &req.Longitude,
		InRange:    &inRange,
		Late:       late,
	}
	if err := s.repo.Create(ctx, att); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create attendance")
	}

	s.logger.Info("attendance opened",
		zap.Int64("employee_id", employeeID),
		zap.Int64("office_id", office.ID),
		zap.Bool("late", late))
	return &ScanResult{Action: ScanActionCheckIn, Attendance: *att, OfficeName: office.Name}, nil
}

// List returns attendance records for supervisors and admins.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendances")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return records, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// effectiveShift resolves the shift in force for a weekday: the
// assigned row when one exists, otherwise the reconciled default.
func (s *AttendanceService) effectiveShift(ctx context.Context, employeeID int64, day models.Weekday) (models.Shift, error) {
	entry, err := s.schedules.FindForDay(ctx, employeeID, day)
	if err == nil {
		return entry.Shift, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Shift{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day schedule")
	}

	catalog, err := s.shifts.Catalog(ctx)
	if err != nil {
		return models.Shift{}, err
	}
	def, fellBack, err := schedule.ResolveDefaultShift(catalog, s.defaultShiftName)
	if err != nil {
		return models.Shift{}, err
	}
	if fellBack {
		s.logger.Warn("default shift name not found in catalog, using first entry",
			zap.String("preferred", s.defaultShiftName),
			zap.String("fallback", def.Name))
	}
	return def, nil
}

func (s *AttendanceService) isLate(now time.Time, shift models.Shift) bool {
	start, err := time.Parse("15:04", shift.StartTime)
	if err != nil {
		return false
	}
	shiftStart := time.Date(now.Year(), now.Month(), now.Day(), start.Hour(), start.Minute(), 0, 0, now.Location())
	return now.After(shiftStart.Add(s.config.LateGrace))
}

const earthRadiusMeters = 6371000.0

// haversineMeters returns the great-circle distance between two
// coordinates in meters.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}
