package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/vigilo-hq/workforce-api/internal/models"
	appErrors "github.com/vigilo-hq/workforce-api/pkg/errors"
)

type officeRepository interface {
	List(ctx context.Context, filter models.OfficeFilter) ([]models.Office, int, error)
	FindByID(ctx context.Context, id int64) (*models.Office, error)
	Create(ctx context.Context, office *models.Office) error
	Update(ctx context.Context, office *models.Office) error
	UpdateQRToken(ctx context.Context, id int64, token string) error
	Delete(ctx context.Context, id int64) error
}

type officeAuditor interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// OfficeRequest is the create/update payload for an office.
type OfficeRequest struct {
	Name           string   `json:"name" validate:"required,min=2,max=120"`
	Latitude       float64  `json:"latitude" validate:"min=-90,max=90"`
	Longitude      float64  `json:"longitude" validate:"min=-180,max=180"`
	GeofenceRadius *float64 `json:"geofence_radius,omitempty" validate:"omitempty,gt=0"`
}

// OfficeService manages branch locations and their QR tokens.
type OfficeService struct {
	repo          officeRepository
	auditor       officeAuditor
	validator     *validator.Validate
	logger        *zap.Logger
	qrTokenLength int
}

// NewOfficeService constructs an OfficeService. qrTokenLength is the
// byte length of generated QR tokens before hex encoding.
func NewOfficeService(repo officeRepository, auditor officeAuditor, validate *validator.Validate, logger *zap.Logger, qrTokenLength int) *OfficeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if qrTokenLength <= 0 {
		qrTokenLength = 32
	}
	return &OfficeService{repo: repo, auditor: auditor, validator: validate, logger: logger, qrTokenLength: qrTokenLength}
}

// List returns offices matching the filter.
func (s *OfficeService) List(ctx context.Context, filter models.OfficeFilter) ([]models.Office, *models.Pagination, error) {
	offices, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list offices")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return offices, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads a single office by id.
func (s *OfficeService) Get(ctx context.Context, id int64) (*models.Office, error) {
	office, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "office not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load office")
	}
	return office, nil
}

// Create stores a new office. A QR token is generated up front so the
// office is immediately scannable.
func (s *OfficeService) Create(ctx context.Context, req OfficeRequest) (*models.Office, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid office payload")
	}

	token, err := s.generateToken()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate qr token")
	}

	office := &models.Office{
		Name:           req.Name,
		Latitude:       req.Latitude,
		Longitude:      req.Longitude,
		GeofenceRadius: req.GeofenceRadius,
		QRToken:        &token,
	}
	if err := s.repo.Create(ctx, office); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create office")
	}

	s.logger.Info("office created", zap.Int64("office_id", office.ID), zap.String("name", office.Name))
	return office, nil
}

// Update mutates an office's name, location or geofence radius.
func (s *OfficeService) Update(ctx context.Context, id int64, req OfficeRequest) (*models.Office, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid office payload")
	}

	office, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	office.Name = req.Name
	office.Latitude = req.Latitude
	office.Longitude = req.Longitude
	office.GeofenceRadius = req.GeofenceRadius

	if err := s.repo.Update(ctx, office); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update office")
	}
	return office, nil
}

// RotateQRToken replaces the office's QR token. The old token stops
// resolving the moment the new one is stored.
func (s *OfficeService) RotateQRToken(ctx context.Context, id int64, actorID int64) (*models.Office, error) {
	office, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	token, err := s.generateToken()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to generate qr token")
	}

	if err := s.repo.UpdateQRToken(ctx, id, token); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rotate qr token")
	}
	office.QRToken = &token

	if s.auditor != nil {
		officeRef := strconv.FormatInt(id, 10)
		if err := s.auditor.CreateAuditLog(ctx, &models.AuditLog{
			UserID:     &actorID,
			Action:     models.AuditActionQRRotate,
			Resource:   "office",
			ResourceID: &officeRef,
			NewValues:  []byte(`{"status":"rotated"}`),
		}); err != nil {
			s.logger.Warn("failed to record qr rotation audit log", zap.Error(err))
		}
	}

	s.logger.Info("office qr token rotated", zap.Int64("office_id", id))
	return office, nil
}

// Delete removes an office.
func (s *OfficeService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete office")
	}
	return nil
}

func (s *OfficeService) generateToken() (string, error) {
	buf := make([]byte, s.qrTokenLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
