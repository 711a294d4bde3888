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

type shiftRepository interface {
	ListAll(ctx context.Context) ([]models.Shift, error)
	FindByID(ctx context.Context, id int64) (*models.Shift, error)
	Create(ctx context.Context, shift *models.Shift) error
	Update(ctx context.Context, shift *models.Shift) error
	Delete(ctx context.Context, id int64) error
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type cacheMetrics interface {
	RecordCacheOperation(hit bool, duration time.Duration)
}

const shiftCatalogCacheKey = "catalog:shifts"

// ShiftRequest is the create/update payload for a shift.
type ShiftRequest struct {
	Name      string `json:"name" validate:"required,min=1,max=60"`
	StartTime string `json:"start_time" validate:"required,len=5"`
	EndTime   string `json:"end_time" validate:"required,len=5"`
}

// ShiftService manages the shift catalog. The catalog changes rarely
// and is read on every schedule view, so reads go through the cache.
type ShiftService struct {
	repo      shiftRepository
	cache     catalogCache
	metrics   cacheMetrics
	cacheTTL  time.Duration
	enabled   bool
	validator *validator.Validate
	logger    *zap.Logger
}

// NewShiftService constructs a ShiftService. A nil cache or a false
// enabled flag disables caching entirely; a nil metrics recorder
// disables cache metrics.
func NewShiftService(repo shiftRepository, cache catalogCache, metrics cacheMetrics, cacheTTL time.Duration, enabled bool, validate *validator.Validate, logger *zap.Logger) *ShiftService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &ShiftService{repo: repo, cache: cache, metrics: metrics, cacheTTL: cacheTTL, enabled: enabled, validator: validate, logger: logger}
}

func (s *ShiftService) cacheEnabled() bool {
	return s.enabled && s.cache != nil
}

func (s *ShiftService) recordCacheOperation(hit bool, duration time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit, duration)
	}
}

// Catalog returns all shifts ordered by start time, cached.
func (s *ShiftService) Catalog(ctx context.Context) ([]models.Shift, error) {
	shifts, _, err := s.CatalogCached(ctx)
	return shifts, err
}

// CatalogCached returns the catalog plus whether it was served from
// cache, recording hit/miss metrics along the way.
func (s *ShiftService) CatalogCached(ctx context.Context) ([]models.Shift, bool, error) {
	if s.cacheEnabled() {
		start := time.Now()
		var cached []models.Shift
		err := s.cache.Get(ctx, shiftCatalogCacheKey, &cached)
		if err == nil {
			s.recordCacheOperation(true, time.Since(start))
			return cached, true, nil
		}
		s.recordCacheOperation(false, time.Since(start))
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("shift catalog cache read failed", zap.Error(err))
		}
	}

	shifts, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list shifts")
	}

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, shiftCatalogCacheKey, shifts, s.cacheTTL); err != nil {
			s.logger.Warn("shift catalog cache write failed", zap.Error(err))
		}
	}
	return shifts, false, nil
}

// Get loads a single shift by id.
func (s *ShiftService) Get(ctx context.Context, id int64) (*models.Shift, error) {
	shift, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "shift not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load shift")
	}
	return shift, nil
}

// Create stores a new shift and invalidates the catalog cache.
func (s *ShiftService) Create(ctx context.Context, req ShiftRequest) (*models.Shift, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	shift := &models.Shift{Name: req.Name, StartTime: req.StartTime, EndTime: req.EndTime}
	if err := s.repo.Create(ctx, shift); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create shift")
	}
	s.invalidate(ctx)
	return shift, nil
}

// Update mutates a shift and invalidates the catalog cache.
func (s *ShiftService) Update(ctx context.Context, id int64, req ShiftRequest) (*models.Shift, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	shift, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	shift.Name = req.Name
	shift.StartTime = req.StartTime
	shift.EndTime = req.EndTime

	if err := s.repo.Update(ctx, shift); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update shift")
	}
	s.invalidate(ctx)
	return shift, nil
}

// Delete removes a shift and invalidates the catalog cache. Shifts
// referenced by schedule rows are protected by foreign keys.
func (s *ShiftService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "shift is in use and cannot be deleted")
	}
	s.invalidate(ctx)
	return nil
}

func (s *ShiftService) validateRequest(req ShiftRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid shift payload")
	}
	for _, v := range []string{req.StartTime, req.EndTime} {
		if _, err := time.Parse("15:04", v); err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "shift times must use the HH:MM format")
		}
	}
	return nil
}

func (s *ShiftService) invalidate(ctx context.Context) {
	if !s.cacheEnabled() {
		return
	}
	if err := s.cache.DeleteByPattern(ctx, shiftCatalogCacheKey); err != nil {
		s.logger.Warn("shift catalog cache invalidation failed", zap.Error(err))
	}
}
