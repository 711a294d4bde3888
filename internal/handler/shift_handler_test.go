package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigilo-hq/workforce-api/internal/models"
	"github.com/vigilo-hq/workforce-api/internal/service"
	appErrors "github.com/vigilo-hq/workforce-api/pkg/errors"
)

type stubShiftRepo struct {
	shifts    []models.Shift
	listCalls int
}

func (s *stubShiftRepo) ListAll(ctx context.Context) ([]models.Shift, error) {
	s.listCalls++
	return s.shifts, nil
}

func (s *stubShiftRepo) FindByID(ctx context.Context, id int64) (*models.Shift, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "shift not found")
}

func (s *stubShiftRepo) Create(ctx context.Context, shift *models.Shift) error { return nil }
func (s *stubShiftRepo) Update(ctx context.Context, shift *models.Shift) error { return nil }
func (s *stubShiftRepo) Delete(ctx context.Context, id int64) error            { return nil }

type stubShiftCache struct {
	stored   []models.Shift
	hasValue bool
}

func (s *stubShiftCache) Get(ctx context.Context, key string, dest interface{}) error {
	if !s.hasValue {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*[]models.Shift)) = s.stored
	return nil
}

func (s *stubShiftCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.stored = value.([]models.Shift)
	s.hasValue = true
	return nil
}

func (s *stubShiftCache) DeleteByPattern(ctx context.Context, pattern string) error {
	s.hasValue = false
	s.stored = nil
	return nil
}

type stubShiftMetrics struct {
	hits   int
	misses int
}

func (s *stubShiftMetrics) RecordCacheOperation(hit bool, duration time.Duration) {
	if hit {
		s.hits++
	} else {
		s.misses++
	}
}

type shiftListEnvelope struct {
	Data []models.Shift         `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}

func TestShiftHandlerListSurfacesCacheMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubShiftRepo{shifts: handlerCatalog}
	cache := &stubShiftCache{}
	metrics := &stubShiftMetrics{}
	svc := service.NewShiftService(repo, cache, metrics, time.Minute, true, nil, nil)
	handler := NewShiftHandler(svc)

	c, w := newGinContext(http.MethodGet, "/turnos", nil)
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var first shiftListEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	require.Len(t, first.Data, 2)
	require.Contains(t, first.Meta, "cache_hit")
	assert.Equal(t, false, first.Meta["cache_hit"])
	assert.Contains(t, first.Meta, "processing_time_ms")
	assert.Equal(t, 1, metrics.misses)

	c, w = newGinContext(http.MethodGet, "/turnos", nil)
	handler.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var second shiftListEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	require.Len(t, second.Data, 2)
	assert.Equal(t, true, second.Meta["cache_hit"])
	assert.Equal(t, 1, repo.listCalls, "second request must be served from cache")
	assert.Equal(t, 1, metrics.hits)
}
