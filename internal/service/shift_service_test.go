package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigilo-hq/workforce-api/internal/models"
	appErrors "github.com/vigilo-hq/workforce-api/pkg/errors"
)

type mockShiftRepo struct {
	shifts    []models.Shift
	listCalls int
}

func (m *mockShiftRepo) ListAll(ctx context.Context) ([]models.Shift, error) {
	m.listCalls++
	return m.shifts, nil
}

func (m *mockShiftRepo) FindByID(ctx context.Context, id int64) (*models.Shift, error) {
	for i := range m.shifts {
		if m.shifts[i].ID == id {
			return &m.shifts[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "shift not found")
}

func (m *mockShiftRepo) Create(ctx context.Context, shift *models.Shift) error {
	shift.ID = int64(len(m.shifts) + 1)
	m.shifts = append(m.shifts, *shift)
	return nil
}

func (m *mockShiftRepo) Update(ctx context.Context, shift *models.Shift) error { return nil }
func (m *mockShiftRepo) Delete(ctx context.Context, id int64) error            { return nil }

type mockShiftCache struct {
	stored      []models.Shift
	hasValue    bool
	getCalls    int
	setCalls    int
	invalidated int
}

func (m *mockShiftCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.getCalls++
	if !m.hasValue {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*[]models.Shift)) = m.stored
	return nil
}

func (m *mockShiftCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.setCalls++
	m.stored = value.([]models.Shift)
	m.hasValue = true
	return nil
}

func (m *mockShiftCache) DeleteByPattern(ctx context.Context, pattern string) error {
	m.invalidated++
	m.hasValue = false
	m.stored = nil
	return nil
}

type mockCacheRecorder struct {
	hits   int
	misses int
}

func (m *mockCacheRecorder) RecordCacheOperation(hit bool, duration time.Duration) {
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

var shiftTestCatalog = []models.Shift{
	{ID: 1, Name: "Mañana", StartTime: "08:00", EndTime: "15:00"},
	{ID: 2, Name: "Tarde", StartTime: "14:00", EndTime: "21:00"},
}

func TestCatalogCachedRecordsMissThenHit(t *testing.T) {
	repo := &mockShiftRepo{shifts: shiftTestCatalog}
	cache := &mockShiftCache{}
	recorder := &mockCacheRecorder{}
	svc := NewShiftService(repo, cache, recorder, time.Minute, true, nil, nil)

	shifts, hit, err := svc.CatalogCached(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, shifts, 2)
	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, 1, cache.setCalls)
	assert.Equal(t, 1, recorder.misses)
	assert.Equal(t, 0, recorder.hits)

	shifts, hit, err = svc.CatalogCached(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Len(t, shifts, 2)
	assert.Equal(t, 1, repo.listCalls, "second read must be served from cache")
	assert.Equal(t, 1, recorder.hits)
	assert.Equal(t, 1, recorder.misses)
}

func TestCatalogCacheDisabledSkipsCache(t *testing.T) {
	repo := &mockShiftRepo{shifts: shiftTestCatalog}
	cache := &mockShiftCache{}
	recorder := &mockCacheRecorder{}
	svc := NewShiftService(repo, cache, recorder, time.Minute, false, nil, nil)

	_, hit, err := svc.CatalogCached(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)

	_, _, err = svc.CatalogCached(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, repo.listCalls)
	assert.Equal(t, 0, cache.getCalls)
	assert.Equal(t, 0, cache.setCalls)
	assert.Equal(t, 0, recorder.hits)
	assert.Equal(t, 0, recorder.misses)
}

func TestCatalogDelegatesToCachedRead(t *testing.T) {
	repo := &mockShiftRepo{shifts: shiftTestCatalog}
	cache := &mockShiftCache{stored: shiftTestCatalog, hasValue: true}
	recorder := &mockCacheRecorder{}
	svc := NewShiftService(repo, cache, recorder, time.Minute, true, nil, nil)

	shifts, err := svc.Catalog(context.Background())
	require.NoError(t, err)
	assert.Len(t, shifts, 2)
	assert.Equal(t, 0, repo.listCalls)
	assert.Equal(t, 1, recorder.hits)
}

func TestShiftCreateInvalidatesCatalogCache(t *testing.T) {
	repo := &mockShiftRepo{shifts: append([]models.Shift(nil), shiftTestCatalog...)}
	cache := &mockShiftCache{stored: shiftTestCatalog, hasValue: true}
	svc := NewShiftService(repo, cache, nil, time.Minute, true, nil, nil)

	_, err := svc.Create(context.Background(), ShiftRequest{Name: "Nocturno", StartTime: "22:00", EndTime: "06:00"})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)

	shifts, hit, err := svc.CatalogCached(context.Background())
	require.NoError(t, err)
	assert.False(t, hit, "invalidated cache must not serve the stale catalog")
	assert.Len(t, shifts, 3)
}
