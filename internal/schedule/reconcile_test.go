package schedule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigilo-hq/workforce-api/internal/models"
	appErrors "github.com/vigilo-hq/workforce-api/pkg/errors"
)

var testCatalog = []models.Shift{
	{ID: 1, Name: "Mañana", StartTime: "08:00", EndTime: "15:00"},
	{ID: 2, Name: "Tarde", StartTime: "14:00", EndTime: "21:00"},
	{ID: 3, Name: "Descanso", StartTime: "00:00", EndTime: "00:00"},
}

func TestResolveDefaultShift(t *testing.T) {
	t.Run("matches preferred name case-insensitively", func(t *testing.T) {
		def, fellBack, err := ResolveDefaultShift(testCatalog, "mañana")
		require.NoError(t, err)
		assert.False(t, fellBack)
		assert.Equal(t, int64(1), def.ID)
	})

	t.Run("falls back to first catalog entry", func(t *testing.T) {
		def, fellBack, err := ResolveDefaultShift(testCatalog, "Nocturno")
		require.NoError(t, err)
		assert.True(t, fellBack)
		assert.Equal(t, int64(1), def.ID)
	})

	t.Run("empty catalog is a configuration error", func(t *testing.T) {
		_, _, err := ResolveDefaultShift(nil, "Mañana")
		require.Error(t, err)
		appErr := appErrors.FromError(err)
		assert.Equal(t, appErrors.ErrShiftCatalogEmpty.Code, appErr.Code)
		assert.Equal(t, 422, appErr.Status)
	})
}

func TestReconcile(t *testing.T) {
	t.Run("empty input yields a full placeholder week", func(t *testing.T) {
		w, fellBack, err := Reconcile(nil, testCatalog, "Mañana")
		require.NoError(t, err)
		assert.False(t, fellBack)
		require.Len(t, w.Entries(), models.DaysPerWeek)
		for i, e := range w.Entries() {
			assert.Equal(t, models.Weekday(i+1), e.Day)
			assert.True(t, e.ID.IsPlaceholder())
			assert.Equal(t, int64(1), e.Shift.ID)
		}
	})

	t.Run("persisted rows keep identity and shift", func(t *testing.T) {
		raw := []models.EntryWithShift{
			{ID: 41, DayOfWeek: models.Monday, Shift: testCatalog[1]},
			{ID: 42, DayOfWeek: models.Sunday, Shift: testCatalog[2]},
		}
		w, _, err := Reconcile(raw, testCatalog, "Mañana")
		require.NoError(t, err)

		mon := w[0]
		id, real := mon.ID.Value()
		assert.True(t, real)
		assert.Equal(t, int64(41), id)
		assert.Equal(t, "Tarde", mon.Shift.Name)

		sun := w[6]
		id, real = sun.ID.Value()
		assert.True(t, real)
		assert.Equal(t, int64(42), id)
		assert.Equal(t, "Descanso", sun.Shift.Name)

		for _, d := range []int{1, 2, 3, 4, 5} {
			assert.True(t, w[d].ID.IsPlaceholder(), "day %d should be placeholder", d+1)
			assert.Equal(t, "Mañana", w[d].Shift.Name)
		}
	})

	t.Run("duplicate days keep the later row", func(t *testing.T) {
		raw := []models.EntryWithShift{
			{ID: 10, DayOfWeek: models.Wednesday, Shift: testCatalog[0]},
			{ID: 11, DayOfWeek: models.Wednesday, Shift: testCatalog[1]},
		}
		w, _, err := Reconcile(raw, testCatalog, "Mañana")
		require.NoError(t, err)

		id, _ := w[2].ID.Value()
		assert.Equal(t, int64(11), id)
		assert.Equal(t, "Tarde", w[2].Shift.Name)
	})

	t.Run("deterministic for equal input", func(t *testing.T) {
		raw := []models.EntryWithShift{
			{ID: 7, DayOfWeek: models.Friday, Shift: testCatalog[1]},
		}
		a, _, err := Reconcile(raw, testCatalog, "Mañana")
		require.NoError(t, err)
		b, _, err := Reconcile(raw, testCatalog, "Mañana")
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("row with day outside the week fails", func(t *testing.T) {
		raw := []models.EntryWithShift{{ID: 5, DayOfWeek: 8, Shift: testCatalog[0]}}
		_, _, err := Reconcile(raw, testCatalog, "Mañana")
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrWeekInvariant.Code, appErrors.FromError(err).Code)
	})

	t.Run("missing preferred name reports fallback", func(t *testing.T) {
		_, fellBack, err := Reconcile(nil, testCatalog, "Inexistente")
		require.NoError(t, err)
		assert.True(t, fellBack)
	})
}

func TestApplyShiftChange(t *testing.T) {
	base, _, err := Reconcile([]models.EntryWithShift{
		{ID: 21, DayOfWeek: models.Tuesday, Shift: testCatalog[0]},
	}, testCatalog, "Mañana")
	require.NoError(t, err)

	t.Run("replaces the shift and keeps identity", func(t *testing.T) {
		out, err := ApplyShiftChange(base, models.Tuesday, 3, testCatalog)
		require.NoError(t, err)

		id, real := out[1].ID.Value()
		assert.True(t, real)
		assert.Equal(t, int64(21), id)
		assert.Equal(t, "Descanso", out[1].Shift.Name)
	})

	t.Run("placeholder stays placeholder after edit", func(t *testing.T) {
		out, err := ApplyShiftChange(base, models.Thursday, 2, testCatalog)
		require.NoError(t, err)
		assert.True(t, out[3].ID.IsPlaceholder())
		assert.Equal(t, "Tarde", out[3].Shift.Name)
	})

	t.Run("does not mutate the input week", func(t *testing.T) {
		before := base
		_, err := ApplyShiftChange(base, models.Monday, 2, testCatalog)
		require.NoError(t, err)
		assert.Equal(t, before, base)
	})

	t.Run("other days are untouched", func(t *testing.T) {
		out, err := ApplyShiftChange(base, models.Monday, 2, testCatalog)
		require.NoError(t, err)
		for i := 1; i < models.DaysPerWeek; i++ {
			assert.Equal(t, base[i], out[i])
		}
	})

	t.Run("unknown shift id is rejected", func(t *testing.T) {
		_, err := ApplyShiftChange(base, models.Monday, 99, testCatalog)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	})

	t.Run("day outside the week is rejected", func(t *testing.T) {
		_, err := ApplyShiftChange(base, 0, 1, testCatalog)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrWeekInvariant.Code, appErrors.FromError(err).Code)
	})
}

func TestToUpdatePayload(t *testing.T) {
	w, _, err := Reconcile([]models.EntryWithShift{
		{ID: 31, DayOfWeek: models.Saturday, Shift: testCatalog[2]},
	}, testCatalog, "Mañana")
	require.NoError(t, err)

	payload := ToUpdatePayload(w)
	require.Len(t, payload, models.DaysPerWeek)
	for i, u := range payload {
		assert.Equal(t, models.Weekday(i+1), u.DayOfWeek)
	}
	assert.Equal(t, int64(3), payload[5].ShiftID)
	assert.Equal(t, int64(1), payload[0].ShiftID)

	// Saving the payload and reconciling again reproduces the grid.
	raw := make([]models.EntryWithShift, 0, len(payload))
	for i, u := range payload {
		var shift models.Shift
		for _, s := range testCatalog {
			if s.ID == u.ShiftID {
				shift = s
			}
		}
		raw = append(raw, models.EntryWithShift{ID: int64(100 + i), DayOfWeek: u.DayOfWeek, Shift: shift})
	}
	again, _, err := Reconcile(raw, testCatalog, "Mañana")
	require.NoError(t, err)
	for i := range again {
		assert.Equal(t, w[i].Day, again[i].Day)
		assert.Equal(t, w[i].Shift, again[i].Shift)
		assert.False(t, again[i].ID.IsPlaceholder())
	}
}

func TestReconcileOffice(t *testing.T) {
	t.Run("mix of full and empty schedules", func(t *testing.T) {
		raw := []models.EmployeeWithSchedule{
			{
				EmployeeID:     1,
				EmployeeNumber: "E-001",
				FirstName:      "Ana",
				LastName:       "García",
				Entries: []models.EntryWithShift{
					{ID: 51, DayOfWeek: models.Monday, Shift: testCatalog[1]},
				},
			},
			{
				EmployeeID:     2,
				EmployeeNumber: "E-002",
				FirstName:      "Luis",
				LastName:       "Pérez",
			},
		}
		out, fellBack, err := ReconcileOffice(raw, testCatalog, "Mañana")
		require.NoError(t, err)
		assert.False(t, fellBack)
		require.Len(t, out, 2)

		assert.Equal(t, "Tarde", out[0].Week[0].Shift.Name)
		assert.False(t, out[0].Week[0].ID.IsPlaceholder())

		for _, e := range out[1].Week.Entries() {
			assert.True(t, e.ID.IsPlaceholder())
			assert.Equal(t, "Mañana", e.Shift.Name)
		}
	})

	t.Run("empty catalog fails the whole pass", func(t *testing.T) {
		raw := []models.EmployeeWithSchedule{{EmployeeID: 1}}
		_, _, err := ReconcileOffice(raw, nil, "Mañana")
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrShiftCatalogEmpty.Code, appErrors.FromError(err).Code)
	})

	t.Run("bad row fails the whole pass", func(t *testing.T) {
		raw := []models.EmployeeWithSchedule{
			{EmployeeID: 1, Entries: []models.EntryWithShift{{ID: 1, DayOfWeek: models.Monday, Shift: testCatalog[0]}}},
			{EmployeeID: 2, Entries: []models.EntryWithShift{{ID: 2, DayOfWeek: 9, Shift: testCatalog[0]}}},
		}
		out, _, err := ReconcileOffice(raw, testCatalog, "Mañana")
		require.Error(t, err)
		assert.Nil(t, out)
	})
}

func TestEntryIDJSON(t *testing.T) {
	t.Run("placeholder marshals to null", func(t *testing.T) {
		data, err := json.Marshal(Entry{ID: PlaceholderID(), Day: models.Monday, Shift: testCatalog[0]})
		require.NoError(t, err)
		assert.Contains(t, string(data), `"id":null`)
	})

	t.Run("real id marshals to its number", func(t *testing.T) {
		data, err := json.Marshal(Entry{ID: RealID(17), Day: models.Monday, Shift: testCatalog[0]})
		require.NoError(t, err)
		assert.Contains(t, string(data), `"id":17`)
	})

	t.Run("round-trips through unmarshal", func(t *testing.T) {
		var e EntryID
		require.NoError(t, json.Unmarshal([]byte("null"), &e))
		assert.True(t, e.IsPlaceholder())

		require.NoError(t, json.Unmarshal([]byte("17"), &e))
		id, real := e.Value()
		assert.True(t, real)
		assert.Equal(t, int64(17), id)
	})
}
