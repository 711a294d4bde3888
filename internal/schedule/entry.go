package schedule

import (
	"encoding/json"

	"github.com/vigilo-hq/workforce-api/internal/models"
)

// EntryID distinguishes persisted schedule rows from locally filled
// placeholder entries. A placeholder carries no database identity and
// marshals to JSON null; a real id marshals to its number. The zero
// value is a placeholder.
type EntryID struct {
	value int64
	real  bool
}

// RealID wraps a persisted row id.
func RealID(id int64) EntryID {
	return EntryID{value: id, real: true}
}

// PlaceholderID returns the identity of a filled-in default entry.
func PlaceholderID() EntryID {
	return EntryID{}
}

// IsPlaceholder reports whether the entry has no persisted identity.
func (e EntryID) IsPlaceholder() bool {
	return !e.real
}

// Value returns the persisted row id. The second return is false for
// placeholders.
func (e EntryID) Value() (int64, bool) {
	return e.value, e.real
}

// MarshalJSON emits the row id as a number, or null for placeholders.
func (e EntryID) MarshalJSON() ([]byte, error) {
	if !e.real {
		return []byte("null"), nil
	}
	return json.Marshal(e.value)
}

// UnmarshalJSON accepts a number or null.
func (e *EntryID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*e = EntryID{}
		return nil
	}
	var id int64
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	*e = RealID(id)
	return nil
}

// Entry is one day of a reconciled week: always carries a shift, and
// carries a real id only when backed by a persisted row.
type Entry struct {
	ID    EntryID        `json:"id"`
	Day   models.Weekday `json:"day_of_week"`
	Shift models.Shift   `json:"shift"`
}

// Week is a complete reconciled schedule: exactly seven entries,
// Monday through Sunday, in day order.
type Week [models.DaysPerWeek]Entry

// Entries returns the week as a slice, Monday first.
func (w Week) Entries() []Entry {
	out := make([]Entry, models.DaysPerWeek)
	copy(out, w[:])
	return out
}

// ToUpdatePayload converts a reconciled week to the save payload: one
// element per day carrying only the day number and shift id. Entry
// identity, real or placeholder, never reaches the wire.
func ToUpdatePayload(w Week) []models.EntryUpdate {
	out := make([]models.EntryUpdate, 0, models.DaysPerWeek)
	for _, e := range w {
		out = append(out, models.EntryUpdate{
			DayOfWeek: e.Day,
			ShiftID:   e.Shift.ID,
		})
	}
	return out
}
