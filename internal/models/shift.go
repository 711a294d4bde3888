package models

import (
	"strings"
	"time"
)

// Shift is a named work shift ("turno") assignable to a weekday.
// StartTime/EndTime use the 24h "15:04" layout.
type Shift struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// MorningCutoff splits shifts into morning/evening buckets for the
// daily statistics report.
const MorningCutoff = "12:00"

// IsMorning reports whether the shift starts before the cutoff.
func (s Shift) IsMorning() bool {
	return s.StartTime < MorningCutoff
}

// RestShiftName marks the catalog entry that represents a day off.
const RestShiftName = "Descanso"

// IsRest reports whether the shift is a rest day. A shift with equal
// start and end times counts as rest regardless of name.
func (s Shift) IsRest() bool {
	return strings.EqualFold(s.Name, RestShiftName) || s.StartTime == s.EndTime
}
