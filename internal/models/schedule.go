package models

import "time"

// Weekday numbers days Monday=1 through Sunday=7, matching the wire
// contract of the schedule endpoints.
type Weekday int

const (
	Monday    Weekday = 1
	Tuesday   Weekday = 2
	Wednesday Weekday = 3
	Thursday  Weekday = 4
	Friday    Weekday = 5
	Saturday  Weekday = 6
	Sunday    Weekday = 7
)

// DaysPerWeek is the fixed size of a reconciled schedule grid.
const DaysPerWeek = 7

// Valid reports whether the weekday is in 1..7.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// Label returns the Spanish day name used in reports and exports.
func (d Weekday) Label() string {
	switch d {
	case Monday:
		return "Lunes"
	case Tuesday:
		return "Martes"
	case Wednesday:
		return "Miércoles"
	case Thursday:
		return "Jueves"
	case Friday:
		return "Viernes"
	case Saturday:
		return "Sábado"
	case Sunday:
		return "Domingo"
	default:
		return ""
	}
}

// FromTime converts a time.Time weekday to the Monday=1 numbering.
func FromTime(t time.Time) Weekday {
	wd := int(t.Weekday())
	if wd == 0 {
		return Sunday
	}
	return Weekday(wd)
}

// ScheduleEntry is a persisted sparse schedule row: one day's shift
// assignment for one employee. Days without a row fall back to the
// default shift at read time.
type ScheduleEntry struct {
	ID         int64     `db:"id" json:"id"`
	EmployeeID int64     `db:"employee_id" json:"employee_id"`
	DayOfWeek  Weekday   `db:"day_of_week" json:"day_of_week"`
	ShiftID    int64     `db:"shift_id" json:"shift_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// EntryWithShift is a schedule row joined with its shift.
type EntryWithShift struct {
	ID        int64   `db:"id" json:"id"`
	DayOfWeek Weekday `db:"day_of_week" json:"day_of_week"`
	Shift     Shift   `json:"shift"`
}

// EmployeeWithSchedule is the raw per-office view: one employee and
// their sparse schedule rows.
type EmployeeWithSchedule struct {
	EmployeeID     int64            `json:"employee_id"`
	EmployeeNumber string           `json:"employee_number"`
	FirstName      string           `json:"first_name"`
	LastName       string           `json:"last_name"`
	Entries        []EntryWithShift `json:"entries"`
}

// EntryUpdate is the wire element of a schedule save: one day, one
// shift. Local placeholder identity never appears here.
type EntryUpdate struct {
	DayOfWeek Weekday `json:"day_of_week" validate:"required,min=1,max=7"`
	ShiftID   int64   `json:"shift_id" validate:"required"`
}

// WeekUpdate replaces a single employee's week.
type WeekUpdate struct {
	Entries []EntryUpdate `json:"entries" validate:"required,min=1,max=7,dive"`
}

// EmployeeWeekUpdate is one element of a bulk office save.
type EmployeeWeekUpdate struct {
	EmployeeID int64         `json:"employee_id" validate:"required"`
	Entries    []EntryUpdate `json:"entries" validate:"required,min=1,max=7,dive"`
}
