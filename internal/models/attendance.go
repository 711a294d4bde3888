package models

import "time"

// Attendance is one employee-day check-in/out record produced by the
// QR flow. CheckOut stays nil until the closing scan. InRange records
// whether the reported location fell inside the office geofence.
type Attendance struct {
	ID         int64      `db:"id" json:"id"`
	EmployeeID int64      `db:"employee_id" json:"employee_id"`
	OfficeID   *int64     `db:"office_id" json:"office_id,omitempty"`
	ShiftID    *int64     `db:"shift_id" json:"shift_id,omitempty"`
	Day        time.Time  `db:"day" json:"day"`
	CheckIn    *time.Time `db:"check_in" json:"check_in,omitempty"`
	CheckOut   *time.Time `db:"check_out" json:"check_out,omitempty"`
	Latitude   *float64   `db:"latitude" json:"latitude,omitempty"`
	Longitude  *float64   `db:"longitude" json:"longitude,omitempty"`
	InRange    *bool      `db:"in_range" json:"in_range,omitempty"`
	Late       bool       `db:"late" json:"late"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// AttendanceRecord extends Attendance with joined employee, office and
// shift metadata for listings and reports.
type AttendanceRecord struct {
	Attendance
	EmployeeNumber string  `db:"employee_number" json:"employee_number"`
	FirstName      string  `db:"first_name" json:"first_name"`
	LastName       string  `db:"last_name" json:"last_name"`
	OfficeName     *string `db:"office_name" json:"office_name,omitempty"`
	ShiftName      *string `db:"shift_name" json:"shift_name,omitempty"`
	ShiftStart     *string `db:"shift_start" json:"shift_start,omitempty"`
	ShiftEnd       *string `db:"shift_end" json:"shift_end,omitempty"`
}

// AttendanceFilter scopes attendance listings.
type AttendanceFilter struct {
	EmployeeID *int64
	OfficeID   *int64
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
