package models

import "time"

// Gender values accepted for employees.
const (
	GenderMale   = "Masculino"
	GenderFemale = "Femenino"
	GenderOther  = "Otro"
)

// Position is a job title employees hold ("puesto").
type Position struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Employee represents a workforce member assigned to an office.
// Terminated employees ("baja") are kept for reporting, never deleted.
type Employee struct {
	ID             int64      `db:"id" json:"id"`
	EmployeeNumber string     `db:"employee_number" json:"employee_number"`
	FirstName      string     `db:"first_name" json:"first_name"`
	LastName       string     `db:"last_name" json:"last_name"`
	Gender         string     `db:"gender" json:"gender"`
	PositionID     *int64     `db:"position_id" json:"position_id,omitempty"`
	OfficeID       *int64     `db:"office_id" json:"office_id,omitempty"`
	IsSupervisor   bool       `db:"is_supervisor" json:"is_supervisor"`
	Terminated     bool       `db:"terminated" json:"terminated"`
	TerminatedAt   *time.Time `db:"terminated_at" json:"terminated_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// EmployeeRecord extends Employee with joined office/position names.
type EmployeeRecord struct {
	Employee
	PositionName *string `db:"position_name" json:"position_name,omitempty"`
	OfficeName   *string `db:"office_name" json:"office_name,omitempty"`
}

// EmployeeFilter captures listing criteria for employees.
type EmployeeFilter struct {
	OfficeID   *int64
	Terminated *bool
	Search     string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}
