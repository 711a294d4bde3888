package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigilo-hq/workforce-api/internal/models"
)

func TestListByEmployee(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "employee_id", "employee_number", "first_name", "last_name", "day_of_week", "shift_id", "shift_name", "shift_start", "shift_end"}).
		AddRow(int64(10), int64(3), "", "", "", 1, int64(2), "Tarde", "14:00", "21:00").
		AddRow(int64(11), int64(3), "", "", "", 5, int64(1), "Mañana", "08:00", "15:00")
	mock.ExpectQuery("SELECT se.id, se.employee_id").WithArgs(int64(3)).WillReturnRows(rows)

	entries, err := repo.ListByEmployee(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, models.Monday, entries[0].DayOfWeek)
	assert.Equal(t, "Tarde", entries[0].Shift.Name)
	assert.Equal(t, int64(11), entries[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByOfficeGroupsEmployees(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "employee_id", "employee_number", "first_name", "last_name", "day_of_week", "shift_id", "shift_name", "shift_start", "shift_end"}).
		AddRow(int64(10), int64(1), "E-001", "Ana", "García", 1, int64(2), "Tarde", "14:00", "21:00").
		AddRow(int64(11), int64(1), "E-001", "Ana", "García", 2, int64(1), "Mañana", "08:00", "15:00").
		AddRow(int64(0), int64(2), "E-002", "Luis", "Pérez", 0, int64(0), "", "", "")
	mock.ExpectQuery("FROM employees e LEFT JOIN schedule_entries").WithArgs(int64(9)).WillReturnRows(rows)

	out, err := repo.ListByOffice(context.Background(), 9)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Len(t, out[0].Entries, 2)
	assert.Equal(t, "E-002", out[1].EmployeeNumber)
	assert.Empty(t, out[1].Entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceWeekUpserts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO schedule_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO schedule_entries").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	err := repo.ReplaceWeek(context.Background(), 3, []models.EntryUpdate{
		{DayOfWeek: models.Monday, ShiftID: 1},
		{DayOfWeek: models.Tuesday, ShiftID: 2},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceOfficeWeeksRollsBackOnError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO schedule_entries").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO schedule_entries").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.ReplaceOfficeWeeks(context.Background(), []models.EmployeeWeekUpdate{
		{EmployeeID: 1, Entries: []models.EntryUpdate{{DayOfWeek: models.Monday, ShiftID: 1}}},
		{EmployeeID: 2, Entries: []models.EntryUpdate{{DayOfWeek: models.Monday, ShiftID: 1}}},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
