package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vigilo-hq/workforce-api/internal/models"
)

// ShiftRepository provides persistence for the shift catalog.
type ShiftRepository struct {
	db *sqlx.DB
}

// NewShiftRepository creates a new shift repository.
func NewShiftRepository(db *sqlx.DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// ListAll returns the whole shift catalog ordered by start time. The
// catalog is small; there is no pagination.
func (r *ShiftRepository) ListAll(ctx context.Context) ([]models.Shift, error) {
	const query = `SELECT id, name, start_time, end_time, created_at, updated_at FROM shifts ORDER BY start_time ASC, id ASC`
	var shifts []models.Shift
	if err := r.db.SelectContext(ctx, &shifts, query); err != nil {
		return nil, fmt.Errorf("list shifts: %w", err)
	}
	return shifts, nil
}

// FindByID loads a shift by id.
func (r *ShiftRepository) FindByID(ctx context.Context, id int64) (*models.Shift, error) {
	const query = `SELECT id, name, start_time, end_time, created_at, updated_at FROM shifts WHERE id = $1 LIMIT 1`
	var shift models.Shift
	if err := r.db.GetContext(ctx, &shift, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find shift by id: %w", err)
	}
	return &shift, nil
}

// Create stores a new shift and fills in the generated id.
func (r *ShiftRepository) Create(ctx context.Context, shift *models.Shift) error {
	now := time.Now().UTC()
	if shift.CreatedAt.IsZero() {
		shift.CreatedAt = now
	}
	shift.UpdatedAt = now

	const query = `INSERT INTO shifts (name, start_time, end_time, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, shift.Name, shift.StartTime, shift.EndTime, shift.CreatedAt, shift.UpdatedAt).Scan(&shift.ID); err != nil {
		return fmt.Errorf("create shift: %w", err)
	}
	return nil
}

// Update modifies a shift record.
func (r *ShiftRepository) Update(ctx context.Context, shift *models.Shift) error {
	shift.UpdatedAt = time.Now().UTC()
	const query = `UPDATE shifts SET name = :name, start_time = :start_time, end_time = :end_time, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, shift); err != nil {
		return fmt.Errorf("update shift: %w", err)
	}
	return nil
}

// Delete removes a shift by id. Fails on foreign key references from
// schedule rows, which is intended.
func (r *ShiftRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM shifts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete shift: %w", err)
	}
	return nil
}
