package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vigilo-hq/workforce-api/internal/models"
)

// OfficeRepository provides persistence for offices.
type OfficeRepository struct {
	db *sqlx.DB
}

// NewOfficeRepository creates a new office repository.
func NewOfficeRepository(db *sqlx.DB) *OfficeRepository {
	return &OfficeRepository{db: db}
}

// List returns offices with optional search and pagination.
func (r *OfficeRepository) List(ctx context.Context, filter models.OfficeFilter) ([]models.Office, int, error) {
	base := "FROM offices WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":       true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, name, latitude, longitude, geofence_radius, qr_token, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d", base, sortBy, order, size, offset)
	var offices []models.Office
	if err := r.db.SelectContext(ctx, &offices, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list offices: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count offices: %w", err)
	}

	return offices, total, nil
}

// FindByID loads an office by id.
func (r *OfficeRepository) FindByID(ctx context.Context, id int64) (*models.Office, error) {
	const query = `SELECT id, name, latitude, longitude, geofence_radius, qr_token, created_at, updated_at FROM offices WHERE id = $1 LIMIT 1`
	var office models.Office
	if err := r.db.GetContext(ctx, &office, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find office by id: %w", err)
	}
	return &office, nil
}

// FindByQRToken resolves an office from its current QR token.
func (r *OfficeRepository) FindByQRToken(ctx context.Context, token string) (*models.Office, error) {
	const query = `SELECT id, name, latitude, longitude, geofence_radius, qr_token, created_at, updated_at FROM offices WHERE qr_token = $1 LIMIT 1`
	var office models.Office
	if err := r.db.GetContext(ctx, &office, query, token); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find office by qr token: %w", err)
	}
	return &office, nil
}

// Create stores a new office and fills in the generated id.
func (r *OfficeRepository) Create(ctx context.Context, office *models.Office) error {
	now := time.Now().UTC()
	if office.CreatedAt.IsZero() {
		office.CreatedAt = now
	}
	office.UpdatedAt = now

	const query = `INSERT INTO offices (name, latitude, longitude, geofence_radius, qr_token, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, office.Name, office.Latitude, office.Longitude, office.GeofenceRadius, office.QRToken, office.CreatedAt, office.UpdatedAt).Scan(&office.ID); err != nil {
		return fmt.Errorf("create office: %w", err)
	}
	return nil
}

// Update modifies an office record.
func (r *OfficeRepository) Update(ctx context.Context, office *models.Office) error {
	office.UpdatedAt = time.Now().UTC()
	const query = `UPDATE offices SET name = :name, latitude = :latitude, longitude = :longitude, geofence_radius = :geofence_radius, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, office); err != nil {
		return fmt.Errorf("update office: %w", err)
	}
	return nil
}

// UpdateQRToken replaces the office's QR token. Earlier tokens stop
// resolving immediately.
func (r *OfficeRepository) UpdateQRToken(ctx context.Context, id int64, token string) error {
	const query = `UPDATE offices SET qr_token = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, token, time.Now().UTC()); err != nil {
		return fmt.Errorf("update office qr token: %w", err)
	}
	return nil
}

// Delete removes an office by id.
func (r *OfficeRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM offices WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete office: %w", err)
	}
	return nil
}
