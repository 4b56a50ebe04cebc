package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/softserv/softserv/common/db"
	"github.com/softserv/softserv/common/models"
)

const softwareColumns = `id, name, version, description, source, logo, active, created_at, updated_at`

// SoftwareRepository handles database operations for catalog entries
type SoftwareRepository struct {
	db *db.DB
}

// NewSoftwareRepository creates a new software repository
func NewSoftwareRepository(database *db.DB) *SoftwareRepository {
	return &SoftwareRepository{db: database}
}

func scanSoftware(row pgx.Row) (*models.Software, error) {
	sw := &models.Software{}
	err := row.Scan(
		&sw.ID,
		&sw.Name,
		&sw.Version,
		&sw.Description,
		&sw.Source,
		&sw.Logo,
		&sw.Active,
		&sw.CreatedAt,
		&sw.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return sw, nil
}

func collectSoftware(rows pgx.Rows) ([]models.Software, error) {
	defer rows.Close()
	result := make([]models.Software, 0)
	for rows.Next() {
		sw, err := scanSoftware(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *sw)
	}
	return result, rows.Err()
}

// ListActive lists active software, optionally narrowed by a
// case-insensitive substring match on name or attached tag name.
func (r *SoftwareRepository) ListActive(ctx context.Context, search string) ([]models.Software, error) {
	query := `
		SELECT ` + softwareColumns + `
		FROM softwares
		WHERE active = TRUE
		  AND ($1 = ''
		       OR name ILIKE '%' || $1 || '%'
		       OR id IN (
		           SELECT st.software_id
		           FROM softwares_tags st
		           JOIN tags t ON t.id = st.tag_id
		           WHERE t.name ILIKE '%' || $1 || '%'
		       ))
		ORDER BY name, id
	`

	rows, err := r.db.Query(ctx, query, search)
	if err != nil {
		return nil, wrapErr("list active software", err)
	}

	result, err := collectSoftware(rows)
	if err != nil {
		return nil, wrapErr("list active software", err)
	}
	return result, nil
}

// SearchActiveByName lists active software whose name contains the
// given substring, case-insensitively.
func (r *SoftwareRepository) SearchActiveByName(ctx context.Context, name string) ([]models.Software, error) {
	query := `
		SELECT ` + softwareColumns + `
		FROM softwares
		WHERE active = TRUE AND name ILIKE '%' || $1 || '%'
		ORDER BY name, id
	`

	rows, err := r.db.Query(ctx, query, name)
	if err != nil {
		return nil, wrapErr("search software by name", err)
	}

	result, err := collectSoftware(rows)
	if err != nil {
		return nil, wrapErr("search software by name", err)
	}
	return result, nil
}

// GetByID retrieves a software row regardless of active flag; nil when absent
func (r *SoftwareRepository) GetByID(ctx context.Context, id int64) (*models.Software, error) {
	query := `SELECT ` + softwareColumns + ` FROM softwares WHERE id = $1`

	sw, err := scanSoftware(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get software", err)
	}
	return sw, nil
}

// Insert creates a new software row and returns its id
func (r *SoftwareRepository) Insert(ctx context.Context, fields models.SoftwareFields) (int64, error) {
	query := `
		INSERT INTO softwares (name, version, description, source, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		fields.Name,
		fields.Version,
		fields.Description,
		fields.Source,
		fields.Active,
	).Scan(&id)
	if err != nil {
		return 0, wrapErr("insert software", err)
	}

	return id, nil
}

// Update writes the full updatable field set back to an existing row
func (r *SoftwareRepository) Update(ctx context.Context, id int64, fields models.SoftwareFields) (*models.Software, error) {
	query := `
		UPDATE softwares
		SET name = $2, version = $3, description = $4, source = $5, active = $6, updated_at = now()
		WHERE id = $1
		RETURNING ` + softwareColumns

	sw, err := scanSoftware(r.db.QueryRow(ctx, query,
		id,
		fields.Name,
		fields.Version,
		fields.Description,
		fields.Source,
		fields.Active,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("update software", err)
	}
	return sw, nil
}

// Deactivate soft-deletes a software row. Idempotent; absent ids are a no-op.
func (r *SoftwareRepository) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE softwares SET active = FALSE, updated_at = now() WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id); err != nil {
		return wrapErr("deactivate software", err)
	}
	return nil
}

// SetLogo records the uploaded logo URL
func (r *SoftwareRepository) SetLogo(ctx context.Context, id int64, url string) error {
	query := `UPDATE softwares SET logo = $2, updated_at = now() WHERE id = $1`

	if _, err := r.db.Exec(ctx, query, id, url); err != nil {
		return wrapErr("set software logo", err)
	}
	return nil
}

// TagsFor lists the tags attached to a software row
func (r *SoftwareRepository) TagsFor(ctx context.Context, softwareID int64) ([]models.Tag, error) {
	query := `
		SELECT t.id, t.name, t.created_at, t.updated_at
		FROM softwares_tags st
		JOIN tags t ON t.id = st.tag_id
		WHERE st.software_id = $1
		ORDER BY t.name
	`

	rows, err := r.db.Query(ctx, query, softwareID)
	if err != nil {
		return nil, wrapErr("tags for software", err)
	}
	defer rows.Close()

	tags := make([]models.Tag, 0)
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, wrapErr("tags for software", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("tags for software", err)
	}

	return tags, nil
}
