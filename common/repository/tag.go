package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/softserv/softserv/common/db"
	"github.com/softserv/softserv/common/models"
)

// TagRepository handles database operations for tags and their
// software associations
type TagRepository struct {
	db *db.DB
}

// NewTagRepository creates a new tag repository
func NewTagRepository(database *db.DB) *TagRepository {
	return &TagRepository{db: database}
}

// Search lists tags whose name contains the given substring,
// case-insensitively. An empty substring lists everything.
func (r *TagRepository) Search(ctx context.Context, substr string) ([]models.Tag, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM tags
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query, substr)
	if err != nil {
		return nil, wrapErr("search tags", err)
	}
	defer rows.Close()

	tags := make([]models.Tag, 0)
	for rows.Next() {
		var t models.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, wrapErr("search tags", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("search tags", err)
	}

	return tags, nil
}

// GetByID retrieves a tag; nil when absent
func (r *TagRepository) GetByID(ctx context.Context, id int64) (*models.Tag, error) {
	query := `SELECT id, name, created_at, updated_at FROM tags WHERE id = $1`

	t := &models.Tag{}
	err := r.db.QueryRow(ctx, query, id).Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get tag", err)
	}
	return t, nil
}

// Create inserts a new tag. Duplicate names surface as a conflict.
func (r *TagRepository) Create(ctx context.Context, name string) (*models.Tag, error) {
	query := `
		INSERT INTO tags (name)
		VALUES ($1)
		RETURNING id, name, created_at, updated_at
	`

	t := &models.Tag{}
	err := r.db.QueryRow(ctx, query, name).Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, wrapErr("create tag", err)
	}
	return t, nil
}

// UpdateName renames a tag; nil when the id is absent
func (r *TagRepository) UpdateName(ctx context.Context, id int64, name string) (*models.Tag, error) {
	query := `
		UPDATE tags
		SET name = $2, updated_at = now()
		WHERE id = $1
		RETURNING id, name, created_at, updated_at
	`

	t := &models.Tag{}
	err := r.db.QueryRow(ctx, query, id, name).Scan(&t.ID, &t.Name, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("update tag", err)
	}
	return t, nil
}

// Link attaches a tag to a software row. Re-linking an existing pair is
// a no-op.
func (r *TagRepository) Link(ctx context.Context, softwareID, tagID int64) error {
	query := `
		INSERT INTO softwares_tags (software_id, tag_id)
		VALUES ($1, $2)
		ON CONFLICT (software_id, tag_id) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, softwareID, tagID); err != nil {
		return wrapErr("link tag", err)
	}
	return nil
}

// Unlink removes a tag association. The tag and the software both survive.
func (r *TagRepository) Unlink(ctx context.Context, softwareID, tagID int64) error {
	query := `DELETE FROM softwares_tags WHERE software_id = $1 AND tag_id = $2`

	if _, err := r.db.Exec(ctx, query, softwareID, tagID); err != nil {
		return wrapErr("unlink tag", err)
	}
	return nil
}
