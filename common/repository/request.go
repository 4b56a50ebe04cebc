package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/softserv/softserv/common/db"
	"github.com/softserv/softserv/common/models"
)

const requestColumns = `id, user_id, moderator_id, status, ssh_address, ssh_password, created_at, updated_at, processed_at, completed_at`

// RequestRepository handles database operations for provisioning
// requests and their line items
type RequestRepository struct {
	db *db.DB
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(database *db.DB) *RequestRepository {
	return &RequestRepository{db: database}
}

func scanRequest(row pgx.Row) (*models.Request, error) {
	req := &models.Request{}
	err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.ModeratorID,
		&req.Status,
		&req.SSHAddress,
		&req.SSHPassword,
		&req.CreatedAt,
		&req.UpdatedAt,
		&req.ProcessedAt,
		&req.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return req, nil
}

// List retrieves requests matching the filter. Without an explicit
// status filter, deleted requests are excluded.
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error) {
	var (
		clauses []string
		args    []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Status != nil {
		clauses = append(clauses, "status = "+arg(*filter.Status))
	} else {
		clauses = append(clauses, "status <> "+arg(models.RequestDeleted))
	}
	if filter.UserID != nil {
		clauses = append(clauses, "user_id = "+arg(*filter.UserID))
	}
	if filter.CreatedAfter != nil {
		clauses = append(clauses, "created_at >= "+arg(*filter.CreatedAfter))
	}
	if filter.CreatedBefore != nil {
		clauses = append(clauses, "created_at <= "+arg(*filter.CreatedBefore))
	}

	query := `SELECT ` + requestColumns + ` FROM requests WHERE ` +
		strings.Join(clauses, " AND ") + ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("list requests", err)
	}
	defer rows.Close()

	result := make([]models.Request, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, wrapErr("list requests", err)
		}
		result = append(result, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list requests", err)
	}

	return result, nil
}

// Get retrieves a bare request row; nil when absent
func (r *RequestRepository) Get(ctx context.Context, id int64) (*models.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`

	req, err := scanRequest(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get request", err)
	}
	return req, nil
}

// GetDetail retrieves a request joined with its owner's username and
// non-canceled line items; nil when absent.
func (r *RequestRepository) GetDetail(ctx context.Context, id int64) (*models.RequestDetail, error) {
	query := `
		SELECT r.id, r.user_id, r.moderator_id, r.status, r.ssh_address, r.ssh_password,
		       r.created_at, r.updated_at, r.processed_at, r.completed_at, u.username
		FROM requests r
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1
	`

	detail := &models.RequestDetail{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&detail.ID,
		&detail.UserID,
		&detail.ModeratorID,
		&detail.Status,
		&detail.SSHAddress,
		&detail.SSHPassword,
		&detail.CreatedAt,
		&detail.UpdatedAt,
		&detail.ProcessedAt,
		&detail.CompletedAt,
		&detail.Username,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get request detail", err)
	}

	itemsQuery := `
		SELECT rs.request_id, rs.software_id, rs.to_install, rs.status, rs.created_at, rs.updated_at,
		       s.id, s.name, s.version, s.description, s.source, s.logo, s.active, s.created_at, s.updated_at
		FROM requests_softwares rs
		JOIN softwares s ON s.id = rs.software_id
		WHERE rs.request_id = $1 AND rs.status <> $2
		ORDER BY rs.created_at, rs.software_id
	`

	rows, err := r.db.Query(ctx, itemsQuery, id, models.LineItemCanceled)
	if err != nil {
		return nil, wrapErr("get request line items", err)
	}
	defer rows.Close()

	detail.Items = make([]models.LineItemDetail, 0)
	for rows.Next() {
		var item models.LineItemDetail
		err := rows.Scan(
			&item.RequestID,
			&item.SoftwareID,
			&item.ToInstall,
			&item.Status,
			&item.CreatedAt,
			&item.UpdatedAt,
			&item.Software.ID,
			&item.Software.Name,
			&item.Software.Version,
			&item.Software.Description,
			&item.Software.Source,
			&item.Software.Logo,
			&item.Software.Active,
			&item.Software.CreatedAt,
			&item.Software.UpdatedAt,
		)
		if err != nil {
			return nil, wrapErr("get request line items", err)
		}
		detail.Items = append(detail.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("get request line items", err)
	}

	return detail, nil
}

// Insert creates a new request in created status and returns its id
func (r *RequestRepository) Insert(ctx context.Context, userID int64, sshAddress, sshPassword *string) (int64, error) {
	query := `
		INSERT INTO requests (user_id, ssh_address, ssh_password)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	var id int64
	if err := r.db.QueryRow(ctx, query, userID, sshAddress, sshPassword).Scan(&id); err != nil {
		return 0, wrapErr("insert request", err)
	}
	return id, nil
}

// UpdateConnection writes the SSH target fields back to an existing
// request; nil when the id is absent.
func (r *RequestRepository) UpdateConnection(ctx context.Context, id int64, sshAddress, sshPassword *string) (*models.Request, error) {
	query := `
		UPDATE requests
		SET ssh_address = $2, ssh_password = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + requestColumns

	req, err := scanRequest(r.db.QueryRow(ctx, query, id, sshAddress, sshPassword))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("update request", err)
	}
	return req, nil
}

// findOrCreateDraftTx locates the user's most recent created-status
// request, creating a blank one when none exists. Callers must hold the
// per-user advisory lock taken by lockDraft.
func (r *RequestRepository) findOrCreateDraftTx(ctx context.Context, tx pgx.Tx, userID int64) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		SELECT id FROM requests
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, userID, models.RequestCreated).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		err = tx.QueryRow(ctx,
			`INSERT INTO requests (user_id) VALUES ($1) RETURNING id`,
			userID,
		).Scan(&id)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Serializes draft discovery per user so concurrent callers never race
// a second draft into existence.
func lockDraft(ctx context.Context, tx pgx.Tx, userID int64) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, userID)
	return err
}

// FindOrCreateDraft returns the id of the user's draft request,
// creating one when none exists.
func (r *RequestRepository) FindOrCreateDraft(ctx context.Context, userID int64) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, wrapErr("find or create draft", err)
	}
	defer tx.Rollback(ctx)

	if err := lockDraft(ctx, tx, userID); err != nil {
		return 0, wrapErr("find or create draft", err)
	}

	id, err := r.findOrCreateDraftTx(ctx, tx, userID)
	if err != nil {
		return 0, wrapErr("find or create draft", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, wrapErr("find or create draft", err)
	}
	return id, nil
}

// AttachToDraft appends a line item to the user's draft request,
// creating the draft first when necessary. Discovery, creation and the
// item upsert commit atomically.
func (r *RequestRepository) AttachToDraft(ctx context.Context, userID, softwareID int64, toInstall bool) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, wrapErr("attach to draft", err)
	}
	defer tx.Rollback(ctx)

	if err := lockDraft(ctx, tx, userID); err != nil {
		return 0, wrapErr("attach to draft", err)
	}

	requestID, err := r.findOrCreateDraftTx(ctx, tx, userID)
	if err != nil {
		return 0, wrapErr("attach to draft", err)
	}

	if _, err := tx.Exec(ctx, attachItemQuery, requestID, softwareID, toInstall, models.LineItemNew); err != nil {
		return 0, wrapErr("attach to draft", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, wrapErr("attach to draft", err)
	}
	return requestID, nil
}

// Re-adding an existing pair resets the item to a fresh install/removal
// intent instead of failing on the duplicate key.
const attachItemQuery = `
	INSERT INTO requests_softwares (request_id, software_id, to_install, status)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (request_id, software_id)
	DO UPDATE SET to_install = EXCLUDED.to_install, status = EXCLUDED.status, updated_at = now()
`

// AttachItem upserts a line item on an explicit request
func (r *RequestRepository) AttachItem(ctx context.Context, requestID, softwareID int64, toInstall bool) error {
	if _, err := r.db.Exec(ctx, attachItemQuery, requestID, softwareID, toInstall, models.LineItemNew); err != nil {
		return wrapErr("attach line item", err)
	}
	return nil
}

// DetachItem marks a line item canceled, preserving history. Returns
// false when the pair does not exist.
func (r *RequestRepository) DetachItem(ctx context.Context, requestID, softwareID int64) (bool, error) {
	query := `
		UPDATE requests_softwares
		SET status = $3, updated_at = now()
		WHERE request_id = $1 AND software_id = $2
	`

	tag, err := r.db.Exec(ctx, query, requestID, softwareID, models.LineItemCanceled)
	if err != nil {
		return false, wrapErr("detach line item", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetItemStatus sets a line item's sub-status. Returns false when the
// pair does not exist.
func (r *RequestRepository) SetItemStatus(ctx context.Context, requestID, softwareID int64, status models.LineItemStatus) (bool, error) {
	query := `
		UPDATE requests_softwares
		SET status = $3, updated_at = now()
		WHERE request_id = $1 AND software_id = $2
	`

	tag, err := r.db.Exec(ctx, query, requestID, softwareID, status)
	if err != nil {
		return false, wrapErr("set line item status", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateStatus advances a request's status with a compare-and-swap on
// the expected current status. processed_at and completed_at are
// stamped on first entry only. Returns false when the request is absent
// or its status changed concurrently.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id int64, from, to models.RequestStatus) (bool, error) {
	query := `
		UPDATE requests
		SET status = $3,
		    processed_at = CASE WHEN $3 = 'processed' THEN COALESCE(processed_at, now()) ELSE processed_at END,
		    completed_at = CASE WHEN $3 = 'completed' THEN COALESCE(completed_at, now()) ELSE completed_at END,
		    updated_at = now()
		WHERE id = $1 AND status = $2
	`

	tag, err := r.db.Exec(ctx, query, id, from, to)
	if err != nil {
		return false, wrapErr("update request status", err)
	}
	return tag.RowsAffected() > 0, nil
}

// AssignModerator claims an unassigned request for a moderator.
// Returns false when the request is absent or already assigned.
func (r *RequestRepository) AssignModerator(ctx context.Context, id, moderatorID int64) (bool, error) {
	query := `
		UPDATE requests
		SET moderator_id = $2, updated_at = now()
		WHERE id = $1 AND moderator_id IS NULL
	`

	tag, err := r.db.Exec(ctx, query, id, moderatorID)
	if err != nil {
		return false, wrapErr("assign moderator", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DraftID returns the id of the user's current draft request, or nil
// when none exists.
func (r *RequestRepository) DraftID(ctx context.Context, userID int64) (*int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		SELECT id FROM requests
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, userID, models.RequestCreated).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapErr("get draft id", err)
	}
	return &id, nil
}
