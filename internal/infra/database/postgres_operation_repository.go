package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"finance_tracker_bot/internal/domain/operation"
	"finance_tracker_bot/internal/domain/recurrence"

	"github.com/lib/pq" // For pq.Array
)

const instanceColumns = `id, company_id, creator_id, amount, received_amount, currency, type, description,
               category, is_approved, status, template_id, created_at, updated_at`

const templateColumns = `id, company_id, creator_id, amount, currency, type, description, category,
               repeat_kind, repeat_anchors, created_at`

// PostgresOperationRepository stores templates and instances. Timestamps are
// returned in loc so that day boundaries match the bot's time zone.
type PostgresOperationRepository struct {
	db  *sql.DB
	loc *time.Location
}

func NewPostgresOperationRepository(db *sql.DB, loc *time.Location) *PostgresOperationRepository {
	if loc == nil {
		loc = time.Local
	}
	return &PostgresOperationRepository{db: db, loc: loc}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullCategory(c operation.Category) sql.NullString {
	return sql.NullString{String: string(c), Valid: c != ""}
}

// Templates

func (r *PostgresOperationRepository) CreateTemplate(ctx context.Context, tpl *operation.Template) error {
	query := `INSERT INTO operation_templates (company_id, creator_id, amount, currency, type, description, category, repeat_kind, repeat_anchors, created_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
               RETURNING id`

	anchors := recurrence.FormatAnchors(tpl.Rule.Anchors)
	err := r.db.QueryRowContext(ctx, query,
		tpl.CompanyID, tpl.CreatorID, tpl.Amount, tpl.Currency, tpl.Type, tpl.Description,
		nullCategory(tpl.Category), tpl.Rule.Kind, pq.Array(anchors), tpl.CreatedAt,
	).Scan(&tpl.ID)
	if err != nil {
		return fmt.Errorf("error creating operation template: %w", err)
	}
	return nil
}

func (r *PostgresOperationRepository) GetTemplate(ctx context.Context, id int64) (*operation.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM operation_templates WHERE id = $1`
	tpl, err := r.scanTemplate(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, operation.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("error getting operation template: %w", err)
	}
	return tpl, nil
}

func (r *PostgresOperationRepository) DeleteTemplate(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM operation_templates WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting operation template: %w", err)
	}
	return expectAffected(res, operation.ErrTemplateNotFound)
}

func (r *PostgresOperationRepository) ListTemplates(ctx context.Context, companyID int64) ([]*operation.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM operation_templates WHERE company_id = $1 ORDER BY id`
	return r.listTemplates(ctx, query, companyID)
}

func (r *PostgresOperationRepository) ListTemplatesPage(ctx context.Context, companyID int64, limit, offset int) ([]*operation.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM operation_templates WHERE company_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`
	return r.listTemplates(ctx, query, companyID, limit, offset)
}

func (r *PostgresOperationRepository) CountTemplates(ctx context.Context, companyID int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM operation_templates WHERE company_id = $1`, companyID).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting operation templates: %w", err)
	}
	return n, nil
}

func (r *PostgresOperationRepository) listTemplates(ctx context.Context, query string, args ...any) ([]*operation.Template, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing operation templates: %w", err)
	}
	defer rows.Close()

	templates := make([]*operation.Template, 0)
	for rows.Next() {
		tpl, err := r.scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning operation template: %w", err)
		}
		templates = append(templates, tpl)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operation templates: %w", err)
	}
	return templates, nil
}

func (r *PostgresOperationRepository) scanTemplate(row rowScanner) (*operation.Template, error) {
	var (
		tpl      operation.Template
		category sql.NullString
		anchors  []string
	)
	err := row.Scan(&tpl.ID, &tpl.CompanyID, &tpl.CreatorID, &tpl.Amount, &tpl.Currency, &tpl.Type, &tpl.Description,
		&category, &tpl.Rule.Kind, pq.Array(&anchors), &tpl.CreatedAt)
	if err != nil {
		return nil, err
	}
	tpl.Category = operation.Category(category.String)
	if tpl.Rule.Anchors, err = recurrence.ParseAnchors(anchors); err != nil {
		return nil, fmt.Errorf("template %d: %w", tpl.ID, err)
	}
	tpl.CreatedAt = tpl.CreatedAt.In(r.loc)
	return &tpl, nil
}

// Instances

func (r *PostgresOperationRepository) CreateInstance(ctx context.Context, inst *operation.Instance) error {
	query := `INSERT INTO operations (company_id, creator_id, amount, received_amount, currency, type, description,
                   category, is_approved, status, template_id, created_at, updated_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW())
               RETURNING id, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		inst.CompanyID, inst.CreatorID, inst.Amount, inst.ReceivedAmount, inst.Currency, inst.Type, inst.Description,
		nullCategory(inst.Category), inst.IsApproved, inst.Status, inst.TemplateID, inst.CreatedAt,
	).Scan(&inst.ID, &inst.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating operation: %w", err)
	}
	inst.UpdatedAt = inst.UpdatedAt.In(r.loc)
	return nil
}

func (r *PostgresOperationRepository) GetInstance(ctx context.Context, id int64) (*operation.Instance, error) {
	query := `SELECT ` + instanceColumns + ` FROM operations WHERE id = $1`
	inst, err := r.scanInstance(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, operation.ErrInstanceNotFound
		}
		return nil, fmt.Errorf("error getting operation: %w", err)
	}
	return inst, nil
}

// Modify locks the row for the duration of fn so concurrent callbacks on the
// same operation are applied one after another.
func (r *PostgresOperationRepository) Modify(ctx context.Context, id int64, fn func(operation.Instance) (operation.Instance, error)) (*operation.Instance, error) {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for operation update: %w", err)
	}
	defer txn.Rollback()

	query := `SELECT ` + instanceColumns + ` FROM operations WHERE id = $1 FOR UPDATE`
	current, err := r.scanInstance(txn.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, operation.ErrInstanceNotFound
		}
		return nil, fmt.Errorf("error locking operation: %w", err)
	}

	next, err := fn(*current)
	if err != nil {
		return nil, err
	}

	update := `UPDATE operations
               SET received_amount = $1, category = $2, is_approved = $3, status = $4, updated_at = NOW()
               WHERE id = $5
               RETURNING updated_at`
	err = txn.QueryRowContext(ctx, update, next.ReceivedAmount, nullCategory(next.Category), next.IsApproved, next.Status, id).
		Scan(&next.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("error updating operation: %w", err)
	}
	if err := txn.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit operation update: %w", err)
	}
	next.UpdatedAt = next.UpdatedAt.In(r.loc)
	return &next, nil
}

func (r *PostgresOperationRepository) DeleteInstance(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM operations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting operation: %w", err)
	}
	return expectAffected(res, operation.ErrInstanceNotFound)
}

func (r *PostgresOperationRepository) ListInstancesPage(ctx context.Context, companyID int64, limit, offset int) ([]*operation.Instance, error) {
	query := `SELECT ` + instanceColumns + ` FROM operations WHERE company_id = $1
               ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`
	return r.listInstances(ctx, query, companyID, limit, offset)
}

func (r *PostgresOperationRepository) CountInstances(ctx context.Context, companyID int64) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM operations WHERE company_id = $1`, companyID).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting operations: %w", err)
	}
	return n, nil
}

func (r *PostgresOperationRepository) ListInstancesBetween(ctx context.Context, companyID int64, from, to time.Time) ([]*operation.Instance, error) {
	query := `SELECT ` + instanceColumns + ` FROM operations
               WHERE company_id = $1 AND created_at >= $2 AND created_at < $3
               ORDER BY created_at, id`
	return r.listInstances(ctx, query, companyID, from, to)
}

func (r *PostgresOperationRepository) HasTemplateInstance(ctx context.Context, templateID int64, from, to time.Time) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM operations WHERE template_id = $1 AND created_at >= $2 AND created_at < $3)`
	if err := r.db.QueryRowContext(ctx, query, templateID, from, to).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking template instance: %w", err)
	}
	return exists, nil
}

func (r *PostgresOperationRepository) ListAwaitingReceipt(ctx context.Context, createdFrom time.Time) ([]*operation.Instance, error) {
	query := `SELECT ` + instanceColumns + ` FROM operations
               WHERE template_id IS NOT NULL AND status = $1 AND created_at >= $2
               ORDER BY created_at, id`
	return r.listInstances(ctx, query, operation.StatusPendingReceipt, createdFrom)
}

func (r *PostgresOperationRepository) listInstances(ctx context.Context, query string, args ...any) ([]*operation.Instance, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing operations: %w", err)
	}
	defer rows.Close()

	instances := make([]*operation.Instance, 0)
	for rows.Next() {
		inst, err := r.scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning operation: %w", err)
		}
		instances = append(instances, inst)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operations: %w", err)
	}
	return instances, nil
}

func (r *PostgresOperationRepository) scanInstance(row rowScanner) (*operation.Instance, error) {
	var (
		inst     operation.Instance
		category sql.NullString
	)
	err := row.Scan(&inst.ID, &inst.CompanyID, &inst.CreatorID, &inst.Amount, &inst.ReceivedAmount, &inst.Currency,
		&inst.Type, &inst.Description, &category, &inst.IsApproved, &inst.Status, &inst.TemplateID,
		&inst.CreatedAt, &inst.UpdatedAt)
	if err != nil {
		return nil, err
	}
	inst.Category = operation.Category(category.String)
	inst.CreatedAt = inst.CreatedAt.In(r.loc)
	inst.UpdatedAt = inst.UpdatedAt.In(r.loc)
	return &inst, nil
}
