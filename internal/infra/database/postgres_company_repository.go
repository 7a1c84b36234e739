package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finance_tracker_bot/internal/domain/company"
)

type PostgresCompanyRepository struct {
	db *sql.DB
}

func NewPostgresCompanyRepository(db *sql.DB) *PostgresCompanyRepository {
	return &PostgresCompanyRepository{db: db}
}

func (r *PostgresCompanyRepository) CreateUser(ctx context.Context, u *company.User) error {
	query := `INSERT INTO users (telegram_id, first_name, last_name)
               VALUES ($1, $2, $3)
               ON CONFLICT (telegram_id) DO UPDATE SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name, updated_at = NOW()
               RETURNING selected_company_id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, u.TelegramID, u.FirstName, u.LastName).Scan(&u.SelectedCompanyID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}

func (r *PostgresCompanyRepository) GetUser(ctx context.Context, telegramID int64) (*company.User, error) {
	query := `SELECT telegram_id, first_name, last_name, selected_company_id, created_at, updated_at
               FROM users WHERE telegram_id = $1`
	u := &company.User{}
	err := r.db.QueryRowContext(ctx, query, telegramID).Scan(&u.TelegramID, &u.FirstName, &u.LastName, &u.SelectedCompanyID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, company.ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}
	return u, nil
}

func (r *PostgresCompanyRepository) SelectCompany(ctx context.Context, telegramID, companyID int64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET selected_company_id = $1, updated_at = NOW() WHERE telegram_id = $2`, companyID, telegramID)
	if err != nil {
		return fmt.Errorf("error selecting company: %w", err)
	}
	return expectAffected(res, company.ErrUserNotFound)
}

func (r *PostgresCompanyRepository) Create(ctx context.Context, c *company.Company) error {
	txn, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for company create: %w", err)
	}
	defer txn.Rollback()

	err = txn.QueryRowContext(ctx, `INSERT INTO companies (name, owner_id) VALUES ($1, $2) RETURNING id, created_at`,
		c.Name, c.OwnerID).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating company: %w", err)
	}
	if _, err := txn.ExecContext(ctx, `INSERT INTO company_members (company_id, telegram_id) VALUES ($1, $2)`, c.ID, c.OwnerID); err != nil {
		return fmt.Errorf("error adding company owner: %w", err)
	}
	return txn.Commit()
}

func (r *PostgresCompanyRepository) GetByID(ctx context.Context, id int64) (*company.Company, error) {
	c := &company.Company{}
	err := r.db.QueryRowContext(ctx, `SELECT id, name, owner_id, created_at FROM companies WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.OwnerID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, company.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("error getting company by ID: %w", err)
	}
	return c, nil
}

func (r *PostgresCompanyRepository) ListForUser(ctx context.Context, telegramID int64) ([]*company.Company, error) {
	query := `SELECT c.id, c.name, c.owner_id, c.created_at
               FROM companies c
               JOIN company_members m ON m.company_id = c.id
               WHERE m.telegram_id = $1
               ORDER BY c.id`
	return r.list(ctx, query, telegramID)
}

func (r *PostgresCompanyRepository) ListAll(ctx context.Context) ([]*company.Company, error) {
	return r.list(ctx, `SELECT id, name, owner_id, created_at FROM companies ORDER BY id`)
}

func (r *PostgresCompanyRepository) list(ctx context.Context, query string, args ...any) ([]*company.Company, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing companies: %w", err)
	}
	defer rows.Close()

	companies := make([]*company.Company, 0)
	for rows.Next() {
		c := &company.Company{}
		if err := rows.Scan(&c.ID, &c.Name, &c.OwnerID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning company: %w", err)
		}
		companies = append(companies, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating companies: %w", err)
	}
	return companies, nil
}

func (r *PostgresCompanyRepository) AddMember(ctx context.Context, companyID, telegramID int64) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO company_members (company_id, telegram_id) VALUES ($1, $2)
               ON CONFLICT (company_id, telegram_id) DO NOTHING`, companyID, telegramID)
	if err != nil {
		return fmt.Errorf("error adding company member: %w", err)
	}
	return nil
}

func (r *PostgresCompanyRepository) IsMember(ctx context.Context, companyID, telegramID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM company_members WHERE company_id = $1 AND telegram_id = $2)`,
		companyID, telegramID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking company membership: %w", err)
	}
	return exists, nil
}

func (r *PostgresCompanyRepository) ListMembers(ctx context.Context, companyID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT telegram_id FROM company_members WHERE company_id = $1 ORDER BY joined_at`, companyID)
	if err != nil {
		return nil, fmt.Errorf("error listing company members: %w", err)
	}
	defer rows.Close()

	var members []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning company member: %w", err)
		}
		members = append(members, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating company members: %w", err)
	}
	return members, nil
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
