package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/emprestei/internal/domain"
	"github.com/jhoicas/emprestei/internal/domain/entity"
	"github.com/jhoicas/emprestei/internal/domain/repository"
)

var _ repository.AccountRepository = (*AccountRepo)(nil)

// AccountRepo implementación del puerto AccountRepository sobre PostgreSQL.
type AccountRepo struct {
	pool *pgxpool.Pool
}

// NewAccountRepository construye el adaptador de persistencia para cuentas.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

const accountColumns = `id, email, password_hash, status, created_at, updated_at`

// Create persiste una nueva cuenta.
func (r *AccountRepo) Create(ctx context.Context, a *entity.Account) error {
	query := `INSERT INTO accounts (` + accountColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query, a.ID, a.Email, a.PasswordHash, a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

// GetByID obtiene una cuenta por uid. nil, nil si no existe.
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

// FindByEmail obtiene una cuenta por email. nil, nil si no existe.
func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	return r.findOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE email = $1 LIMIT 1`, email)
}

// Update actualiza email, hash, estado y fecha de modificación.
func (r *AccountRepo) Update(ctx context.Context, a *entity.Account) error {
	query := `UPDATE accounts SET email = $2, password_hash = $3, status = $4, updated_at = $5 WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, a.ID, a.Email, a.PasswordHash, a.Status, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("update account: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AccountRepo) findOne(ctx context.Context, query string, arg string) (*entity.Account, error) {
	var a entity.Account
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get account: %w", err)
	}
	return &a, nil
}
