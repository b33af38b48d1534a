package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"school-auth/internal/domain"
)

// AccountRepository define el contrato de persistencia para cuentas.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account, roleIDs []int64) error
	GetByID(ctx context.Context, id int64) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	GetPendingByToken(ctx context.Context, token string) (domain.Account, error)
	GetPendingByEmail(ctx context.Context, email string) (domain.Account, error)
	Activate(ctx context.Context, id int64, token string, verifiedAt time.Time) (domain.Account, error)
	UpdateVerificationToken(ctx context.Context, id int64, token string, sentAt time.Time) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
	ListRoles(ctx context.Context, accountID int64) ([]domain.Role, error)
	List(ctx context.Context, limit, offset int) ([]domain.Account, error)
}

// PgAccountRepository implementa AccountRepository usando pgxpool.
type PgAccountRepository struct {
	pool *pgxpool.Pool
}

func NewPgAccountRepository(pool *pgxpool.Pool) *PgAccountRepository {
	return &PgAccountRepository{pool: pool}
}

const accountColumns = `id, external_id, email, password_hash, is_active, is_verified,
	verification_token, verification_sent_at, last_login_at, email_verified_at,
	display_name, created_at`

func scanAccount(row rowScanner) (domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.ID,
		&a.ExternalID,
		&a.Email,
		&a.PasswordHash,
		&a.IsActive,
		&a.IsVerified,
		&a.VerificationToken,
		&a.VerificationSentAt,
		&a.LastLoginAt,
		&a.EmailVerifiedAt,
		&a.DisplayName,
		&a.CreatedAt,
	)
	return a, err
}

// Create inserta la cuenta y sus roles en una sola transaccion.
func (r *PgAccountRepository) Create(ctx context.Context, account *domain.Account, roleIDs []int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	const insertAccount = `
		INSERT INTO accounts (external_id, email, password_hash, is_active, is_verified,
			verification_token, verification_sent_at, display_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err = tx.QueryRow(ctx, insertAccount,
		account.ExternalID,
		account.Email,
		account.PasswordHash,
		account.IsActive,
		account.IsVerified,
		account.VerificationToken,
		account.VerificationSentAt,
		account.DisplayName,
	).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		return translateError(err)
	}

	const insertRole = `INSERT INTO account_roles (account_id, role_id) VALUES ($1, $2)`
	for _, roleID := range roleIDs {
		if _, err := tx.Exec(ctx, insertRole, account.ID, roleID); err != nil {
			return fmt.Errorf("attach role %d: %w", roleID, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *PgAccountRepository) GetByID(ctx context.Context, id int64) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, id))
}

func (r *PgAccountRepository) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(r.pool.QueryRow(ctx, query, email))
}

func (r *PgAccountRepository) GetPendingByToken(ctx context.Context, token string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE verification_token = $1 AND is_verified = FALSE`
	return scanAccount(r.pool.QueryRow(ctx, query, token))
}

func (r *PgAccountRepository) GetPendingByEmail(ctx context.Context, email string) (domain.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE email = $1 AND is_verified = FALSE`
	return scanAccount(r.pool.QueryRow(ctx, query, email))
}

// Activate aplica la transicion PENDING -> VERIFIED solo si el token sigue
// vigente en la fila. Devuelve pgx.ErrNoRows si otra peticion ya lo consumio.
func (r *PgAccountRepository) Activate(ctx context.Context, id int64, token string, verifiedAt time.Time) (domain.Account, error) {
	query := `
		UPDATE accounts
		SET is_active = TRUE,
			is_verified = TRUE,
			email_verified_at = $3,
			verification_token = NULL
		WHERE id = $1 AND verification_token = $2 AND is_verified = FALSE
		RETURNING ` + accountColumns
	return scanAccount(r.pool.QueryRow(ctx, query, id, token, verifiedAt))
}

func (r *PgAccountRepository) UpdateVerificationToken(ctx context.Context, id int64, token string, sentAt time.Time) error {
	const query = `
		UPDATE accounts
		SET verification_token = $2, verification_sent_at = $3
		WHERE id = $1 AND is_verified = FALSE
	`
	tag, err := r.pool.Exec(ctx, query, id, token, sentAt)
	if err != nil {
		return translateError(err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *PgAccountRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	const query = `UPDATE accounts SET last_login_at = $2 WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, at)
	return err
}

func (r *PgAccountRepository) ListRoles(ctx context.Context, accountID int64) ([]domain.Role, error) {
	const query = `
		SELECT r.id, r.name, r.description
		FROM roles r
		JOIN account_roles ar ON ar.role_id = r.id
		WHERE ar.account_id = $1
		ORDER BY r.name
	`
	rows, err := r.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *PgAccountRepository) List(ctx context.Context, limit, offset int) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + `
		FROM accounts
		ORDER BY id
		LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}
