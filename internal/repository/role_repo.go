package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"school-auth/internal/domain"
)

// RoleRepository define el contrato de persistencia para roles locales.
type RoleRepository interface {
	GetByName(ctx context.Context, name string) (domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	Create(ctx context.Context, role *domain.Role) error
}

type PgRoleRepository struct {
	pool *pgxpool.Pool
}

func NewPgRoleRepository(pool *pgxpool.Pool) *PgRoleRepository {
	return &PgRoleRepository{pool: pool}
}

func (r *PgRoleRepository) GetByName(ctx context.Context, name string) (domain.Role, error) {
	const query = `SELECT id, name, description FROM roles WHERE name = $1`
	var role domain.Role
	err := r.pool.QueryRow(ctx, query, name).Scan(&role.ID, &role.Name, &role.Description)
	return role, err
}

func (r *PgRoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	const query = `SELECT id, name, description FROM roles ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
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

func (r *PgRoleRepository) Create(ctx context.Context, role *domain.Role) error {
	const query = `
		INSERT INTO roles (name, description)
		VALUES ($1, $2)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query, role.Name, role.Description).Scan(&role.ID)
	return translateError(err)
}
