package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"school-auth/internal/domain"
)

// EmailLogRepository es el registro append-only de envios de correo.
type EmailLogRepository interface {
	Create(ctx context.Context, entry *domain.EmailLog) error
	List(ctx context.Context, limit, offset int) ([]domain.EmailLog, error)
}

type PgEmailLogRepository struct {
	pool *pgxpool.Pool
}

func NewPgEmailLogRepository(pool *pgxpool.Pool) *PgEmailLogRepository {
	return &PgEmailLogRepository{pool: pool}
}

func (r *PgEmailLogRepository) Create(ctx context.Context, entry *domain.EmailLog) error {
	const query = `
		INSERT INTO email_logs (email, subject, template_name, status, error_message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	return r.pool.QueryRow(ctx, query,
		entry.Email,
		entry.Subject,
		entry.TemplateName,
		entry.Status,
		entry.ErrorMessage,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *PgEmailLogRepository) List(ctx context.Context, limit, offset int) ([]domain.EmailLog, error) {
	const query = `
		SELECT id, email, subject, template_name, status, error_message, created_at
		FROM email_logs
		ORDER BY id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.EmailLog
	for rows.Next() {
		var l domain.EmailLog
		if err := rows.Scan(&l.ID, &l.Email, &l.Subject, &l.TemplateName, &l.Status, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
