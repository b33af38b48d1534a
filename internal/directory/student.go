package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/lib/pq"

	"school-auth/internal/domain"
)

// StudentDirectory busca alumnos por email en la base relacional de la escuela.
type StudentDirectory struct {
	db    *sql.DB
	query string
}

// OpenStudentDB abre la base de alumnos con el driver configurado.
func OpenStudentDB(driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open student db: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	return db, nil
}

// NewStudentDirectory construye el resolver de alumnos. El driver determina el
// estilo de placeholder de la consulta.
func NewStudentDirectory(db *sql.DB, driver string) *StudentDirectory {
	placeholder := "?"
	if driver == "postgres" || driver == "pgx" {
		placeholder = "$1"
	}
	return &StudentDirectory{
		db: db,
		query: `SELECT personid, firstname, lastname, patronymic
			FROM students
			WHERE email = ` + placeholder + `
			LIMIT 1`,
	}
}

func (d *StudentDirectory) Resolve(ctx context.Context, email string) (domain.Person, error) {
	var (
		personID                        string
		firstName, lastName, patronymic sql.NullString
	)
	err := d.db.QueryRowContext(ctx, d.query, email).Scan(&personID, &firstName, &lastName, &patronymic)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Person{}, ErrNotFound
	}
	if err != nil {
		return domain.Person{}, unavailable(err)
	}

	return domain.Person{
		ExternalID:  personID,
		DisplayName: joinName(firstName.String, lastName.String, patronymic.String),
		Role:        domain.SchoolRoleStudent,
	}, nil
}

func joinName(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
