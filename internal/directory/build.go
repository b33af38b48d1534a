package directory

import (
	"database/sql"
	"strings"

	"go.uber.org/zap"

	"school-auth/internal/config"
)

// Build arma la cadena personal -> alumnos a partir de la configuracion.
// La base de alumnos solo se abre si hay DSN; el cierre queda a cargo del llamador.
func Build(cfg config.DirectoryConfig, logger *zap.Logger) (Chain, *sql.DB, error) {
	resolvers := []Resolver{NewStaffDirectory(cfg.StaffURL, cfg.StaffTimeout, logger)}

	if strings.TrimSpace(cfg.StudentDBDSN) == "" {
		logger.Warn("student directory disabled: STUDENT_DB_DSN not set")
		return NewChain(resolvers...), nil, nil
	}
	db, err := OpenStudentDB(cfg.StudentDBDriver, cfg.StudentDBDSN)
	if err != nil {
		return nil, nil, err
	}
	resolvers = append(resolvers, NewStudentDirectory(db, cfg.StudentDBDriver))
	return NewChain(resolvers...), db, nil
}
