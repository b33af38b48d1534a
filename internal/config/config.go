package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	JWTSecret            string `env:"JWT_SECRET,required,notEmpty"`
	JWTAccessTTLMinutes  int    `env:"JWT_ACCESS_TTL_MINUTES" envDefault:"30"`
	JWTRefreshTTLMinutes int    `env:"JWT_REFRESH_TTL_MINUTES" envDefault:"43200"`

	Directory DirectoryConfig
	Mail      MailConfig

	VerificationTokenTTL     time.Duration `env:"VERIFICATION_TOKEN_TTL" envDefault:"24h"`
	ResendVerificationLimit  int           `env:"RESEND_VERIFICATION_LIMIT" envDefault:"3"`
	ResendVerificationWindow time.Duration `env:"RESEND_VERIFICATION_WINDOW" envDefault:"10m"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	AdminAPIToken string `env:"ADMIN_API_TOKEN"`
}

// DirectoryConfig agrupa las fuentes del directorio escolar.
type DirectoryConfig struct {
	StaffURL        string        `env:"STAFF_DIRECTORY_URL" envDefault:"https://school1298.ru/portal/workers/workersPS-no.json"`
	StaffTimeout    time.Duration `env:"STAFF_DIRECTORY_TIMEOUT" envDefault:"10s"`
	StudentDBDriver string        `env:"STUDENT_DB_DRIVER" envDefault:"postgres"`
	StudentDBDSN    string        `env:"STUDENT_DB_DSN"`
}

// MailConfig agrupa el proveedor de correo y los datos de la escuela.
type MailConfig struct {
	ResendAPIKey    string `env:"RESEND_API_KEY"`
	ResendBaseURL   string `env:"RESEND_BASE_URL" envDefault:"https://api.resend.com"`
	ResendFromEmail string `env:"RESEND_FROM_EMAIL"`

	SMTPHost   string `env:"SMTP_HOST"`
	SMTPPort   int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser   string `env:"SMTP_USER"`
	SMTPPass   string `env:"SMTP_PASS"`
	SMTPFrom   string `env:"SMTP_FROM"`
	SMTPUseTLS bool   `env:"SMTP_USE_TLS" envDefault:"false"`

	SchoolName   string `env:"SCHOOL_NAME" envDefault:"School 1298"`
	SchoolDomain string `env:"SCHOOL_DOMAIN" envDefault:"school1298.ru"`
	FrontendURL  string `env:"FRONTEND_URL" envDefault:"http://localhost:8080"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDirectoryConfig carga solo las fuentes del directorio; no exige DATABASE_URL.
func LoadDirectoryConfig() (DirectoryConfig, error) {
	var cfg DirectoryConfig
	if err := env.Parse(&cfg); err != nil {
		return DirectoryConfig{}, err
	}
	return cfg, nil
}
