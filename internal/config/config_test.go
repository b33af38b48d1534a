package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/school")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.VerificationTokenTTL != 24*time.Hour {
		t.Fatalf("expected 24h verification ttl, got %v", cfg.VerificationTokenTTL)
	}
	if cfg.Directory.StudentDBDriver != "postgres" {
		t.Fatalf("expected postgres student driver, got %s", cfg.Directory.StudentDBDriver)
	}
	if cfg.Directory.StaffTimeout != 10*time.Second {
		t.Fatalf("expected 10s staff timeout, got %v", cfg.Directory.StaffTimeout)
	}
	if cfg.Mail.ResendBaseURL != "https://api.resend.com" {
		t.Fatalf("unexpected resend base url %s", cfg.Mail.ResendBaseURL)
	}
}

func TestLoadConfig_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DATABASE_URL", "unused")
	os.Unsetenv("DATABASE_URL")

	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/school")

	t.Setenv("JWT_SECRET", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error with empty JWT_SECRET")
	}

	os.Unsetenv("JWT_SECRET")
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected error without JWT_SECRET")
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/school")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STUDENT_DB_DRIVER", "sqlite")
	t.Setenv("SCHOOL_NAME", "Test School")
	t.Setenv("RESEND_VERIFICATION_WINDOW", "5m")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Directory.StudentDBDriver != "sqlite" {
		t.Fatalf("expected sqlite driver, got %s", cfg.Directory.StudentDBDriver)
	}
	if cfg.Mail.SchoolName != "Test School" {
		t.Fatalf("expected school name override, got %s", cfg.Mail.SchoolName)
	}
	if cfg.ResendVerificationWindow != 5*time.Minute {
		t.Fatalf("expected 5m window, got %v", cfg.ResendVerificationWindow)
	}
}

func TestLoadDirectoryConfig_WithoutDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "unused")
	os.Unsetenv("DATABASE_URL")
	t.Setenv("STUDENT_DB_DRIVER", "sqlite")
	t.Setenv("STUDENT_DB_DSN", "file:students.db")

	cfg, err := LoadDirectoryConfig()
	if err != nil {
		t.Fatalf("load directory config: %v", err)
	}
	if cfg.StudentDBDriver != "sqlite" || cfg.StudentDBDSN != "file:students.db" {
		t.Fatalf("unexpected directory config: %+v", cfg)
	}
}
