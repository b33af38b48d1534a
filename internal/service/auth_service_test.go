package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"school-auth/internal/domain"
)

func newAuthFixture(t *testing.T) (*AuthService, *mockAccountRepo) {
	t.Helper()
	hasher := NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash("pw123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := newMockAccountRepo()
	token := "pending-token"
	sent := time.Now().UTC()
	repo.put(domain.Account{ID: 1, ExternalID: "stf-1", Email: "anna@school1298.ru", PasswordHash: hash, IsActive: true, IsVerified: true})
	repo.put(domain.Account{ID: 2, ExternalID: "1001", Email: "ivan@school1298.ru", PasswordHash: hash, VerificationToken: &token, VerificationSentAt: &sent})
	repo.put(domain.Account{ID: 3, ExternalID: "stf-9", Email: "blocked@school1298.ru", PasswordHash: hash, IsVerified: true})
	repo.roleLinks[1] = []domain.Role{{ID: 1, Name: "teacher"}}

	svc := NewAuthService(zap.NewNop(), repo, hasher)
	return svc, repo
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newAuthFixture(t)

	acc, err := svc.Authenticate(context.Background(), " ANNA@school1298.ru", "pw123")
	if err != nil || acc.ID != 1 {
		t.Fatalf("expected account 1, got %+v %v", acc, err)
	}

	_, errWrong := svc.Authenticate(context.Background(), "anna@school1298.ru", "bad")
	_, errMissing := svc.Authenticate(context.Background(), "nobody@school1298.ru", "pw123")
	if !errors.Is(errWrong, ErrInvalidCredentials) || !errors.Is(errMissing, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for both, got %v / %v", errWrong, errMissing)
	}
}

func TestLogin_ActiveAccount(t *testing.T) {
	svc, repo := newAuthFixture(t)
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	acc, err := svc.Login(context.Background(), "anna@school1298.ru", "pw123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if acc.LastLoginAt == nil || !acc.LastLoginAt.Equal(now) {
		t.Fatalf("expected last login set, got %v", acc.LastLoginAt)
	}
	if !repo.touched[1].Equal(now) {
		t.Fatalf("expected last login persisted")
	}
	if len(acc.Roles) != 1 || acc.Roles[0].Name != "teacher" {
		t.Fatalf("expected roles attached, got %+v", acc.Roles)
	}
}

func TestLogin_Gating(t *testing.T) {
	svc, repo := newAuthFixture(t)

	cases := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{name: "unverified with correct password", email: "ivan@school1298.ru", password: "pw123", wantErr: ErrEmailNotVerified},
		{name: "unverified with wrong password", email: "ivan@school1298.ru", password: "bad", wantErr: ErrEmailNotVerified},
		{name: "unverified with empty password", email: "ivan@school1298.ru", password: "", wantErr: ErrEmailNotVerified},
		{name: "verified but inactive", email: "blocked@school1298.ru", password: "pw123", wantErr: ErrAccountInactive},
		{name: "wrong password", email: "anna@school1298.ru", password: "bad", wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "ghost@school1298.ru", password: "pw123", wantErr: ErrInvalidCredentials},
		{name: "empty password", email: "anna@school1298.ru", password: "", wantErr: ErrInvalidCredentials},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Login(context.Background(), tc.email, tc.password); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
	if len(repo.touched) != 0 {
		t.Fatalf("failed logins must not touch last login, got %+v", repo.touched)
	}
}

func TestCurrentUser(t *testing.T) {
	svc, _ := newAuthFixture(t)

	acc, err := svc.CurrentUser(context.Background(), 1)
	if err != nil || acc.Email != "anna@school1298.ru" {
		t.Fatalf("expected account 1, got %+v %v", acc, err)
	}
	if _, err := svc.CurrentUser(context.Background(), 2); !errors.Is(err, ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive for pending account, got %v", err)
	}
	if _, err := svc.CurrentUser(context.Background(), 99); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for missing account, got %v", err)
	}
}

func TestAuthService_RepositoryFaultPropagates(t *testing.T) {
	svc, repo := newAuthFixture(t)
	boom := errors.New("db down")
	repo.getErr = boom

	if _, err := svc.Login(context.Background(), "anna@school1298.ru", "pw123"); !errors.Is(err, boom) {
		t.Fatalf("expected repository fault, got %v", err)
	}
}
