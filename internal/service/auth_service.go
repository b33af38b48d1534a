package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"school-auth/internal/domain"
	"school-auth/internal/repository"
)

// AuthService valida credenciales y aplica la puerta de activacion al login.
type AuthService struct {
	logger   *zap.Logger
	accounts repository.AccountRepository
	hasher   *PasswordHasher
	now      func() time.Time
}

func NewAuthService(logger *zap.Logger, accounts repository.AccountRepository, hasher *PasswordHasher) *AuthService {
	if hasher == nil {
		hasher = NewPasswordHasher(0)
	}
	return &AuthService{
		logger:   logger,
		accounts: accounts,
		hasher:   hasher,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Authenticate devuelve la cuenta si email y password coinciden.
// Email inexistente y password incorrecta producen el mismo error.
func (s *AuthService) Authenticate(ctx context.Context, emailAddr, password string) (domain.Account, error) {
	account, err := s.findByEmail(ctx, emailAddr)
	if err != nil {
		return domain.Account{}, err
	}
	return s.checkPassword(account, password)
}

// Login comparte la busqueda y la comprobacion de Authenticate, pero la puerta
// de activacion va antes de la password: una cuenta pendiente siempre falla
// con ErrEmailNotVerified.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) (domain.Account, error) {
	account, err := s.findByEmail(ctx, emailAddr)
	if err != nil {
		return domain.Account{}, err
	}
	if account.Pending() {
		return domain.Account{}, ErrEmailNotVerified
	}
	account, err = s.checkPassword(account, password)
	if err != nil {
		return domain.Account{}, err
	}
	if !account.IsActive {
		return domain.Account{}, ErrAccountInactive
	}

	now := s.now()
	if err := s.accounts.TouchLastLogin(ctx, account.ID, now); err != nil {
		s.logger.Warn("touch last login failed", zap.Int64("account_id", account.ID), zap.Error(err))
	} else {
		account.LastLoginAt = &now
	}
	s.attachRoles(ctx, &account)
	return account, nil
}

// CurrentUser recarga la cuenta de una sesion; solo cuentas activas.
func (s *AuthService) CurrentUser(ctx context.Context, accountID int64) (domain.Account, error) {
	if s.accounts == nil {
		return domain.Account{}, errors.New("auth service not configured")
	}
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, err
	}
	if !account.IsActive {
		return domain.Account{}, ErrAccountInactive
	}
	s.attachRoles(ctx, &account)
	return account, nil
}

func (s *AuthService) findByEmail(ctx context.Context, emailAddr string) (domain.Account, error) {
	if s.accounts == nil {
		return domain.Account{}, errors.New("auth service not configured")
	}
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return domain.Account{}, ErrInvalidCredentials
	}
	account, err := s.accounts.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrInvalidCredentials
		}
		return domain.Account{}, err
	}
	return account, nil
}

func (s *AuthService) checkPassword(account domain.Account, password string) (domain.Account, error) {
	if !s.hasher.Verify(password, account.PasswordHash) {
		return domain.Account{}, ErrInvalidCredentials
	}
	return account, nil
}

func (s *AuthService) attachRoles(ctx context.Context, account *domain.Account) {
	roles, err := s.accounts.ListRoles(ctx, account.ID)
	if err != nil {
		s.logger.Warn("load roles failed", zap.Int64("account_id", account.ID), zap.Error(err))
		return
	}
	account.Roles = roles
}
