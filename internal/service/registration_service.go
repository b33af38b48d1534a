package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"school-auth/internal/directory"
	"school-auth/internal/domain"
	"school-auth/internal/repository"
)

// RegistrationService coordina alta, verificacion y reenvio de tokens de cuentas.
type RegistrationService struct {
	logger    *zap.Logger
	accounts  repository.AccountRepository
	roles     repository.RoleRepository
	directory directory.Resolver
	hasher    *PasswordHasher
	tokens    *TokenIssuer
	notifier  Notifier
	limiter   RateLimiter
	now       func() time.Time
}

func NewRegistrationService(
	logger *zap.Logger,
	accounts repository.AccountRepository,
	roles repository.RoleRepository,
	resolver directory.Resolver,
	hasher *PasswordHasher,
	tokens *TokenIssuer,
	notifier Notifier,
	limiter RateLimiter,
) *RegistrationService {
	if hasher == nil {
		hasher = NewPasswordHasher(0)
	}
	if tokens == nil {
		tokens = NewTokenIssuer(defaultVerificationTTL)
	}
	if limiter == nil {
		limiter = NewRateLimiter(10*time.Minute, 3)
	}
	return &RegistrationService{
		logger:    logger,
		accounts:  accounts,
		roles:     roles,
		directory: resolver,
		hasher:    hasher,
		tokens:    tokens,
		notifier:  notifier,
		limiter:   limiter,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// Register crea una cuenta pendiente para una persona presente en el registro escolar.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (domain.Account, error) {
	if s.accounts == nil || s.directory == nil {
		return domain.Account{}, errors.New("registration service not configured")
	}

	// La cuenta local usa el email normalizado; el directorio recibe el email tal
	// como se escribio porque la base de alumnos compara de forma exacta.
	typedEmail := strings.TrimSpace(input.Email)
	emailAddr := normalizeEmail(input.Email)
	if !isValidEmail(emailAddr) {
		return domain.Account{}, ErrInvalidEmail
	}
	if input.Password == "" {
		return domain.Account{}, ErrWeakPassword
	}

	_, err := s.accounts.GetByEmail(ctx, emailAddr)
	switch {
	case err == nil:
		return domain.Account{}, ErrDuplicateAccount
	case !errors.Is(err, pgx.ErrNoRows):
		return domain.Account{}, err
	}

	person, err := s.directory.Resolve(ctx, typedEmail)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return domain.Account{}, ErrPersonNotFound
		}
		s.logger.Error("directory lookup failed", zap.String("email", emailAddr), zap.Error(err))
		return domain.Account{}, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}

	role, hasRole, err := s.lookupRole(ctx, person.Role)
	if err != nil {
		return domain.Account{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return domain.Account{}, err
	}
	token, err := s.tokens.Issue()
	if err != nil {
		return domain.Account{}, err
	}
	sentAt := s.now()

	account := domain.Account{
		ExternalID:         person.ExternalID,
		Email:              emailAddr,
		PasswordHash:       hash,
		IsActive:           false,
		IsVerified:         false,
		VerificationToken:  &token,
		VerificationSentAt: &sentAt,
		DisplayName:        person.DisplayName,
	}
	var roleIDs []int64
	if hasRole {
		roleIDs = []int64{role.ID}
		account.Roles = []domain.Role{role}
	}

	if err := s.accounts.Create(ctx, &account, roleIDs); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return domain.Account{}, ErrDuplicateAccount
		}
		return domain.Account{}, err
	}

	greeting := strings.TrimSpace(input.DisplayName)
	if greeting == "" {
		greeting = person.DisplayName
	}
	s.dispatchVerification(ctx, account.Email, token, greeting)

	s.logger.Info("account registered",
		zap.Int64("account_id", account.ID),
		zap.String("external_id", account.ExternalID),
		zap.String("school_role", string(person.Role)),
	)
	return account, nil
}

// Verify consume un token de verificacion y activa la cuenta.
func (s *RegistrationService) Verify(ctx context.Context, token string) (domain.Account, error) {
	if s.accounts == nil {
		return domain.Account{}, errors.New("registration service not configured")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Account{}, ErrInvalidOrConsumedToken
	}

	pending, err := s.accounts.GetPendingByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrInvalidOrConsumedToken
		}
		return domain.Account{}, err
	}

	now := s.now()
	if s.tokens.Expired(pending.VerificationSentAt, now) {
		return domain.Account{}, ErrTokenExpired
	}

	account, err := s.accounts.Activate(ctx, pending.ID, token, now)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Account{}, ErrInvalidOrConsumedToken
		}
		return domain.Account{}, err
	}

	roles, err := s.accounts.ListRoles(ctx, account.ID)
	if err != nil {
		s.logger.Warn("load roles failed", zap.Int64("account_id", account.ID), zap.Error(err))
	} else {
		account.Roles = roles
	}

	if s.notifier != nil {
		res := s.notifier.SendWelcomeEmail(ctx, account.Email, account.DisplayName)
		if !res.Delivered {
			s.logger.Warn("welcome email not delivered", zap.String("email", account.Email), zap.String("reason", res.Reason))
		}
	}

	s.logger.Info("account verified", zap.Int64("account_id", account.ID))
	return account, nil
}

// ResendVerification emite un token nuevo para una cuenta pendiente.
// El bool informa si el correo salio; un fallo de envio no es error.
func (s *RegistrationService) ResendVerification(ctx context.Context, emailAddr string) (bool, error) {
	if s.accounts == nil {
		return false, errors.New("registration service not configured")
	}
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return false, ErrNotFoundOrAlreadyVerified
	}
	if !s.limiter.Allow(emailAddr) {
		return false, ErrRateLimited
	}

	account, err := s.accounts.GetPendingByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFoundOrAlreadyVerified
		}
		return false, err
	}

	token, err := s.tokens.Issue()
	if err != nil {
		return false, err
	}
	if err := s.accounts.UpdateVerificationToken(ctx, account.ID, token, s.now()); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFoundOrAlreadyVerified
		}
		return false, err
	}

	return s.dispatchVerification(ctx, account.Email, token, account.DisplayName), nil
}

func (s *RegistrationService) dispatchVerification(ctx context.Context, to, token, userName string) bool {
	if s.notifier == nil {
		return false
	}
	res := s.notifier.SendVerificationEmail(ctx, to, token, userName)
	if !res.Delivered {
		s.logger.Warn("verification email not delivered", zap.String("email", to), zap.String("reason", res.Reason))
	}
	return res.Delivered
}

// lookupRole busca el rol local que corresponde al rol escolar; si no existe la cuenta queda sin rol.
func (s *RegistrationService) lookupRole(ctx context.Context, schoolRole domain.SchoolRole) (domain.Role, bool, error) {
	if s.roles == nil || schoolRole == "" {
		return domain.Role{}, false, nil
	}
	role, err := s.roles.GetByName(ctx, string(schoolRole))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("no local role for school role", zap.String("school_role", string(schoolRole)))
			return domain.Role{}, false, nil
		}
		return domain.Role{}, false, err
	}
	return role, true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidEmail(email string) bool {
	if email == "" || strings.Count(email, "@") != 1 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
