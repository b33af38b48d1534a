package http

import (
	"context"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"school-auth/internal/directory"
	"school-auth/internal/domain"
	"school-auth/internal/email"
	"school-auth/internal/repository"
)

type mockAccountRepo struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]domain.Account
	roles  map[int64][]domain.Role
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{
		byID:  make(map[int64]domain.Account),
		roles: make(map[int64][]domain.Role),
	}
}

func (m *mockAccountRepo) Create(_ context.Context, account *domain.Account, roleIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Email == account.Email {
			return repository.ErrConflict
		}
	}
	m.nextID++
	account.ID = m.nextID
	m.byID[account.ID] = *account
	m.roles[account.ID] = account.Roles
	return nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, id int64) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return domain.Account{}, pgx.ErrNoRows
	}
	return a, nil
}

func (m *mockAccountRepo) GetByEmail(_ context.Context, email string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Email == email {
			return a, nil
		}
	}
	return domain.Account{}, pgx.ErrNoRows
}

func (m *mockAccountRepo) GetPendingByToken(_ context.Context, token string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if !a.IsVerified && a.VerificationToken != nil && *a.VerificationToken == token {
			return a, nil
		}
	}
	return domain.Account{}, pgx.ErrNoRows
}

func (m *mockAccountRepo) GetPendingByEmail(_ context.Context, email string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if !a.IsVerified && a.Email == email {
			return a, nil
		}
	}
	return domain.Account{}, pgx.ErrNoRows
}

func (m *mockAccountRepo) Activate(_ context.Context, id int64, token string, at time.Time) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok || a.IsVerified || a.VerificationToken == nil || *a.VerificationToken != token {
		return domain.Account{}, pgx.ErrNoRows
	}
	a.IsActive, a.IsVerified = true, true
	a.EmailVerifiedAt = &at
	a.VerificationToken = nil
	m.byID[id] = a
	return a, nil
}

func (m *mockAccountRepo) UpdateVerificationToken(_ context.Context, id int64, token string, sentAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok || a.IsVerified {
		return pgx.ErrNoRows
	}
	a.VerificationToken = &token
	a.VerificationSentAt = &sentAt
	m.byID[id] = a
	return nil
}

func (m *mockAccountRepo) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	return nil
}

func (m *mockAccountRepo) ListRoles(_ context.Context, accountID int64) ([]domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roles[accountID], nil
}

func (m *mockAccountRepo) List(_ context.Context, limit, offset int) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Account, 0, len(m.byID))
	for _, a := range m.byID {
		out = append(out, a)
	}
	return out, nil
}

type mockRoleRepo struct {
	roles []domain.Role
}

func (m *mockRoleRepo) GetByName(_ context.Context, name string) (domain.Role, error) {
	for _, r := range m.roles {
		if r.Name == name {
			return r, nil
		}
	}
	return domain.Role{}, pgx.ErrNoRows
}

func (m *mockRoleRepo) List(_ context.Context) ([]domain.Role, error) {
	return m.roles, nil
}

func (m *mockRoleRepo) Create(_ context.Context, role *domain.Role) error {
	for _, r := range m.roles {
		if r.Name == role.Name {
			return repository.ErrConflict
		}
	}
	role.ID = int64(len(m.roles) + 1)
	m.roles = append(m.roles, *role)
	return nil
}

type mockEmailLogRepo struct {
	entries []domain.EmailLog
}

func (m *mockEmailLogRepo) Create(_ context.Context, entry *domain.EmailLog) error {
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockEmailLogRepo) List(_ context.Context, limit, offset int) ([]domain.EmailLog, error) {
	return m.entries, nil
}

type staticResolver struct {
	people map[string]domain.Person
	err    error
}

func (r *staticResolver) Resolve(_ context.Context, email string) (domain.Person, error) {
	if r.err != nil {
		return domain.Person{}, r.err
	}
	p, ok := r.people[email]
	if !ok {
		return domain.Person{}, directory.ErrNotFound
	}
	return p, nil
}

// captureSender guarda los mensajes enviados para leer el token del enlace.
type captureSender struct {
	sent []email.Message
}

func (s *captureSender) Send(_ context.Context, msg email.Message) (string, error) {
	s.sent = append(s.sent, msg)
	return "id-1", nil
}
