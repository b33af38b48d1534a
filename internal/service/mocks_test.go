package service

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
	mu        sync.Mutex
	nextID    int64
	byID      map[int64]domain.Account
	roleLinks map[int64][]domain.Role
	getErr    error
	createErr error
	touched   map[int64]time.Time
}

func newMockAccountRepo() *mockAccountRepo {
	return &mockAccountRepo{
		byID:      make(map[int64]domain.Account),
		roleLinks: make(map[int64][]domain.Role),
		touched:   make(map[int64]time.Time),
	}
}

func (m *mockAccountRepo) Create(_ context.Context, account *domain.Account, roleIDs []int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.byID {
		if existing.Email == account.Email || existing.ExternalID == account.ExternalID {
			return repository.ErrConflict
		}
	}
	m.nextID++
	account.ID = m.nextID
	account.CreatedAt = time.Now().UTC()
	m.byID[account.ID] = *account
	for _, id := range roleIDs {
		m.roleLinks[account.ID] = append(m.roleLinks[account.ID], domain.Role{ID: id, Name: roleNameByID(id)})
	}
	return nil
}

func (m *mockAccountRepo) GetByID(_ context.Context, id int64) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return domain.Account{}, m.getErr
	}
	a, ok := m.byID[id]
	if !ok {
		return domain.Account{}, pgx.ErrNoRows
	}
	return a, nil
}

func (m *mockAccountRepo) GetByEmail(_ context.Context, email string) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return domain.Account{}, m.getErr
	}
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

func (m *mockAccountRepo) Activate(_ context.Context, id int64, token string, verifiedAt time.Time) (domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok || a.IsVerified || a.VerificationToken == nil || *a.VerificationToken != token {
		return domain.Account{}, pgx.ErrNoRows
	}
	a.IsActive = true
	a.IsVerified = true
	a.EmailVerifiedAt = &verifiedAt
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
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touched[id] = at
	return nil
}

func (m *mockAccountRepo) ListRoles(_ context.Context, accountID int64) ([]domain.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roleLinks[accountID], nil
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

// put guarda una cuenta tal cual, para preparar escenarios.
func (m *mockAccountRepo) put(a domain.Account) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a.ID > m.nextID {
		m.nextID = a.ID
	}
	m.byID[a.ID] = a
}

func roleNameByID(id int64) string {
	switch id {
	case 1:
		return "teacher"
	case 2:
		return "student"
	}
	return ""
}

type mockRoleRepo struct {
	roles map[string]domain.Role
	err   error
}

func newMockRoleRepo() *mockRoleRepo {
	return &mockRoleRepo{roles: map[string]domain.Role{
		"teacher": {ID: 1, Name: "teacher"},
		"student": {ID: 2, Name: "student"},
	}}
}

func (m *mockRoleRepo) GetByName(_ context.Context, name string) (domain.Role, error) {
	if m.err != nil {
		return domain.Role{}, m.err
	}
	r, ok := m.roles[name]
	if !ok {
		return domain.Role{}, pgx.ErrNoRows
	}
	return r, nil
}

func (m *mockRoleRepo) List(_ context.Context) ([]domain.Role, error) {
	out := make([]domain.Role, 0, len(m.roles))
	for _, r := range m.roles {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockRoleRepo) Create(_ context.Context, role *domain.Role) error {
	role.ID = int64(len(m.roles) + 1)
	m.roles[role.Name] = *role
	return nil
}

type mockEmailLogRepo struct {
	entries []domain.EmailLog
	err     error
}

func (m *mockEmailLogRepo) Create(_ context.Context, entry *domain.EmailLog) error {
	if m.err != nil {
		return m.err
	}
	entry.ID = int64(len(m.entries) + 1)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockEmailLogRepo) List(_ context.Context, limit, offset int) ([]domain.EmailLog, error) {
	return m.entries, nil
}

type mockNotifier struct {
	verifications []sentVerification
	welcomes      []string
	deliver       bool
}

type sentVerification struct {
	to       string
	token    string
	userName string
}

func (m *mockNotifier) SendVerificationEmail(_ context.Context, to, token, userName string) DeliveryResult {
	m.verifications = append(m.verifications, sentVerification{to: to, token: token, userName: userName})
	if !m.deliver {
		return DeliveryResult{Reason: "smtp down"}
	}
	return DeliveryResult{Delivered: true, MessageID: "msg-1"}
}

func (m *mockNotifier) SendWelcomeEmail(_ context.Context, to, _ string) DeliveryResult {
	m.welcomes = append(m.welcomes, to)
	if !m.deliver {
		return DeliveryResult{Reason: "smtp down"}
	}
	return DeliveryResult{Delivered: true, MessageID: "msg-2"}
}

type fakeResolver struct {
	people    map[string]domain.Person
	err       error
	calls     int
	lastEmail string
}

func (f *fakeResolver) Resolve(_ context.Context, email string) (domain.Person, error) {
	f.calls++
	f.lastEmail = email
	if f.err != nil {
		return domain.Person{}, f.err
	}
	p, ok := f.people[email]
	if !ok {
		return domain.Person{}, directory.ErrNotFound
	}
	return p, nil
}

type mockSender struct {
	sent []email.Message
	err  error
}

func (m *mockSender) Send(_ context.Context, msg email.Message) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "provider-id", nil
}
