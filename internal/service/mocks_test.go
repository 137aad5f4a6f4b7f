package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/lexhub/identity-service/internal/domain"
)

// ---------- Mocks ----------

type mockPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (m *mockPublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

type mockOtpRepo struct {
	challenges map[string]*domain.OtpChallenge
	findErr    error
	upsertErr  error
}

func newMockOtpRepo() *mockOtpRepo {
	return &mockOtpRepo{challenges: make(map[string]*domain.OtpChallenge)}
}

func (m *mockOtpRepo) Find(_ context.Context, identifier string) (*domain.OtpChallenge, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	c, ok := m.challenges[identifier]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *mockOtpRepo) Upsert(_ context.Context, challenge *domain.OtpChallenge) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	cp := *challenge
	m.challenges[challenge.Identifier] = &cp
	return nil
}

func (m *mockOtpRepo) Delete(_ context.Context, identifier string) error {
	delete(m.challenges, identifier)
	return nil
}

type mockSender struct {
	lastIdent domain.Identifier
	lastCode  string
	sent      int
	sendErr   error
}

func (m *mockSender) SendOtp(ident domain.Identifier, code string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.lastIdent = ident
	m.lastCode = code
	m.sent++
	return nil
}

type rateLimitKey struct {
	ip      string
	purpose string
}

type mockRateLimitRepo struct {
	records map[rateLimitKey]*domain.RateLimitRecord
}

func newMockRateLimitRepo() *mockRateLimitRepo {
	return &mockRateLimitRepo{records: make(map[rateLimitKey]*domain.RateLimitRecord)}
}

func (m *mockRateLimitRepo) Find(_ context.Context, ip, purpose string) (*domain.RateLimitRecord, error) {
	rec, ok := m.records[rateLimitKey{ip, purpose}]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *mockRateLimitRepo) Upsert(_ context.Context, record *domain.RateLimitRecord) error {
	cp := *record
	m.records[rateLimitKey{record.IP, record.Purpose}] = &cp
	return nil
}

type mockSubscriptionRepo struct {
	subs map[int64]*domain.Subscription
}

func newMockSubscriptionRepo() *mockSubscriptionRepo {
	return &mockSubscriptionRepo{subs: make(map[int64]*domain.Subscription)}
}

func (m *mockSubscriptionRepo) MostRecentActive(_ context.Context, userID int64) (*domain.Subscription, error) {
	sub, ok := m.subs[userID]
	if !ok {
		return nil, nil
	}
	cp := *sub
	return &cp, nil
}

type mockUserRepo struct {
	nextID int64
	users  map[int64]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{nextID: 1, users: make(map[int64]*domain.User)}
}

func (m *mockUserRepo) add(u *domain.User) *domain.User {
	if u.ID == 0 {
		u.ID = m.nextID
		m.nextID++
	} else if u.ID >= m.nextID {
		m.nextID = u.ID + 1
	}
	m.users[u.ID] = u
	return u
}

func (m *mockUserRepo) Create(_ context.Context, email, phone, passwordHash, role string) (*domain.User, error) {
	now := time.Now()
	return m.add(&domain.User{
		Role:         role,
		Email:        email,
		Phone:        phone,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}), nil
}

func (m *mockUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) FindByIdentifier(_ context.Context, ident domain.Identifier) (*domain.User, error) {
	for _, u := range m.users {
		switch ident.Kind {
		case domain.IdentifierPhone:
			if u.Phone == ident.Value {
				cp := *u
				return &cp, nil
			}
		case domain.IdentifierEmail:
			if u.Email == ident.Value {
				cp := *u
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (m *mockUserRepo) SetRefreshToken(_ context.Context, userID int64, refreshToken string) error {
	u, ok := m.users[userID]
	if !ok {
		return errors.New("no rows")
	}
	u.RefreshToken = refreshToken
	return nil
}

func mustIdentifier(raw string) domain.Identifier {
	ident, err := domain.ParseIdentifier(raw)
	if err != nil {
		panic(err)
	}
	return ident
}
