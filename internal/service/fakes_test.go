package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-shop-api/internal/config"
	"go-shop-api/internal/crypto"
	"go-shop-api/internal/model"
	"go-shop-api/internal/testutil"
	"go-shop-api/internal/token"
)

func newMemUserStore() *testutil.UserStore {
	return testutil.NewUserStore()
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) FindByID(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserStore) Create(ctx context.Context, u model.User) (model.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, u model.User) (model.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) Delete(ctx context.Context, id int64) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

type MockAuditStore struct {
	mock.Mock
}

func (m *MockAuditStore) Log(ctx context.Context, entry model.AuditEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockAuditStore) Query(ctx context.Context, query model.AuditQuery) (model.AuditPage, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(model.AuditPage), args.Error(1)
}

// memAuditStore keeps entries in order of insertion.
type memAuditStore struct {
	mu      sync.Mutex
	entries []model.AuditEntry
}

func (s *memAuditStore) Log(_ context.Context, entry model.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memAuditStore) Query(context.Context, model.AuditQuery) (model.AuditPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := append([]model.AuditEntry(nil), s.entries...)
	return model.AuditPage{Items: items, Meta: model.Meta{Page: 1, Limit: len(items), Total: len(items), TotalPages: 1}}, nil
}

func (s *memAuditStore) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.Action+":"+e.Status)
	}
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:        "access-secret",
		JWTRefreshSecret: "refresh-secret",
		JWTAccessTTL:     15 * time.Minute,
		JWTRefreshTTL:    7 * 24 * time.Hour,
	}
}

func newTestHasher(t *testing.T) *crypto.BcryptHasher {
	t.Helper()
	h, err := crypto.NewBcryptHasher(bcrypt.MinCost, 2)
	require.NoError(t, err)
	return h
}

func newTestTokens(t *testing.T, opts ...token.Option) *token.Service {
	t.Helper()
	svc, err := token.NewService(testConfig(), opts...)
	require.NoError(t, err)
	return svc
}
