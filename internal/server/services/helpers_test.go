package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/verikeep/internal/logging"
	"github.com/dmitrijs2005/verikeep/internal/server/config"
	"github.com/dmitrijs2005/verikeep/internal/server/repositories/repomanager"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeClock is a settable time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// seqCodes hands out 100001, 100002, ...
type seqCodes struct {
	mu sync.Mutex
	n  int
}

func (g *seqCodes) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%06d", 100000+g.n), nil
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, email, code, name string) error {
	return m.Called(ctx, email, code, name).Error(0)
}

// lastCode returns the code passed on the most recent Send.
func (m *mockNotifier) lastCode(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, m.Calls)
	return m.Calls[len(m.Calls)-1].Arguments.String(2)
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost
	cfg.SecretKey = "test-secret"
	return cfg
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
}

type fixture struct {
	svc      *AccountService
	rm       repomanager.RepositoryManager
	notifier *mockNotifier
	clock    *fakeClock
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		rm:       repomanager.NewInMemoryRepositoryManager(),
		notifier: &mockNotifier{},
		clock:    &fakeClock{now: t0},
	}
	f.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	all := append([]Option{WithClock(f.clock.Now), WithCodeGenerator(&seqCodes{})}, opts...)
	svc, err := NewAccountService(f.rm, f.notifier, testLogger(), testConfig(), all...)
	require.NoError(t, err)
	f.svc = svc
	return f
}
