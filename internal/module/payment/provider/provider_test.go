package provider

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/domain"
	"github.com/santiagoavs/expo2025-sub004/internal/shared/actor"
	"github.com/stretchr/testify/require"
)

// mockNotifier records dispatched notifications for assertions.
type mockNotifier struct {
	mu     sync.Mutex
	events []string
}

func (m *mockNotifier) Send(_ context.Context, event string, _ map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *mockNotifier) sent(event string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e == event {
			return true
		}
	}
	return false
}

func newProviderPayment(t *testing.T, method domain.Method, amount int64) *domain.Payment {
	t.Helper()
	p, err := domain.NewPayment(uuid.New(), amount, "usd", method, domain.TimingAdvance, domain.TypeFull, 0, actor.Customer(uuid.New()))
	require.NoError(t, err)
	return p
}
