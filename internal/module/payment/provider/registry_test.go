package provider

import (
	"testing"

	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegistry_GetByMethod(t *testing.T) {
	cash := NewCashProvider(&mockNotifier{}, zap.NewNop())
	registry := NewRegistry(cash)

	s, err := registry.GetByMethod(domain.MethodCash)
	require.NoError(t, err)
	assert.Equal(t, cash, s)
}

func TestRegistry_GetByMethodUnknown(t *testing.T) {
	registry := NewRegistry(NewCashProvider(&mockNotifier{}, zap.NewNop()))

	_, err := registry.GetByMethod(domain.MethodGateway)
	assert.ErrorIs(t, err, ErrUnsupportedMethod)

	_, err = registry.GetByMethod(domain.Method("paypal"))
	assert.ErrorIs(t, err, ErrUnsupportedMethod)
}

func TestRegistry_Methods(t *testing.T) {
	registry := NewRegistry(
		NewCashProvider(&mockNotifier{}, zap.NewNop()),
	)
	assert.Equal(t, []domain.Method{domain.MethodCash}, registry.Methods())
}
