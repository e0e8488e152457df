package provider

import (
	"fmt"

	"github.com/santiagoavs/expo2025-sub004/internal/module/payment/domain"
)

// Registry holds the configured settlement strategies keyed by method.
type Registry struct {
	strategies map[domain.Method]Strategy
}

// NewRegistry creates a registry over the given strategies.
func NewRegistry(strategies ...Strategy) *Registry {
	r := &Registry{strategies: make(map[domain.Method]Strategy, len(strategies))}
	for _, s := range strategies {
		r.strategies[s.Method()] = s
	}
	return r
}

// GetByMethod returns the strategy for a settlement method.
func (r *Registry) GetByMethod(method domain.Method) (Strategy, error) {
	s, ok := r.strategies[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}
	return s, nil
}

// Methods returns the registered settlement methods.
func (r *Registry) Methods() []domain.Method {
	out := make([]domain.Method, 0, len(r.strategies))
	for m := range r.strategies {
		out = append(out, m)
	}
	return out
}
