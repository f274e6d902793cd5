// Package normalize converts heterogeneous provider payloads into the
// canonical UnifiedJob record. Each provider schema has one pure strategy;
// the registry dispatches on the configured provider identity, never on
// payload shape or URL.
package normalize

import (
	"errors"
	"fmt"

	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/clover/pkg/models"
)

// ErrUnsupportedProvider is returned when a provider identity matches no
// registered strategy.
var ErrUnsupportedProvider = errors.New("unsupported provider format")

// Strategy converts one raw provider payload into canonical job records.
// Strategies are pure: the same payload always yields the same records, and
// missing or malformed optional fields resolve to zero values instead of
// failing. Only an undecodable payload returns an error.
type Strategy func(payload []byte) ([]models.UnifiedJob, error)

// Registry maps provider identities to strategies.
type Registry struct {
	strategies map[string]Strategy
	logger     ectologger.Logger
}

// NewRegistry returns a registry with the built-in provider strategies bound.
func NewRegistry(logger ectologger.Logger) *Registry {
	r := &Registry{
		strategies: make(map[string]Strategy),
		logger:     logger,
	}
	r.Register(ProviderFlatList, ConvertFlatList)
	r.Register(ProviderKeyedMap, ConvertKeyedMap)
	return r
}

// Register binds a strategy to a provider identity, replacing any existing
// binding.
func (r *Registry) Register(provider string, strategy Strategy) {
	r.strategies[provider] = strategy
}

// Convert dispatches the payload to the strategy registered for the provider
// identity.
func (r *Registry) Convert(provider string, payload []byte) ([]models.UnifiedJob, error) {
	strategy, ok := r.strategies[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}

	jobs, err := strategy(payload)
	if err != nil {
		return nil, fmt.Errorf("provider %q: %w", provider, err)
	}

	r.logger.WithField("provider", provider).Debugf("normalized %d jobs", len(jobs))
	return jobs, nil
}
