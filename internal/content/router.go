package content

import (
	"context"
	"strings"

	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
)

// Router composes providers by reference scheme: the segment before the
// first ":" picks the provider, and searches go to a designated default.
type Router struct {
	providers map[string]Provider
	fallback  Provider
}

// RouterConfig holds the providers a Router dispatches to.
type RouterConfig struct {
	// Providers maps reference schemes to providers.
	Providers map[string]Provider
	// Fallback handles unschemed references and all searches.
	Fallback Provider
}

// Validate ensures all required dependencies are provided.
func (c *RouterConfig) Validate() error {
	if c.Fallback == nil {
		return errors.InvalidArgument("fallback provider is required")
	}
	return nil
}

// NewRouter creates a new content router.
func NewRouter(cfg *RouterConfig) (*Router, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	providers := make(map[string]Provider, len(cfg.Providers))
	for scheme, p := range cfg.Providers {
		providers[scheme] = p
	}
	return &Router{providers: providers, fallback: cfg.Fallback}, nil
}

// ResolveByReference implements Provider.
func (r *Router) ResolveByReference(ctx context.Context, ref string) (*entities.ItemData, error) {
	if idx := strings.Index(ref, ":"); idx > 0 {
		if p, ok := r.providers[ref[:idx]]; ok {
			return p.ResolveByReference(ctx, ref)
		}
	}
	return r.fallback.ResolveByReference(ctx, ref)
}

// Search implements Provider.
func (r *Router) Search(ctx context.Context, input *SearchInput) ([]*entities.ItemData, error) {
	return r.fallback.Search(ctx, input)
}
