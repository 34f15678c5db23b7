package content

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/fadedpez/dnd5e-api/clients/dnd5e"

	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
	"github.com/greyhollow/sheet-api/internal/rules"
)

// Scheme is the reference scheme the D&D 5e API provider serves.
const dnd5eapiScheme = "dnd5eapi"

// APIProvider serves content from the public D&D 5e API. References take the
// form "dnd5eapi:spell:<key>" or "dnd5eapi:feature:<key>".
type APIProvider struct {
	client dnd5e.Interface
}

// APIConfig contains configuration options for the API provider.
type APIConfig struct {
	// BaseURL for the D&D 5e API (optional).
	BaseURL string
	// HTTPTimeout for API requests (optional, defaults to 30 seconds).
	HTTPTimeout time.Duration
	// CacheTTL for the cached client (optional, defaults to 24 hours).
	CacheTTL time.Duration
}

// Validate validates the APIConfig and sets defaults if not provided.
func (cfg *APIConfig) Validate() error {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.dnd5eapi.co/api/2014/"
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	return nil
}

// NewAPIProvider creates a content provider backed by the D&D 5e API.
func NewAPIProvider(cfg *APIConfig) (*APIProvider, error) {
	if cfg == nil {
		cfg = &APIConfig{}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	baseClient, err := dnd5e.NewDND5eAPI(&dnd5e.DND5eAPIConfig{
		Client:  &http.Client{Timeout: cfg.HTTPTimeout},
		BaseURL: cfg.BaseURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create D&D 5e API client")
	}

	return &APIProvider{
		client: dnd5e.NewCachedClient(baseClient, cfg.CacheTTL),
	}, nil
}

// ResolveByReference implements Provider.
func (p *APIProvider) ResolveByReference(_ context.Context, ref string) (*entities.ItemData, error) {
	parts := strings.SplitN(ref, ":", 3)
	if len(parts) != 3 || parts[0] != dnd5eapiScheme {
		return nil, errors.InvalidArgumentf("malformed reference %q", ref)
	}
	kind, key := parts[1], parts[2]

	switch kind {
	case "spell":
		spell, err := p.client.GetSpell(key)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeNotFound, "spell "+key+" does not resolve")
		}
		return &entities.ItemData{
			ID:         spell.Key,
			Type:       rules.ItemTypeSpell,
			Name:       spell.Name,
			Identifier: spell.Key,
			SpellLevel: spell.SpellLevel,
			SourceRef:  ref,
		}, nil
	case "feature":
		feature, err := p.client.GetFeature(key)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.CodeNotFound, "feature "+key+" does not resolve")
		}
		return &entities.ItemData{
			ID:         feature.Key,
			Type:       rules.ItemTypeFeature,
			Name:       feature.Name,
			Identifier: feature.Key,
			SourceRef:  ref,
		}, nil
	default:
		return nil, errors.InvalidArgumentf("unknown content kind %q in reference %q", kind, ref)
	}
}

// Search implements Provider. Only spell searches are served; the public API
// has no useful list endpoints for the other item types the engine grants.
func (p *APIProvider) Search(_ context.Context, input *SearchInput) ([]*entities.ItemData, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}
	if input.ContentType != rules.ItemTypeSpell {
		return nil, errors.Unimplemented("only spell searches are supported by the D&D 5e API provider")
	}

	listInput := &dnd5e.ListSpellsInput{}
	if input.SpellLevel != nil {
		level := *input.SpellLevel
		listInput.Level = &level
	}
	if input.ClassIdentifier != "" {
		listInput.Class = input.ClassIdentifier
	}

	refs, err := p.client.ListSpells(listInput)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list spells")
	}

	results := make([]*entities.ItemData, 0, len(refs))
	for _, ref := range refs {
		spell, err := p.client.GetSpell(ref.Key)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get spell %s", ref.Key)
		}
		results = append(results, &entities.ItemData{
			ID:         spell.Key,
			Type:       rules.ItemTypeSpell,
			Name:       spell.Name,
			Identifier: spell.Key,
			SpellLevel: spell.SpellLevel,
			SourceRef:  dnd5eapiScheme + ":spell:" + spell.Key,
		})
	}
	return results, nil
}
