// Package content defines the narrow contract the advancement engine uses to
// resolve granted item templates from a content catalog, plus the catalog
// implementations: an in-memory store for worlds and tests, an adapter over
// the D&D 5e API, and a scheme router composing them.
package content

//go:generate mockgen -destination=mock/mock_provider.go -package=contentmock github.com/greyhollow/sheet-api/internal/content Provider

import (
	"context"

	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/rules"
)

// Provider resolves content references into item templates.
type Provider interface {
	// ResolveByReference fetches the item template behind a stable
	// reference string.
	// Returns errors.NotFound when the reference no longer resolves.
	ResolveByReference(ctx context.Context, ref string) (*entities.ItemData, error)

	// Search enumerates item templates matching the given filters.
	Search(ctx context.Context, input *SearchInput) ([]*entities.ItemData, error)
}

// SearchInput filters a content search.
type SearchInput struct {
	// ContentType restricts results to one item type.
	ContentType rules.ItemType
	// ClassIdentifier restricts results to content tied to a class,
	// e.g. spells on that class's list.
	ClassIdentifier string
	// SpellLevel restricts spell results to one tier.
	SpellLevel *int
	// Category restricts results to one item category.
	Category string
}
