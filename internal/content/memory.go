package content

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/greyhollow/sheet-api/internal/entities"
	"github.com/greyhollow/sheet-api/internal/errors"
	"github.com/greyhollow/sheet-api/internal/rules"
)

// MemoryStore is an in-memory content catalog keyed by reference. It backs
// world content loaded from catalog files and is the provider of choice in
// tests. Resolution always returns clones so callers can mutate freely.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*entities.ItemData
	// classLists maps class identifier to the references on its spell list.
	classLists map[string]map[string]struct{}
}

// NewMemoryStore creates an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items:      make(map[string]*entities.ItemData),
		classLists: make(map[string]map[string]struct{}),
	}
}

// Put indexes an item template under a reference.
func (m *MemoryStore) Put(ref string, item *entities.ItemData) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[ref] = item
}

// PutForClass indexes an item template and ties it to a class's content list.
func (m *MemoryStore) PutForClass(ref string, item *entities.ItemData, classIdentifier string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[ref] = item
	if m.classLists[classIdentifier] == nil {
		m.classLists[classIdentifier] = make(map[string]struct{})
	}
	m.classLists[classIdentifier][ref] = struct{}{}
}

// ResolveByReference implements Provider.
func (m *MemoryStore) ResolveByReference(_ context.Context, ref string) (*entities.ItemData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	item, ok := m.items[ref]
	if !ok {
		return nil, errors.NotFoundf("content reference %q does not resolve", ref)
	}
	clone := item.Clone(item.ID)
	clone.SourceRef = ref
	return clone, nil
}

// Search implements Provider. Results come back in reference order so
// repeated searches are deterministic.
func (m *MemoryStore) Search(_ context.Context, input *SearchInput) ([]*entities.ItemData, error) {
	if input == nil {
		return nil, errors.InvalidArgument("input is required")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	refs := make([]string, 0, len(m.items))
	for ref := range m.items {
		refs = append(refs, ref)
	}
	sort.Strings(refs)

	var results []*entities.ItemData
	for _, ref := range refs {
		item := m.items[ref]
		if input.ContentType != "" && item.Type != input.ContentType {
			continue
		}
		if input.SpellLevel != nil && item.SpellLevel != *input.SpellLevel {
			continue
		}
		if input.Category != "" && item.Category != input.Category {
			continue
		}
		if input.ClassIdentifier != "" {
			list, ok := m.classLists[input.ClassIdentifier]
			if !ok {
				continue
			}
			if _, onList := list[ref]; !onList {
				continue
			}
		}
		clone := item.Clone(item.ID)
		clone.SourceRef = ref
		results = append(results, clone)
	}
	return results, nil
}

// catalogFile is the YAML shape of a world content catalog.
type catalogFile struct {
	Items []catalogEntry `yaml:"items"`
}

type catalogEntry struct {
	Reference  string   `yaml:"reference"`
	ID         string   `yaml:"id"`
	Type       string   `yaml:"type"`
	Name       string   `yaml:"name"`
	Identifier string   `yaml:"identifier,omitempty"`
	SpellLevel int      `yaml:"spell_level,omitempty"`
	Category   string   `yaml:"category,omitempty"`
	Classes    []string `yaml:"classes,omitempty"`
}

// LoadCatalogFile loads a YAML content catalog into the store.
func (m *MemoryStore) LoadCatalogFile(path string) error {
	f, err := os.Open(path) // #nosec G304 // catalog path comes from operator config
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()
	return m.LoadCatalog(f)
}

// LoadCatalog decodes a YAML content catalog into the store.
func (m *MemoryStore) LoadCatalog(r io.Reader) error {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return fmt.Errorf("failed to decode catalog: %w", err)
	}

	for i, entry := range file.Items {
		if strings.TrimSpace(entry.Reference) == "" {
			return errors.InvalidArgumentf("catalog item %d has no reference", i)
		}
		itemType := rules.ItemType(entry.Type)
		if !rules.IsItemType(itemType) {
			return errors.InvalidArgumentf("catalog item %q has unknown type %q", entry.Reference, entry.Type)
		}
		id := entry.ID
		if id == "" {
			id = entry.Reference
		}
		item := &entities.ItemData{
			ID:         id,
			Type:       itemType,
			Name:       entry.Name,
			Identifier: entry.Identifier,
			SpellLevel: entry.SpellLevel,
			Category:   entry.Category,
		}
		if len(entry.Classes) == 0 {
			m.Put(entry.Reference, item)
			continue
		}
		for _, class := range entry.Classes {
			m.PutForClass(entry.Reference, item, class)
		}
	}
	return nil
}
