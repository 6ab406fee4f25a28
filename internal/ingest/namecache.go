package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/appetiteclub/apt"

	"github.com/menulingua/menulingua/internal/catalog"
)

// NameCache holds the known catalog dish names per language so duplicate
// checks do not hit the store on every proposal. It is warmed from the store
// at startup and kept current by the ingestion event subscriber.
type NameCache struct {
	mu     sync.RWMutex
	names  map[catalog.Language][]string
	seen   map[catalog.Language]map[string]struct{}
	store  catalog.Store
	logger apt.Logger
}

func NewNameCache(store catalog.Store, logger apt.Logger) *NameCache {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &NameCache{
		names:  make(map[catalog.Language][]string),
		seen:   make(map[catalog.Language]map[string]struct{}),
		store:  store,
		logger: logger,
	}
}

// Warm loads the known names for every supported language from the store.
func (c *NameCache) Warm(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	for _, lang := range catalog.Supported {
		names, err := c.store.ListNames(ctx, lang)
		if err != nil {
			return fmt.Errorf("failed to list names for %s: %w", lang, err)
		}
		for _, name := range names {
			c.Add(lang, name)
		}
	}
	return nil
}

// Known returns the cached names for a language.
func (c *NameCache) Known(lang catalog.Language) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := c.names[lang]
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Add records a name for a language. Adding a name twice is a no-op;
// duplicate detection keys off normalized names.
func (c *NameCache) Add(lang catalog.Language, name string) {
	normalized := Normalize(name)
	if normalized == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	set, ok := c.seen[lang]
	if !ok {
		set = make(map[string]struct{})
		c.seen[lang] = set
	}
	if _, ok := set[normalized]; ok {
		return
	}
	set[normalized] = struct{}{}
	c.names[lang] = append(c.names[lang], name)
}

// Len returns how many names are cached for a language.
func (c *NameCache) Len(lang catalog.Language) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names[lang])
}
