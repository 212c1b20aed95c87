package catalog

import (
	"context"
	"errors"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/circulation-desk/desk/core"
	"github.com/AntonStoeckl/circulation-desk/desk/features/admin"
	"github.com/AntonStoeckl/circulation-desk/desk/shell"
)

const (
	// DefaultNameCacheSize bounds the number of memoized author and category names.
	DefaultNameCacheSize = 256

	maxConcurrentLookups = 8

	logMsgNameLookupFailed = "catalog name lookup failed"
	logAttrKind            = "kind"
	logAttrID              = "id"
)

// ErrInvalidCacheSize is returned for a non-positive name cache size.
var ErrInvalidCacheSize = errors.New("name cache size must be positive")

// NameLookup returns the display name of one referenced entity.
type NameLookup func(ctx context.Context, id core.ID) (string, error)

// AuthorNames adapts an authors resource to a NameLookup.
func AuthorNames(authors *admin.Resource[admin.Author]) NameLookup {
	return func(ctx context.Context, id core.ID) (string, error) {
		author, err := authors.GetByID(ctx, id)
		return author.Name, err
	}
}

// CategoryNames adapts a categories resource to a NameLookup.
func CategoryNames(categories *admin.Resource[admin.Category]) NameLookup {
	return func(ctx context.Context, id core.ID) (string, error) {
		category, err := categories.GetByID(ctx, id)
		return category.Name, err
	}
}

// NameResolver fills BookSummary.AuthorName and CategoryName.
// Names are looked up concurrently and memoized in a bounded LRU cache;
// failed lookups leave the name empty and are retried on the next load.
type NameResolver struct {
	authors          NameLookup
	categories       NameLookup
	cache            *lru.Cache[string, string]
	logger           shell.Logger
	contextualLogger shell.ContextualLogger
}

// NameResolverOption configures a NameResolver.
type NameResolverOption func(*NameResolver)

// WithNameLogger sets the basic logger for failed lookups.
func WithNameLogger(logger shell.Logger) NameResolverOption {
	return func(r *NameResolver) {
		r.logger = logger
	}
}

// WithNameContextualLogger sets the contextual logger for failed lookups.
func WithNameContextualLogger(logger shell.ContextualLogger) NameResolverOption {
	return func(r *NameResolver) {
		r.contextualLogger = logger
	}
}

// NewNameResolver creates a NameResolver with a cache of cacheSize entries.
func NewNameResolver(authors, categories NameLookup, cacheSize int, opts ...NameResolverOption) (*NameResolver, error) {
	if cacheSize < 1 {
		return nil, ErrInvalidCacheSize
	}

	cache, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, err
	}

	r := &NameResolver{authors: authors, categories: categories, cache: cache}
	for _, opt := range opts {
		opt(r)
	}

	return r, nil
}

type nameRef struct {
	kind   string
	id     core.ID
	lookup NameLookup
}

func (n nameRef) key() string {
	return n.kind + ":" + n.id.String()
}

// Fill sets the derived name columns of items in place.
func (r *NameResolver) Fill(ctx context.Context, items []core.BookSummary) {
	resolved := make(map[string]string)
	var missing []nameRef

	seen := make(map[string]bool)
	collect := func(ref nameRef) {
		if ref.id.IsZero() || ref.lookup == nil || seen[ref.key()] {
			return
		}
		seen[ref.key()] = true

		if name, ok := r.cache.Get(ref.key()); ok {
			resolved[ref.key()] = name
			return
		}
		missing = append(missing, ref)
	}

	for _, item := range items {
		collect(nameRef{kind: "author", id: item.AuthorID, lookup: r.authors})
		collect(nameRef{kind: "category", id: item.CategoryID, lookup: r.categories})
	}

	if len(missing) > 0 {
		r.lookupAll(ctx, missing, resolved)
	}

	for i := range items {
		if name, ok := resolved[nameRef{kind: "author", id: items[i].AuthorID}.key()]; ok {
			items[i].AuthorName = name
		}

		if name, ok := resolved[nameRef{kind: "category", id: items[i].CategoryID}.key()]; ok {
			items[i].CategoryName = name
		}
	}
}

func (r *NameResolver) lookupAll(ctx context.Context, refs []nameRef, resolved map[string]string) {
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)

	for _, ref := range refs {
		g.Go(func() error {
			name, err := ref.lookup(gctx, ref.id)
			if err != nil {
				r.warn(gctx, ref, err)
				return nil
			}

			r.cache.Add(ref.key(), name)

			mu.Lock()
			resolved[ref.key()] = name
			mu.Unlock()

			return nil
		})
	}

	_ = g.Wait() // lookups never fail the group
}

func (r *NameResolver) warn(ctx context.Context, ref nameRef, err error) {
	args := []any{logAttrKind, ref.kind, logAttrID, ref.id.String(), shell.LogAttrError, err.Error()}

	if r.contextualLogger != nil {
		r.contextualLogger.WarnContext(ctx, logMsgNameLookupFailed, args...)
	} else if r.logger != nil {
		r.logger.Warn(logMsgNameLookupFailed, args...)
	}
}
