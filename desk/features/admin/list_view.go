package admin

import (
	"context"
	"maps"
	"sync"
)

// LoadState is the lifecycle of a ListView.
type LoadState string

const (
	LoadStateIdle    LoadState = "idle"
	LoadStateLoading LoadState = "loading"
	LoadStateLoaded  LoadState = "loaded"
	LoadStateError   LoadState = "error"
)

// ListSnapshot is a consistent copy of a ListView's state.
type ListSnapshot[T any] struct {
	State    LoadState
	Items    []T
	Total    int
	Page     int
	PageSize int
	Err      error
}

// ListView tracks paging, filters and the load state of one administrative list.
type ListView[T any] struct {
	mu       sync.Mutex
	resource *Resource[T]
	page     int
	pageSize int
	filters  Filters
	state    LoadState
	result   ListResult[T]
	err      error
}

// NewListView creates a ListView on page 1.
func NewListView[T any](resource *Resource[T], pageSize int) *ListView[T] {
	return &ListView[T]{
		resource: resource,
		page:     1,
		pageSize: pageSize,
		filters:  Filters{},
		state:    LoadStateIdle,
	}
}

// SetFilters replaces the filters and goes back to page 1. It does not load.
func (v *ListView[T]) SetFilters(filters Filters) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.filters = maps.Clone(filters)
	v.page = 1
}

// GoToPage selects a page (minimum 1) and loads it.
func (v *ListView[T]) GoToPage(ctx context.Context, page int) error {
	v.mu.Lock()
	v.page = max(page, 1)
	v.mu.Unlock()

	return v.Load(ctx)
}

// Load fetches the current page. On failure the previously loaded items are kept.
func (v *ListView[T]) Load(ctx context.Context) error {
	v.mu.Lock()
	page, pageSize, filters := v.page, v.pageSize, maps.Clone(v.filters)
	v.state = LoadStateLoading
	v.err = nil
	v.mu.Unlock()

	result, err := v.resource.List(ctx, page, pageSize, filters)

	v.mu.Lock()
	defer v.mu.Unlock()

	if err != nil {
		v.state = LoadStateError
		v.err = err

		return err
	}

	v.state = LoadStateLoaded
	v.result = result

	return nil
}

// Snapshot returns the current state.
func (v *ListView[T]) Snapshot() ListSnapshot[T] {
	v.mu.Lock()
	defer v.mu.Unlock()

	return ListSnapshot[T]{
		State:    v.state,
		Items:    append([]T(nil), v.result.Items...),
		Total:    v.result.Total,
		Page:     v.page,
		PageSize: v.pageSize,
		Err:      v.err,
	}
}
