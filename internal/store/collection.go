package store

import (
	"context"
	"errors"
	"fmt"
)

// Collection is the typed repository layer over one document key. Every
// mutation follows the snapshot model: load the whole slice, mutate, save it
// back wholesale.
type Collection[T any] struct {
	store DocumentStore
	key   string
	id    func(T) string
}

// NewCollection binds a typed collection to a store key. id extracts the
// entity's document id.
func NewCollection[T any](store DocumentStore, key string, id func(T) string) *Collection[T] {
	return &Collection[T]{store: store, key: key, id: id}
}

// Key returns the document key the collection is stored under.
func (c *Collection[T]) Key() string {
	return c.key
}

// List loads the whole collection; a never-saved key yields an empty slice.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	var items []T
	if err := c.store.Load(ctx, c.key, &items); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return items, nil
}

// Get returns the entity with the given id, or ErrNotFound.
func (c *Collection[T]) Get(ctx context.Context, id string) (*T, error) {
	items, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for idx := range items {
		if c.id(items[idx]) == id {
			return &items[idx], nil
		}
	}
	return nil, fmt.Errorf("%s/%s: %w", c.key, id, ErrNotFound)
}

// Replace saves the whole collection.
func (c *Collection[T]) Replace(ctx context.Context, items []T) error {
	return c.store.Save(ctx, c.key, items)
}

// Upsert inserts the entity or replaces the one sharing its id.
func (c *Collection[T]) Upsert(ctx context.Context, item T) error {
	items, err := c.List(ctx)
	if err != nil {
		return err
	}
	replaced := false
	for idx := range items {
		if c.id(items[idx]) == c.id(item) {
			items[idx] = item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, item)
	}
	return c.Replace(ctx, items)
}

// Delete removes the entity with the given id, reporting whether it existed.
func (c *Collection[T]) Delete(ctx context.Context, id string) (bool, error) {
	items, err := c.List(ctx)
	if err != nil {
		return false, err
	}
	kept := items[:0]
	found := false
	for _, item := range items {
		if c.id(item) == id {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return false, nil
	}
	return found, c.Replace(ctx, kept)
}

// IDs lists every document id in the collection, the input the document
// number generator scans.
func (c *Collection[T]) IDs(ctx context.Context) ([]string, error) {
	items, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, c.id(item))
	}
	return ids, nil
}
