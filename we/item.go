package we

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// Item is a typed value stored under a single key.
type Item[T any] struct {
	key string
}

func NewItem[T any](key string) Item[T] {
	return Item[T]{key: key}
}

func (i Item[T]) Key() string {
	return i.key
}

func (i Item[T]) Save(ctx context.Context, store Storage, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %s", i.key)
	}

	return store.Set(ctx, i.key, data)
}

// MayLoad returns nil when nothing is stored under the key.
func (i Item[T]) MayLoad(ctx context.Context, store ReadOnlyStorage) (*T, error) {
	data, ok, err := store.Get(ctx, i.key)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, nil
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", i.key)
	}

	return &value, nil
}

// Load fails with a StateMissingError when nothing is stored under the key.
func (i Item[T]) Load(ctx context.Context, store ReadOnlyStorage) (T, error) {
	value, err := i.MayLoad(ctx, store)
	if err != nil {
		var zero T
		return zero, err
	}

	if value == nil {
		var zero T
		return zero, StateMissing(i.key)
	}

	return *value, nil
}

func (i Item[T]) Exists(ctx context.Context, store ReadOnlyStorage) (bool, error) {
	_, ok, err := store.Get(ctx, i.key)
	return ok, err
}

// Update loads the current value, applies fn and saves the result.
func (i Item[T]) Update(ctx context.Context, store Storage, fn func(T) (T, error)) (T, error) {
	current, err := i.Load(ctx, store)
	if err != nil {
		return current, err
	}

	updated, err := fn(current)
	if err != nil {
		return current, err
	}

	if err := i.Save(ctx, store, updated); err != nil {
		return current, err
	}

	return updated, nil
}

func (i Item[T]) Remove(ctx context.Context, store Storage) error {
	return store.Remove(ctx, i.key)
}
