package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Storage loads and saves one typed value.
type Storage[T any] interface {
	Load() (T, error)
	Save(T) error
}

// ErrSchema reports a stored value that does not match the current shape.
var ErrSchema = errors.New("stored value does not match schema")

// Document is a JSON-encoded Storage bound to one KV key. A missing key
// loads as the zero value. Parse rejects a stored value of the wrong shape
// with an error wrapping ErrSchema; such values are never migrated.
type Document[T any] struct {
	kv    KV
	key   string
	parse func([]byte) (T, error)
}

var _ Storage[int] = (*Document[int])(nil)

// NewDocument binds key in kv. A nil parse uses json.Unmarshal.
func NewDocument[T any](kv KV, key string, parse func([]byte) (T, error)) *Document[T] {
	if parse == nil {
		parse = func(raw []byte) (T, error) {
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				return v, fmt.Errorf("%w: %v", ErrSchema, err)
			}
			return v, nil
		}
	}
	return &Document[T]{kv: kv, key: key, parse: parse}
}

func (d *Document[T]) Load() (T, error) {
	var zero T
	raw, err := d.kv.Get(d.key)
	if errors.Is(err, ErrNotFound) {
		return zero, nil
	}
	if err != nil {
		return zero, fmt.Errorf("load %s: %w", d.key, err)
	}
	v, err := d.parse(raw)
	if err != nil {
		return zero, fmt.Errorf("load %s: %w", d.key, err)
	}
	return v, nil
}

func (d *Document[T]) Save(v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.key, err)
	}
	if err := d.kv.Set(d.key, raw); err != nil {
		return fmt.Errorf("save %s: %w", d.key, err)
	}
	return nil
}

// Clear deletes the key.
func (d *Document[T]) Clear() error {
	return d.kv.Delete(d.key)
}
