// Package record implements the validated, schema-ordered field container
// of a CRIMSON submission. A Record wraps an ordered map and exposes only
// validating accessors; the map itself is never reachable.
package record

import (
	"fmt"

	"github.com/sean-lockwood/crimson-ins-submit/schema"
)

// UnknownFieldError is returned when a key is not part of the record's
// schema.
type UnknownFieldError struct {
	Key string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("crimson: key not in submission form template: %q", e.Key)
}

// Item is one key/value pair in schema order.
type Item struct {
	Key   string
	Value any
}

// Record holds the in-progress submission's field values. Every key of the
// owning schema is always present, and every value satisfies its field
// definition. Mutation goes through Set, which validates and canonicalizes.
type Record struct {
	schema *schema.Schema
	values map[string]any
}

// New builds a record against a schema with every field initialized to its
// kind's zero value and then to the field's initial value, applied through
// the same validation as Set. A default that fails its own field's
// validation is an error.
func New(s *schema.Schema) (*Record, error) {
	r := &Record{
		schema: s,
		values: make(map[string]any, s.Len()),
	}
	for _, key := range s.Keys() {
		if err := r.init(key); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// init sets key to its zero-then-initial state.
func (r *Record) init(key string) error {
	def, ok := r.schema.Get(key)
	if !ok {
		return &UnknownFieldError{Key: key}
	}
	r.values[key] = def.Kind.Zero()
	if def.Initial == nil {
		return nil
	}
	return r.Set(key, def.Initial)
}

// Schema returns the schema the record validates against.
func (r *Record) Schema() *schema.Schema { return r.schema }

// Set validates value against key's field definition and stores the
// canonical result.
func (r *Record) Set(key string, value any) error {
	def, ok := r.schema.Get(key)
	if !ok {
		return &UnknownFieldError{Key: key}
	}
	canonical, err := schema.Validate(def, value)
	if err != nil {
		return err
	}
	r.values[key] = canonical
	return nil
}

// Get returns the current value for key.
func (r *Record) Get(key string) (any, error) {
	v, ok := r.values[key]
	if !ok {
		return nil, &UnknownFieldError{Key: key}
	}
	return v, nil
}

// Reset restores key to the state it had immediately after construction.
func (r *Record) Reset(key string) error {
	if !r.schema.Has(key) {
		return &UnknownFieldError{Key: key}
	}
	return r.init(key)
}

// Keys returns all keys in schema order.
func (r *Record) Keys() []string { return r.schema.Keys() }

// Values returns all values in schema order.
func (r *Record) Values() []any {
	keys := r.schema.Keys()
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = r.values[k]
	}
	return out
}

// Items returns all key/value pairs in schema order.
func (r *Record) Items() []Item {
	keys := r.schema.Keys()
	out := make([]Item, len(keys))
	for i, k := range keys {
		out[i] = Item{Key: k, Value: r.values[k]}
	}
	return out
}
