package state

import (
	"bytes"
	"context"
	"encoding/json"
)

// Codec converts between a typed value and its stored bytes.
type Codec[T any] interface {
	Encode(v T) ([]byte, error)
	Decode(data []byte) (T, error)
}

// StringCodec stores strings verbatim.
type StringCodec struct{}

func (StringCodec) Encode(v string) ([]byte, error) { return []byte(v), nil }

func (StringCodec) Decode(data []byte) (string, error) { return string(data), nil }

// JSONCodec stores values as JSON. An empty value or a JSON null decodes to the zero value.
type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(v T) ([]byte, error) { return json.Marshal(v) }

func (JSONCodec[T]) Decode(data []byte) (T, error) {
	var out T
	if len(bytes.TrimSpace(data)) == 0 {
		return out, nil
	}
	err := json.Unmarshal(data, &out)
	return out, err
}

// TypedKey binds a key name to the codec used for its value.
type TypedKey[T any] struct {
	Name  string
	Codec Codec[T]
}

// NewStringKey returns a key whose value is stored as a raw string.
func NewStringKey(name string) TypedKey[string] {
	return TypedKey[string]{Name: name, Codec: StringCodec{}}
}

// NewJSONKey returns a key whose value is stored as JSON.
func NewJSONKey[T any](name string) TypedKey[T] {
	return TypedKey[T]{Name: name, Codec: JSONCodec[T]{}}
}

// Get reads and decodes the value. An absent key yields the zero value and false.
func (k TypedKey[T]) Get(ctx context.Context, store Store) (T, bool, error) {
	var zero T
	raw, ok, err := store.Get(ctx, k.Name)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		return zero, false, nil
	}
	v, err := k.Codec.Decode(raw)
	if err != nil {
		return zero, false, &DecodeError{Key: k.Name, Err: err}
	}
	return v, true, nil
}

// Put encodes v and replaces the stored value.
func (k TypedKey[T]) Put(ctx context.Context, store Store, v T) error {
	raw, err := k.Codec.Encode(v)
	if err != nil {
		return err
	}
	return store.Put(ctx, k.Name, raw)
}
