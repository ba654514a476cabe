package cachyr

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Codec converts values of type V to and from the raw bytes stored on
// disk. Both directions may fail; the cache treats a failed Encode as
// "write skipped" and a failed Decode as a miss, logging the returned
// error instead of propagating it.
//
// Implementations must be safe for concurrent use.
type Codec[V any] interface {
	// Encode converts a value to the bytes stored as file content.
	Encode(value V) ([]byte, error)

	// Decode converts stored bytes back to a value.
	Decode(data []byte) (V, error)
}

// BytesCodec stores byte slices as-is.
type BytesCodec struct{}

func (BytesCodec) Encode(value []byte) ([]byte, error) {
	return value, nil
}

func (BytesCodec) Decode(data []byte) ([]byte, error) {
	return data, nil
}

// StringCodec stores strings as their UTF-8 bytes.
// Decode rejects content that is not valid UTF-8, which catches files
// overwritten by something other than a string-valued cache.
type StringCodec struct{}

func (StringCodec) Encode(value string) ([]byte, error) {
	return []byte(value), nil
}

func (StringCodec) Decode(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", fmt.Errorf("decode string: content is not valid UTF-8")
	}

	return string(data), nil
}

// JSONCodec stores values of any JSON-marshalable type.
type JSONCodec[V any] struct{}

func (JSONCodec[V]) Encode(value V) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}

	return data, nil
}

func (JSONCodec[V]) Decode(data []byte) (V, error) {
	var value V

	err := json.Unmarshal(data, &value)
	if err != nil {
		return value, fmt.Errorf("decode json: %w", err)
	}

	return value, nil
}

// Compile-time interface checks.
var (
	_ Codec[[]byte] = BytesCodec{}
	_ Codec[string] = StringCodec{}
	_ Codec[int]    = JSONCodec[int]{}
)
