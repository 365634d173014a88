package coder

import (
	"bytes"
	"fmt"
	"reflect"
)

// Coder serializes cached values to bytes and back. Implementations must
// round-trip: Unmarshal(Marshal(v)) into a value of the same type yields a
// deep-equal value.
//
// The interface uses [any] plus a pointer target rather than generics
// because Go does not allow generic methods on interfaces. Typed decoding
// is provided by the generic helpers in the root package.
type Coder interface {
	// Name returns the coder identifier used for diagnostics.
	Name() string
	// Marshal serializes v into bytes.
	Marshal(v any) ([]byte, error)
	// Unmarshal deserializes data into v, which must be a non-nil pointer.
	Unmarshal(data []byte, v any) error
}

// EncodeError reports a value the coder could not represent.
type EncodeError struct {
	Coder string
	Value any
	Err   error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("coder %s: cannot encode value of type %T: %v", e.Coder, e.Value, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// DecodeError reports stored bytes that do not match the requested target
// type. It is never silently treated as a cache miss — a decode failure
// indicates a coder or schema mismatch the caller must resolve.
type DecodeError struct {
	Coder string
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("coder %s: cannot decode stored value: %v", e.Coder, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

var jsonNull = []byte("null")

// isJSONNull reports whether data is the JSON null marker. A null payload
// decodes to the zero value of the target without invoking the parser, so
// nullable results round-trip without needing a schema for the absent case.
func isJSONNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), jsonNull)
}

// decodeNull stores the zero value through the pointer v. It reports
// false when v is not a usable pointer target, in which case the caller
// falls through to the regular decode path to produce a proper error.
func decodeNull(v any) bool {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return false
	}
	elem := rv.Elem()
	if !elem.CanSet() {
		return false
	}
	elem.Set(reflect.Zero(elem.Type()))
	return true
}
