package memocache

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// KeyBuilder maps a call site to a cache key. Builders must be
// deterministic: structurally equal arguments for the same namespace and
// function always produce the same key. The returned key does not include
// the cache's global prefix; the cache prepends it.
type KeyBuilder func(namespace, function string, args []any, named map[string]any) (string, error)

// KeyError reports an argument that cannot be represented in a cache key.
type KeyError struct {
	Function string
	Err      error
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("memocache: cannot build key for %s: %v", e.Function, e.Err)
}

func (e *KeyError) Unwrap() error { return e.Err }

// DefaultKeyBuilder hashes the function identity and its arguments with
// xxhash and formats the key as "namespace:hex" (or just "hex" with an
// empty namespace). Positional args are digested in call order; named
// args are digested sorted by name so map iteration order cannot change
// the key. Arguments that cannot be serialized (funcs, channels) fail
// fast rather than silently colliding.
func DefaultKeyBuilder(namespace, function string, args []any, named map[string]any) (string, error) {
	digest := xxhash.New()
	digest.WriteString(function)
	for _, arg := range args {
		data, err := json.Marshal(arg)
		if err != nil {
			return "", &KeyError{Function: function, Err: err}
		}
		digest.Write([]byte{0})
		digest.Write(data)
	}
	if len(named) > 0 {
		names := make([]string, 0, len(named))
		for name := range named {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			data, err := json.Marshal(named[name])
			if err != nil {
				return "", &KeyError{Function: function, Err: err}
			}
			digest.Write([]byte{1})
			digest.WriteString(name)
			digest.Write([]byte{0})
			digest.Write(data)
		}
	}
	hash := fmt.Sprintf("%016x", digest.Sum64())
	if namespace == "" {
		return hash, nil
	}
	return namespace + ":" + hash, nil
}
