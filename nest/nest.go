// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package nest reconstructs nested config mappings from flat delimited keys.
//
// Flat sources like environment variables and command line flags encode
// nesting in their key names, for example "database__host" with the
// delimiter "__" addresses the value at database.host. [Nest] decodes a
// flat mapping of such keys into the equivalent nested mapping and
// [Flatten] performs the inverse transform.
package nest

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// KeyFormatError occurs when a flat key decodes to an empty leaf name,
// i.e. the key consists only of delimiter characters.
type KeyFormatError struct {
	// Key is the offending original flat key.
	Key string
}

// Error implements the error interface.
func (e KeyFormatError) Error() string {
	return fmt.Sprintf("key must contain more than just the delimiter: %q", e.Key)
}

// KeyConflictError occurs when two flat keys decode to overlapping or
// incompatible nested paths, for example when one decoded key is a
// strict path prefix of another.
type KeyConflictError struct {
	// Key and OtherKey are the two original flat keys which conflict.
	Key      string
	OtherKey string

	// Path is the shared nested path, rendered with the delimiter
	// both keys were decoded with.
	Path string
}

// Error implements the error interface.
func (e KeyConflictError) Error() string {
	return fmt.Sprintf("conflicting keys %q and %q: %s", e.Key, e.OtherKey, e.Path)
}

// Nest converts a flat mapping whose keys encode nesting via delimiter
// into an equivalent nested mapping. The input mapping is not mutated.
//
// A key without the delimiter passes through unchanged. Leading and
// trailing delimiter runs are cosmetic and stripped. A key consisting
// only of delimiter characters fails with a [KeyFormatError]. Delimiter
// runs longer than a single delimiter at a split point fold the extra
// width into the literal text of the preceding segment, so with the
// delimiter "__" the key "a____b" addresses the value at "a__" then "b".
//
// If two distinct flat keys decode to overlapping paths, or to the same
// full path with different values, Nest fails with a [KeyConflictError]
// naming both original keys. Keys are decoded in sorted order so the
// reported conflict is deterministic. Empty keys are skipped and an
// empty delimiter decodes no nesting at all.
func Nest(flat map[string]any, delimiter string) (map[string]any, error) {
	if delimiter == "" {
		nested := make(map[string]any, len(flat))
		for k, v := range flat {
			if k == "" {
				continue
			}
			nested[k] = v
		}
		return nested, nil
	}

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	nested := make(map[string]any, len(flat))

	// origins remembers which flat key first claimed each nested
	// path so conflicts can report both offending keys.
	origins := make(map[string]string, len(flat))

	for _, k := range keys {
		if k == "" {
			continue
		}

		segs, err := splitKey(k, delimiter)
		if err != nil {
			return nil, err
		}

		err = insert(nested, origins, segs, flat[k], k, delimiter)
		if err != nil {
			return nil, err
		}
	}
	return nested, nil
}

// splitKey splits key into nesting segments. Splitting happens on
// exactly one delimiter width at a time: an empty segment produced by a
// back-to-back delimiter run is folded into the literal text of the
// preceding segment rather than producing an empty nesting level.
func splitKey(key, delimiter string) ([]string, error) {
	if strings.ReplaceAll(key, delimiter, "") == "" {
		return nil, KeyFormatError{Key: key}
	}

	parts := strings.Split(key, delimiter)

	// Trailing and leading delimiter runs carry no structure.
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for len(parts) > 0 && parts[0] == "" {
		parts = parts[1:]
	}

	segs := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" {
			segs[len(segs)-1] += delimiter
			continue
		}
		segs = append(segs, part)
	}
	return segs, nil
}

func insert(nested map[string]any, origins map[string]string, segs []string, v any, flatKey, delimiter string) error {
	cur := nested
	path := ""
	for _, seg := range segs[:len(segs)-1] {
		path = joinPath(path, seg, delimiter)

		existing, ok := cur[seg]
		if !ok {
			sub := make(map[string]any)
			cur[seg] = sub
			origins[path] = flatKey
			cur = sub
			continue
		}

		sub, ok := existing.(map[string]any)
		if !ok {
			return KeyConflictError{
				Key:      flatKey,
				OtherKey: origins[path],
				Path:     path,
			}
		}
		cur = sub
	}

	leaf := segs[len(segs)-1]
	path = joinPath(path, leaf, delimiter)

	existing, ok := cur[leaf]
	if !ok {
		cur[leaf] = v
		origins[path] = flatKey
		return nil
	}

	// Two keys may decode to the same full path, e.g. "a__b" and
	// "a__b__". They only conflict if their values differ.
	if _, isMapping := existing.(map[string]any); isMapping || !reflect.DeepEqual(existing, v) {
		return KeyConflictError{
			Key:      flatKey,
			OtherKey: origins[path],
			Path:     path,
		}
	}
	return nil
}

func joinPath(path, seg, delimiter string) string {
	if path == "" {
		return seg
	}
	return path + delimiter + seg
}

// Flatten converts a nested mapping into a flat mapping whose keys
// encode nesting via delimiter. It is the inverse of [Nest], modulo
// Nest's cosmetic stripping of leading and trailing delimiter runs.
// The input mapping is not mutated.
func Flatten(nested map[string]any, delimiter string) map[string]any {
	flat := make(map[string]any)
	flatten(nested, "", delimiter, flat)
	return flat
}

func flatten(nested map[string]any, prefix, delimiter string, flat map[string]any) {
	for k, v := range nested {
		flatKey := joinPath(prefix, k, delimiter)

		sub, ok := v.(map[string]any)
		if !ok || len(sub) == 0 {
			flat[flatKey] = v
			continue
		}
		flatten(sub, flatKey, delimiter, flat)
	}
}
