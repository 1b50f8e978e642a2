// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package merge implements a recursive deep merge over nested config mappings.
//
// Values are merged according to their structural class (see
// [github.com/z5labs/confstack/value]):
//
//   - both scalars: the source value overrides the target value
//   - both sequences: the source elements are appended to the target elements
//   - both mappings: the mappings are merged recursively
//   - different classes: the merge fails with a [TypeConflictError]
//
// A nil on either side defers to the other side, so a source can not
// accidentally erase a target value by carrying an absent marker.
package merge

import (
	"fmt"
	"reflect"
	"slices"

	"github.com/z5labs/confstack/key"
	"github.com/z5labs/confstack/value"
)

// maxDepth bounds mapping recursion so adversarially deep inputs fail
// with an error instead of exhausting the stack.
const maxDepth = 1000

// TypeConflictError occurs when a merge encounters values of different
// structural classes under the same key.
type TypeConflictError struct {
	// Path is the full dotted key path from the merge root to the
	// conflicting values.
	Path string

	// Target and Source are the conflicting value classes.
	Target value.Class
	Source value.Class
}

// Error implements the error interface.
func (e TypeConflictError) Error() string {
	return fmt.Sprintf("cannot merge %s into %s: %s", e.Source, e.Target, e.Path)
}

// MaxDepthError occurs when the nesting depth of the merged mappings
// exceeds the supported maximum.
type MaxDepthError struct {
	// Path is the dotted key path at which the depth limit was reached.
	Path string
}

// Error implements the error interface.
func (e MaxDepthError) Error() string {
	return fmt.Sprintf("mapping exceeds maximum nesting depth: %s", e.Path)
}

// Merge recursively merges source into target, producing a new mapping.
// Neither input is mutated, so callers may reuse the same target or
// source across multiple merges.
//
// Values from source take precedence over values from target, except
// that a nil value never overrides a non-nil one. Sequences present on
// both sides are concatenated, target elements first, preserving order
// and duplicates. Mappings present on both sides are merged recursively.
// Any other combination of value classes under the same key aborts the
// whole merge with a [TypeConflictError]; no partial result is returned.
//
// Merge is not commutative but is associative when folding multiple
// sources in precedence order.
func Merge(target, source map[string]any) (map[string]any, error) {
	return mergeMappings(target, source, nil, 0)
}

func mergeMappings(target, source map[string]any, chain key.Chain, depth int) (map[string]any, error) {
	if depth > maxDepth {
		return nil, MaxDepthError{Path: chain.Key()}
	}

	// Keys are visited in sorted order so the first conflict reported
	// is deterministic regardless of map iteration order.
	keys := make([]string, 0, len(target)+len(source))
	for k := range target {
		keys = append(keys, k)
	}
	for k := range source {
		if _, ok := target[k]; !ok {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	merged := make(map[string]any, len(keys))
	for _, k := range keys {
		tv, tok := target[k]
		sv, sok := source[k]
		switch {
		case !sok:
			merged[k] = tv
		case !tok:
			merged[k] = sv
		default:
			mv, err := mergeValues(tv, sv, append(chain, key.Name(k)), depth)
			if err != nil {
				return nil, err
			}
			merged[k] = mv
		}
	}
	return merged, nil
}

func mergeValues(target, source any, chain key.Chain, depth int) (any, error) {
	if source == nil {
		return target, nil
	}
	if target == nil {
		return source, nil
	}

	targetClass := value.Classify(target)
	sourceClass := value.Classify(source)
	if targetClass != sourceClass {
		return nil, TypeConflictError{
			Path:   chain.Key(),
			Target: targetClass,
			Source: sourceClass,
		}
	}

	switch targetClass {
	case value.Sequence:
		vs := make([]any, 0)
		vs = appendSeq(vs, target)
		vs = appendSeq(vs, source)
		return vs, nil
	case value.Mapping:
		return mergeMappings(asMapping(target), asMapping(source), chain, depth+1)
	default:
		return source, nil
	}
}

func asMapping(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}

	rv := reflect.ValueOf(v)
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m
}

func appendSeq(vs []any, v any) []any {
	if xs, ok := v.([]any); ok {
		return append(vs, xs...)
	}

	rv := reflect.ValueOf(v)
	for i := 0; i < rv.Len(); i++ {
		vs = append(vs, rv.Index(i).Interface())
	}
	return vs
}
