// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package value classifies config values by their structural shape.
//
// Every value belongs to exactly one of three classes: Scalar, Sequence
// or Mapping. The class of a value decides how it participates in a
// deep merge, so classification is driven entirely by the runtime shape
// of the value and never by a declared type.
package value

import (
	"reflect"
)

// Class identifies the structural shape of a config value.
type Class int

const (
	// Scalar is an atomic value: strings, numbers, bools, times and
	// nil all classify as Scalar.
	Scalar Class = iota

	// Sequence is an ordered collection of values. Strings and byte
	// slices are excluded, they classify as Scalar.
	Sequence

	// Mapping is a string keyed associative collection of values.
	Mapping
)

// String implements the fmt.Stringer interface.
func (c Class) String() string {
	switch c {
	case Scalar:
		return "scalar"
	case Sequence:
		return "sequence"
	case Mapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Classify returns the [Class] of v. It is pure, has no side effects
// and succeeds for every value, including nil.
func Classify(v any) Class {
	switch v.(type) {
	case nil, string, []byte:
		return Scalar
	case map[string]any:
		return Mapping
	case []any:
		return Sequence
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return Mapping
		}
		return Scalar
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return Scalar
		}
		return Sequence
	default:
		return Scalar
	}
}
