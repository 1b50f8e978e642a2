// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package confstack assembles a single config value from layered sources.
//
// Sources are read in the order given to [Read] and folded together with
// a deep merge, so later sources take precedence over earlier ones while
// nested mappings are merged rather than overwritten wholesale. The
// conventional precedence order is: defaults, file, environment, command
// line flags.
package confstack

import (
	"encoding"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"time"

	"github.com/z5labs/confstack/merge"
	"github.com/z5labs/confstack/nest"

	"github.com/go-viper/mapstructure/v2"
)

// Source defines valid config sources as those who can represent
// themselves as a nested key value structure.
type Source interface {
	Load() (map[string]any, error)
}

// Manager holds the fully merged config value.
type Manager struct {
	store map[string]any
}

// Read loads all of the given sources and merges them, in order, into a
// single config value. Subsequent sources override previous sources.
// Each merge is all or nothing: a [merge.TypeConflictError] from any
// source aborts the whole read.
func Read(srcs ...Source) (*Manager, error) {
	store := make(map[string]any)
	for _, src := range srcs {
		m, err := src.Load()
		if err != nil {
			return nil, err
		}

		store, err = merge.Merge(store, m)
		if err != nil {
			return nil, err
		}
	}
	return &Manager{store: store}, nil
}

// Unmarshal converts the merged config value into the strongly typed
// target, v. Struct fields are matched via the "config" tag.
func (m *Manager) Unmarshal(v any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "config",
		Result:           v,
		WeaklyTypedInput: true,
		DecodeHook: composeDecodeHooks(
			textUnmarshalerHookFunc(),
			timeDurationHookFunc(),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(m.store)
}

// LogValue implements the slog.LogValuer interface. The merged config
// is rendered as a group of flattened, dot separated attributes which
// pairs with [github.com/z5labs/confstack/maskslog] for keeping secret
// values out of logs.
func (m *Manager) LogValue() slog.Value {
	flat := nest.Flatten(m.store, ".")

	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	attrs := make([]slog.Attr, len(keys))
	for i, k := range keys {
		attrs[i] = slog.Any(k, flat[k])
	}
	return slog.GroupValue(attrs...)
}

var errInvalidDecodeCondition = errors.New("invalid decode condition")

// TypeCoercionError occurs when attempting to unmarshal a config
// value to a struct field whose type does not match the config
// value type, up to, coercion.
type TypeCoercionError struct {
	from  reflect.Value
	to    reflect.Value
	Cause error
}

// Error implements the error interface.
func (e TypeCoercionError) Error() string {
	return fmt.Sprintf("failed to coerce value from %s to %s: %s", e.from.Type().Name(), e.to.Type().Name(), e.Cause)
}

// Unwrap implements the implicit interface for usage with errors.Is and errors.As.
func (e TypeCoercionError) Unwrap() error {
	return e.Cause
}

func composeDecodeHooks(hs ...mapstructure.DecodeHookFunc) mapstructure.DecodeHookFuncValue {
	return func(f, t reflect.Value) (any, error) {
		for _, h := range hs {
			v, err := mapstructure.DecodeHookExec(h, f, t)
			if err == nil {
				return v, nil
			}
			if err == errInvalidDecodeCondition {
				continue
			}
			return nil, TypeCoercionError{
				from:  f,
				to:    t,
				Cause: err,
			}
		}
		return f.Interface(), nil
	}
}

func textUnmarshalerHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if f.Kind() != reflect.String {
			return nil, errInvalidDecodeCondition
		}
		result := reflect.New(t).Interface()
		u, ok := result.(encoding.TextUnmarshaler)
		if !ok {
			return nil, errInvalidDecodeCondition
		}
		err := u.UnmarshalText([]byte(data.(string)))
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}

func timeDurationHookFunc() mapstructure.DecodeHookFuncType {
	return func(f reflect.Type, t reflect.Type, data any) (any, error) {
		if t != reflect.TypeOf(time.Duration(0)) {
			return nil, errInvalidDecodeCondition
		}

		switch f.Kind() {
		case reflect.String:
			return time.ParseDuration(data.(string))
		case reflect.Int:
			return time.Duration(int64(data.(int))), nil
		default:
			return nil, errInvalidDecodeCondition
		}
	}
}
